// Package executor spawns a test case's body or cleanup phase as an
// isolated child process: working directory, environment,
// and stream redirection are all controlled by the parent, and a timeout
// unilaterally kills the child's entire process group with no cooperative
// cancellation protocol.
package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ormasoftchile/atf-run/internal/config"
	"github.com/ormasoftchile/atf-run/internal/envfilter"
)

// Phase identifies which half of a test case is being run.
type Phase string

const (
	PhaseBody    Phase = "body"
	PhaseCleanup Phase = "cleanup"
)

// localeVarPatterns are the environment variable names cleared from the
// child's environment before LANG=C and LC_ALL=C are imposed. Expressed
// as envfilter glob patterns. LANG and LC_ALL are exempt from envfilter's
// deny matching, so the parent's values pass the filter and are then
// overridden by the LANG=C and LC_ALL=C entries appended after them.
var localeVarPatterns = []string{"LC_*", "LANG", "TZ"}

// Request describes one invocation of a test program in a given phase.
type Request struct {
	Program    string        // absolute path to the test program binary
	CaseName   string        // test case name, e.g. "t1"
	Phase      Phase         // body or cleanup
	ResultPath string        // where the child must write its result file
	Workdir    string        // directory the child executes in (HOME, cwd)
	OutputDir  string        // writable directory captured stdout/stderr are spooled to
	Config     config.Map    // effective configuration, flattened to -v k=v
	Timeout    time.Duration // 0 disables the timeout
}

// Result is the outcome of spawning and waiting for one child.
//
// BrokenReason is empty on normal execution and non-empty when the parent
// detected a structural failure before or during setup; in that case
// Status must be ignored by the outcome arbiter.
type Result struct {
	BrokenReason string
	Status       ProcessStatus
	Stdout       []string
	Stderr       []string
}

// Run spawns the child described by req, waits for it (subject to
// req.Timeout), and captures its output. Child setup happens in a fixed
// order: chdir, isolated environment, stream redirection, timeout-
// triggered process-group kill, then exec with the case's argument
// contract. Captured stdout/stderr are spooled to req.OutputDir, which
// must be writable regardless of whether req.Workdir is — req.Workdir is
// the shared read-only directory for a use.fs=false case.
func Run(ctx context.Context, req Request) Result {
	// Captured output is spooled to OutputDir, not Workdir: a use.fs=false
	// case's Workdir is the shared read-only directory, and creating files
	// there would fail for any non-root user.
	stdoutPath := filepath.Join(req.OutputDir, "stdout")
	stderrPath := filepath.Join(req.OutputDir, "stderr")

	stdoutFile, err := os.Create(stdoutPath) //nolint:gosec // workdir is driver-controlled, not user input
	if err != nil {
		return Result{BrokenReason: fmt.Sprintf("could not create stdout file: %v", err)}
	}
	defer stdoutFile.Close()

	stderrFile, err := os.Create(stderrPath)
	if err != nil {
		return Result{BrokenReason: fmt.Sprintf("could not create stderr file: %v", err)}
	}
	defer stderrFile.Close()

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		return Result{BrokenReason: fmt.Sprintf("could not open null device: %v", err)}
	}
	defer devNull.Close()

	args := buildArgs(req)
	cmd := exec.Command(req.Program, args...)
	cmd.Dir = req.Workdir
	cmd.Env = buildChildEnv(req.Workdir)
	cmd.Stdin = devNull
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return Result{BrokenReason: fmt.Sprintf("could not start test program: %v", err)}
	}
	joinProcessGroup(cmd)

	waitErr := waitWithTimeout(cmd, req.Timeout)

	stdout, _ := readLines(stdoutPath)
	stderr, _ := readLines(stderrPath)

	if to, ok := waitErr.(timeoutError); ok {
		return Result{
			BrokenReason: fmt.Sprintf("Test case timed out after %d seconds", to.seconds),
			Stdout:       stdout,
			Stderr:       stderr,
		}
	}

	status, err := statusFromWaitError(waitErr)
	if err != nil {
		return Result{BrokenReason: err.Error(), Stdout: stdout, Stderr: stderr}
	}
	return Result{Status: status, Stdout: stdout, Stderr: stderr}
}

// buildArgs constructs the test program's argument contract:
// (-r result_path, -s src_dir, -v k=v ..., case_name:phase).
func buildArgs(req Request) []string {
	args := []string{"-r", req.ResultPath, "-s", filepath.Dir(req.Program)}
	for k, v := range req.Config {
		args = append(args, "-v", fmt.Sprintf("%s=%s", k, v))
	}
	args = append(args, fmt.Sprintf("%s:%s", req.CaseName, req.Phase))
	return args
}

// buildChildEnv starts from the parent's environment, strips locale
// variables via envfilter's deny-list matcher, then imposes the fixed
// HOME/LANG/LC_ALL triple.
func buildChildEnv(workdir string) []string {
	base := os.Environ()
	result := make([]string, 0, len(base)+3)
	for _, kv := range base {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if envfilter.IsDenied(name, localeVarPatterns) {
			continue
		}
		result = append(result, kv)
	}
	result = append(result, "HOME="+workdir, "LANG=C", "LC_ALL=C")
	return result
}

type timeoutError struct{ seconds int }

func (e timeoutError) Error() string {
	return fmt.Sprintf("timed out after %d seconds", e.seconds)
}

// waitWithTimeout waits for cmd, killing its process group with SIGKILL if
// req.Timeout elapses first.
func waitWithTimeout(cmd *exec.Cmd, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	if timeout <= 0 {
		return <-done
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		killProcessGroup(cmd)
		<-done
		return timeoutError{seconds: int(timeout.Seconds())}
	}
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // driver-controlled path
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return lines, nil
}
