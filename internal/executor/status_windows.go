//go:build windows

package executor

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/ormasoftchile/atf-run/internal/platform"
)

// statusFromWaitError extracts a ProcessStatus on Windows, which has no
// signal concept: any abnormal termination surfaces as a non-zero exit
// code, never as Signaled.
func statusFromWaitError(err error) (ProcessStatus, error) {
	if err == nil {
		return ProcessStatus{Exited: true, Code: 0}, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return ProcessStatus{}, fmt.Errorf("could not wait for test program: %v", err)
	}
	return ProcessStatus{Exited: true, Code: exitErr.ExitCode()}, nil
}

// job is set by setProcessGroup and consumed by killProcessGroup; a Job
// Object is the Windows analog of a Unix process group for the purpose of
// killing a whole child tree atomically.
var job *platform.JobObject

func setProcessGroup(cmd *exec.Cmd) {
	j, err := platform.NewJobObject()
	if err != nil {
		return
	}
	job = j
}

// joinProcessGroup assigns the now-running child to the Job Object created
// by setProcessGroup, the point at which a PID first exists to assign.
func joinProcessGroup(cmd *exec.Cmd) {
	if job == nil || cmd.Process == nil {
		return
	}
	_ = job.AssignProcess(cmd.Process.Pid)
}

func killProcessGroup(cmd *exec.Cmd) {
	if job == nil {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		return
	}
	_ = job.Terminate(1)
	_ = job.Close()
}
