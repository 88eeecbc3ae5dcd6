// Package driver implements the top-level orchestration loop: recursive
// manifest discovery, metadata collection, per-case execution, outcome
// arbitration, and event emission.
package driver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ormasoftchile/atf-run/internal/config"
	"github.com/ormasoftchile/atf-run/internal/event"
	"github.com/ormasoftchile/atf-run/internal/executor"
	"github.com/ormasoftchile/atf-run/internal/hooks"
	"github.com/ormasoftchile/atf-run/internal/manifest"
	"github.com/ormasoftchile/atf-run/internal/outcome"
	"github.com/ormasoftchile/atf-run/internal/requirements"
	"github.com/ormasoftchile/atf-run/internal/workdir"
)

const defaultTimeout = 300 * time.Second

// Options configures one invocation of the driver.
type Options struct {
	// Targets are the positional program-or-directory arguments. When
	// empty, the driver reads ./Atffile.
	Targets []string

	// Overrides are command-line "-v var=value" entries, already parsed to a Map.
	Overrides config.Map

	// WorkdirRoot is where per-run temp directories are created
	// (ATF_WORKDIR).
	WorkdirRoot string

	// Checker evaluates require.* properties; callers needing deterministic
	// tests substitute a fake.
	Checker *requirements.Checker

	// Hooks invokes the installation-defined info_start_hook/info_end_hook
	// scripts before the first event and after the last. Nil
	// disables hook invocation, which test callers rely on.
	Hooks *hooks.Runner

	// Pkgdatadir resolves suite-variables files by test-suite name. Empty
	// skips that source.
	Pkgdatadir string
}

// Driver runs test programs and writes the event stream.
type Driver struct {
	opts      Options
	writer    *event.Writer
	aborted   int32
	sharedRO  *workdir.Dir
}

// New constructs a Driver writing events to w.
func New(opts Options, w *event.Writer) *Driver {
	if opts.Checker == nil {
		opts.Checker = requirements.NewChecker()
	}
	return &Driver{opts: opts, writer: w}
}

// Run executes the full suite rooted at d.opts.Targets (or ./Atffile when
// empty) and returns true iff every program succeeded.
func (d *Driver) Run(ctx context.Context) (bool, error) {
	if d.opts.Hooks != nil {
		if err := d.opts.Hooks.Invoke(hooks.InfoStart); err != nil {
			return false, fmt.Errorf("info_start_hook: %w", err)
		}
	}

	ctx, cancel := d.installSignalHandling(ctx)
	defer cancel()

	roDir, diag, err := workdir.MakeSharedRO(d.opts.WorkdirRoot, "atf-run-ro.*")
	if err != nil {
		return false, fmt.Errorf("creating shared read-only workdir: %w", err)
	}
	d.sharedRO = roDir
	defer d.sharedRO.Release()

	targets, baseCfg, err := d.resolveTopLevel()
	if err != nil {
		return false, err
	}

	total, err := countTestPrograms(targets, baseCfg)
	if err != nil {
		return false, err
	}
	if diag != nil {
		// The immutability diagnostic is surfaced as its own case-less
		// program scope, so it must be counted alongside the real test
		// programs: otherwise a formatter sees one more tp-start than
		// tps-count promised.
		total++
	}
	if err := d.writer.TpsCount(total); err != nil {
		return false, err
	}
	if diag != nil {
		if err := d.writer.TpStart("<workdir-setup>", 0); err == nil {
			_ = d.writer.TpEnd("<workdir-setup>", diag.Message)
		}
	}

	ok := true
	for _, target := range targets {
		if d.shuttingDown() {
			break
		}
		success, err := d.runTarget(ctx, target, baseCfg)
		if err != nil {
			return false, err
		}
		if !success {
			ok = false
		}
	}

	if d.opts.Hooks != nil {
		// Hook failure is fatal; at this point every open scope has
		// already been closed by the loop above, so there is nothing
		// further to unwind before reporting it.
		if err := d.opts.Hooks.Invoke(hooks.InfoEnd); err != nil {
			return false, fmt.Errorf("info_end_hook: %w", err)
		}
	}
	return ok, nil
}

// shuttingDown reports whether a signal has requested early termination.
func (d *Driver) shuttingDown() bool {
	return atomic.LoadInt32(&d.aborted) != 0
}

// installSignalHandling arranges for SIGINT/SIGTERM/SIGHUP/SIGQUIT to set
// a shutdown flag the driver checks between cases, so an interrupted run
// stops cleanly after the current case rather than mid-execution.
func (d *Driver) installSignalHandling(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	go func() {
		select {
		case <-sigCh:
			atomic.StoreInt32(&d.aborted, 1)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// resolveTopLevel determines the initial (targets, config) pair for Run.
// Explicit positional targets substitute for the top-level manifest's own
// tp list, with no suite configuration of their own; they are not checked
// against any Atffile's tp list. With no positional
// targets, ./Atffile is parsed and its suite-variables file and conf
// entries become the base config every resolved test-program path
// inherits.
func (d *Driver) resolveTopLevel() ([]string, config.Map, error) {
	if len(d.opts.Targets) > 0 {
		return d.opts.Targets, config.Map{}, nil
	}
	af, err := manifest.ParseAtffileFile("Atffile")
	if err != nil {
		return nil, nil, fmt.Errorf("Atffile: %w", err)
	}
	cfg, err := d.suiteConfig(af, config.Map{})
	if err != nil {
		return nil, nil, err
	}
	return af.TestProgs, cfg, nil
}

// suiteConfig resolves af's own configuration sources — a suite-variables
// file looked up by its "test-suite" property, then its manifest conf
// entries — layered on top of parentCfg so the nested result overrides the
// parent's. Command-line overrides are not folded in here; they are
// applied once, at the point each leaf test program is finally run, so
// they remain the highest
// precedence source regardless of nesting depth.
func (d *Driver) suiteConfig(af *manifest.Atffile, parentCfg config.Map) (config.Map, error) {
	var suiteCfg config.Map
	if d.opts.Pkgdatadir != "" {
		var err error
		suiteCfg, err = config.LoadFiles(config.SuiteFilePaths(d.opts.Pkgdatadir, af.TestSuite()))
		if err != nil {
			return nil, err
		}
	}
	fileCfg, err := config.LoadFiles(af.ConfFiles)
	if err != nil {
		return nil, err
	}
	return config.Merge(parentCfg, suiteCfg, fileCfg), nil
}

// runTarget stats target: a directory recurses into its nested Atffile
// with merged configuration (nested overrides parent); a file runs as a
// test program, with command-line overrides applied on top of cfg.
func (d *Driver) runTarget(ctx context.Context, target string, cfg config.Map) (bool, error) {
	info, err := os.Stat(target)
	if err != nil {
		return false, fmt.Errorf("%s: %w", target, err)
	}

	if info.IsDir() {
		return d.runSuiteDir(ctx, target, cfg)
	}
	return d.runTestProgram(ctx, target, config.Merge(cfg, d.opts.Overrides))
}

// runSuiteDir reads dir/Atffile and recurses over its tp entries, merging
// the nested Atffile's own configuration sources under parentCfg.
func (d *Driver) runSuiteDir(ctx context.Context, dir string, parentCfg config.Map) (bool, error) {
	af, err := manifest.ParseAtffileFile(filepath.Join(dir, "Atffile"))
	if err != nil {
		return false, fmt.Errorf("%s/Atffile: %w", dir, err)
	}

	merged, err := d.suiteConfig(af, parentCfg)
	if err != nil {
		return false, err
	}

	ok := true
	for _, tp := range af.TestProgs {
		if d.shuttingDown() {
			break
		}
		success, err := d.runTarget(ctx, filepath.Join(dir, tp), merged)
		if err != nil {
			return false, err
		}
		if !success {
			ok = false
		}
	}
	return ok, nil
}

// runTestProgram obtains a program's test-case metadata, then runs each
// case in parsed order.
func (d *Driver) runTestProgram(ctx context.Context, program string, cfg config.Map) (bool, error) {
	md, err := getMetadata(ctx, program, cfg)
	if err != nil {
		_ = d.writer.TpStart(program, 0)
		_ = d.writer.TpEnd(program, fmt.Sprintf("Invalid format for test case list: %v", err))
		return false, nil
	}

	if err := d.writer.TpStart(program, len(md.Cases)); err != nil {
		return false, err
	}

	if len(md.Cases) == 0 {
		return false, d.writer.TpEnd(program, "Bogus test program: reported 0 test cases")
	}

	resDir, err := workdir.MakeTemp(d.opts.WorkdirRoot, "atf-run.*")
	if err != nil {
		return false, err
	}
	defer resDir.Release()

	ok := true
	for _, tc := range md.Cases {
		if d.shuttingDown() {
			break
		}
		success, err := d.runCase(ctx, program, tc, cfg, resDir.Path)
		if err != nil {
			return false, err
		}
		if !success {
			ok = false
		}
	}

	return ok, d.writer.TpEnd(program, "")
}

// runCase evaluates requirements, runs body (and cleanup, if declared),
// arbitrates the outcome, and emits the tc-start/tc-so/tc-se/tc-end
// sequence for one test case.
func (d *Driver) runCase(ctx context.Context, program string, tc manifest.TestCase, cfg config.Map, resDir string) (bool, error) {
	if err := d.writer.TcStart(tc.Name); err != nil {
		return false, err
	}

	skipReason, err := d.opts.Checker.Evaluate(tc.Props, cfg)
	if err != nil {
		return false, d.writer.TcEnd(tc.Name, "failed", err.Error())
	}
	if skipReason != "" {
		return true, d.writer.TcEnd(tc.Name, "skipped", skipReason)
	}

	caseWorkdir := d.sharedRO.Path
	var ownWorkdir *workdir.Dir
	if tc.UseFS() {
		ownWorkdir, err = workdir.MakeTemp(d.opts.WorkdirRoot, "atf-run.*")
		if err != nil {
			return false, d.writer.TcEnd(tc.Name, "failed", err.Error())
		}
		defer ownWorkdir.Release()
		caseWorkdir = ownWorkdir.Path
	}

	resultPath := filepath.Join(resDir, "tcr")
	defer os.Remove(resultPath) //nolint:errcheck // best-effort: unlinked on every exit path

	timeout := caseTimeout(tc)

	bodyRes := executor.Run(ctx, executor.Request{
		Program:    program,
		CaseName:   tc.Name,
		Phase:      executor.PhaseBody,
		ResultPath: resultPath,
		Workdir:    caseWorkdir,
		OutputDir:  resDir,
		Config:     cfg,
		Timeout:    timeout,
	})
	d.streamOutput(bodyRes)

	if tc.HasCleanup() {
		cleanupRes := executor.Run(ctx, executor.Request{
			Program:    program,
			CaseName:   tc.Name,
			Phase:      executor.PhaseCleanup,
			ResultPath: resultPath,
			Workdir:    caseWorkdir,
			OutputDir:  resDir,
			Config:     cfg,
			Timeout:    timeout,
		})
		d.streamOutput(cleanupRes)
	}

	result := outcome.Arbitrate(bodyRes.BrokenReason, bodyRes.Status, resultPath)
	if err := d.writer.TcEnd(tc.Name, string(result.State), result.Reason); err != nil {
		return false, err
	}
	return result.State != outcome.Failed, nil
}

func (d *Driver) streamOutput(res executor.Result) {
	for _, line := range res.Stdout {
		_ = d.writer.TcStdout(line)
	}
	for _, line := range res.Stderr {
		_ = d.writer.TcStderr(line)
	}
}

// caseTimeout reads the case's "timeout" property (non-negative integer
// seconds; 0 disables), falling back to defaultTimeout when unset or
// unparsable.
func caseTimeout(tc manifest.TestCase) time.Duration {
	v, ok := tc.Props["timeout"]
	if !ok {
		return defaultTimeout
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return defaultTimeout
	}
	if secs == 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// getMetadata invokes program in list mode and parses its test-case
// listing from stdout.
func getMetadata(ctx context.Context, program string, cfg config.Map) (*manifest.Metadata, error) {
	args := []string{"-l"}
	for k, v := range cfg {
		args = append(args, "-v", fmt.Sprintf("%s=%s", k, v))
	}
	cmd := exec.CommandContext(ctx, program, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running %s -l: %w", program, err)
	}
	return manifest.ParseTestCaseList(strings.NewReader(string(out)))
}

// countTestPrograms recursively counts leaf test programs across targets
// and any nested Atffiles, for the tps-count event emitted before any
// program runs.
func countTestPrograms(targets []string, cfg config.Map) (int, error) {
	n := 0
	for _, t := range targets {
		info, err := os.Stat(t)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", t, err)
		}
		if !info.IsDir() {
			n++
			continue
		}
		af, err := manifest.ParseAtffileFile(filepath.Join(t, "Atffile"))
		if err != nil {
			return 0, fmt.Errorf("%s/Atffile: %w", t, err)
		}
		nested := make([]string, len(af.TestProgs))
		for i, tp := range af.TestProgs {
			nested[i] = filepath.Join(t, tp)
		}
		sub, err := countTestPrograms(nested, cfg)
		if err != nil {
			return 0, err
		}
		n += sub
	}
	return n, nil
}
