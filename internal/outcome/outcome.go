// Package outcome reconciles a case executor's child-reported result file
// against its observed termination status into a final outcome. The
// arbiter is total: every (broken reason, status, result-file state)
// triple maps to exactly one result.
package outcome

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ormasoftchile/atf-run/internal/executor"
)

// State is one of the five case-result states.
type State string

const (
	Passed           State = "passed"
	Failed           State = "failed"
	Skipped          State = "skipped"
	ExpectedFailure  State = "expected_failure"
	Broken           State = "broken"
)

// Result is the arbitrated (state, reason) pair. Reason is required for
// every non-Passed state and forbidden for Passed.
type Result struct {
	State  State
	Reason string
}

// Arbitrate applies a fixed set of ordered rules: a non-empty
// brokenReason wins unconditionally; otherwise a signal wins; otherwise
// the result file is parsed and cross-checked against the exit code for
// the contradictory cases below.
func Arbitrate(brokenReason string, status executor.ProcessStatus, resultPath string) Result {
	if brokenReason != "" {
		return Result{State: Failed, Reason: brokenReason}
	}

	if !status.Exited {
		reason := fmt.Sprintf("Test program received signal %d", status.Signal)
		if status.CoreDump {
			reason += " (core dumped)"
		}
		return Result{State: Failed, Reason: reason}
	}

	parsed, err := parseResultFile(resultPath)
	if err != nil {
		return Result{
			State:  Failed,
			Reason: fmt.Sprintf("Test case exited normally but failed to create the results file: %v", err),
		}
	}

	if parsed.State == Failed && status.Code == 0 {
		return Result{State: Failed, Reason: "Test case exited successfully but reported failure"}
	}
	if parsed.State != Failed && status.Code != 0 {
		return Result{State: Failed, Reason: "Test case exited with error but reported success"}
	}
	return parsed
}

// parseResultFile reads and parses the one-line result-file grammar:
// "passed" | "failed: <reason>" | "skipped: <reason>" |
// "expected_failure: <reason>" | "broken: <reason>", trailing newline
// optional.
func parseResultFile(path string) (Result, error) {
	f, err := os.Open(path) //nolint:gosec // path is driver-controlled, not user input
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("result file is empty")
	}
	line := scanner.Text()

	if line == string(Passed) {
		return Result{State: Passed}, nil
	}

	idx := strings.Index(line, ":")
	if idx < 0 {
		return Result{}, fmt.Errorf("malformed result line %q", line)
	}
	state := State(strings.TrimSpace(line[:idx]))
	reason := strings.TrimSpace(line[idx+1:])

	switch state {
	case Failed, Skipped, ExpectedFailure, Broken:
		if reason == "" {
			return Result{}, fmt.Errorf("state %q requires a reason", state)
		}
		return Result{State: state, Reason: reason}, nil
	default:
		return Result{}, fmt.Errorf("unrecognized result state %q", state)
	}
}
