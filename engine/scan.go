// Copyright 2025 The Leakgate Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/leakgate/leakgate/event"
	"github.com/leakgate/leakgate/log"
)

// Invocation describes one scanner run.
type Invocation struct {
	// Range bounds the commit history to scan. An empty range scans the
	// full history of the checkout.
	Range event.ScanRange

	// Trigger is the CI event that started the run. Only push and pull
	// request triggers bound the history.
	Trigger event.TriggerType

	// ConfigPath points at a custom scanner configuration file, empty
	// for the built-in rules.
	ConfigPath string

	// WorkDir is the checkout to scan and the directory the report is
	// written into.
	WorkDir string
}

// BuildArgs assembles the scanner command line. The core flag set is
// fixed: secrets are always redacted, the report format and path never
// vary, and the findings exit code is pinned so the outcome mapping
// stays total.
func BuildArgs(inv Invocation) []string {
	args := []string{
		"detect",
		"--redact",
		"-v",
		fmt.Sprintf("--exit-code=%v", ExitCodeLeaks),
		"--report-format=sarif",
		"--report-path=" + ReportFilename,
		"--log-level=debug",
	}

	if inv.Trigger == event.TriggerPush || inv.Trigger == event.TriggerPullRequest {
		if opts := logOpts(inv.Range); opts != "" {
			args = append(args, opts)
		}
	}

	return args
}

// logOpts renders the git log expression bounding the scan. A range
// with equal ends degrades to the most recent commit, since the usual
// parent expression would select nothing.
func logOpts(rng event.ScanRange) string {
	if rng.Empty() {
		return ""
	}

	if rng.SingleCommit() {
		return fmt.Sprintf("--log-opts=-1 %v", rng.HeadRef)
	}

	return fmt.Sprintf("--log-opts=--no-merges --first-parent %v^..%v", rng.BaseRef, rng.HeadRef)
}

// Scan invokes the scanner and returns its outcome. A nonzero exit code
// is data, not an error; only failing to run the process at all is
// reported as an error.
func Scan(ctx context.Context, inv Invocation) (Outcome, error) {
	args := BuildArgs(inv)
	log.Infof("(engine) %v command: %v %v", Name, Name, strings.Join(args, " "))

	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, Name, args...)
	cmd.Dir = inv.WorkDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if inv.ConfigPath != "" {
		cmd.Env = append(os.Environ(), "GITLEAKS_CONFIG="+inv.ConfigPath)
	}

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return Outcome{}, fmt.Errorf("%v timed out after %v", Name, scanTimeout)
	}

	if err == nil {
		return OutcomeFromExitCode(0), nil
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return Outcome{}, fmt.Errorf("error running %v: %w", Name, err)
	}

	outcome := OutcomeFromExitCode(exitErr.ExitCode())
	log.Debugf("(engine) %v exited with code %v (%v)", Name, outcome.ExitCode(), outcome)
	return outcome, nil
}
