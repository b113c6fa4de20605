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

import "fmt"

// Outcome is the scanner verdict derived from its exit code. Every
// exit code maps to exactly one of clean, leaks found, or execution
// error, with the raw code preserved for the last.
type Outcome struct {
	code int
}

// OutcomeFromExitCode classifies a scanner exit code.
func OutcomeFromExitCode(code int) Outcome {
	return Outcome{code: code}
}

func (o Outcome) Clean() bool {
	return o.code == 0
}

func (o Outcome) LeaksFound() bool {
	return o.code == ExitCodeLeaks
}

func (o Outcome) ExecutionError() bool {
	return !o.Clean() && !o.LeaksFound()
}

// ExitCode returns the raw scanner exit code.
func (o Outcome) ExitCode() int {
	return o.code
}

// ExitStatus maps the outcome onto the process exit status gating the
// CI job. Findings exit 1 regardless of the scanner's own convention;
// scanner failures propagate their raw code.
func (o Outcome) ExitStatus() int {
	switch {
	case o.Clean():
		return 0
	case o.LeaksFound():
		return 1
	default:
		return o.code
	}
}

func (o Outcome) String() string {
	switch {
	case o.Clean():
		return "clean"
	case o.LeaksFound():
		return "leaks found"
	default:
		return fmt.Sprintf("execution error (exit code %v)", o.code)
	}
}
