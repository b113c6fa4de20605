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

// Package besteffort wraps side calls that must never abort a run: cache
// saves, artifact uploads, summary and output writes. Failures become a
// soft result that is logged and carried, not an error that propagates.
package besteffort

import (
	"github.com/leakgate/leakgate/log"
)

// Result records the outcome of a single best-effort side call.
type Result struct {
	Op  string
	Err error
}

// Failed reports whether the side call failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Do runs fn and converts a failure into a warning plus a soft Result.
func Do(op string, fn func() error) Result {
	if err := fn(); err != nil {
		log.Warnf("%v failed: %v", op, err)
		return Result{Op: op, Err: err}
	}

	return Result{Op: op}
}
