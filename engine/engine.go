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

// Package engine provisions and runs the gitleaks scanner. It resolves
// release versions, installs the binary with tool cache support, and
// invokes scans with a fixed hardened flag set.
package engine

import "time"

const (
	// Name is the scanner binary leakgate provisions and invokes.
	Name = "gitleaks"

	// ReleaseOwner and ReleaseRepo locate the upstream release feed.
	ReleaseOwner = "zricethezav"
	ReleaseRepo  = "gitleaks"

	// ReportFilename is the fixed report path handed to the scanner,
	// relative to the scanned workspace.
	ReportFilename = "results.sarif"

	// ExitCodeLeaks is the exit code the scanner is told to use when it
	// finds secrets, chosen to be distinguishable from its own error
	// exit codes.
	ExitCodeLeaks = 2

	// MinSupportedVersion is the oldest release known to accept the
	// full flag set passed by leakgate.
	MinSupportedVersion = "8.10.0"

	downloadBaseURL = "https://github.com/zricethezav/gitleaks/releases/download"

	downloadTimeout = 5 * time.Minute
	scanTimeout     = 30 * time.Minute
)
