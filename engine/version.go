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
	"strings"

	"github.com/leakgate/leakgate/log"
	"golang.org/x/mod/semver"
)

// ReleaseClient resolves the scanner's newest published release tag.
type ReleaseClient interface {
	LatestReleaseTag(ctx context.Context, owner, repo string) (string, error)
}

// LatestVersion asks the upstream release feed for the newest scanner
// version. Release tags carry a leading v that the installer's asset
// naming does not, so it is stripped here.
func LatestVersion(ctx context.Context, client ReleaseClient) (string, error) {
	tag, err := client.LatestReleaseTag(ctx, ReleaseOwner, ReleaseRepo)
	if err != nil {
		return "", fmt.Errorf("error resolving latest %v version: %w", Name, err)
	}

	version := strings.TrimPrefix(tag, "v")
	log.Debugf("(engine) latest release tag %v resolves to version %v", tag, version)
	return version, nil
}

// CheckMinimumVersion warns when the selected release predates the
// oldest version the flag set was validated against.
func CheckMinimumVersion(version string) {
	if semver.Compare("v"+version, "v"+MinSupportedVersion) < 0 {
		log.Warnf("(engine) %v %v is older than the minimum supported version %v, scans may fail", Name, version, MinSupportedVersion)
	}
}
