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

package event

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/leakgate/leakgate/log"
)

// VerifyLocal checks that the resolved range refs exist in the clone the
// engine will scan. The engine reports the authoritative error for a bad
// range, so unresolvable refs only warn here.
func VerifyLocal(dir string, rng ScanRange) {
	if rng.Empty() {
		return
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		log.Debugf("(event) could not open repository at %v: %v", dir, err)
		return
	}

	refs := []string{rng.HeadRef}
	if !rng.SingleCommit() {
		refs = append(refs, rng.BaseRef)
	}

	for _, ref := range refs {
		if _, err := repo.ResolveRevision(plumbing.Revision(ref)); err != nil {
			log.Warnf("(event) ref %v is not resolvable in the local clone: %v", ref, err)
		}
	}
}
