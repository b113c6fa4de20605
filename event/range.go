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
	"context"
	"fmt"

	"github.com/leakgate/leakgate/githubapi"
	"github.com/leakgate/leakgate/log"
)

// ScanRange bounds the commits handed to the engine. The zero value
// means no bounds: the engine walks the full history.
type ScanRange struct {
	BaseRef string
	HeadRef string
}

// Empty reports whether the range carries no commit boundaries.
func (r ScanRange) Empty() bool {
	return r.BaseRef == "" && r.HeadRef == ""
}

// SingleCommit reports whether the range has collapsed to one commit.
func (r ScanRange) SingleCommit() bool {
	return !r.Empty() && r.BaseRef == r.HeadRef
}

// ErrNoCommits signals that the trigger delivered nothing to scan. The
// run completes as a clean no-op without invoking the engine.
type ErrNoCommits struct{}

func (e ErrNoCommits) Error() string {
	return "event payload contains no commits to scan"
}

// CommitLister fetches the ordered commit list of a pull request.
type CommitLister interface {
	ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]githubapi.PullRequestCommit, error)
}

// ResolvePushRange derives the scan range of a push from its payload
// commit list: first commit to last commit. A configured base override
// replaces the base and is logged.
func ResolvePushRange(ev *Event, baseOverride string) (ScanRange, error) {
	if len(ev.Commits) == 0 {
		return ScanRange{}, ErrNoCommits{}
	}

	rng := ScanRange{
		BaseRef: ev.Commits[0].Id,
		HeadRef: ev.Commits[len(ev.Commits)-1].Id,
	}

	if baseOverride != "" {
		log.Infof("(event) scan base overridden to %v", baseOverride)
		rng.BaseRef = baseOverride
	}

	return rng, nil
}

// ResolvePullRequestRange derives the scan range of a pull request. The
// payload's own base and head SHAs are preferred since the platform
// already computed the merge base. A configured base override replaces
// the base and forces a commit list fetch so the head tracks the last
// commit; when the payload lacks the SHAs the commit list supplies both
// ends.
func ResolvePullRequestRange(ctx context.Context, ev *Event, owner, repo, baseOverride string, lister CommitLister) (ScanRange, error) {
	if ev.PullRequest == nil {
		return ScanRange{}, fmt.Errorf("event payload carries no pull request")
	}

	pr := ev.PullRequest
	rng := ScanRange{
		BaseRef: pr.Base.Sha,
		HeadRef: pr.Head.Sha,
	}

	if baseOverride == "" && rng.BaseRef != "" && rng.HeadRef != "" {
		return rng, nil
	}

	commits, err := lister.ListPullRequestCommits(ctx, owner, repo, pr.Number)
	if err != nil {
		return ScanRange{}, fmt.Errorf("error listing pull request commits: %w", err)
	}

	if len(commits) == 0 {
		return ScanRange{}, ErrNoCommits{}
	}

	if baseOverride != "" {
		log.Infof("(event) scan base overridden to %v", baseOverride)
		rng.BaseRef = baseOverride
		rng.HeadRef = commits[len(commits)-1].Sha
		return rng, nil
	}

	rng.BaseRef = commits[0].Sha
	rng.HeadRef = commits[len(commits)-1].Sha
	return rng, nil
}
