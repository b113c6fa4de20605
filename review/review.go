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

// Package review posts one pull request review comment per finding,
// anchored to the leaking line, telling the author how to rotate the
// secret or suppress a false positive.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/leakgate/leakgate/githubapi"
	"github.com/leakgate/leakgate/log"
	"github.com/leakgate/leakgate/report"
)

const commentSide = "RIGHT"

// Outcome classifies what happened to one finding's comment.
type Outcome string

const (
	OutcomePosted    Outcome = "posted"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

// PostResult pairs a finding with its comment outcome. Err is set only
// for failed outcomes.
type PostResult struct {
	Finding report.Finding
	Outcome Outcome
	Err     error
}

// CommentClient is the slice of the platform API that commenting needs.
type CommentClient interface {
	ListReviewComments(ctx context.Context, owner, repo string, number int) ([]githubapi.ReviewComment, error)
	CreateReviewComment(ctx context.Context, owner, repo string, number int, comment githubapi.ReviewComment) error
}

// Poster posts review comments for findings on one pull request.
type Poster struct {
	client      CommentClient
	owner       string
	repo        string
	pullNumber  int
	notifyUsers []string
}

type Option func(*Poster)

// WithNotifyUsers appends a cc mention list to every comment body.
func WithNotifyUsers(users []string) Option {
	return func(p *Poster) {
		p.notifyUsers = users
	}
}

func New(client CommentClient, owner, repo string, pullNumber int, opts ...Option) *Poster {
	p := &Poster{
		client:     client,
		owner:      owner,
		repo:       repo,
		pullNumber: pullNumber,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(p)
	}

	return p
}

// BuildComment renders the proposed review comment for a finding. The
// body carries the finding's fingerprint verbatim so the suppression
// instructions can be pasted as is.
func (p *Poster) BuildComment(f report.Finding) githubapi.ReviewComment {
	fingerprint := report.Fingerprint(f)
	body := fmt.Sprintf("🛑 **Gitleaks** has detected a secret with rule-id `%v` in commit %v.\n"+
		"If this secret is a _true_ positive, please rotate the secret ASAP.\n\n"+
		"If this secret is a _false_ positive, you can add the fingerprint below to your `.gitleaksignore` file and commit the change to this branch.\n\n"+
		"```\necho %v >> .gitleaksignore\n```\n",
		f.RuleID, f.CommitSha, fingerprint)

	if len(p.notifyUsers) > 0 {
		body += fmt.Sprintf("\n\ncc %v", strings.Join(p.notifyUsers, " "))
	}

	return githubapi.ReviewComment{
		Body:     body,
		CommitId: f.CommitSha,
		Path:     f.FilePath,
		Side:     commentSide,
		Line:     f.StartLine,
	}
}

// PostAll posts one comment per finding, skipping findings whose
// comment already exists. One finding's failure never stops the pass;
// every outcome is recorded and returned so the caller can report
// failures once the pass completes.
func (p *Poster) PostAll(ctx context.Context, findings []report.Finding) []PostResult {
	existing, err := p.client.ListReviewComments(ctx, p.owner, p.repo, p.pullNumber)
	if err != nil {
		log.Warnf("(review) could not list existing review comments, duplicates may be posted: %v", err)
	}

	results := make([]PostResult, 0, len(findings))
	for _, f := range findings {
		proposed := p.BuildComment(f)
		if isDuplicate(proposed, existing) {
			log.Infof("(review) comment for fingerprint %v already exists, skipping", report.Fingerprint(f))
			results = append(results, PostResult{Finding: f, Outcome: OutcomeDuplicate})
			continue
		}

		if err := p.client.CreateReviewComment(ctx, p.owner, p.repo, p.pullNumber, proposed); err != nil {
			results = append(results, PostResult{Finding: f, Outcome: OutcomeFailed, Err: err})
			continue
		}

		log.Debugf("(review) posted comment for fingerprint %v", report.Fingerprint(f))
		results = append(results, PostResult{Finding: f, Outcome: OutcomePosted})
	}

	return results
}

// isDuplicate reports whether a comment with the same body, path, and
// line already exists. Equivalence is exact body text; an edited
// comment no longer suppresses reposting.
func isDuplicate(proposed githubapi.ReviewComment, existing []githubapi.ReviewComment) bool {
	for _, comment := range existing {
		line := comment.OriginalLine
		if line == 0 {
			line = comment.Line
		}

		if comment.Body == proposed.Body && comment.Path == proposed.Path && line == proposed.Line {
			return true
		}
	}

	return false
}

// Failures aggregates the failed outcomes of a pass into one error, nil
// when every comment posted or was a duplicate.
func Failures(results []PostResult) error {
	var errs *multierror.Error
	for _, r := range results {
		if r.Outcome != OutcomeFailed {
			continue
		}

		errs = multierror.Append(errs, fmt.Errorf("fingerprint %v: %w", report.Fingerprint(r.Finding), r.Err))
	}

	return errs.ErrorOrNil()
}
