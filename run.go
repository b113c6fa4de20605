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

// Package leakgate orchestrates a secret scan of a CI checkout: it
// provisions the scanner, bounds the commit range for the triggering
// event, runs the scan, and reports findings back to the hosting
// platform.
package leakgate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leakgate/leakgate/artifact"
	"github.com/leakgate/leakgate/config"
	"github.com/leakgate/leakgate/engine"
	"github.com/leakgate/leakgate/environment"
	"github.com/leakgate/leakgate/event"
	"github.com/leakgate/leakgate/githubapi"
	"github.com/leakgate/leakgate/internal/besteffort"
	"github.com/leakgate/leakgate/log"
	"github.com/leakgate/leakgate/report"
	"github.com/leakgate/leakgate/review"
	"github.com/leakgate/leakgate/summary"
)

// GitHubClient is the platform API surface a run needs.
type GitHubClient interface {
	LatestReleaseTag(ctx context.Context, owner, repo string) (string, error)
	ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]githubapi.PullRequestCommit, error)
	ListReviewComments(ctx context.Context, owner, repo string, number int) ([]githubapi.ReviewComment, error)
	CreateReviewComment(ctx context.Context, owner, repo string, number int, comment githubapi.ReviewComment) error
}

type runOptions struct {
	github    GitHubClient
	installer func(ctx context.Context, version, cacheDir string) (string, error)
	scanner   func(ctx context.Context, inv engine.Invocation) (engine.Outcome, error)
	reporter  func(path string) (*report.Report, error)
	artifacts *artifact.Client
}

type RunOption func(ro *runOptions)

// RunWithGitHubClient replaces the platform API client, by default one
// built from the run configuration.
func RunWithGitHubClient(client GitHubClient) RunOption {
	return func(ro *runOptions) {
		ro.github = client
	}
}

// RunWithInstaller replaces the scanner installer.
func RunWithInstaller(installer func(ctx context.Context, version, cacheDir string) (string, error)) RunOption {
	return func(ro *runOptions) {
		ro.installer = installer
	}
}

// RunWithScanner replaces the scan invocation.
func RunWithScanner(scanner func(ctx context.Context, inv engine.Invocation) (engine.Outcome, error)) RunOption {
	return func(ro *runOptions) {
		ro.scanner = scanner
	}
}

// RunWithReportReader replaces how the scan report is read.
func RunWithReportReader(reader func(path string) (*report.Report, error)) RunOption {
	return func(ro *runOptions) {
		ro.reporter = reader
	}
}

// RunWithArtifactStore replaces the artifact store client.
func RunWithArtifactStore(client *artifact.Client) RunOption {
	return func(ro *runOptions) {
		ro.artifacts = client
	}
}

// RunResult carries what a completed run determined.
type RunResult struct {
	// Outcome is the scanner verdict. Its ExitStatus decides the
	// process exit code.
	Outcome engine.Outcome

	// Findings holds the parsed findings when the scanner flagged
	// leaks and the report was readable.
	Findings []report.Finding

	// Range is the commit range that was scanned, empty for full
	// history scans.
	Range event.ScanRange
}

// Run executes one scan for the configured trigger. The returned error
// covers failures to provision or execute the scanner; detected leaks
// are not an error and are reported through the result's outcome.
func Run(ctx context.Context, cfg config.Config, opts ...RunOption) (RunResult, error) {
	ro := runOptions{
		installer: engine.Install,
		scanner:   engine.Scan,
		reporter:  report.Open,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(&ro)
	}

	if ro.github == nil {
		ro.github = githubapi.New(githubapi.WithBaseURL(cfg.APIBaseURL), githubapi.WithToken(cfg.Token))
	}

	if ro.artifacts == nil {
		ro.artifacts = artifact.New(cfg.ArtifactURL, artifact.WithToken(cfg.ArtifactToken))
	}

	if err := validateRunOpts(ro); err != nil {
		return RunResult{}, err
	}

	environment.New().LogRunContext(os.Environ())

	ev, err := event.Load(cfg.EventPath)
	if err != nil {
		return RunResult{}, err
	}

	// scheduled runs carry no repository in their payload
	if cfg.Trigger == event.TriggerSchedule && ev.Repository == nil {
		ev.Repository = event.SynthesizeRepository(cfg.Repository, cfg.ServerURL)
	}

	version := cfg.EngineVersion
	if version == config.VersionLatest {
		if version, err = engine.LatestVersion(ctx, ro.github); err != nil {
			return RunResult{}, err
		}
	}

	engine.CheckMinimumVersion(version)

	if err := engine.ValidateConfig(cfg.EngineConfigPath); err != nil {
		return RunResult{}, err
	}

	if _, err := ro.installer(ctx, version, cfg.CacheDir); err != nil {
		return RunResult{}, err
	}

	rng, err := resolveRange(ctx, cfg, ev, ro.github)
	if err != nil {
		noCommits := event.ErrNoCommits{}
		if errors.As(err, &noCommits) {
			log.Infof("no commits to scan, nothing to do")
			return RunResult{Outcome: engine.OutcomeFromExitCode(0)}, nil
		}

		return RunResult{}, err
	}

	event.VerifyLocal(cfg.Workspace, rng)

	outcome, err := ro.scanner(ctx, engine.Invocation{
		Range:      rng,
		Trigger:    cfg.Trigger,
		ConfigPath: cfg.EngineConfigPath,
		WorkDir:    cfg.Workspace,
	})
	if err != nil {
		return RunResult{}, err
	}

	findings := []report.Finding{}
	reportPath := filepath.Join(cfg.Workspace, engine.ReportFilename)
	if outcome.LeaksFound() {
		rep, err := ro.reporter(reportPath)
		if err != nil {
			log.Warnf("scan report could not be read, reporting will be degraded: %v", err)
		} else {
			findings = rep.Findings()
		}

		log.Errorf("%v leaks detected, see job summary for details", len(findings))

		if cfg.EnableComments && cfg.Trigger == event.TriggerPullRequest && ev.PullRequest != nil {
			poster := review.New(ro.github, cfg.Owner, cfg.Repo, ev.PullRequest.Number, review.WithNotifyUsers(cfg.NotifyUsers))
			results := poster.PostAll(ctx, findings)
			if err := review.Failures(results); err != nil {
				log.Warnf("some review comments could not be posted, the diff may be too large to anchor them: %v", err)
			}
		}
	}

	if outcome.Clean() {
		log.Infof("no leaks detected")
	}

	if outcome.ExecutionError() {
		log.Errorf("%v exited with unexpected code %v", engine.Name, outcome.ExitCode())
	}

	if cfg.EnableSummary {
		besteffort.Do("summary write", func() error {
			return summary.Write(cfg.SummaryPath, summary.Render(outcome, findings, repoURL(cfg, ev)))
		})
	}

	besteffort.Do("output write", func() error {
		return writeOutput(cfg.OutputPath, outcome)
	})

	if cfg.EnableUploadArtifact && outcome.LeaksFound() {
		besteffort.Do("artifact upload", func() error {
			return ro.artifacts.Upload(ctx, artifact.DefaultReportName, reportPath)
		})
	}

	return RunResult{Outcome: outcome, Findings: findings, Range: rng}, nil
}

// resolveRange maps the trigger onto the commit range to scan. Manual
// and scheduled triggers scan the full history and return the empty
// range.
func resolveRange(ctx context.Context, cfg config.Config, ev *event.Event, commits event.CommitLister) (event.ScanRange, error) {
	switch cfg.Trigger {
	case event.TriggerPush:
		return event.ResolvePushRange(ev, cfg.BaseRefOverride)
	case event.TriggerPullRequest:
		return event.ResolvePullRequestRange(ctx, ev, cfg.Owner, cfg.Repo, cfg.BaseRefOverride, commits)
	case event.TriggerWorkflowDispatch, event.TriggerSchedule:
		return event.ScanRange{}, nil
	default:
		return event.ScanRange{}, event.ErrUnsupportedTrigger{Event: cfg.Trigger.String()}
	}
}

// repoURL returns the web address of the scanned repository, preferring
// the payload's own address over one derived from configuration.
func repoURL(cfg config.Config, ev *event.Event) string {
	if ev.Repository != nil && ev.Repository.HtmlUrl != "" {
		return ev.Repository.HtmlUrl
	}

	return fmt.Sprintf("%v/%v", strings.TrimSuffix(cfg.ServerURL, "/"), cfg.Repository)
}

// writeOutput appends the scanner exit code to the CI outputs file so
// later workflow steps can branch on it.
func writeOutput(path string, outcome engine.Outcome) error {
	if path == "" {
		return fmt.Errorf("no output file configured")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening output file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "exit-code=%v\n", outcome.ExitCode()); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}

	return nil
}

func validateRunOpts(ro runOptions) error {
	if ro.github == nil {
		return fmt.Errorf("github client is required")
	}

	if ro.installer == nil {
		return fmt.Errorf("installer is required")
	}

	if ro.scanner == nil {
		return fmt.Errorf("scanner is required")
	}

	if ro.reporter == nil {
		return fmt.Errorf("report reader is required")
	}

	return nil
}
