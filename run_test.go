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

package leakgate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/leakgate/leakgate/config"
	"github.com/leakgate/leakgate/engine"
	"github.com/leakgate/leakgate/event"
	"github.com/leakgate/leakgate/githubapi"
	"github.com/leakgate/leakgate/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGitHub struct {
	latestTag string
	commits   []githubapi.PullRequestCommit
	existing  []githubapi.ReviewComment

	created []githubapi.ReviewComment
}

func (f *fakeGitHub) LatestReleaseTag(ctx context.Context, owner, repo string) (string, error) {
	if f.latestTag == "" {
		return "", fmt.Errorf("no release configured")
	}

	return f.latestTag, nil
}

func (f *fakeGitHub) ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]githubapi.PullRequestCommit, error) {
	return f.commits, nil
}

func (f *fakeGitHub) ListReviewComments(ctx context.Context, owner, repo string, number int) ([]githubapi.ReviewComment, error) {
	return f.existing, nil
}

func (f *fakeGitHub) CreateReviewComment(ctx context.Context, owner, repo string, number int, comment githubapi.ReviewComment) error {
	f.created = append(f.created, comment)
	return nil
}

type fakeScanner struct {
	outcome engine.Outcome
	err     error

	calls int
	got   engine.Invocation
}

func (f *fakeScanner) scan(ctx context.Context, inv engine.Invocation) (engine.Outcome, error) {
	f.calls++
	f.got = inv
	return f.outcome, f.err
}

func fakeInstaller(ctx context.Context, version, cacheDir string) (string, error) {
	return filepath.Join(os.TempDir(), "gitleaks-"+version), nil
}

func writeEventFile(t *testing.T, payload string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))
	return path
}

func baseConfig(t *testing.T) config.Config {
	t.Helper()

	return config.Config{
		EngineVersion: "8.30.0",
		Trigger:       event.TriggerPush,
		Repository:    "acme/demo",
		Owner:         "acme",
		Repo:          "demo",
		ServerURL:     "https://github.com",
		Workspace:     t.TempDir(),
		CacheDir:      t.TempDir(),
	}
}

func TestRunPullRequestWithFinding(t *testing.T) {
	finding := report.Finding{
		RuleID:    "aws-access-key",
		CommitSha: "bbb2222",
		FilePath:  "config.yml",
		StartLine: 12,
	}

	github := &fakeGitHub{}
	scanner := &fakeScanner{outcome: engine.OutcomeFromExitCode(2)}

	cfg := baseConfig(t)
	cfg.Trigger = event.TriggerPullRequest
	cfg.EnableComments = true
	cfg.EnableSummary = true
	cfg.SummaryPath = filepath.Join(t.TempDir(), "summary.md")
	cfg.OutputPath = filepath.Join(t.TempDir(), "output.txt")
	cfg.EventPath = writeEventFile(t, `{
  "pull_request": {
    "number": 42,
    "base": {"ref": "main", "sha": "aaa1111"},
    "head": {"ref": "feature", "sha": "bbb2222"}
  },
  "repository": {"full_name": "acme/demo", "html_url": "https://github.com/acme/demo"}
}`)

	result, err := Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(fakeInstaller),
		RunWithScanner(scanner.scan),
		RunWithReportReader(func(path string) (*report.Report, error) {
			return &report.Report{Runs: []report.Run{{Results: []report.Result{{
				RuleID: finding.RuleID,
				Locations: []report.Location{{PhysicalLocation: report.PhysicalLocation{
					ArtifactLocation: report.ArtifactLocation{URI: finding.FilePath},
					Region:           report.Region{StartLine: finding.StartLine},
				}}},
				PartialFingerprints: report.PartialFingerprints{CommitSha: finding.CommitSha},
			}}}}}, nil
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, 1, scanner.calls)
	assert.Equal(t, event.ScanRange{BaseRef: "aaa1111", HeadRef: "bbb2222"}, scanner.got.Range)

	require.Len(t, github.created, 1, "exactly one comment per finding")
	assert.Contains(t, github.created[0].Body, "bbb2222:config.yml:aws-access-key:12")
	assert.Equal(t, "config.yml", github.created[0].Path)
	assert.Equal(t, 12, github.created[0].Line)

	assert.True(t, result.Outcome.LeaksFound())
	assert.Equal(t, 1, result.Outcome.ExitStatus())

	summaryText, err := os.ReadFile(cfg.SummaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summaryText), "Gitleaks detected secrets")

	outputText, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(outputText), "exit-code=2")
}

func TestRunPullRequestDuplicateComment(t *testing.T) {
	finding := report.Finding{
		RuleID:    "aws-access-key",
		CommitSha: "bbb2222",
		FilePath:  "config.yml",
		StartLine: 12,
	}

	github := &fakeGitHub{}
	scanner := &fakeScanner{outcome: engine.OutcomeFromExitCode(2)}

	cfg := baseConfig(t)
	cfg.Trigger = event.TriggerPullRequest
	cfg.EnableComments = true
	cfg.EventPath = writeEventFile(t, `{
  "pull_request": {
    "number": 42,
    "base": {"sha": "aaa1111"},
    "head": {"sha": "bbb2222"}
  }
}`)

	reader := func(path string) (*report.Report, error) {
		return &report.Report{Runs: []report.Run{{Results: []report.Result{{
			RuleID: finding.RuleID,
			Locations: []report.Location{{PhysicalLocation: report.PhysicalLocation{
				ArtifactLocation: report.ArtifactLocation{URI: finding.FilePath},
				Region:           report.Region{StartLine: finding.StartLine},
			}}},
			PartialFingerprints: report.PartialFingerprints{CommitSha: finding.CommitSha},
		}}}}}, nil
	}

	// first pass posts the comment
	_, err := Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(fakeInstaller),
		RunWithScanner(scanner.scan),
		RunWithReportReader(reader),
	)
	require.NoError(t, err)
	require.Len(t, github.created, 1)

	// the second pass sees the first pass's comment and posts nothing
	github.existing = github.created
	github.created = nil

	_, err = Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(fakeInstaller),
		RunWithScanner(scanner.scan),
		RunWithReportReader(reader),
	)
	require.NoError(t, err)
	assert.Empty(t, github.created, "rerunning over the same finding must post zero comments")
}

func TestRunEmptyPush(t *testing.T) {
	github := &fakeGitHub{}
	scanner := &fakeScanner{outcome: engine.OutcomeFromExitCode(0)}

	cfg := baseConfig(t)
	cfg.EventPath = writeEventFile(t, `{"commits": []}`)

	result, err := Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(fakeInstaller),
		RunWithScanner(scanner.scan),
	)
	require.NoError(t, err)

	assert.Zero(t, scanner.calls, "a push without commits must not invoke the scanner")
	assert.True(t, result.Outcome.Clean())
	assert.Equal(t, 0, result.Outcome.ExitStatus())
}

func TestRunPushRange(t *testing.T) {
	github := &fakeGitHub{}
	scanner := &fakeScanner{outcome: engine.OutcomeFromExitCode(0)}

	cfg := baseConfig(t)
	cfg.EventPath = writeEventFile(t, `{"commits": [
  {"id": "aaa1111"},
  {"id": "mmm5555"},
  {"id": "bbb2222"}
]}`)

	result, err := Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(fakeInstaller),
		RunWithScanner(scanner.scan),
	)
	require.NoError(t, err)

	assert.Equal(t, event.ScanRange{BaseRef: "aaa1111", HeadRef: "bbb2222"}, scanner.got.Range)
	assert.Equal(t, event.TriggerPush, scanner.got.Trigger)
	assert.True(t, result.Outcome.Clean())
	assert.Empty(t, github.created)
}

func TestRunScheduleSynthesizesRepository(t *testing.T) {
	github := &fakeGitHub{}
	scanner := &fakeScanner{outcome: engine.OutcomeFromExitCode(0)}

	cfg := baseConfig(t)
	cfg.Trigger = event.TriggerSchedule
	cfg.EnableSummary = true
	cfg.SummaryPath = filepath.Join(t.TempDir(), "summary.md")

	result, err := Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(fakeInstaller),
		RunWithScanner(scanner.scan),
	)
	require.NoError(t, err)

	assert.True(t, scanner.got.Range.Empty(), "scheduled runs scan the full history")
	assert.True(t, result.Outcome.Clean())

	summaryText, err := os.ReadFile(cfg.SummaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summaryText), "No leaks detected")
}

func TestRunLatestVersionResolution(t *testing.T) {
	github := &fakeGitHub{latestTag: "v8.30.0"}
	scanner := &fakeScanner{outcome: engine.OutcomeFromExitCode(0)}

	installedVersion := ""
	cfg := baseConfig(t)
	cfg.EngineVersion = config.VersionLatest
	cfg.Trigger = event.TriggerWorkflowDispatch

	_, err := Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(func(ctx context.Context, version, cacheDir string) (string, error) {
			installedVersion = version
			return fakeInstaller(ctx, version, cacheDir)
		}),
		RunWithScanner(scanner.scan),
	)
	require.NoError(t, err)
	assert.Equal(t, "8.30.0", installedVersion, "the release tag's v prefix must be stripped")
}

func TestRunScannerExecutionError(t *testing.T) {
	github := &fakeGitHub{}
	scanner := &fakeScanner{outcome: engine.OutcomeFromExitCode(126)}

	cfg := baseConfig(t)
	cfg.Trigger = event.TriggerWorkflowDispatch
	cfg.EnableSummary = true
	cfg.SummaryPath = filepath.Join(t.TempDir(), "summary.md")

	result, err := Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(fakeInstaller),
		RunWithScanner(scanner.scan),
	)
	require.NoError(t, err)

	assert.True(t, result.Outcome.ExecutionError())
	assert.Equal(t, 126, result.Outcome.ExitStatus(), "scanner failures propagate their raw exit code")

	summaryText, err := os.ReadFile(cfg.SummaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summaryText), "Exit code 126")
}

func TestRunScannerFailure(t *testing.T) {
	github := &fakeGitHub{}
	scanner := &fakeScanner{err: fmt.Errorf("binary not found")}

	cfg := baseConfig(t)
	cfg.Trigger = event.TriggerWorkflowDispatch

	_, err := Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(fakeInstaller),
		RunWithScanner(scanner.scan),
	)
	require.Error(t, err)
	assert.ErrorContains(t, err, "binary not found")
}

func TestRunInstallFailure(t *testing.T) {
	github := &fakeGitHub{}
	scanner := &fakeScanner{}

	cfg := baseConfig(t)
	cfg.Trigger = event.TriggerWorkflowDispatch

	_, err := Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(func(ctx context.Context, version, cacheDir string) (string, error) {
			return "", fmt.Errorf("download failed")
		}),
		RunWithScanner(scanner.scan),
	)
	require.Error(t, err)
	assert.Zero(t, scanner.calls)
}

func TestRunCommentsDisabled(t *testing.T) {
	github := &fakeGitHub{}
	scanner := &fakeScanner{outcome: engine.OutcomeFromExitCode(2)}

	cfg := baseConfig(t)
	cfg.Trigger = event.TriggerPullRequest
	cfg.EnableComments = false
	cfg.EventPath = writeEventFile(t, `{
  "pull_request": {
    "number": 42,
    "base": {"sha": "aaa1111"},
    "head": {"sha": "bbb2222"}
  }
}`)

	result, err := Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(fakeInstaller),
		RunWithScanner(scanner.scan),
		RunWithReportReader(func(path string) (*report.Report, error) {
			return &report.Report{}, nil
		}),
	)
	require.NoError(t, err)
	assert.Empty(t, github.created)
	assert.True(t, result.Outcome.LeaksFound())
}

func TestRunUnreadableReportDegrades(t *testing.T) {
	github := &fakeGitHub{}
	scanner := &fakeScanner{outcome: engine.OutcomeFromExitCode(2)}

	cfg := baseConfig(t)
	cfg.Trigger = event.TriggerWorkflowDispatch
	cfg.EnableSummary = true
	cfg.SummaryPath = filepath.Join(t.TempDir(), "summary.md")

	result, err := Run(context.Background(), cfg,
		RunWithGitHubClient(github),
		RunWithInstaller(fakeInstaller),
		RunWithScanner(scanner.scan),
		RunWithReportReader(func(path string) (*report.Report, error) {
			return nil, fmt.Errorf("no such file")
		}),
	)
	require.NoError(t, err, "an unreadable report degrades reporting but never fails the run")

	assert.True(t, result.Outcome.LeaksFound())
	assert.Empty(t, result.Findings)

	summaryText, err := os.ReadFile(cfg.SummaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summaryText), "report could not be read")
}
