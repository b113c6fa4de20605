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

// Package config loads the run configuration from the CI environment.
// Load is the only place in the module that reads process environment;
// every component receives the resulting Config explicitly.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"golang.org/x/mod/semver"

	"github.com/leakgate/leakgate/event"
	"github.com/leakgate/leakgate/log"
)

const (
	// DefaultEngineVersion pins the engine release used when no version
	// is configured.
	DefaultEngineVersion = "8.30.0"

	// VersionLatest asks the version resolver for the newest release.
	VersionLatest = "latest"

	defaultAPIBaseURL = "https://api.github.com"
	defaultServerURL  = "https://github.com"
	defaultLogLevel   = "info"
)

// ErrInvalidConfig reports a configured value the run cannot proceed with.
type ErrInvalidConfig struct {
	Setting string
	Reason  string
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid value for %v: %v", e.Setting, e.Reason)
}

// Config carries every setting a run needs. It is constructed once at
// startup and never mutated afterwards.
type Config struct {
	EngineVersion        string
	EngineConfigPath     string
	EnableComments       bool
	EnableSummary        bool
	EnableUploadArtifact bool
	NotifyUsers          []string
	BaseRefOverride      string

	Trigger    event.TriggerType
	Repository string
	Owner      string
	Repo       string

	Token       string
	APIBaseURL  string
	ServerURL   string
	EventPath   string
	Workspace   string
	SummaryPath string
	OutputPath  string
	CacheDir    string

	ArtifactURL   string
	ArtifactToken string

	LogLevel string
}

// Load reads and validates the configuration surface from the
// environment. Validation failures abort the run before any side
// effects.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("engine-version", DefaultEngineVersion)
	v.SetDefault("enable-comments", true)
	v.SetDefault("enable-summary", true)
	v.SetDefault("enable-upload-artifact", true)
	v.SetDefault("api-url", defaultAPIBaseURL)
	v.SetDefault("server-url", defaultServerURL)
	v.SetDefault("log-level", defaultLogLevel)

	v.MustBindEnv("engine-version", "GITLEAKS_VERSION")
	v.MustBindEnv("engine-config", "GITLEAKS_CONFIG")
	v.MustBindEnv("enable-comments", "GITLEAKS_ENABLE_COMMENTS")
	v.MustBindEnv("enable-summary", "GITLEAKS_ENABLE_SUMMARY")
	v.MustBindEnv("enable-upload-artifact", "GITLEAKS_ENABLE_UPLOAD_ARTIFACT")
	v.MustBindEnv("notify-user-list", "GITLEAKS_NOTIFY_USER_LIST")
	v.MustBindEnv("base-ref", "GITLEAKS_BASE_REF")
	v.MustBindEnv("token", "GITHUB_TOKEN", "GH_TOKEN")
	v.MustBindEnv("trigger", "GITHUB_EVENT_NAME")
	v.MustBindEnv("repository", "GITHUB_REPOSITORY")
	v.MustBindEnv("event-path", "GITHUB_EVENT_PATH")
	v.MustBindEnv("workspace", "GITHUB_WORKSPACE")
	v.MustBindEnv("api-url", "GITHUB_API_URL")
	v.MustBindEnv("server-url", "GITHUB_SERVER_URL")
	v.MustBindEnv("summary-path", "GITHUB_STEP_SUMMARY")
	v.MustBindEnv("output-path", "GITHUB_OUTPUT")
	v.MustBindEnv("cache-dir", "LEAKGATE_CACHE_DIR", "RUNNER_TOOL_CACHE")
	v.MustBindEnv("artifact-url", "LEAKGATE_ARTIFACT_URL")
	v.MustBindEnv("artifact-token", "LEAKGATE_ARTIFACT_TOKEN")
	v.MustBindEnv("log-level", "LEAKGATE_LOG_LEVEL")
	v.MustBindEnv("runner-debug", "RUNNER_DEBUG")

	cfg := Config{
		EngineVersion:        v.GetString("engine-version"),
		EngineConfigPath:     v.GetString("engine-config"),
		EnableComments:       v.GetBool("enable-comments"),
		EnableSummary:        v.GetBool("enable-summary"),
		EnableUploadArtifact: v.GetBool("enable-upload-artifact"),
		NotifyUsers:          splitNotifyList(v.GetString("notify-user-list")),
		BaseRefOverride:      v.GetString("base-ref"),
		Repository:           v.GetString("repository"),
		Token:                v.GetString("token"),
		APIBaseURL:           v.GetString("api-url"),
		ServerURL:            v.GetString("server-url"),
		EventPath:            v.GetString("event-path"),
		Workspace:            v.GetString("workspace"),
		SummaryPath:          v.GetString("summary-path"),
		OutputPath:           v.GetString("output-path"),
		CacheDir:             v.GetString("cache-dir"),
		ArtifactURL:          v.GetString("artifact-url"),
		ArtifactToken:        v.GetString("artifact-token"),
		LogLevel:             v.GetString("log-level"),
	}

	// the runner's own debug toggle wins over the configured level
	if v.GetBool("runner-debug") {
		cfg.LogLevel = "debug"
	}

	trigger, err := event.ParseTrigger(v.GetString("trigger"))
	if err != nil {
		return Config{}, err
	}
	cfg.Trigger = trigger

	owner, name, found := strings.Cut(cfg.Repository, "/")
	if !found || owner == "" || name == "" {
		return Config{}, ErrInvalidConfig{Setting: "repository", Reason: fmt.Sprintf("%q is not an owner/name slug", cfg.Repository)}
	}
	cfg.Owner = owner
	cfg.Repo = name

	if cfg.EngineVersion != VersionLatest && !semver.IsValid("v"+cfg.EngineVersion) {
		return Config{}, ErrInvalidConfig{Setting: "engine version", Reason: fmt.Sprintf("%q is not a semantic version", cfg.EngineVersion)}
	}

	if cfg.Token == "" {
		log.Warn("(config) no api token configured, release lookups and review comments may fail")
	}

	if cfg.CacheDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return Config{}, fmt.Errorf("error locating home directory: %w", err)
		}
		cfg.CacheDir = filepath.Join(home, ".cache", "leakgate")
	}

	return cfg, nil
}

func splitNotifyList(raw string) []string {
	users := []string{}
	for _, user := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(user); trimmed != "" {
			users = append(users, trimmed)
		}
	}

	return users
}
