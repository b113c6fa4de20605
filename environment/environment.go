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

// Package environment captures the CI environment a run executes in,
// scoped to the variable prefixes that matter for support diagnostics,
// with sensitive values obfuscated before anything is logged.
package environment

import (
	"sort"
	"strings"

	"github.com/leakgate/leakgate/log"
)

type Capture struct {
	sensitiveKeys map[string]struct{}
	excludeKeys   map[string]struct{}
	prefixes      []string
}

type CaptureOption func(*Capture)

// WithAdditionalKeys marks extra keys or glob patterns as sensitive.
func WithAdditionalKeys(keys []string) CaptureOption {
	return func(c *Capture) {
		for _, key := range keys {
			c.sensitiveKeys[key] = struct{}{}
		}
	}
}

// WithExcludeKeys exempts keys from obfuscation even when a sensitive
// pattern matches them.
func WithExcludeKeys(keys []string) CaptureOption {
	return func(c *Capture) {
		for _, key := range keys {
			c.excludeKeys[key] = struct{}{}
		}
	}
}

// WithPrefixes replaces the default set of variable prefixes captured.
func WithPrefixes(prefixes []string) CaptureOption {
	return func(c *Capture) {
		c.prefixes = prefixes
	}
}

func New(opts ...CaptureOption) *Capture {
	capture := &Capture{
		sensitiveKeys: DefaultSensitiveEnvList(),
		excludeKeys:   map[string]struct{}{},
		prefixes:      []string{"GITHUB_", "GITLEAKS_", "LEAKGATE_", "RUNNER_"},
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(capture)
	}

	return capture
}

// Capture returns the in-scope variables from env with sensitive values
// obfuscated. env entries are expected in "KEY=VALUE" form.
func (c *Capture) Capture(env []string) map[string]string {
	scoped := make([]string, 0, len(env))
	for _, variable := range env {
		key, _ := splitVariable(variable)
		if c.inScope(key) {
			scoped = append(scoped, variable)
		}
	}

	variables := make(map[string]string)
	ObfuscateEnvironmentArray(scoped, c.sensitiveKeys, c.excludeKeys, func(key, val, _ string) {
		variables[key] = val
	})

	return variables
}

// LogRunContext debug logs the captured environment in sorted order.
func (c *Capture) LogRunContext(env []string) {
	captured := c.Capture(env)
	keys := make([]string, 0, len(captured))
	for key := range captured {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	for _, key := range keys {
		log.Debugf("(environment) %v=%v", key, captured[key])
	}
}

func (c *Capture) inScope(key string) bool {
	for _, prefix := range c.prefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

// DefaultSensitiveEnvList returns the keys and glob patterns obfuscated
// by default. Tokens and credentials common on CI runners are covered
// even when a workflow renames them.
func DefaultSensitiveEnvList() map[string]struct{} {
	return map[string]struct{}{
		"GITHUB_TOKEN":     {},
		"GH_TOKEN":         {},
		"GITLEAKS_LICENSE": {},
		"*_TOKEN":          {},
		"*_SECRET*":        {},
		"*_API_KEY":        {},
		"*PASSWORD*":       {},
		"*JWT*":            {},
	}
}

// splitVariable splits a string representing an environment variable in
// the format of "KEY=VAL" and returns the key and val separately.
func splitVariable(v string) (key, val string) {
	parts := strings.SplitN(v, "=", 2)
	key = parts[0]
	if len(parts) > 1 {
		val = parts[1]
	}

	return
}
