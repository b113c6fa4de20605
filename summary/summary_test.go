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

package summary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leakgate/leakgate/engine"
	"github.com/leakgate/leakgate/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRepoURL = "https://github.com/acme/demo"

func TestRenderClean(t *testing.T) {
	rendered := Render(engine.OutcomeFromExitCode(0), nil, testRepoURL)
	assert.Equal(t, "# No leaks detected ✅\n", rendered)
}

func TestRenderFindings(t *testing.T) {
	findings := []report.Finding{
		{
			RuleID:      "aws-access-key",
			CommitSha:   "bbb2222000000000000000000000000000000000",
			FilePath:    "config.yml",
			StartLine:   12,
			Author:      "Dev Eloper",
			AuthorEmail: "dev@example.com",
			CommitDate:  "2025-06-01T10:00:00Z",
		},
	}

	rendered := Render(engine.OutcomeFromExitCode(2), findings, testRepoURL)
	assert.Contains(t, rendered, "# 🛑 Gitleaks detected secrets 🛑")
	assert.Contains(t, rendered, "| Rule | Commit | Secret | Author | Date | Email |")
	assert.Contains(t, rendered, "aws-access-key")

	// the commit column links the short sha to the full commit
	assert.Contains(t, rendered, "[bbb2222](https://github.com/acme/demo/commit/bbb2222000000000000000000000000000000000)")

	// the secret column deep links to the exact line at that commit
	assert.Contains(t, rendered, "(https://github.com/acme/demo/blob/bbb2222000000000000000000000000000000000/config.yml#L12)")

	assert.Contains(t, rendered, "Dev Eloper")
	assert.Contains(t, rendered, "dev@example.com")
}

func TestRenderDegraded(t *testing.T) {
	rendered := Render(engine.OutcomeFromExitCode(2), nil, testRepoURL)
	assert.Contains(t, rendered, "report could not be read")
	assert.NotContains(t, rendered, "| Rule |")
}

func TestRenderError(t *testing.T) {
	rendered := Render(engine.OutcomeFromExitCode(126), nil, testRepoURL)
	assert.Equal(t, "# ❌ Gitleaks exited with error. Exit code 126\n", rendered)
}

func TestWriteAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	require.NoError(t, os.WriteFile(path, []byte("# earlier step\n"), 0644))

	require.NoError(t, Write(path, "# No leaks detected ✅\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# earlier step\n# No leaks detected ✅\n", string(data))
}

func TestWriteNoPath(t *testing.T) {
	require.Error(t, Write("", "content"))
}
