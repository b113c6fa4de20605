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

// Package summary renders the markdown job summary for a completed run.
package summary

import (
	"fmt"
	"os"
	"strings"

	"github.com/leakgate/leakgate/engine"
	"github.com/leakgate/leakgate/report"
)

// Render produces the summary markdown for an outcome. repoURL is the
// web address of the scanned repository, used to deep link findings to
// the exact commit and line.
func Render(outcome engine.Outcome, findings []report.Finding, repoURL string) string {
	sb := strings.Builder{}

	switch {
	case outcome.Clean():
		sb.WriteString("# No leaks detected ✅\n")

	case outcome.LeaksFound() && len(findings) == 0:
		// the scanner flagged leaks but the report was missing or
		// unreadable, so there is nothing to tabulate
		sb.WriteString("# 🛑 Gitleaks detected secrets, but the report could not be read ❗\n")

	case outcome.LeaksFound():
		sb.WriteString("# 🛑 Gitleaks detected secrets 🛑\n\n")
		sb.WriteString("| Rule | Commit | Secret | Author | Date | Email |\n")
		sb.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		for _, f := range findings {
			commitLink := fmt.Sprintf("[%v](%v/commit/%v)", shortSha(f.CommitSha), repoURL, f.CommitSha)
			secretLink := fmt.Sprintf("[%v#L%v](%v/blob/%v/%v#L%v)", f.FilePath, f.StartLine, repoURL, f.CommitSha, f.FilePath, f.StartLine)
			fmt.Fprintf(&sb, "| %v | %v | %v | %v | %v | %v |\n", f.RuleID, commitLink, secretLink, f.Author, f.CommitDate, f.AuthorEmail)
		}

	default:
		fmt.Fprintf(&sb, "# ❌ Gitleaks exited with error. Exit code %v\n", outcome.ExitCode())
	}

	return sb.String()
}

// Write appends rendered markdown to the CI summary file. The file is
// appended, not truncated, since other steps of the same job may have
// written their own sections.
func Write(path, rendered string) error {
	if path == "" {
		return fmt.Errorf("no summary file configured")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening summary file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(rendered); err != nil {
		return fmt.Errorf("error writing summary: %w", err)
	}

	return nil
}

func shortSha(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}

	return sha
}
