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

// Package report reads the SARIF report the engine produces. Only the
// narrow subset leakgate consumes is modeled; everything else in the
// report is ignored.
package report

import (
	"encoding/json"
	"fmt"
	"os"
)

type Report struct {
	Runs []Run `json:"runs"`
}

type Run struct {
	Results []Result `json:"results"`
}

type Result struct {
	RuleID              string              `json:"ruleId"`
	Message             Message             `json:"message"`
	Locations           []Location          `json:"locations"`
	PartialFingerprints PartialFingerprints `json:"partialFingerprints"`
}

type Message struct {
	Text string `json:"text"`
}

type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

type ArtifactLocation struct {
	URI string `json:"uri"`
}

type Region struct {
	StartLine int `json:"startLine"`
}

// PartialFingerprints carries the commit provenance the engine attaches
// to each result.
type PartialFingerprints struct {
	CommitSha     string `json:"commitSha"`
	Author        string `json:"author"`
	Email         string `json:"email"`
	Date          string `json:"date"`
	CommitMessage string `json:"commitMessage"`
}

// Finding is one detected secret, flattened from the report subset.
type Finding struct {
	RuleID      string `json:"ruleId"`
	CommitSha   string `json:"commitSha"`
	FilePath    string `json:"filePath"`
	StartLine   int    `json:"startLine"`
	Author      string `json:"author"`
	AuthorEmail string `json:"authorEmail"`
	CommitDate  string `json:"commitDate"`
}

// Fingerprint renders the suppression identity of a finding, the same
// form the engine accepts in .gitleaksignore entries. Distinct
// commit, path, rule, and line tuples yield distinct fingerprints.
func Fingerprint(f Finding) string {
	return fmt.Sprintf("%v:%v:%v:%v", f.CommitSha, f.FilePath, f.RuleID, f.StartLine)
}

// Open reads and parses a report file.
func Open(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading report: %w", err)
	}

	return Parse(data)
}

// Parse decodes report bytes.
func Parse(data []byte) (*Report, error) {
	r := &Report{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("error parsing report: %w", err)
	}

	return r, nil
}

// Findings flattens the first run's results. A report without runs or
// results means no findings, not a failure.
func (r *Report) Findings() []Finding {
	findings := []Finding{}
	if len(r.Runs) == 0 {
		return findings
	}

	for _, result := range r.Runs[0].Results {
		f := Finding{
			RuleID:      result.RuleID,
			CommitSha:   result.PartialFingerprints.CommitSha,
			Author:      result.PartialFingerprints.Author,
			AuthorEmail: result.PartialFingerprints.Email,
			CommitDate:  result.PartialFingerprints.Date,
		}

		if len(result.Locations) > 0 {
			physical := result.Locations[0].PhysicalLocation
			f.FilePath = physical.ArtifactLocation.URI
			f.StartLine = physical.Region.StartLine
		}

		findings = append(findings, f)
	}

	return findings
}
