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

// Package event models the CI trigger events leakgate reacts to and
// resolves the commit range a scan should cover.
package event

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// TriggerType identifies which kind of repository event started the run.
// The set is closed; anything else is rejected before side effects happen.
type TriggerType string

const (
	TriggerPush             TriggerType = "push"
	TriggerPullRequest      TriggerType = "pull_request"
	TriggerWorkflowDispatch TriggerType = "workflow_dispatch"
	TriggerSchedule         TriggerType = "schedule"
)

func (t TriggerType) String() string {
	return string(t)
}

// ErrUnsupportedTrigger is returned when the run was started by an event
// type outside the supported set.
type ErrUnsupportedTrigger struct {
	Event string
}

func (e ErrUnsupportedTrigger) Error() string {
	return fmt.Sprintf("the %v event type is not supported", e.Event)
}

// ParseTrigger validates an event name against the supported trigger set.
func ParseTrigger(name string) (TriggerType, error) {
	switch TriggerType(name) {
	case TriggerPush, TriggerPullRequest, TriggerWorkflowDispatch, TriggerSchedule:
		return TriggerType(name), nil
	default:
		return "", ErrUnsupportedTrigger{Event: name}
	}
}

type Owner struct {
	Login string `json:"login"`
}

type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HtmlUrl  string `json:"html_url"`
	Owner    Owner  `json:"owner"`
}

type Commit struct {
	Id string `json:"id"`
}

type Ref struct {
	Ref string `json:"ref"`
	Sha string `json:"sha"`
}

type PullRequest struct {
	Number int `json:"number"`
	Base   Ref `json:"base"`
	Head   Ref `json:"head"`
}

// Event is the subset of the trigger payload leakgate consumes. Fields
// absent from a given trigger's payload stay zero valued.
type Event struct {
	Commits     []Commit     `json:"commits,omitempty"`
	PullRequest *PullRequest `json:"pull_request,omitempty"`
	Repository  *Repository  `json:"repository,omitempty"`
}

// Load reads the trigger payload file the platform provides. An empty
// path yields an empty event, which is all a scheduled run carries.
func Load(path string) (*Event, error) {
	if path == "" {
		return &Event{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading event payload: %w", err)
	}

	ev := &Event{}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("error parsing event payload: %w", err)
	}

	return ev, nil
}

// SynthesizeRepository builds the repository identity for triggers whose
// payload omits it, such as scheduled runs, from the owner/name slug.
func SynthesizeRepository(slug, serverURL string) *Repository {
	owner, name, _ := strings.Cut(slug, "/")
	return &Repository{
		Name:     name,
		FullName: slug,
		HtmlUrl:  fmt.Sprintf("%v/%v", serverURL, slug),
		Owner:    Owner{Login: owner},
	}
}
