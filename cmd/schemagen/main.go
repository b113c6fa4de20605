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

// schemagen writes JSON schemas for leakgate's wire formats, used to
// keep the docs in sync with the types the code actually parses.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/leakgate/leakgate/event"
	"github.com/leakgate/leakgate/githubapi"
	"github.com/leakgate/leakgate/report"
)

var directory string

func init() {
	flag.StringVar(&directory, "dir", "docs/schema", "Directory to store the generated schemas")
	flag.Parse()
}

func main() {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	schemas := []struct {
		name  string
		title string
		value interface{}
	}{
		{name: "event", title: "Trigger event payload subset", value: &event.Event{}},
		{name: "report", title: "Scan report subset", value: &report.Report{}},
		{name: "finding", title: "Flattened finding", value: &report.Finding{}},
		{name: "review-comment", title: "Review comment payload", value: &githubapi.ReviewComment{}},
	}

	if err := os.MkdirAll(directory, 0755); err != nil {
		log.Fatal(err)
	}

	for _, s := range schemas {
		schema := reflector.Reflect(s.value)
		schema.Title = s.title

		schemaJson, err := schema.MarshalJSON()
		if err != nil {
			log.Fatal(err)
		}

		var indented bytes.Buffer
		if err := json.Indent(&indented, schemaJson, "", "  "); err != nil {
			log.Fatal(err)
		}

		path := fmt.Sprintf("%s/%s.json", directory, s.name)
		log.Printf("Writing schema for %s to %s", s.name, path)
		if err := os.WriteFile(path, indented.Bytes(), 0644); err != nil {
			log.Fatal(err)
		}
	}
}
