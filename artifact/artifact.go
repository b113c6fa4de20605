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

// Package artifact uploads run artifacts to an HTTP artifact store so
// the raw scan report outlives the job.
package artifact

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/leakgate/leakgate/log"
)

// DefaultReportName is the artifact name the scan report is stored
// under.
const DefaultReportName = "gitleaks-results.sarif"

const uploadTimeout = 2 * time.Minute

// Client uploads artifacts to a store over HTTP. A client constructed
// without a store URL is disabled and skips every upload.
type Client struct {
	url     string
	headers http.Header
	http    *http.Client
}

type Option func(*Client)

// WithHeaders sets extra headers sent with every upload.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		if h != nil {
			c.headers = h
		}
	}
}

// WithToken sets a bearer token for the store.
func WithToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

func New(url string, opts ...Option) *Client {
	client := &Client{
		url:     url,
		headers: http.Header{},
		http:    &http.Client{Timeout: uploadTimeout},
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(client)
	}

	return client
}

// Enabled reports whether a store URL was configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

// Upload stores the file at path under name. Disabled clients return
// nil without touching the network.
func (c *Client) Upload(ctx context.Context, name, path string) error {
	if !c.Enabled() {
		log.Debugf("(artifact) no store configured, skipping upload of %v", name)
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening artifact %v: %w", path, err)
	}
	defer f.Close()

	url := fmt.Sprintf("%v/upload/%v", strings.TrimSuffix(c.url, "/"), name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, f)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error uploading artifact %v: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("artifact store returned status %v for %v", resp.StatusCode, name)
	}

	log.Infof("(artifact) uploaded %v to %v", name, url)
	return nil
}
