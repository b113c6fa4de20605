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

// Package githubapi is a thin client for the few REST endpoints leakgate
// needs: the engine's release feed and pull request commits and review
// comments.
package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	ttlcache "github.com/jellydator/ttlcache/v3"

	"github.com/leakgate/leakgate/log"
)

const (
	defaultBaseURL = "https://api.github.com"
	acceptHeader   = "application/vnd.github+json"
	userAgent      = "leakgate"

	requestTimeout = 30 * time.Second
	maxRetries     = 3
	responseTTL    = time.Minute * 5
)

type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
	cache   *ttlcache.Cache[string, []byte]
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    retryablehttp.NewClient(),
	}

	c.http.RetryMax = maxRetries
	c.http.HTTPClient.Timeout = requestTimeout
	c.http.Logger = retryLogger{}
	c.cache = ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(c)
	}

	return c
}

// retryLogger routes the transport's retry chatter to the debug level.
type retryLogger struct{}

func (retryLogger) Printf(format string, args ...interface{}) {
	log.Debugf("(githubapi) "+format, args...)
}

type Release struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

type PullRequestCommit struct {
	Sha string `json:"sha"`
}

// ReviewComment is both the creation payload and the listing shape of a
// pull request review comment. OriginalLine only appears in responses.
type ReviewComment struct {
	Body         string `json:"body"`
	Path         string `json:"path"`
	Line         int    `json:"line,omitempty"`
	OriginalLine int    `json:"original_line,omitempty"`
	Side         string `json:"side,omitempty"`
	CommitId     string `json:"commit_id,omitempty"`
}

// LatestReleaseTag returns the tag name of the repository's latest
// published release.
func (c *Client) LatestReleaseTag(ctx context.Context, owner, repo string) (string, error) {
	url := fmt.Sprintf("%v/repos/%v/%v/releases/latest", c.baseURL, owner, repo)
	body, err := c.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("error fetching latest release: %w", err)
	}

	release := Release{}
	if err := json.Unmarshal(body, &release); err != nil {
		return "", fmt.Errorf("error parsing latest release: %w", err)
	}

	if release.TagName == "" {
		return "", fmt.Errorf("latest release of %v/%v has no tag name", owner, repo)
	}

	return release.TagName, nil
}

// ListPullRequestCommits returns the pull request's commits in the order
// the platform reports them.
func (c *Client) ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]PullRequestCommit, error) {
	url := fmt.Sprintf("%v/repos/%v/%v/pulls/%v/commits?per_page=100", c.baseURL, owner, repo, number)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error fetching pull request commits: %w", err)
	}

	commits := []PullRequestCommit{}
	if err := json.Unmarshal(body, &commits); err != nil {
		return nil, fmt.Errorf("error parsing pull request commits: %w", err)
	}

	return commits, nil
}

// ListReviewComments returns the review comments already present on the
// pull request.
func (c *Client) ListReviewComments(ctx context.Context, owner, repo string, number int) ([]ReviewComment, error) {
	url := fmt.Sprintf("%v/repos/%v/%v/pulls/%v/comments?per_page=100", c.baseURL, owner, repo, number)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error fetching review comments: %w", err)
	}

	comments := []ReviewComment{}
	if err := json.Unmarshal(body, &comments); err != nil {
		return nil, fmt.Errorf("error parsing review comments: %w", err)
	}

	return comments, nil
}

// CreateReviewComment posts a new review comment on the pull request.
func (c *Client) CreateReviewComment(ctx context.Context, owner, repo string, number int, comment ReviewComment) error {
	url := fmt.Sprintf("%v/repos/%v/%v/pulls/%v/comments", c.baseURL, owner, repo, number)
	payload, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("error encoding review comment: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	c.setHeaders(req.Header)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error calling %v: %w", url, err)
	}

	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("github api returned status %v creating review comment", resp.StatusCode)
	}

	return nil
}

// get serves GET responses through a short lived cache so repeated
// lookups within one run cost a single round trip.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lerr error
	loader := ttlcache.LoaderFunc[string, []byte](
		func(cache *ttlcache.Cache[string, []byte], key string) *ttlcache.Item[string, []byte] {
			var body []byte
			body, lerr = c.fetch(ctx, key)
			if lerr == nil {
				return cache.Set(key, body, responseTTL)
			}
			return nil
		},
	)

	item := c.cache.Get(url, ttlcache.WithLoader[string, []byte](loader))
	if lerr == nil {
		return item.Value(), nil
	}
	return nil, lerr
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	c.setHeaders(req.Header)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling %v: %w", url, err)
	}

	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned status %v for %v", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	return body, nil
}

func (c *Client) setHeaders(h http.Header) {
	h.Set("Accept", acceptHeader)
	h.Set("User-Agent", userAgent)
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
}
