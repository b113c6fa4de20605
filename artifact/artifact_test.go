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

package artifact

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = body
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "results.sarif")
	require.NoError(t, os.WriteFile(path, []byte(`{"runs": []}`), 0644))

	client := New(srv.URL, WithToken("store-token"))
	require.NoError(t, client.Upload(context.Background(), DefaultReportName, path))

	assert.Equal(t, "/upload/gitleaks-results.sarif", gotPath)
	assert.Equal(t, "Bearer store-token", gotAuth)
	assert.Equal(t, `{"runs": []}`, string(gotBody))
}

func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "results.sarif")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	client := New(srv.URL)
	err := client.Upload(context.Background(), DefaultReportName, path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "403")
}

func TestUploadDisabled(t *testing.T) {
	client := New("")
	assert.False(t, client.Enabled())

	// no store configured means no upload attempt and no error, even
	// for a file that does not exist
	require.NoError(t, client.Upload(context.Background(), DefaultReportName, "/does/not/exist"))
}

func TestUploadMissingFile(t *testing.T) {
	client := New("http://localhost:1")
	err := client.Upload(context.Background(), DefaultReportName, filepath.Join(t.TempDir(), "missing.sarif"))
	require.Error(t, err)
}
