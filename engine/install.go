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

package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/leakgate/leakgate/internal/besteffort"
	"github.com/leakgate/leakgate/log"
)

// Install provisions the scanner binary for version and returns its
// install directory. The tool cache is consulted first; on a miss the
// release archive is downloaded, extracted, and cached for later runs.
// Cache failures never fail the install. The install directory is added
// to the executable search path so the scan subprocess resolves the
// binary by bare name.
func Install(ctx context.Context, version, cacheDir string) (string, error) {
	installDir := filepath.Join(os.TempDir(), fmt.Sprintf("%v-%v", Name, version))
	log.Infof("(engine) %v version to install: %v (target directory: %v)", Name, version, installDir)

	key := cacheKey(version, runtime.GOOS, runtime.GOARCH)
	restored := false
	besteffort.Do("engine cache restore", func() error {
		var err error
		restored, err = restoreCache(cacheDir, key, installDir)
		return err
	})

	if restored {
		log.Infof("(engine) %v restored from cache", Name)
	} else {
		url := downloadURL(runtime.GOOS, runtime.GOARCH, version)
		log.Infof("(engine) downloading %v from %v", Name, url)

		archive, err := download(ctx, url)
		if err != nil {
			return "", fmt.Errorf("error downloading %v: %w", Name, err)
		}
		defer os.Remove(archive)

		if err := extract(archive, url, installDir); err != nil {
			return "", err
		}

		besteffort.Do("engine cache save", func() error {
			return saveCache(cacheDir, key, installDir)
		})
	}

	addToPath(installDir)
	return installDir, nil
}

// downloadURL builds the release asset location. Asset names follow the
// upstream convention of node style platform and arch identifiers, so
// both are normalized before templating.
func downloadURL(platform, arch, version string) string {
	platform = normalizePlatform(platform)
	ext := "tar.gz"
	if platform == "windows" {
		ext = "zip"
	}

	return fmt.Sprintf("%v/v%v/%v_%v_%v_%v.%v", downloadBaseURL, version, Name, version, platform, normalizeArch(arch), ext)
}

// normalizePlatform maps the legacy win32 platform name onto the
// windows asset name. All other platforms pass through unchanged.
func normalizePlatform(platform string) string {
	if platform == "win32" {
		return "windows"
	}

	return platform
}

func normalizeArch(arch string) string {
	switch arch {
	case "amd64":
		return "x64"
	case "386":
		return "x32"
	default:
		return arch
	}
}

// download fetches the release archive into a temp file and returns its
// path. A failed download fails the run; retrying is left to the CI
// platform.
func download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching %v: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %v returned status %v", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", Name+"-*.download")
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error writing archive: %w", err)
	}

	return tmp.Name(), nil
}

// addToPath prepends dir to PATH for the current process and everything
// it spawns.
func addToPath(dir string) {
	path := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+path); err != nil {
		log.Warnf("(engine) could not add %v to PATH: %v", dir, err)
	}
}
