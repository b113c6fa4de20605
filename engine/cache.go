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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// The tool cache is a directory tree under the runner's cache root, one
// subdirectory per cache key. Restore and save copy recursively.

// cacheKey identifies one installed release. Distinct versions,
// platforms, and architectures never share an entry.
func cacheKey(version, platform, arch string) string {
	return fmt.Sprintf("%v-cache-%v-%v-%v", Name, version, normalizePlatform(platform), normalizeArch(arch))
}

func restoreCache(cacheDir, key, installDir string) (bool, error) {
	if cacheDir == "" {
		return false, nil
	}

	src := filepath.Join(cacheDir, key)
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("error probing cache entry %v: %w", src, err)
	}

	if !info.IsDir() {
		return false, fmt.Errorf("cache entry %v is not a directory", src)
	}

	if err := copyTree(src, installDir); err != nil {
		return false, fmt.Errorf("error restoring cache entry %v: %w", src, err)
	}

	return true, nil
}

func saveCache(cacheDir, key, installDir string) error {
	if cacheDir == "" {
		return fmt.Errorf("no cache directory configured")
	}

	dst := filepath.Join(cacheDir, key)
	if _, err := os.Stat(dst); err == nil {
		// already cached
		return nil
	}

	if err := copyTree(installDir, dst); err != nil {
		return fmt.Errorf("error saving cache entry %v: %w", dst, err)
	}

	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		return writeFile(target, in, info.Mode())
	})
}
