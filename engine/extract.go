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
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxFileSize caps a single extracted file to guard against
// decompression bombs in a tampered release archive.
const maxFileSize = int64(1) << 30

type ErrUnsupportedArchive struct {
	URL string
}

func (e ErrUnsupportedArchive) Error() string {
	return fmt.Sprintf("no extractor for archive at %v", e.URL)
}

type extractFunc func(archivePath, destDir string) error

var extractorsBySuffix = map[string]extractFunc{
	".zip":    extractZip,
	".tar.gz": extractTarGz,
}

// extract unpacks the downloaded archive into destDir, dispatching on
// the suffix of the download URL.
func extract(archivePath, url, destDir string) error {
	for suffix, extractor := range extractorsBySuffix {
		if strings.HasSuffix(url, suffix) {
			return extractor(archivePath, destDir)
		}
	}

	return ErrUnsupportedArchive{URL: url}
}

func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("error opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("error reading gzip stream: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("error creating %v: %w", destDir, err)
	}

	tarReader := tar.NewReader(gz)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return fmt.Errorf("error reading archive entry: %w", err)
		}

		target, err := securePath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("error creating %v: %w", target, err)
			}

		case tar.TypeReg:
			if err := writeFile(target, tarReader, os.FileMode(header.Mode)); err != nil {
				return err
			}

		default:
			// release archives only carry files and directories
		}
	}

	return nil
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("error opening archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("error creating %v: %w", destDir, err)
	}

	for _, file := range reader.File {
		target, err := securePath(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("error creating %v: %w", target, err)
			}

			continue
		}

		entry, err := file.Open()
		if err != nil {
			return fmt.Errorf("error opening archive entry %v: %w", file.Name, err)
		}

		err = writeFile(target, entry, file.Mode())
		entry.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// securePath joins an archive entry name onto destDir and rejects
// entries that would escape it.
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %v escapes the install directory", name)
	}

	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("error creating %v: %w", filepath.Dir(target), err)
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("error creating %v: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(r, maxFileSize)); err != nil {
		return fmt.Errorf("error writing %v: %w", target, err)
	}

	return nil
}
