//go:build ignore

package main

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// testSuite represents a W3C test suite to download.
type testSuite struct {
	name        string
	description string
	url         string
	subdir      string // subdirectory name in the downloaded archive to keep
}

var testSuites = []testSuite{
	{
		name:        "csvw-tests",
		description: "W3C CSV on the Web Test Suite (metadata, validation, and csv2rdf/csv2json manifests)",
		url:         "https://github.com/w3c/csvw/archive/refs/heads/gh-pages.zip",
		subdir:      "tests",
	},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <output-directory>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nDownloads the W3C CSVW test suite to the specified directory.\n")
		fmt.Fprintf(os.Stderr, "The directory will be organized as:\n")
		fmt.Fprintf(os.Stderr, "  <output-directory>/csvw-tests/...\n")
		fmt.Fprintf(os.Stderr, "\nExample: %s ./w3c-tests\n", os.Args[0])
		os.Exit(1)
	}

	outputDir := os.Args[1]
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Downloading W3C CSVW test suite to: %s\n\n", outputDir)

	for _, suite := range testSuites {
		fmt.Printf("Downloading %s...\n", suite.description)
		if err := downloadTestSuite(suite, outputDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error downloading %s: %v\n", suite.name, err)
			continue
		}
		fmt.Printf("Downloaded %s\n\n", suite.name)
	}

	fmt.Printf("Set W3C_CSVW_TESTS_DIR=%s to run conformance tests.\n", outputDir)
}

func downloadTestSuite(suite testSuite, outputDir string) error {
	tempFile := filepath.Join(os.TempDir(), fmt.Sprintf("%s-download.zip", suite.name))
	defer os.Remove(tempFile)

	fmt.Printf("  Fetching from %s...\n", suite.url)
	resp, err := http.Get(suite.url)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("failed to save download: %w", err)
	}
	out.Close()

	fmt.Printf("  Extracting %s/...\n", suite.subdir)
	return extractZip(tempFile, outputDir, suite)
}

func extractZip(zipFile, outputDir string, suite testSuite) error {
	r, err := zip.OpenReader(zipFile)
	if err != nil {
		return err
	}
	defer r.Close()

	var baseDir string
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") && baseDir == "" {
			baseDir = f.Name
			break
		}
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if suite.subdir != "" && !strings.Contains(f.Name, suite.subdir+"/") {
			continue
		}

		relPath := strings.TrimPrefix(f.Name, baseDir)
		if suite.subdir != "" {
			if idx := strings.Index(relPath, suite.subdir+"/"); idx >= 0 {
				relPath = relPath[idx+len(suite.subdir)+1:]
			}
		}
		if relPath == "" || relPath == suite.subdir+"/" {
			continue
		}

		destPath := filepath.Join(outputDir, suite.name, relPath)
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(destPath)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		out.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
