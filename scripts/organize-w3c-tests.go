//go:build ignore

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// The W3C CSVW test suite ships one flat tests/ directory containing CSV
// sources, metadata documents, expected JSON/RDF outputs, and three
// manifests (manifest-json.ttl, manifest-rdf.ttl, manifest-validation.ttl).
// This moves each manifest into its own per-category subdirectory, without
// fetching anything; the other files stay in the flat directory because
// several manifests share them.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <csvw-tests-directory>\n", os.Args[0])
		os.Exit(1)
	}
	testsDir := filepath.Join(os.Args[1], "csvw-tests")

	categories := map[string]string{
		"manifest-json.ttl":       "csv2json",
		"manifest-rdf.ttl":        "csv2rdf",
		"manifest-validation.ttl": "validation",
	}

	entries, err := os.ReadDir(testsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", testsDir, err)
		os.Exit(1)
	}

	for manifestName, subdir := range categories {
		if _, err := os.Stat(filepath.Join(testsDir, manifestName)); err != nil {
			continue
		}
		targetDir := filepath.Join(testsDir, subdir)
		if err := os.MkdirAll(targetDir, 0755); err != nil {
			fmt.Printf("error creating %s: %v\n", targetDir, err)
			continue
		}
		if err := os.Rename(filepath.Join(testsDir, manifestName), filepath.Join(targetDir, manifestName)); err != nil {
			fmt.Printf("warning: could not move %s: %v\n", manifestName, err)
		}
		fmt.Printf("organized %s manifest into %s/\n", manifestName, subdir)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "manifest-") {
			continue
		}
		fmt.Printf("leaving shared fixture %s in place (referenced by multiple manifests)\n", name)
	}

	fmt.Println("Test files organized.")
}
