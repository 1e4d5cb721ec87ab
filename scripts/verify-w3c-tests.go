//go:build ignore

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <csvw-tests-directory>\n", os.Args[0])
		os.Exit(1)
	}

	testsDir := filepath.Join(os.Args[1], "csvw-tests")

	manifests := []string{"manifest-json.ttl", "manifest-rdf.ttl", "manifest-validation.ttl"}
	categoryDirs := map[string]string{
		"manifest-json.ttl":       "csv2json",
		"manifest-rdf.ttl":        "csv2rdf",
		"manifest-validation.ttl": "validation",
	}

	fmt.Println("W3C CSVW Test Suite Verification")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	allOK := true
	for _, manifest := range manifests {
		subdir := categoryDirs[manifest]
		path := filepath.Join(testsDir, subdir, manifest)
		if _, err := os.Stat(path); err != nil {
			path = filepath.Join(testsDir, manifest)
			if _, err := os.Stat(path); err != nil {
				fmt.Printf("missing: %s\n", manifest)
				allOK = false
				continue
			}
		}
		fmt.Printf("found: %s\n", path)
	}

	csvCount, metadataCount := 0, 0
	err := filepath.Walk(testsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		switch {
		case strings.HasSuffix(path, ".csv"):
			csvCount++
		case strings.HasSuffix(path, "-metadata.json"):
			metadataCount++
		}
		return nil
	})
	if err != nil {
		fmt.Printf("error scanning %s: %v\n", testsDir, err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("CSV fixtures: %d\n", csvCount)
	fmt.Printf("Metadata fixtures: %d\n", metadataCount)
	fmt.Println(strings.Repeat("=", 50))

	if !allOK || csvCount == 0 {
		fmt.Println("Some issues detected; run download-w3c-tests.go and organize-w3c-tests.go first.")
		os.Exit(1)
	}
	fmt.Println("Test directory looks complete.")
}
