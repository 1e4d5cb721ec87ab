//go:build ignore

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

type categoryResult struct {
	Category string
	Pass     int
	Fail     int
	Skip     int
	Total    int
	PassRate float64
	Status   string // "pass", "fail", "partial"
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <csvw-tests-dir> [output-file]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  If output-file is not specified, writes to COMPLIANCE_STATUS.md\n")
		os.Exit(1)
	}

	testsDir := os.Args[1]
	outputFile := "COMPLIANCE_STATUS.md"
	if len(os.Args) >= 3 {
		outputFile = os.Args[2]
	}

	os.Setenv("W3C_CSVW_TESTS_DIR", testsDir)

	categories := []string{"validation", "csv2json", "csv2rdf"}

	fmt.Printf("Running compliance tests for %d categories...\n", len(categories))
	fmt.Println()

	results := make([]categoryResult, 0, len(categories))
	totalPass, totalFail, totalSkip := 0, 0, 0

	for _, category := range categories {
		fmt.Printf("Testing %s... ", category)
		result := runCategoryTests(category)
		results = append(results, result)
		totalPass += result.Pass
		totalFail += result.Fail
		totalSkip += result.Skip

		icon := "pass"
		if result.Status == "fail" {
			icon = "fail"
		} else if result.Status == "partial" {
			icon = "partial"
		}
		fmt.Printf("%s: pass=%d fail=%d skip=%d total=%d (%.1f%%)\n",
			icon, result.Pass, result.Fail, result.Skip, result.Total, result.PassRate)
	}

	fmt.Println()
	fmt.Printf("Total: pass=%d fail=%d skip=%d total=%d\n",
		totalPass, totalFail, totalSkip, totalPass+totalFail+totalSkip)

	markdown := generateMarkdown(results, totalPass, totalFail, totalSkip, testsDir)
	if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to %s: %v\n", outputFile, err)
		os.Exit(1)
	}
	fmt.Printf("\nStatus page written to: %s\n", outputFile)
}

func runCategoryTests(category string) categoryResult {
	result := categoryResult{Category: category, Status: "pass"}

	cmd := exec.Command("go", "test", "./csvw", "-run", fmt.Sprintf("^TestW3CConformance$/%s$", category), "-v")
	output, _ := cmd.CombinedOutput()
	outputStr := string(output)

	for _, line := range strings.Split(outputStr, "\n") {
		switch {
		case strings.Contains(line, "--- PASS:") && strings.Contains(line, category):
			result.Pass++
		case strings.Contains(line, "--- FAIL:") && strings.Contains(line, category):
			result.Fail++
		case strings.Contains(line, "--- SKIP:") && strings.Contains(line, category):
			result.Skip++
		}
	}
	if strings.Contains(outputStr, "FAIL") && result.Fail == 0 && !strings.Contains(outputStr, "ok") {
		result.Fail = 1
	}

	result.Total = result.Pass + result.Fail + result.Skip
	if nonSkipped := result.Pass + result.Fail; nonSkipped > 0 {
		result.PassRate = 100.0 * float64(result.Pass) / float64(nonSkipped)
	}

	switch {
	case result.Total == 0:
		result.Status = "fail"
	case result.Fail > 0 && result.Pass == 0:
		result.Status = "fail"
	case result.Fail > 0:
		result.Status = "partial"
	case result.Pass > 0:
		result.Status = "pass"
	}
	return result
}

func generateMarkdown(results []categoryResult, totalPass, totalFail, totalSkip int, testsDir string) string {
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 UTC")

	var sb strings.Builder
	sb.WriteString("# W3C CSVW Compliance Test Status\n\n")
	sb.WriteString("This page shows the current status of the W3C CSVW test suite against this implementation.\n\n")
	sb.WriteString(fmt.Sprintf("**Last Updated:** %s\n\n", timestamp))
	sb.WriteString(fmt.Sprintf("**Tests Directory:** `%s`\n\n", testsDir))
	sb.WriteString("---\n\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Category | Status | Pass | Fail | Skip | Total | Pass Rate |\n")
	sb.WriteString("|----------|--------|------|------|------|-------|-----------|\n")

	totalTests := totalPass + totalFail + totalSkip
	var totalPassRate float64
	if nonSkipped := totalPass + totalFail; nonSkipped > 0 {
		totalPassRate = 100.0 * float64(totalPass) / float64(nonSkipped)
	}

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %d | %d | %.1f%% |\n",
			r.Category, strings.ToUpper(r.Status), r.Pass, r.Fail, r.Skip, r.Total, r.PassRate))
	}
	sb.WriteString(fmt.Sprintf("| **TOTAL** | | **%d** | **%d** | **%d** | **%d** | **%.1f%%** |\n\n",
		totalPass, totalFail, totalSkip, totalTests, totalPassRate))

	sb.WriteString("## Notes\n\n")
	sb.WriteString("- Generated by `go run scripts/generate-compliance-status.go <csvw-tests-dir>`.\n")
	sb.WriteString("- validation tests exercise Metadata.Validate and Metadata.Merge; csv2json/csv2rdf exercise row/cell interpretation and EmitRowTriples.\n")
	sb.WriteString("- Skipped tests are excluded from pass rate.\n")

	return sb.String()
}
