// Package usecase contains the business logic of the application.
package usecase

import (
	"bufio"
	"bytes"
	"regexp"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/lint-gate/internal/domain"
)

// findingPattern matches the default flake8/pycodestyle output format
// "path:line:col: CODE message". Column is optional.
var findingPattern = regexp.MustCompile(`^(.+?):(\d+):(?:(\d+):)?\s+([A-Z]+[0-9]+)\s+(.*)$`)

// ParseFindings extracts findings from the tool's standard output.
// Lines that do not look like a finding are ignored.
func ParseFindings(output []byte) []domain.Finding {
	findings := []domain.Finding{}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := findingPattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		findings = append(findings, domain.Finding{
			File:    m[1],
			Line:    line,
			Column:  col,
			Code:    m[4],
			Message: m[5],
		})
	}
	return findings
}

// Summarize aggregates findings per file and per code.
// Files are sorted by finding count, then by name, for consistent output.
func Summarize(findings []domain.Finding) *domain.Summary {
	summary := &domain.Summary{
		TotalFindings: len(findings),
		ByCode:        make(map[string]int),
		Files:         []*domain.FileStats{},
	}

	statsMap := make(map[string]*domain.FileStats)
	for _, f := range findings {
		if _, ok := statsMap[f.File]; !ok {
			statsMap[f.File] = &domain.FileStats{Name: f.File}
		}
		statsMap[f.File].Findings++
		summary.ByCode[f.Code]++
	}

	perFile := make(stats.Float64Data, 0, len(statsMap))
	for _, fileStat := range statsMap {
		summary.Files = append(summary.Files, fileStat)
		perFile = append(perFile, float64(fileStat.Findings))
	}
	sort.Slice(summary.Files, func(i, j int) bool {
		if summary.Files[i].Findings != summary.Files[j].Findings {
			return summary.Files[i].Findings > summary.Files[j].Findings
		}
		return summary.Files[i].Name < summary.Files[j].Name
	})
	summary.FilesAffected = len(summary.Files)

	if len(perFile) == 0 {
		return summary
	}
	// stats only errors on empty input.
	mean, _ := perFile.Mean()
	summary.MeanPerFile, _ = stats.Round(mean, 2)
	summary.MedianPerFile, _ = perFile.Median()
	summary.MaxPerFile, _ = perFile.Max()
	return summary
}
