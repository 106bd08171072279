// Package queries normalizes heterogeneous query sources into a canonical
// ordered list: whitespace-trimmed, comment and blank lines dropped, duplicates
// collapsed to the first occurrence.
package queries

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"ytbatch/internal/ledger"
	"ytbatch/internal/services"
)

// Normalize trims each candidate, drops blanks and #-comment lines, and
// collapses duplicates while preserving first-seen order.
func Normalize(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		q := strings.TrimSpace(line)
		if q == "" || strings.HasPrefix(q, "#") {
			continue
		}
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}

// FromFile reads a newline-delimited query file.
func FromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrInput, "queries", "open file", fmt.Sprintf("missing or unreadable queries file %s", path), err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, strings.TrimPrefix(scanner.Text(), "\uFEFF"))
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrInput, "queries", "read file", "", err)
	}
	return finish(Normalize(lines), path)
}

// FromList normalizes manually supplied query strings.
func FromList(values []string) ([]string, error) {
	return finish(Normalize(values), "argument list")
}

// FromLedger extracts the query column of an existing ledger, in row order.
// Ledger rows are unique per query already, so normalization only re-trims.
func FromLedger(path string) ([]string, error) {
	rows, err := ledger.Read(path)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.Query)
	}
	return finish(Normalize(lines), path)
}

func finish(queries []string, source string) ([]string, error) {
	if len(queries) == 0 {
		return nil, services.Wrap(services.ErrInput, "queries", "normalize", fmt.Sprintf("no usable queries in %s", source), nil)
	}
	return queries, nil
}
