// Package export renders projects as CSV and conversations as plain-text
// transcripts.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/budeshi/budeshi/internal/domain"
)

// Header is the fixed CSV column order.
var Header = []string{
	"Name", "Description", "Status", "Budget", "Spent",
	"Location", "Ministry", "Contractor", "Start Date", "End Date",
}

// ProjectsFilename is the default download name for an export taken at now.
func ProjectsFilename(now time.Time) string {
	return "budeshi-projects-" + now.UTC().Format(domain.DateLayout) + ".csv"
}

// WriteProjectsCSV writes the header and one row per project. Text fields are
// always double-quoted with embedded quotes doubled; money and dates are raw.
// encoding/csv only quotes when needed, so rows are assembled by hand.
func WriteProjectsCSV(w io.Writer, projects []domain.Project) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Header, ",") + "\n"); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, p := range projects {
		row := []string{
			quote(p.Name),
			quote(p.Description),
			quote(p.Status),
			strconv.FormatInt(p.Budget, 10),
			strconv.FormatInt(p.Spent, 10),
			quote(p.Location),
			quote(p.Ministry),
			quote(p.Contractor),
			p.StartDateString(),
			p.EndDateString(),
		}
		if _, err := bw.WriteString(strings.Join(row, ",") + "\n"); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	return bw.Flush()
}

// ProjectsCSV is WriteProjectsCSV into a string.
func ProjectsCSV(projects []domain.Project) string {
	var sb strings.Builder
	_ = WriteProjectsCSV(&sb, projects)
	return sb.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ParseProjectsCSV reads a file written by WriteProjectsCSV. The format has
// no ID column, so returned projects have an empty ID; stores assign one on
// Add.
func ParseProjectsCSV(r io.Reader) ([]domain.Project, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i, h := range headers {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) != Header[i] {
			return nil, fmt.Errorf("unexpected column %d %q, want %q", i+1, h, Header[i])
		}
	}

	var projects []domain.Project
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		p, err := rowToProject(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func rowToProject(row []string) (domain.Project, error) {
	budget, err := strconv.ParseInt(strings.TrimSpace(row[3]), 10, 64)
	if err != nil {
		return domain.Project{}, fmt.Errorf("budget %q: %w", row[3], err)
	}
	spent, err := strconv.ParseInt(strings.TrimSpace(row[4]), 10, 64)
	if err != nil {
		return domain.Project{}, fmt.Errorf("spent %q: %w", row[4], err)
	}
	start, err := domain.ParseDate(row[8])
	if err != nil {
		return domain.Project{}, err
	}
	end, err := domain.ParseDate(row[9])
	if err != nil {
		return domain.Project{}, err
	}
	return domain.Project{
		Name:        row[0],
		Description: row[1],
		Status:      row[2],
		Budget:      budget,
		Spent:       spent,
		Location:    row[5],
		Ministry:    row[6],
		Contractor:  row[7],
		StartDate:   start,
		EndDate:     end,
	}, nil
}
