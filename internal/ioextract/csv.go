package ioextract

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getyour/gyadmin/pkg/config"
)

// outputPath builds the dated filename of one extract:
// "<date> <name> <suffix>", e.g. "2026-08-31 All IQ Applicants.csv".
func (e *extractor) outputPath(name string) string {
	dir := e.cfg.Extract.OutputDir
	if dir == "" {
		dir = filepath.Join(config.DataDir(e.cfg.HomeDir), "extracts")
	}
	return filepath.Join(dir, fmt.Sprintf("%s %s %s",
		e.now().Format("2006-01-02"), name, e.cfg.Extract.FilenameSuffix))
}

// feedbackPath is fixed-form; feedback is not an applicant extract.
func (e *extractor) feedbackPath() string {
	dir := e.cfg.Extract.OutputDir
	if dir == "" {
		dir = filepath.Join(config.DataDir(e.cfg.HomeDir), "extracts")
	}
	return filepath.Join(dir, fmt.Sprintf("%s IQ Feedback.csv",
		e.now().Format("2006-01-02")))
}

// writeCSV writes one extract file: an optional single-cell legend
// line, the header and the records.
func writeCSV(
	path, legend string, header []string, records [][]string,
) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return WriteError(path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return WriteError(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if legend != "" {
		if err := w.Write([]string{legend}); err != nil {
			return WriteError(path, err)
		}
	}
	if err := w.Write(header); err != nil {
		return WriteError(path, err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return WriteError(path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return WriteError(path, err)
	}
	return nil
}

// valueString renders a query value for a CSV cell.
func valueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatPhone renders an E.164 US number as "(303) 555-1234"; anything
// else passes through unchanged.
func formatPhone(phone string) string {
	digits := strings.TrimPrefix(phone, "+1")
	if len(digits) != 10 || strings.ContainsFunc(digits, notDigit) {
		return phone
	}
	return fmt.Sprintf("(%s) %s-%s",
		digits[:3], digits[3:6], digits[6:])
}

func notDigit(r rune) bool { return r < '0' || r > '9' }

// formatHouseholdInfo renders the household_info JSON document as a
// semicolon-separated list of member names.
func formatHouseholdInfo(doc string) string {
	if doc == "" {
		return ""
	}

	var parsed struct {
		Persons []struct {
			Name string `json:"name"`
		} `json:"persons_in_household"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return doc
	}

	names := make([]string, 0, len(parsed.Persons))
	for _, p := range parsed.Persons {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, "; ")
}

// denverTime renders a stored timestamp in the municipality's timezone.
func denverTime(v any) string {
	t, ok := v.(time.Time)
	if !ok {
		parsed, err := time.Parse(time.RFC3339, valueString(v))
		if err != nil {
			return valueString(v)
		}
		t = parsed
	}

	loc, err := time.LoadLocation("America/Denver")
	if err != nil {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.In(loc).Format("2006-01-02 15:04:05")
}

// asInt64 widens the integer forms the drivers hand back for id
// columns.
func asInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not an integer id", v, v)
	}
}
