package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Record is one judged interaction in the audit report.
type Record struct {
	Timestamp      string `json:"timestamp"`
	Query          string `json:"query"`
	OriginalAnswer string `json:"original_answer"`
	Verdict        string `json:"verdict"`
	Classification string `json:"classification"`
}

// ReportStore persists an audit run as a JSON-array snapshot. Every write
// replaces the previous report wholesale.
type ReportStore struct {
	path string
}

// NewReportStore creates a ReportStore writing to path.
func NewReportStore(path string) *ReportStore {
	return &ReportStore{path: path}
}

// Path returns the report file path.
func (s *ReportStore) Path() string { return s.path }

// Write serialises records to the report file, overwriting any prior run.
func (s *ReportStore) Write(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode audit report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write audit report: %w", err)
	}
	return nil
}
