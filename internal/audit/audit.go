// Package audit persists a JSON record of every import run for later
// inspection.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ImportRecord is the audit payload written after each import run.
type ImportRecord struct {
	SessionID   uint      `json:"session_id,omitempty"`
	Source      string    `json:"source"`
	TotalRows   int       `json:"total_rows"`
	Created     int       `json:"created"`
	Updated     int       `json:"updated"`
	Deleted     int       `json:"deleted"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	ParseErrors []string  `json:"parse_errors,omitempty"`
	HookErrors  []string  `json:"hook_errors,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveImportRecord writes the record as JSON to a file with a UUID4
// filename and returns the filename.
func (a *Auditor) SaveImportRecord(record ImportRecord) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	auditID := uuid.New()
	filename := fmt.Sprintf("%s.json", auditID.String())
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal audit record to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	return filename, nil
}

func (a *Auditor) ensureAuditDir() error {
	return os.MkdirAll(a.AuditDir, 0755)
}
