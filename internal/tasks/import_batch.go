package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mikestefanello/backlite"

	"bookbatch/internal/database/sessions"
	"bookbatch/internal/entities"
	"bookbatch/internal/importer"
	"bookbatch/internal/parsers"
)

// ImportBatchTask carries one uploaded CSV payload plus the session row
// tracking its progress. Retries are safe: reconciliation is keyed by row
// identity, so a re-run updates rather than duplicates.
type ImportBatchTask struct {
	SessionID   uint   `json:"session_id"`
	PublisherID uint   `json:"publisher_id,omitempty"`
	CSV         string `json:"csv"`
}

// Config returns the queue configuration for import batch tasks.
func (t ImportBatchTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_batch",
		MaxAttempts: 3,
		Backoff:     1 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EngineFactory builds a reconciliation engine for one batch, optionally
// scoped to a publisher.
type EngineFactory func(publisherID uint) *importer.Engine

// ImportBatchProcessor creates a processor function for ImportBatchTask.
func ImportBatchProcessor(sessionRepo *sessions.Repository, newEngine EngineFactory) backlite.QueueProcessor[ImportBatchTask] {
	return func(ctx context.Context, task ImportBatchTask) error {
		session, err := sessionRepo.Get(task.SessionID)
		if err != nil {
			return fmt.Errorf("load import session %d: %w", task.SessionID, err)
		}

		session.Status = entities.ImportStatusRunning
		if err := sessionRepo.Update(session); err != nil {
			return fmt.Errorf("mark session running: %w", err)
		}

		rows, parseErrors, err := parsers.ParseCSV(strings.NewReader(task.CSV))
		if err != nil {
			failSession(sessionRepo, session, err)
			return fmt.Errorf("parse batch: %w", err)
		}

		result, err := newEngine(task.PublisherID).ImportRows(rows)
		if err != nil {
			failSession(sessionRepo, session, err)
			return fmt.Errorf("import batch: %w", err)
		}

		now := time.Now()
		session.Status = entities.ImportStatusCompleted
		session.TotalRows = len(rows)
		session.Created = result.Created
		session.Updated = result.Updated
		session.Deleted = result.Deleted
		session.Skipped = result.Skipped
		session.Failed = result.Failed
		session.Error = strings.Join(parseErrors, "; ")
		session.FinishedAt = &now
		if err := sessionRepo.Update(session); err != nil {
			return fmt.Errorf("finish session: %w", err)
		}

		log.Printf("[TASK] Import session %d completed: %d created, %d updated, %d deleted, %d skipped, %d failed",
			session.ID, result.Created, result.Updated, result.Deleted, result.Skipped, result.Failed)
		return nil
	}
}

// NewImportBatchQueue creates a backlite queue for import batch tasks.
func NewImportBatchQueue(sessionRepo *sessions.Repository, newEngine EngineFactory) backlite.Queue {
	return backlite.NewQueue(ImportBatchProcessor(sessionRepo, newEngine))
}

func failSession(repo *sessions.Repository, session *entities.ImportSession, cause error) {
	now := time.Now()
	session.Status = entities.ImportStatusFailed
	session.Error = cause.Error()
	session.FinishedAt = &now
	if err := repo.Update(session); err != nil {
		log.Printf("[TASK ERROR] failed to mark session %d failed: %v", session.ID, err)
	}
}
