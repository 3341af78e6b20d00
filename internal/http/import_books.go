package http

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bookbatch/internal/audit"
	"bookbatch/internal/database/authors"
	"bookbatch/internal/database/books"
	"bookbatch/internal/database/categories"
	"bookbatch/internal/database/sessions"
	"bookbatch/internal/entities"
	"bookbatch/internal/importer"
	"bookbatch/internal/parsers"
	"bookbatch/internal/tasks"
)

// BookImportController handles CSV uploads, both synchronous and queued.
type BookImportController struct {
	books      *books.Repository
	authors    *authors.Repository
	categories *categories.Repository
	sessions   *sessions.Repository
	auditor    *audit.Auditor
	tasks      *tasks.Client
	cfg        importer.ResourceConfig
}

// NewBookImportController creates the controller. The tasks client may be
// nil, in which case the async endpoint is rejected.
func NewBookImportController(
	bookRepo *books.Repository,
	authorRepo *authors.Repository,
	categoryRepo *categories.Repository,
	sessionRepo *sessions.Repository,
	auditor *audit.Auditor,
	taskClient *tasks.Client,
	cfg importer.ResourceConfig,
) *BookImportController {
	return &BookImportController{
		books:      bookRepo,
		authors:    authorRepo,
		categories: categoryRepo,
		sessions:   sessionRepo,
		auditor:    auditor,
		tasks:      taskClient,
		cfg:        cfg,
	}
}

// ImportResponse is the payload returned after a synchronous import.
type ImportResponse struct {
	Success     bool             `json:"success"`
	SessionID   uint             `json:"session_id,omitempty"`
	TotalRows   int              `json:"total_rows"`
	ParseErrors []string         `json:"parse_errors,omitempty"`
	Result      *importer.Result `json:"result,omitempty"`
}

// BuildEngine assembles a reconciliation engine, threading the optional
// publisher scope into every author lookup.
func (c *BookImportController) BuildEngine(publisherID uint) *importer.Engine {
	var authorStore importer.AuthorStore = c.authors
	if publisherID != 0 {
		authorStore = c.authors.WithPublisher(publisherID)
	}
	resource := importer.NewBookResource(authorStore, c.categories, c.cfg)
	return importer.NewEngine(resource, c.books)
}

// Import runs an uploaded CSV through the reconciliation engine and returns
// the full ordered outcome list.
func (c *BookImportController) Import(ctx *gin.Context) {
	file, _, err := ctx.Request.FormFile("csv_file")
	if err != nil {
		respondBadRequest(ctx, "No CSV file provided")
		return
	}
	defer file.Close()

	publisherID, err := parsePublisherID(ctx)
	if err != nil {
		respondBadRequest(ctx, "Invalid publisher_id")
		return
	}

	rows, parseErrors, err := parsers.ParseCSV(file)
	if err != nil {
		respondBadRequest(ctx, "Failed to parse CSV: "+err.Error())
		return
	}

	session, err := c.sessions.Create("csv_upload")
	if err != nil {
		respondInternalError(ctx, err)
		return
	}
	session.Status = entities.ImportStatusRunning
	session.TotalRows = len(rows)
	if err := c.sessions.Update(session); err != nil {
		respondInternalError(ctx, err)
		return
	}

	result, err := c.BuildEngine(publisherID).ImportRows(rows)
	if err != nil {
		c.finishSession(session, nil, err)
		respondUnavailable(ctx, err)
		return
	}

	c.finishSession(session, result, nil)
	c.logAudit(session, result, parseErrors)

	ctx.JSON(http.StatusOK, ImportResponse{
		Success:     true,
		SessionID:   session.ID,
		TotalRows:   len(rows),
		ParseErrors: parseErrors,
		Result:      result,
	})
}

// ImportAsync stores the upload on the task queue and returns immediately
// with the session ID to poll.
func (c *BookImportController) ImportAsync(ctx *gin.Context) {
	if c.tasks == nil {
		ctx.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "task queue is disabled"})
		return
	}

	file, _, err := ctx.Request.FormFile("csv_file")
	if err != nil {
		respondBadRequest(ctx, "No CSV file provided")
		return
	}
	defer file.Close()

	publisherID, err := parsePublisherID(ctx)
	if err != nil {
		respondBadRequest(ctx, "Invalid publisher_id")
		return
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		respondBadRequest(ctx, "Failed to read CSV upload")
		return
	}

	session, err := c.sessions.Create("csv_async")
	if err != nil {
		respondInternalError(ctx, err)
		return
	}

	task := tasks.ImportBatchTask{
		SessionID:   session.ID,
		PublisherID: publisherID,
		CSV:         string(payload),
	}
	if _, err := c.tasks.Add(task).Save(); err != nil {
		c.finishSession(session, nil, err)
		respondInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{
		"success":    true,
		"session_id": session.ID,
		"status":     session.Status,
	})
}

// GetSession reports the state of an import session.
func (c *BookImportController) GetSession(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(ctx, "Invalid session ID")
		return
	}

	session, err := c.sessions.Get(uint(id))
	if err != nil {
		respondNotFound(ctx, "import session")
		return
	}
	ctx.JSON(http.StatusOK, session)
}

// ListSessions returns recent import sessions, newest first.
func (c *BookImportController) ListSessions(ctx *gin.Context) {
	sessionList, err := c.sessions.List(50)
	if err != nil {
		respondInternalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sessionList)
}

func (c *BookImportController) finishSession(session *entities.ImportSession, result *importer.Result, cause error) {
	now := time.Now()
	session.FinishedAt = &now
	if cause != nil {
		session.Status = entities.ImportStatusFailed
		session.Error = cause.Error()
	} else {
		session.Status = entities.ImportStatusCompleted
		session.Created = result.Created
		session.Updated = result.Updated
		session.Deleted = result.Deleted
		session.Skipped = result.Skipped
		session.Failed = result.Failed
	}
	if err := c.sessions.Update(session); err != nil {
		log.Printf("Failed to update import session %d: %v", session.ID, err)
	}
}

func (c *BookImportController) logAudit(session *entities.ImportSession, result *importer.Result, parseErrors []string) {
	if c.auditor == nil {
		return
	}
	record := audit.ImportRecord{
		SessionID:   session.ID,
		Source:      session.Source,
		TotalRows:   session.TotalRows,
		Created:     result.Created,
		Updated:     result.Updated,
		Deleted:     result.Deleted,
		Skipped:     result.Skipped,
		Failed:      result.Failed,
		ParseErrors: parseErrors,
		HookErrors:  result.HookErrors,
	}
	if _, err := c.auditor.SaveImportRecord(record); err != nil {
		log.Printf("Failed to write audit record for session %d: %v", session.ID, err)
	}
}

func parsePublisherID(ctx *gin.Context) (uint, error) {
	raw := strings.TrimSpace(ctx.PostForm("publisher_id"))
	if raw == "" {
		raw = strings.TrimSpace(ctx.Query("publisher_id"))
	}
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
