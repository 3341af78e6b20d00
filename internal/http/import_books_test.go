package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bookbatch/internal/database/authors"
	"bookbatch/internal/database/books"
	"bookbatch/internal/database/categories"
	"bookbatch/internal/database/sessions"
	"bookbatch/internal/entities"
	"bookbatch/internal/exporters"
	"bookbatch/internal/importer"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Category{},
		&entities.Book{},
		&entities.ImportSession{},
	)
	require.NoError(t, err)

	importController := NewBookImportController(
		books.NewRepository(db),
		authors.NewRepository(db),
		categories.NewRepository(db),
		sessions.NewRepository(db),
		nil, // no audit dir in tests
		nil, // task queue disabled
		importer.DefaultResourceConfig(),
	)
	exportController := NewBookExportController(
		books.NewRepository(db),
		exporters.NewCSVExporter("2006-01-02", "|"),
	)

	router := gin.New()
	router.POST("/import/books", importController.Import)
	router.POST("/import/books/async", importController.ImportAsync)
	router.GET("/import/sessions", importController.ListSessions)
	router.GET("/import/sessions/:id", importController.GetSession)
	router.GET("/export/books.csv", exportController.Export)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return router, db, cleanup
}

func csvUpload(t *testing.T, csv string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("csv_file", "books.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestImport_Success(t *testing.T) {
	router, db, cleanup := setupRouter(t)
	defer cleanup()

	body, contentType := csvUpload(t, "name,author,price\nDune,Frank Herbert,15\nFoundation,Isaac Asimov,12\n", nil)

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/import/books", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(response, req)

	require.Equal(t, http.StatusOK, response.Code)

	var parsed ImportResponse
	require.NoError(t, json.NewDecoder(response.Body).Decode(&parsed))
	assert.True(t, parsed.Success)
	assert.Equal(t, 2, parsed.TotalRows)
	require.NotNil(t, parsed.Result)
	assert.Equal(t, 2, parsed.Result.Created)

	var count int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestImport_RowFailuresReportedPerRow(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	body, contentType := csvUpload(t, "name,price\nDune,15\nBad,-1\n", nil)

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/import/books", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(response, req)

	require.Equal(t, http.StatusOK, response.Code)

	var parsed ImportResponse
	require.NoError(t, json.NewDecoder(response.Body).Decode(&parsed))
	assert.Equal(t, 1, parsed.Result.Created)
	assert.Equal(t, 1, parsed.Result.Failed)
}

func TestImport_MissingFile(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/import/books", nil)
	router.ServeHTTP(response, req)

	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestImport_InvalidPublisherID(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	body, contentType := csvUpload(t, "name\nDune\n", map[string]string{"publisher_id": "abc"})

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/import/books", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(response, req)

	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestImport_PublisherScopesAuthors(t *testing.T) {
	router, db, cleanup := setupRouter(t)
	defer cleanup()

	for _, publisher := range []string{"1", "2"} {
		body, contentType := csvUpload(t, "name,author\nDune "+publisher+",Frank Herbert\n", map[string]string{"publisher_id": publisher})
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/import/books", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(response, req)
		require.Equal(t, http.StatusOK, response.Code)
	}

	// Each publisher scope resolves the name to its own author record.
	var count int64
	require.NoError(t, db.Model(&entities.Author{}).Where("name = ?", "Frank Herbert").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestImport_SessionRecorded(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	body, contentType := csvUpload(t, "name\nDune\n", nil)
	response := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/import/books", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(response, req)
	require.Equal(t, http.StatusOK, response.Code)

	var parsed ImportResponse
	require.NoError(t, json.NewDecoder(response.Body).Decode(&parsed))
	require.NotZero(t, parsed.SessionID)

	response = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/import/sessions/"+strconv.Itoa(int(parsed.SessionID)), nil)
	router.ServeHTTP(response, req)
	require.Equal(t, http.StatusOK, response.Code)

	var session entities.ImportSession
	require.NoError(t, json.NewDecoder(response.Body).Decode(&session))
	assert.Equal(t, entities.ImportStatusCompleted, session.Status)
	assert.Equal(t, 1, session.Created)
	assert.NotNil(t, session.FinishedAt)
}

func TestGetSession_NotFound(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/import/sessions/999", nil)
	router.ServeHTTP(response, req)

	assert.Equal(t, http.StatusNotFound, response.Code)
}

func TestListSessions(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	body, contentType := csvUpload(t, "name\nDune\n", nil)
	response := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/import/books", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(response, req)
	require.Equal(t, http.StatusOK, response.Code)

	response = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/import/sessions", nil)
	router.ServeHTTP(response, req)

	require.Equal(t, http.StatusOK, response.Code)
	var sessionList []entities.ImportSession
	require.NoError(t, json.NewDecoder(response.Body).Decode(&sessionList))
	assert.Len(t, sessionList, 1)
}

func TestImportAsync_DisabledWithoutQueue(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	body, contentType := csvUpload(t, "name\nDune\n", nil)
	response := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/import/books/async", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(response, req)

	assert.Equal(t, http.StatusServiceUnavailable, response.Code)
}

func TestExport_RoundTrip(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	body, contentType := csvUpload(t, "name,author,price,published_date\nDune,Frank Herbert,15,1965-08-01\n", nil)
	response := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/import/books", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(response, req)
	require.Equal(t, http.StatusOK, response.Code)

	response = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/export/books.csv", nil)
	router.ServeHTTP(response, req)

	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "text/csv", response.Header().Get("Content-Type"))
	assert.Contains(t, response.Body.String(), "Dune,Frank Herbert,,15,1965-08-01,")
}
