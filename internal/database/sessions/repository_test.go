package sessions

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bookbatch/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_sessions_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.ImportSession{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func TestRepository_CreateStartsPending(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	session, err := repo.Create("books.csv")

	require.NoError(t, err)
	assert.NotZero(t, session.ID)
	assert.Equal(t, "books.csv", session.Source)
	assert.Equal(t, entities.ImportStatusPending, session.Status)
	assert.False(t, session.StartedAt.IsZero())
	assert.Nil(t, session.FinishedAt)
}

func TestRepository_UpdateAndGet(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	session, err := repo.Create("books.csv")
	require.NoError(t, err)

	now := time.Now()
	session.Status = entities.ImportStatusCompleted
	session.TotalRows = 10
	session.Created = 7
	session.Failed = 3
	session.FinishedAt = &now
	require.NoError(t, repo.Update(session))

	got, err := repo.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusCompleted, got.Status)
	assert.Equal(t, 10, got.TotalRows)
	assert.Equal(t, 7, got.Created)
	assert.Equal(t, 3, got.Failed)
	require.NotNil(t, got.FinishedAt)
}

func TestRepository_ListMostRecentFirst(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	older := &entities.ImportSession{Source: "old.csv", Status: entities.ImportStatusCompleted, StartedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.Create(older).Error)
	newer := &entities.ImportSession{Source: "new.csv", Status: entities.ImportStatusPending, StartedAt: time.Now()}
	require.NoError(t, db.Create(newer).Error)

	sessions, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new.csv", sessions[0].Source)

	limited, err := repo.List(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRepository_DeleteStale(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	old := time.Now().Add(-48 * time.Hour)
	stale := &entities.ImportSession{Source: "stale.csv", Status: entities.ImportStatusCompleted, StartedAt: old, FinishedAt: &old}
	require.NoError(t, db.Create(stale).Error)

	recent := time.Now()
	fresh := &entities.ImportSession{Source: "fresh.csv", Status: entities.ImportStatusCompleted, StartedAt: recent, FinishedAt: &recent}
	require.NoError(t, db.Create(fresh).Error)

	// Unfinished sessions are never reaped regardless of age.
	running := &entities.ImportSession{Source: "running.csv", Status: entities.ImportStatusRunning, StartedAt: old}
	require.NoError(t, db.Create(running).Error)

	deleted, err := repo.DeleteStale(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	sessions, err := repo.List(0)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
