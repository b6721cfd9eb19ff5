package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  link TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time, readAt *time.Time) models.Notification {
	t.Helper()
	row := models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeOrderClaimed,
		Title:     "Order claimed",
		Message:   "Sami picked up order CMD-1.",
		ReadAt:    readAt,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestRepositoryNotificationReadFlow(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	stranger := uuid.New()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	alreadyRead := base.Add(-time.Hour)

	first := seedNotification(t, db, userID, base, nil)
	seedNotification(t, db, userID, base.Add(time.Minute), nil)
	seedNotification(t, db, userID, base.Add(2*time.Minute), &alreadyRead)
	seedNotification(t, db, stranger, base, nil)

	rows, _, err := repo.List(ctx, listNotificationsParams{UserID: userID, UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	now := base.Add(time.Hour)
	mark, err := repo.MarkRead(ctx, userID, first.ID, now)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.True(t, mark.Updated)

	mark, err = repo.MarkRead(ctx, userID, first.ID, now)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.False(t, mark.Updated, "second read must be a no-op")

	mark, err = repo.MarkRead(ctx, stranger, first.ID, now)
	require.NoError(t, err)
	assert.False(t, mark.Found, "rows are invisible across users")

	count, err := repo.MarkAllRead(ctx, userID, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	rows, _, err = repo.List(ctx, listNotificationsParams{UserID: userID, UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, rows)

	deleted, err := repo.DeleteReadBefore(ctx, now.Add(time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	rows, _, err = repo.List(ctx, listNotificationsParams{UserID: stranger})
	require.NoError(t, err)
	assert.Len(t, rows, 1, "unread rows survive cleanup")
}

func TestRepositoryNotificationPagination(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedNotification(t, db, userID, base.Add(time.Duration(i)*time.Minute), nil)
	}

	rows, next, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, next)
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt), "newest first")

	rows, next, err = repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, next)

	rows, next, err = repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Nil(t, next, "last page has no cursor")
}
