package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/topic-scheduler/internal/model"
)

func setupJournal(t *testing.T) JournalRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Promotion{}))
	return NewJournalRepository(db)
}

func promotionRow(tid, uid string, promotedAt time.Time) model.Promotion {
	return model.Promotion{
		ID:         uuid.New().String(),
		SweepID:    uuid.New().String(),
		TID:        tid,
		CID:        "1",
		UID:        uid,
		DueAt:      promotedAt.Add(-time.Minute).UnixMilli(),
		PromotedAt: promotedAt,
	}
}

func TestJournalAppendAndRecent(t *testing.T) {
	repo := setupJournal(t)
	ctx := context.Background()
	base := time.Now()

	rows := []model.Promotion{
		promotionRow("t1", "u1", base.Add(-2*time.Minute)),
		promotionRow("t2", "u2", base.Add(-time.Minute)),
		promotionRow("t1", "u1", base),
	}
	require.NoError(t, repo.Append(ctx, rows))
	require.NoError(t, repo.Append(ctx, nil))

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "t1", recent[0].TID)
	assert.Equal(t, "t2", recent[1].TID)

	forTopic, err := repo.ForTopic(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, forTopic, 2)
}

func TestJournalAppendIdempotent(t *testing.T) {
	repo := setupJournal(t)
	ctx := context.Background()
	row := promotionRow("t1", "u1", time.Now())

	require.NoError(t, repo.Append(ctx, []model.Promotion{row}))
	require.NoError(t, repo.Append(ctx, []model.Promotion{row}), "duplicate append must not error")

	rows, err := repo.ForTopic(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
