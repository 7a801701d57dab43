package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/topic-scheduler/internal/model"
)

// JournalRepository 晋升审计流水（gorm）
type JournalRepository interface {
	Append(ctx context.Context, rows []model.Promotion) error
	Recent(ctx context.Context, limit int) ([]model.Promotion, error)
	ForTopic(ctx context.Context, tid string) ([]model.Promotion, error)
}

type journalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) Append(ctx context.Context, rows []model.Promotion) error {
	if len(rows) == 0 {
		return nil
	}
	// 幂等：重复追加不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *journalRepository) Recent(ctx context.Context, limit int) ([]model.Promotion, error) {
	if limit < 1 {
		limit = 50
	}
	var rows []model.Promotion
	err := r.db.WithContext(ctx).Order("promoted_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *journalRepository) ForTopic(ctx context.Context, tid string) ([]model.Promotion, error) {
	var rows []model.Promotion
	err := r.db.WithContext(ctx).Where("tid = ?", tid).Order("promoted_at DESC").Find(&rows).Error
	return rows, err
}
