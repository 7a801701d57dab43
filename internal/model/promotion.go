package model

import "time"

// Promotion 晋升流水（审计用，gorm）
type Promotion struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	SweepID    string    `gorm:"column:sweep_id;type:varchar(36);index:idx_promotion_sweep"`
	TID        string    `gorm:"column:tid;type:varchar(32);index:idx_promotion_tid"`
	CID        string    `gorm:"column:cid;type:varchar(32)"`
	UID        string    `gorm:"column:uid;type:varchar(32)"`
	DueAt      int64     `gorm:"column:due_at"` // scheduled due time, epoch ms
	PromotedAt time.Time `gorm:"column:promoted_at;index"`
}

func (Promotion) TableName() string { return "promotions" }
