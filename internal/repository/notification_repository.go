package repository

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/topic-scheduler/internal/model"
)

// NotificationRepository 通知落库与粉丝收件箱扇出
type NotificationRepository interface {
	// Push stores the notification and adds its id to every recipient's
	// inbox, scored by the notification time. One pipelined round trip.
	Push(ctx context.Context, n *model.Notification, uids []string) error
	// Inbox returns a recipient's notification ids, newest first.
	Inbox(ctx context.Context, uid string) ([]string, error)
}

type notificationRepository struct {
	rdb *redis.Client
}

func NewNotificationRepository(rdb *redis.Client) NotificationRepository {
	return &notificationRepository{rdb: rdb}
}

func (r *notificationRepository) Push(ctx context.Context, n *model.Notification, uids []string) error {
	if len(uids) == 0 {
		return nil
	}
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, "notification:"+n.NID, n.Fields())
	for _, uid := range uids {
		pipe.ZAdd(ctx, UserNotificationsKey(uid), redis.Z{Score: float64(n.Datetime), Member: n.NID})
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *notificationRepository) Inbox(ctx context.Context, uid string) ([]string, error) {
	return r.rdb.ZRevRange(ctx, UserNotificationsKey(uid), 0, -1).Result()
}
