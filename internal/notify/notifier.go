package notify

import (
	"context"
	"fmt"

	"github.com/d60-Lab/topic-scheduler/internal/model"
	"github.com/d60-Lab/topic-scheduler/internal/repository"
	"github.com/d60-Lab/topic-scheduler/internal/service"
)

// Notifier 默认的粉丝通知实现：通知落库 + 扇出到粉丝收件箱
type Notifier struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
}

var _ service.FollowerNotifier = (*Notifier)(nil)

func NewNotifier(users repository.UserRepository, notifications repository.NotificationRepository) *Notifier {
	return &Notifier{users: users, notifications: notifications}
}

func (n *Notifier) NotifyFollowers(ctx context.Context, uid string, topic *model.Topic, mainPost *model.Post) error {
	followers, err := n.users.Followers(ctx, uid)
	if err != nil {
		return fmt.Errorf("list followers of %s: %w", uid, err)
	}
	if len(followers) == 0 {
		return nil
	}

	body := ""
	if mainPost != nil {
		body = mainPost.Content
	}
	notification := &model.Notification{
		NID:       fmt.Sprintf("new_topic:tid:%s:uid:%s", topic.TID, uid),
		Type:      "new-topic",
		TID:       topic.TID,
		FromUID:   uid,
		BodyShort: body,
		Path:      "/topic/" + topic.TID,
		Datetime:  topic.LastPostTime,
	}
	return n.notifications.Push(ctx, notification, followers)
}
