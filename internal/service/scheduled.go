package service

import (
	"context"
	"strconv"
	"time"

	"github.com/d60-Lab/topic-scheduler/internal/model"
	"github.com/d60-Lab/topic-scheduler/internal/repository"
)

// FollowerNotifier delivers a "new topic" notification to the followers of
// the topic's owner. Provided by the host; see internal/notify for the
// redis-backed default.
type FollowerNotifier interface {
	NotifyFollowers(ctx context.Context, uid string, topic *model.Topic, mainPost *model.Post) error
}

// Pusher emits a real-time event to live subscribers. Fire-and-forget
// relative to notifications; see internal/push for the pub/sub default.
type Pusher interface {
	PushNewTopic(ctx context.Context, uid, event string, payload *NewTopicPayload) error
}

// NewTopicPayload is the transient view handed to push subscribers.
type NewTopicPayload struct {
	Posts []*model.Post `json:"posts"`
	Topic *model.Topic  `json:"topic"`
}

// ScheduledTopics 定时发布引擎：到期话题的晋升、置顶切换、改期
type ScheduledTopics struct {
	sets     repository.SortedSetRepository
	topics   repository.TopicRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	notifier FollowerNotifier
	pusher   Pusher
	journal  repository.JournalRepository // optional, nil disables auditing

	nowFn func() time.Time
}

func NewScheduledTopics(
	sets repository.SortedSetRepository,
	topics repository.TopicRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	notifier FollowerNotifier,
	pusher Pusher,
	journal repository.JournalRepository,
) *ScheduledTopics {
	return &ScheduledTopics{
		sets:     sets,
		topics:   topics,
		posts:    posts,
		users:    users,
		notifier: notifier,
		pusher:   pusher,
		journal:  journal,
		nowFn:    time.Now,
	}
}

// updateLastPostTime recomputes a topic's lastposttime from its most recent
// child post and stores it. Returns 0 when the topic has no posts.
func (s *ScheduledTopics) updateLastPostTime(ctx context.Context, tid string) (int64, error) {
	pids, err := s.posts.GetPids(ctx, tid)
	if err != nil {
		return 0, err
	}
	if len(pids) == 0 {
		return 0, nil
	}
	posts, err := s.posts.GetPosts(ctx, pids[len(pids)-1:])
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 || posts[0] == nil {
		return 0, nil
	}
	ts := posts[0].Timestamp
	if err := s.topics.SetField(ctx, tid, model.FieldLastPostTime, strconv.FormatInt(ts, 10)); err != nil {
		return 0, err
	}
	return ts, nil
}
