package repository

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/topic-scheduler/internal/model"
)

// TopicRepository 话题记录的字段级读写
type TopicRepository interface {
	// GetTopic returns nil, nil when the record does not resolve.
	GetTopic(ctx context.Context, tid string) (*model.Topic, error)
	// GetTopics keeps input order; absent records come back as nil entries.
	GetTopics(ctx context.Context, tids []string) ([]*model.Topic, error)
	SetField(ctx context.Context, tid, field, value string) error
	DeleteField(ctx context.Context, tid, field string) error
	// Restore clears the deleted state, making the topic publicly visible.
	Restore(ctx context.Context, tid string) error
}

type topicRepository struct {
	rdb *redis.Client
}

func NewTopicRepository(rdb *redis.Client) TopicRepository {
	return &topicRepository{rdb: rdb}
}

func (r *topicRepository) GetTopic(ctx context.Context, tid string) (*model.Topic, error) {
	fields, err := r.rdb.HGetAll(ctx, TopicKey(tid)).Result()
	if err != nil {
		return nil, err
	}
	return model.TopicFromFields(fields), nil
}

func (r *topicRepository) GetTopics(ctx context.Context, tids []string) ([]*model.Topic, error) {
	if len(tids) == 0 {
		return nil, nil
	}
	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(tids))
	for i, tid := range tids {
		cmds[i] = pipe.HGetAll(ctx, TopicKey(tid))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	topics := make([]*model.Topic, len(tids))
	for i, cmd := range cmds {
		topics[i] = model.TopicFromFields(cmd.Val())
	}
	return topics, nil
}

func (r *topicRepository) SetField(ctx context.Context, tid, field, value string) error {
	return r.rdb.HSet(ctx, TopicKey(tid), field, value).Err()
}

func (r *topicRepository) DeleteField(ctx context.Context, tid, field string) error {
	return r.rdb.HDel(ctx, TopicKey(tid), field).Err()
}

func (r *topicRepository) Restore(ctx context.Context, tid string) error {
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, TopicKey(tid), model.FieldDeleted, "0")
	pipe.HDel(ctx, TopicKey(tid), model.FieldDeleterUID)
	_, err := pipe.Exec(ctx)
	return err
}
