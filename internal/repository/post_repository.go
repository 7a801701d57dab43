package repository

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/topic-scheduler/internal/model"
)

// PostRepository 帖子记录与话题帖子集合
type PostRepository interface {
	// GetPids returns a topic's post ids in posting order.
	GetPids(ctx context.Context, tid string) ([]string, error)
	// GetPosts keeps input order; absent records come back as nil entries.
	GetPosts(ctx context.Context, pids []string) ([]*model.Post, error)
	// ShiftTimestamps rewrites post timestamps to base+1, base+2, ... in one
	// round trip. Index scores elsewhere are left alone, they already reflect
	// the correct relative order.
	ShiftTimestamps(ctx context.Context, pids []string, base int64) error
}

type postRepository struct {
	rdb *redis.Client
}

func NewPostRepository(rdb *redis.Client) PostRepository {
	return &postRepository{rdb: rdb}
}

func (r *postRepository) GetPids(ctx context.Context, tid string) ([]string, error) {
	return r.rdb.ZRange(ctx, TopicPostsKey(tid), 0, -1).Result()
}

func (r *postRepository) GetPosts(ctx context.Context, pids []string) ([]*model.Post, error) {
	if len(pids) == 0 {
		return nil, nil
	}
	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(pids))
	for i, pid := range pids {
		cmds[i] = pipe.HGetAll(ctx, PostKey(pid))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	posts := make([]*model.Post, len(pids))
	for i, cmd := range cmds {
		posts[i] = model.PostFromFields(cmd.Val())
	}
	return posts, nil
}

func (r *postRepository) ShiftTimestamps(ctx context.Context, pids []string, base int64) error {
	if len(pids) == 0 {
		return nil
	}
	pipe := r.rdb.Pipeline()
	for i, pid := range pids {
		pipe.HSet(ctx, PostKey(pid), model.PostFieldTimestamp, strconv.FormatInt(base+int64(i)+1, 10))
	}
	_, err := pipe.Exec(ctx)
	return err
}
