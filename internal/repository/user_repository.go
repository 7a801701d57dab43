package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// UserRepository 用户字段读写与粉丝集合
type UserRepository interface {
	GetUserField(ctx context.Context, uid, field string) (string, error)
	// GetUsersFields keeps input order, one field map per uid.
	GetUsersFields(ctx context.Context, uids, fields []string) ([]map[string]string, error)
	SetUserField(ctx context.Context, uid, field, value string) error
	Followers(ctx context.Context, uid string) ([]string, error)
}

type userRepository struct {
	rdb *redis.Client
}

func NewUserRepository(rdb *redis.Client) UserRepository {
	return &userRepository{rdb: rdb}
}

func (r *userRepository) GetUserField(ctx context.Context, uid, field string) (string, error) {
	val, err := r.rdb.HGet(ctx, UserKey(uid), field).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (r *userRepository) GetUsersFields(ctx context.Context, uids, fields []string) ([]map[string]string, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.SliceCmd, len(uids))
	for i, uid := range uids {
		cmds[i] = pipe.HMGet(ctx, UserKey(uid), fields...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	out := make([]map[string]string, len(uids))
	for i, cmd := range cmds {
		m := make(map[string]string, len(fields))
		for j, v := range cmd.Val() {
			if s, ok := v.(string); ok {
				m[fields[j]] = s
			}
		}
		out[i] = m
	}
	return out, nil
}

func (r *userRepository) SetUserField(ctx context.Context, uid, field, value string) error {
	return r.rdb.HSet(ctx, UserKey(uid), field, value).Err()
}

func (r *userRepository) Followers(ctx context.Context, uid string) ([]string, error) {
	return r.rdb.ZRange(ctx, FollowersKey(uid), 0, -1).Result()
}
