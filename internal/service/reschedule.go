package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/topic-scheduler/internal/repository"
)

// ReschedulePayload carries a due-time change for a still-pending topic.
// Permission checks belong to the caller.
type ReschedulePayload struct {
	CID       string
	TID       string
	UID       string
	Timestamp int64 // new due time, epoch ms
}

// Reschedule moves a pending topic to a new due time. The pending-queue entry
// is overwritten in place (same member, new score), never duplicated, and the
// topic's child posts are shifted so their timestamps stay strictly
// increasing above the new due time.
func (s *ScheduledTopics) Reschedule(ctx context.Context, p ReschedulePayload) error {
	keys := []string{repository.ScheduledKey, repository.TopicsByTimestampKey}
	if p.UID != "" && p.UID != "0" {
		keys = append(keys, repository.UserTopicsKey(p.UID), repository.CategoryUserTopicsKey(p.CID, p.UID))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.sets.AddAll(gctx, keys, float64(p.Timestamp), p.TID)
	})
	g.Go(func() error {
		return s.shiftPostTimes(gctx, p.TID, p.Timestamp)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reschedule topic %s: %w", p.TID, err)
	}

	_, err := s.updateLastPostTime(ctx, p.TID)
	return err
}

// shiftPostTimes rewrites the child posts' timestamps to newTimestamp+1,
// +2, ... preserving relative order. Other index scores already reflect post
// order and are left alone.
func (s *ScheduledTopics) shiftPostTimes(ctx context.Context, tid string, timestamp int64) error {
	pids, err := s.posts.GetPids(ctx, tid)
	if err != nil {
		return err
	}
	return s.posts.ShiftTimestamps(ctx, pids, timestamp)
}
