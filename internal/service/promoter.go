package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/topic-scheduler/internal/model"
	"github.com/d60-Lab/topic-scheduler/internal/repository"
	"github.com/d60-Lab/topic-scheduler/pkg/logger"
)

var tracer = otel.Tracer("github.com/d60-Lab/topic-scheduler/internal/service")

// HandleExpired runs one sweep: every topic due by now is restored to public
// visibility, unpinned into its category indexes, fanned out to followers and
// pruned from the pending queue. Safe to re-run; a second sweep with nothing
// due is a no-op. Nothing is rolled back on failure — topics still in the
// pending queue are retried on the next tick.
func (s *ScheduledTopics) HandleExpired(ctx context.Context) error {
	now := s.nowFn().UnixMilli()
	nowStr := strconv.FormatInt(now, 10)

	ctx, span := tracer.Start(ctx, "scheduled.sweep")
	defer span.End()

	// inclusive upper bound: topics due exactly at now promote this sweep
	tids, err := s.sets.RangeByScore(ctx, repository.ScheduledKey, "-inf", nowStr)
	if err != nil {
		return fmt.Errorf("range scheduled set: %w", err)
	}
	if len(tids) == 0 {
		return nil
	}

	fetched, err := s.topics.GetTopics(ctx, tids)
	if err != nil {
		return fmt.Errorf("get topics: %w", err)
	}
	// 话题可能已被并发删除，直接过滤
	topicsData := make([]*model.Topic, 0, len(fetched))
	for _, t := range fetched {
		if t != nil && t.TID != "" {
			topicsData = append(topicsData, t)
		}
	}
	uids := distinctOwners(topicsData)

	span.SetAttributes(
		attribute.Int("sweep.due", len(tids)),
		attribute.Int("sweep.topics", len(topicsData)),
		attribute.Int("sweep.owners", len(uids)),
	)

	// Restoration must complete first: unpin scores and the notification
	// fan-out read the restored lastposttime.
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range topicsData {
		t := t
		g.Go(func() error {
			return s.topics.Restore(gctx, t.TID)
		})
		g.Go(func() error {
			ts, err := s.updateLastPostTime(gctx, t.TID)
			if err != nil {
				return err
			}
			if ts > 0 {
				t.LastPostTime = ts
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("restore scheduled topics: %w", err)
	}

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.sendNotifications(gctx, uids, topicsData)
	})
	g.Go(func() error {
		return s.updateUserLastposttimes(gctx, uids, topicsData)
	})
	for _, t := range topicsData {
		t := t
		g.Go(func() error {
			return s.Unpin(gctx, t.TID, t)
		})
	}
	g.Go(func() error {
		// prune by score, not by the promoted id set: entries whose record
		// vanished must not stay queued forever
		return s.sets.RemoveRangeByScore(gctx, []string{repository.ScheduledKey}, "-inf", nowStr)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("promote scheduled topics: %w", err)
	}

	s.appendJournal(ctx, topicsData)
	return nil
}

// appendJournal records the sweep's promotions. Auditing is advisory and
// never fails a sweep.
func (s *ScheduledTopics) appendJournal(ctx context.Context, topicsData []*model.Topic) {
	if s.journal == nil || len(topicsData) == 0 {
		return
	}
	sweepID := uuid.New().String()
	promotedAt := s.nowFn()
	rows := make([]model.Promotion, len(topicsData))
	for i, t := range topicsData {
		rows[i] = model.Promotion{
			ID:         uuid.New().String(),
			SweepID:    sweepID,
			TID:        t.TID,
			CID:        t.CID,
			UID:        t.UID,
			DueAt:      t.Timestamp,
			PromotedAt: promotedAt,
		}
	}
	if err := s.journal.Append(ctx, rows); err != nil {
		logger.Warn("append promotion journal", zap.String("sweep", sweepID), zap.Error(err))
	}
}

func distinctOwners(topicsData []*model.Topic) []string {
	seen := make(map[string]struct{}, len(topicsData))
	uids := make([]string, 0, len(topicsData))
	for _, t := range topicsData {
		if t.IsGuest() {
			continue
		}
		if _, ok := seen[t.UID]; ok {
			continue
		}
		seen[t.UID] = struct{}{}
		uids = append(uids, t.UID)
	}
	return uids
}
