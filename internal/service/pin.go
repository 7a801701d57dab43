package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/topic-scheduler/internal/model"
	"github.com/d60-Lab/topic-scheduler/internal/repository"
)

// Pin hides a topic from the four public category indexes and parks it in the
// pinned index. The creation path calls this when a topic enters scheduled
// state; the usual pin tooling is admin-gated, hence the local version.
func (s *ScheduledTopics) Pin(ctx context.Context, tid string, topic *model.Topic) error {
	now := s.nowFn().UnixMilli()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.topics.SetField(gctx, tid, model.FieldPinned, "1")
	})
	g.Go(func() error {
		return s.sets.Add(gctx, repository.CategoryPinnedKey(topic.CID), float64(now), tid)
	})
	g.Go(func() error {
		return s.sets.RemoveBulk(gctx, repository.CategoryPublicKeys(topic.CID), tid)
	})
	return g.Wait()
}

// Unpin is the promotion half: pinned flag off, pin expiry cleared, and the
// topic inserted into all four public indexes scored from its current
// counters, as one batched write.
func (s *ScheduledTopics) Unpin(ctx context.Context, tid string, topic *model.Topic) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.topics.SetField(gctx, tid, model.FieldPinned, "0")
	})
	g.Go(func() error {
		return s.topics.DeleteField(gctx, tid, model.FieldPinExpiry)
	})
	g.Go(func() error {
		return s.sets.Remove(gctx, repository.CategoryPinnedKey(topic.CID), tid)
	})
	g.Go(func() error {
		return s.sets.AddBulk(gctx, []repository.SortedSetEntry{
			{Key: repository.CategoryTopicsKey(topic.CID), Score: float64(topic.LastPostTime), Member: tid},
			{Key: repository.CategoryPostsKey(topic.CID), Score: float64(topic.PostCount), Member: tid},
			{Key: repository.CategoryVotesKey(topic.CID), Score: float64(topic.VoteScore()), Member: tid},
			{Key: repository.CategoryViewsKey(topic.CID), Score: float64(topic.ViewCount), Member: tid},
		})
	})
	return g.Wait()
}
