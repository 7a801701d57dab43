package service

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/topic-scheduler/internal/model"
)

// sendNotifications enriches each promoted topic's main post with its author
// name and parent topic, then dispatches follower notifications and real-time
// push events. The two dispatches per topic are independent of each other and
// of other topics.
func (s *ScheduledTopics) sendNotifications(ctx context.Context, uids []string, topicsData []*model.Topic) error {
	if len(topicsData) == 0 {
		return nil
	}
	userFields, err := s.users.GetUsersFields(ctx, uids, []string{"username"})
	if err != nil {
		return fmt.Errorf("resolve usernames: %w", err)
	}
	usernameByUID := make(map[string]string, len(uids))
	for i, uid := range uids {
		usernameByUID[uid] = userFields[i]["username"]
	}

	mainPids := make([]string, len(topicsData))
	for i, t := range topicsData {
		mainPids[i] = t.MainPID
	}
	postsData, err := s.posts.GetPosts(ctx, mainPids)
	if err != nil {
		return fmt.Errorf("get main posts: %w", err)
	}
	for i, p := range postsData {
		if p == nil {
			continue
		}
		p.AuthorName = usernameByUID[p.UID]
		p.Topic = topicsData[i]
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range topicsData {
		t, post := t, postsData[i]
		if !t.IsGuest() {
			g.Go(func() error {
				return s.notifier.NotifyFollowers(gctx, t.UID, t, post)
			})
		}
		g.Go(func() error {
			return s.pusher.PushNewTopic(gctx, t.UID, "newTopic", &NewTopicPayload{
				Posts: []*model.Post{post},
				Topic: t,
			})
		})
	}
	return g.Wait()
}

// updateUserLastposttimes raises each owner's stored lastposttime to the
// maximum across their promoted topics. Monotonic: a value is written only
// when it strictly exceeds the stored one, one write per owner.
func (s *ScheduledTopics) updateUserLastposttimes(ctx context.Context, uids []string, topicsData []*model.Topic) error {
	if len(uids) == 0 {
		return nil
	}
	userFields, err := s.users.GetUsersFields(ctx, uids, []string{"lastposttime"})
	if err != nil {
		return fmt.Errorf("get user lastposttimes: %w", err)
	}

	maxByUID := make(map[string]int64, len(uids))
	for _, t := range topicsData {
		if t.IsGuest() {
			continue
		}
		if t.LastPostTime > maxByUID[t.UID] {
			maxByUID[t.UID] = t.LastPostTime
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, uid := range uids {
		stored, _ := strconv.ParseInt(userFields[i]["lastposttime"], 10, 64)
		if maxByUID[uid] <= stored {
			continue
		}
		uid, next := uid, maxByUID[uid]
		g.Go(func() error {
			return s.users.SetUserField(gctx, uid, "lastposttime", strconv.FormatInt(next, 10))
		})
	}
	return g.Wait()
}
