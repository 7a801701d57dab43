package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/topic-scheduler/internal/model"
	"github.com/d60-Lab/topic-scheduler/internal/repository"
)

type notifyCall struct {
	uid  string
	tid  string
	post *model.Post
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (f *fakeNotifier) NotifyFollowers(_ context.Context, uid string, topic *model.Topic, mainPost *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{uid: uid, tid: topic.TID, post: mainPost})
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type pushCall struct {
	uid     string
	event   string
	payload *NewTopicPayload
}

type fakePusher struct {
	mu    sync.Mutex
	calls []pushCall
}

func (f *fakePusher) PushNewTopic(_ context.Context, uid, event string, payload *NewTopicPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pushCall{uid: uid, event: event, payload: payload})
	return nil
}

func (f *fakePusher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// countingUsers records lastposttime writes while delegating to the real
// repository.
type countingUsers struct {
	repository.UserRepository
	mu     sync.Mutex
	writes []string
}

func (c *countingUsers) SetUserField(ctx context.Context, uid, field, value string) error {
	c.mu.Lock()
	c.writes = append(c.writes, uid+"="+field+":"+value)
	c.mu.Unlock()
	return c.UserRepository.SetUserField(ctx, uid, field, value)
}

func (c *countingUsers) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

type engineFixture struct {
	mr       *miniredis.Miniredis
	rdb      *redis.Client
	engine   *ScheduledTopics
	sets     repository.SortedSetRepository
	notifier *fakeNotifier
	pusher   *fakePusher
	users    *countingUsers
	now      time.Time
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sets := repository.NewSortedSetRepository(rdb)
	topics := repository.NewTopicRepository(rdb)
	posts := repository.NewPostRepository(rdb)
	users := &countingUsers{UserRepository: repository.NewUserRepository(rdb)}
	notifier := &fakeNotifier{}
	pusher := &fakePusher{}

	engine := NewScheduledTopics(sets, topics, posts, users, notifier, pusher, nil)
	now := time.UnixMilli(1700000000000)
	engine.nowFn = func() time.Time { return now }

	return &engineFixture{
		mr:       mr,
		rdb:      rdb,
		engine:   engine,
		sets:     sets,
		notifier: notifier,
		pusher:   pusher,
		users:    users,
		now:      now,
	}
}

type seedTopic struct {
	tid          string
	cid          string
	uid          string
	due          int64
	lastposttime int64
	votes        string
	postcount    int64
	viewcount    int64
	posts        []seedPost // child posts in order
}

type seedPost struct {
	pid       string
	timestamp int64
}

// seed writes a scheduled topic the way the creation path leaves it: pinned,
// hidden, queued in topics:scheduled, absent from the public indexes.
func (f *engineFixture) seed(t *testing.T, st seedTopic) {
	t.Helper()
	if st.cid == "" {
		st.cid = "1"
	}
	if st.votes == "" {
		st.votes = "0"
	}
	mainPid := ""
	if len(st.posts) > 0 {
		mainPid = st.posts[0].pid
	}
	f.mr.HSet("topic:"+st.tid,
		"tid", st.tid,
		"cid", st.cid,
		"uid", st.uid,
		"mainPid", mainPid,
		"timestamp", strconv.FormatInt(st.due, 10),
		"lastposttime", strconv.FormatInt(st.lastposttime, 10),
		"postcount", strconv.FormatInt(st.postcount, 10),
		"votes", st.votes,
		"viewcount", strconv.FormatInt(st.viewcount, 10),
		"pinned", "1",
		"deleted", "1",
	)
	for i, p := range st.posts {
		f.mr.HSet("post:"+p.pid,
			"pid", p.pid,
			"tid", st.tid,
			"uid", st.uid,
			"content", "post "+p.pid,
			"timestamp", strconv.FormatInt(p.timestamp, 10),
		)
		_, err := f.mr.ZAdd(repository.TopicPostsKey(st.tid), float64(i+1), p.pid)
		require.NoError(t, err)
	}
	_, err := f.mr.ZAdd(repository.ScheduledKey, float64(st.due), st.tid)
	require.NoError(t, err)
	_, err = f.mr.ZAdd(repository.CategoryPinnedKey(st.cid), float64(st.due), st.tid)
	require.NoError(t, err)
}

func (f *engineFixture) seedUser(t *testing.T, uid, username string, lastposttime int64) {
	t.Helper()
	f.mr.HSet("user:"+uid,
		"username", username,
		"lastposttime", strconv.FormatInt(lastposttime, 10),
	)
}

func (f *engineFixture) score(t *testing.T, key, member string) (float64, bool) {
	t.Helper()
	score, ok, err := f.sets.Score(context.Background(), key, member)
	require.NoError(t, err)
	return score, ok
}

// requirePublic asserts the pinned-XOR-public index invariant for a visible
// topic.
func (f *engineFixture) requirePublic(t *testing.T, cid, tid string) {
	t.Helper()
	for _, key := range repository.CategoryPublicKeys(cid) {
		_, ok := f.score(t, key, tid)
		require.True(t, ok, "expected %s in %s", tid, key)
	}
	_, pinned := f.score(t, repository.CategoryPinnedKey(cid), tid)
	require.False(t, pinned, "expected %s out of pinned index", tid)
}

func (f *engineFixture) requirePinnedOnly(t *testing.T, cid, tid string) {
	t.Helper()
	for _, key := range repository.CategoryPublicKeys(cid) {
		_, ok := f.score(t, key, tid)
		require.False(t, ok, "expected %s out of %s", tid, key)
	}
	_, pinned := f.score(t, repository.CategoryPinnedKey(cid), tid)
	require.True(t, pinned, "expected %s in pinned index", tid)
}
