package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/topic-scheduler/internal/model"
	"github.com/d60-Lab/topic-scheduler/internal/repository"
	"github.com/d60-Lab/topic-scheduler/internal/service"
)

type noopNotifier struct{}

func (noopNotifier) NotifyFollowers(context.Context, string, *model.Topic, *model.Post) error {
	return nil
}

type noopPusher struct{}

func (noopPusher) PushNewTopic(context.Context, string, string, *service.NewTopicPayload) error {
	return nil
}

// sweepbench measures HandleExpired throughput against an embedded store.
func main() {
	mr, err := miniredis.Run()
	if err != nil { panic(err) }
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	TOPICS := 1000
	if s := os.Getenv("TOPICS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { TOPICS = v } }
	REPEAT := 20
	if s := os.Getenv("REPEAT"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { REPEAT = v } }

	ctx := context.Background()
	sets := repository.NewSortedSetRepository(rdb)
	topics := repository.NewTopicRepository(rdb)
	posts := repository.NewPostRepository(rdb)
	users := repository.NewUserRepository(rdb)
	engine := service.NewScheduledTopics(sets, topics, posts, users, noopNotifier{}, noopPusher{}, nil)

	seed := func(run int) {
		due := time.Now().Add(-time.Minute).UnixMilli()
		for i := 0; i < TOPICS; i++ {
			tid := fmt.Sprintf("t%d-%d", run, i)
			uid := fmt.Sprintf("u%d", i%100)
			mr.HSet("topic:"+tid,
				"tid", tid, "cid", "1", "uid", uid, "mainPid", "p"+tid,
				"timestamp", strconv.FormatInt(due, 10),
				"lastposttime", strconv.FormatInt(due, 10),
				"postcount", "1", "votes", "0", "viewcount", "0",
				"pinned", "1", "deleted", "1")
			mr.HSet("post:p"+tid, "pid", "p"+tid, "tid", tid, "uid", uid,
				"timestamp", strconv.FormatInt(due, 10))
			_, _ = mr.ZAdd("tid:"+tid+":posts", 1, "p"+tid)
			_, _ = mr.ZAdd(repository.ScheduledKey, float64(due), tid)
			_, _ = mr.ZAdd("cid:1:tids:pinned", float64(due), tid)
		}
	}

	durations := make([]time.Duration, 0, REPEAT)
	for run := 0; run < REPEAT; run++ {
		seed(run)
		st := time.Now()
		if err := engine.HandleExpired(ctx); err != nil { panic(err) }
		durations = append(durations, time.Since(st))
	}

	pct := func(vs []time.Duration, p float64) time.Duration {
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(float64(len(xs)) * p)
		if k >= len(xs) { k = len(xs) - 1 }
		return xs[k]
	}

	fmt.Printf("topics=%d repeat=%d\n", TOPICS, REPEAT)
	fmt.Printf("sweep p50=%v p90=%v p99=%v\n", pct(durations, 0.50), pct(durations, 0.90), pct(durations, 0.99))
}
