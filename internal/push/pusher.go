package push

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/topic-scheduler/internal/service"
	"github.com/d60-Lab/topic-scheduler/pkg/logger"
)

// Channel carries real-time new-topic events to connected frontends.
const Channel = "events:newTopic"

type event struct {
	Event   string                   `json:"event"`
	UID     string                   `json:"uid"`
	Payload *service.NewTopicPayload `json:"payload"`
}

// Pusher 默认的实时推送实现：redis pub/sub，队列异步投递
type Pusher struct {
	rdb *redis.Client
	ch  chan event
}

var _ service.Pusher = (*Pusher)(nil)

func NewPusher(rdb *redis.Client, queueSize int) *Pusher {
	if queueSize <= 0 {
		queueSize = 4096
	}
	return &Pusher{rdb: rdb, ch: make(chan event, queueSize)}
}

// Start launches publisher workers and returns a stop function that drains
// the queue for a short grace period.
func (p *Pusher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case ev := <-p.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					p.publish(ctx, ev)
					cancel()
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(p.ch) == 0 {
					return nil
				}
				time.Sleep(10 * time.Millisecond)
			}
		}
	}
}

// PushNewTopic enqueues the event; a full queue drops it with a warning
// rather than stalling a sweep.
func (p *Pusher) PushNewTopic(_ context.Context, uid, name string, payload *service.NewTopicPayload) error {
	select {
	case p.ch <- event{Event: name, UID: uid, Payload: payload}:
	default:
		logger.Warn("push queue full, drop event", zap.String("event", name), zap.String("uid", uid))
	}
	return nil
}

func (p *Pusher) publish(ctx context.Context, ev event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Warn("marshal push event", zap.Error(err))
		return
	}
	if err := p.rdb.Publish(ctx, Channel, data).Err(); err != nil {
		logger.Warn("publish push event", zap.String("channel", Channel), zap.Error(err))
	}
}
