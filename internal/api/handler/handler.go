package handler

import (
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/topic-scheduler/internal/repository"
	"github.com/d60-Lab/topic-scheduler/internal/service"
)

type Handler struct {
	engine  *service.ScheduledTopics
	trigger *service.Trigger
	sets    repository.SortedSetRepository
	journal repository.JournalRepository // nil when auditing is disabled
	rdb     *redis.Client
}

func NewHandler(
	engine *service.ScheduledTopics,
	trigger *service.Trigger,
	sets repository.SortedSetRepository,
	journal repository.JournalRepository,
	rdb *redis.Client,
) *Handler {
	return &Handler{
		engine:  engine,
		trigger: trigger,
		sets:    sets,
		journal: journal,
		rdb:     rdb,
	}
}
