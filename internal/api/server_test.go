package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/topic-scheduler/config"
	"github.com/d60-Lab/topic-scheduler/internal/api/handler"
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

func setupServer(t *testing.T, jwtSecret string) (*miniredis.Miniredis, http.Handler) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sets := repository.NewSortedSetRepository(rdb)
	topics := repository.NewTopicRepository(rdb)
	posts := repository.NewPostRepository(rdb)
	users := repository.NewUserRepository(rdb)
	engine := service.NewScheduledTopics(sets, topics, posts, users, noopNotifier{}, noopPusher{}, nil)
	trigger := service.NewTrigger(engine, "", nil)

	cfg := &config.Config{}
	cfg.API.Addr = ":0"
	cfg.API.RateLimit = 1000
	cfg.API.RateBurst = 1000
	cfg.API.JWTSecret = jwtSecret

	srv := NewServer(cfg, handler.NewHandler(engine, trigger, sets, nil, rdb))
	return mr, srv.Handler
}

func TestListScheduled(t *testing.T) {
	mr, h := setupServer(t, "")
	_, err := mr.ZAdd(repository.ScheduledKey, 1700000000000, "t1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/scheduled", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tid":"t1"`)
	assert.Contains(t, w.Body.String(), `"due":1700000000000`)
}

func TestRescheduleValidation(t *testing.T) {
	mr, h := setupServer(t, "")
	_, err := mr.ZAdd(repository.ScheduledKey, 1700000000000, "t1")
	require.NoError(t, err)
	mr.HSet("topic:t1", "tid", "t1", "cid", "1", "uid", "u1")

	// seconds instead of milliseconds must be rejected
	w := httptest.NewRecorder()
	body := strings.NewReader(`{"cid":"1","uid":"u1","timestamp":1700000000}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduled/t1/reschedule", body)
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	body = strings.NewReader(`{"cid":"1","uid":"u1","timestamp":1800000000000}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/scheduled/t1/reschedule", body)
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	score, err := mr.ZScore(repository.ScheduledKey, "t1")
	require.NoError(t, err)
	assert.Equal(t, float64(1800000000000), score)
}

func TestRescheduleUnknownTopic(t *testing.T) {
	_, h := setupServer(t, "")
	w := httptest.NewRecorder()
	body := strings.NewReader(`{"cid":"1","timestamp":1800000000000}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduled/ghost/reschedule", body)
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSweepEndpoint(t *testing.T) {
	mr, h := setupServer(t, "")
	due := time.Now().Add(-time.Minute).UnixMilli()
	mr.HSet("topic:t1", "tid", "t1", "cid", "1", "uid", "u1", "votes", "0")
	_, err := mr.ZAdd(repository.ScheduledKey, float64(due), "t1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sweep", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.False(t, mr.Exists(repository.ScheduledKey), "queue drained by manual sweep")
}

func TestBearerAuth(t *testing.T) {
	_, h := setupServer(t, "sekrit")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/scheduled", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("sekrit"))
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/scheduled", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays open
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
