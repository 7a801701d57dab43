package api

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/topic-scheduler/config"
	_ "github.com/d60-Lab/topic-scheduler/docs"
	"github.com/d60-Lab/topic-scheduler/internal/api/handler"
)

// earliest plausible epoch-ms value; anything below is almost certainly a
// seconds timestamp passed by mistake
const minEpochMS = int64(1e12)

// NewServer builds the ops HTTP server. The engine itself owns no protocol;
// everything here is host surface.
func NewServer(cfg *config.Config, h *handler.Handler) *http.Server {
	registerValidations()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(otelgin.Middleware("topic-scheduler"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(RateLimit(cfg.API.RateLimit, cfg.API.RateBurst))

	r.GET("/healthz", h.Healthz)
	r.GET("/swagger/*any", ginswagger.WrapHandler(swaggerfiles.Handler))

	v1 := r.Group("/api/v1")
	if cfg.API.JWTSecret != "" {
		v1.Use(BearerAuth(cfg.API.JWTSecret))
	}
	v1.GET("/scheduled", h.ListScheduled)
	v1.POST("/scheduled/:tid/reschedule", h.Reschedule)
	v1.POST("/sweep", h.Sweep)
	v1.GET("/promotions", h.ListPromotions)
	v1.GET("/promotions/:tid", h.TopicPromotions)

	return &http.Server{Addr: cfg.API.Addr, Handler: r}
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("epochms", func(fl validator.FieldLevel) bool {
			return fl.Field().Int() >= minEpochMS
		})
	}
}
