package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"pricematch-service/internal/config"
	matchHnd "pricematch-service/internal/match/handler"
	"pricematch-service/internal/match/service"
	"pricematch-service/internal/middleware"
	"pricematch-service/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, m *service.Matcher) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	// health-check
	r.Get("/health", handlers.Health)

	// основные эндпоинты: JSON от сборщиков и ручная загрузка прайс-листов
	r.Post("/match", matchHnd.Match(m, logger))
	r.Post("/match/files", matchHnd.MatchFiles(m, logger))

	return r
}
