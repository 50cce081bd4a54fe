package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/mroshb/hitched/internal/config"
	"github.com/mroshb/hitched/internal/database"
	"github.com/mroshb/hitched/internal/extraction"
	"github.com/mroshb/hitched/internal/metrics"
	"github.com/mroshb/hitched/internal/repositories"
	"github.com/mroshb/hitched/internal/repositories/memory"
	"github.com/mroshb/hitched/internal/safety"
	"github.com/mroshb/hitched/internal/server"
	"github.com/mroshb/hitched/internal/services"
	"github.com/mroshb/hitched/pkg/logger"
)

// application holds the stores and services shared by the commands.
type application struct {
	cfg      *config.Config
	db       *gorm.DB
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	pipeline *safety.Pipeline

	users    repositories.UserStore
	profiles repositories.ProfileStore
	matches  repositories.MatchStore
	tokens   repositories.TokenStore
	reports  repositories.SafetyReportStore
}

func newApplication(cfg *config.Config) (*application, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWithRegistry(reg)

	a := &application{
		cfg:      cfg,
		registry: reg,
		metrics:  m,
		pipeline: safety.NewPipeline(func(guard string, rule safety.Rule) {
			m.ObserveGuardRewrite(guard, rule.Category)
		}),
	}

	switch cfg.DBDriver {
	case config.DBDriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		a.users = memory.NewUserStore()
		a.profiles = memory.NewProfileStore()
		a.matches = memory.NewMatchStore()
		a.tokens = memory.NewTokenStore()
		a.reports = memory.NewSafetyReportStore()
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		a.db = db
		a.users = repositories.NewUserRepository(db)
		a.profiles = repositories.NewProfileRepository(db)
		a.matches = repositories.NewMatchRepository(db)
		a.tokens = repositories.NewTokenRepository(db)
		a.reports = repositories.NewSafetyReportRepository(db)
	}
	return a, nil
}

func (a *application) close() {
	if a.db == nil {
		return
	}
	if err := database.Close(a.db); err != nil {
		logger.Error("Failed to close database", "error", err)
	}
}

// ping backs the health endpoint; memory storage is always reachable.
func (a *application) ping() server.PingFunc {
	if a.db == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return database.Ping(ctx, a.db)
	}
}

// extractor prefers Gemini when a key is configured and falls back to keywords.
func (a *application) extractor(ctx context.Context) extraction.Extractor {
	if a.cfg.GeminiAPIKey == "" {
		logger.Info("GEMINI_API_KEY not set, using keyword extraction")
		return extraction.KeywordExtractor{}
	}
	gen, err := extraction.NewGenerator(ctx, a.cfg.GeminiAPIKey, a.cfg.GeminiModel)
	if err != nil {
		logger.Error("Failed to create Gemini client, using keyword extraction", "error", err)
		return extraction.KeywordExtractor{}
	}
	logger.Info("Gemini extraction enabled", "model", gen.Model())
	return extraction.Fallback{
		Primary:   extraction.NewGeminiExtractor(gen),
		Secondary: extraction.KeywordExtractor{},
	}
}

func (a *application) profileService(extractor extraction.Extractor) *services.ProfileService {
	return services.NewProfileService(a.profiles, extractor, a.metrics, a.cfg.GetExtractionTimeout())
}

func (a *application) matchService() *services.MatchService {
	return services.NewMatchService(services.MatchServiceOptions{
		Matches:   a.matches,
		Profiles:  a.profiles,
		Tokens:    a.tokens,
		Pipeline:  a.pipeline,
		Metrics:   a.metrics,
		Secret:    a.cfg.JWTSecret,
		InviteTTL: a.cfg.GetInviteTTL(),
	})
}

func (a *application) coachService() *services.CoachService {
	return services.NewCoachService(a.reports, a.pipeline)
}

func requirePostgres(cfg *config.Config) error {
	if cfg.DBDriver != config.DBDriverPostgres {
		return fmt.Errorf("this command needs DB_DRIVER=%s", config.DBDriverPostgres)
	}
	return nil
}
