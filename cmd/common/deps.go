// Package common wires the shared dependency graph used by every command.
package common

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusnotify/noticecrawl/internal/config"
	"github.com/campusnotify/noticecrawl/internal/database"
	"github.com/campusnotify/noticecrawl/internal/dispatcher"
	"github.com/campusnotify/noticecrawl/internal/extractor"
	"github.com/campusnotify/noticecrawl/internal/fetcher"
	"github.com/campusnotify/noticecrawl/internal/llm"
	"github.com/campusnotify/noticecrawl/internal/logger"
	"github.com/campusnotify/noticecrawl/internal/pipeline"
	"github.com/campusnotify/noticecrawl/internal/router"
	"github.com/campusnotify/noticecrawl/internal/scorer"
)

// Deps is the assembled dependency graph. Close the DB when done.
type Deps struct {
	Config        *config.Config
	Logger        logger.Interface
	DB            *sqlx.DB
	Users         database.UserRepositoryInterface
	Notifications database.NotificationRepositoryInterface
	Pipeline      *pipeline.Pipeline
	Service       *pipeline.Service
}

// New loads configuration and builds the full graph bottom-up.
func New() (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Development: cfg.Logger.Development,
	})

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	users := database.NewUserRepository(db)
	notifications := database.NewNotificationRepository(db)

	// A typed nil Completer would dodge the nil checks downstream, so the
	// variable stays untyped nil unless the service is configured.
	var completer llm.Completer
	if cfg.LLM.Enabled() {
		completer = llm.NewClient(cfg.LLM)
	}

	loc := cfg.Location()
	pageFetcher := fetcher.New(cfg.Fetcher, log)
	boardExtractor := extractor.NewBoardExtractor(loc, log)
	aiExtractor := extractor.NewAIExtractor(completer, log)
	siteRouter := router.New(boardExtractor, aiExtractor)
	relevance := scorer.New(completer, log)

	messenger := dispatcher.NewAlimtalkClient(cfg.Messaging)
	disp := dispatcher.New(notifications, messenger, log)

	pipe := pipeline.New(
		pageFetcher,
		siteRouter,
		relevance,
		completer,
		notifications,
		disp,
		cfg.Pipeline,
		log,
	)
	service := pipeline.NewService(pipe, users, disp, loc, log)

	return &Deps{
		Config:        cfg,
		Logger:        log,
		DB:            db,
		Users:         users,
		Notifications: notifications,
		Pipeline:      pipe,
		Service:       service,
	}, nil
}

// Close releases held resources.
func (d *Deps) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
