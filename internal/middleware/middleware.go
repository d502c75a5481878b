package middleware

import (
	"github.com/Xirnus/offline-attendance-system-sub000/internal/config"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/database"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/logger"
)

// Middleware holds all HTTP middleware
type Middleware struct {
	rdb *database.Redis
	log *logger.Logger
	cfg *config.Config
}

// New creates a new Middleware instance
func New(rdb *database.Redis, log *logger.Logger, cfg *config.Config) *Middleware {
	return &Middleware{
		rdb: rdb,
		log: log,
		cfg: cfg,
	}
}
