package handler

import (
	"github.com/Xirnus/offline-attendance-system-sub000/internal/config"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/database"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/logger"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/ratelimit"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/repository"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/service"
)

// Handler holds all HTTP handlers
type Handler struct {
	db           *database.Postgres
	rdb          *database.Redis
	log          *logger.Logger
	cfg          *config.Config
	issuanceGate *ratelimit.SlidingWindow
	tokenSvc     *service.TokenService
	checkinSvc   *service.CheckinService
	sessionSvc   *service.SessionService
	policySvc    *service.PolicyService
	students     *repository.StudentRepository
	attendance   *repository.AttendanceRepository
	fingerprints *repository.FingerprintRepository
}

// New creates a new Handler instance
func New(
	db *database.Postgres,
	rdb *database.Redis,
	log *logger.Logger,
	cfg *config.Config,
	issuanceGate *ratelimit.SlidingWindow,
	tokenSvc *service.TokenService,
	checkinSvc *service.CheckinService,
	sessionSvc *service.SessionService,
	policySvc *service.PolicyService,
	students *repository.StudentRepository,
	attendance *repository.AttendanceRepository,
	fingerprints *repository.FingerprintRepository,
) *Handler {
	return &Handler{
		db:           db,
		rdb:          rdb,
		log:          log,
		cfg:          cfg,
		issuanceGate: issuanceGate,
		tokenSvc:     tokenSvc,
		checkinSvc:   checkinSvc,
		sessionSvc:   sessionSvc,
		policySvc:    policySvc,
		students:     students,
		attendance:   attendance,
		fingerprints: fingerprints,
	}
}
