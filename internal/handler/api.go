package handler

import (
	"github.com/healthup/internal/logger"
	"github.com/healthup/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	log         *logger.Logger
	users       *service.UserService
	stats       *service.StatsService
	focus       *service.FocusService
	learning    *service.LearningService
	habits      *service.HabitService
	challenges  *service.ChallengeService
	mindfulness *service.MindfulnessService
	study       *service.StudyService
	rewards     *service.RewardService
	insights    *service.InsightService
	system      *service.SystemSettingService
}

// NewAPI constructs a handler set with shared services.
// settings may be pre-configured with environment defaults; nil builds a bare one.
func NewAPI(db *gorm.DB, settings *service.SystemSettingService, log *logger.Logger) *API {
	if settings == nil {
		settings = service.NewSystemSettingService(db)
	}
	if log == nil {
		log = logger.Nop()
	}

	evaluator := service.NewRewardEvaluator()
	tracker := service.NewChallengeTracker()

	return &API{
		db:          db,
		log:         log,
		users:       service.NewUserService(db),
		stats:       service.NewStatsService(db),
		focus:       service.NewFocusService(db, evaluator),
		learning:    service.NewLearningService(db, evaluator),
		habits:      service.NewHabitService(db, tracker),
		challenges:  service.NewChallengeService(db),
		mindfulness: service.NewMindfulnessService(db),
		study:       service.NewStudyService(db),
		rewards:     service.NewRewardService(db),
		insights:    service.NewInsightService(db, settings, log),
		system:      settings,
	}
}

// DB exposes the underlying gorm instance for health checks.
func (a *API) DB() *gorm.DB {
	return a.db
}
