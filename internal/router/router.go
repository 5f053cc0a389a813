package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/healthup/internal/handler"
	"github.com/healthup/internal/logger"
	"github.com/healthup/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	sessionName = "healthup_session"
	serviceName = "healthup"
)

// Options 描述路由层的可选项
type Options struct {
	SessionSecret  string
	CORSOrigins    []string
	MetricsEnabled bool
	TracingEnabled bool
	// InsightLimiter 为空时不限制建议生成频率
	InsightLimiter *middleware.RateLimiter
	Logger         *logger.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	secret := opts.SessionSecret
	if secret == "" {
		secret = "healthup-dev-secret"
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())
	if opts.TracingEnabled {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(middleware.RequestLogger(log))
	if opts.MetricsEnabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.CORS(opts.CORSOrigins))

	// 配置会话中间件
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 7 * 24 * 3600, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/healthz", api.HealthCheck)
	if opts.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	apiGroup := r.Group("/api")

	auth := apiGroup.Group("/auth")
	{
		auth.POST("/register", api.Register)
		auth.POST("/login", api.Login)
		auth.POST("/logout", api.Logout)
	}

	// 需要登录的接口
	authed := apiGroup.Group("")
	authed.Use(middleware.AuthRequired())
	{
		authed.GET("/users/me", api.GetMe)
		authed.PUT("/users/me", api.UpdateMe)
		authed.GET("/users/stats", api.GetStats)

		authed.GET("/sessions/focus", api.ListFocusSessions)
		authed.POST("/sessions/focus", api.StartFocusSession)
		authed.PUT("/sessions/focus/:id/complete", api.CompleteFocusSession)

		learning := authed.Group("/learning")
		{
			learning.GET("/categories", api.ListCategories)
			learning.GET("/lessons", api.ListLessons)
			learning.GET("/lessons/personalized", api.PersonalizedLessons)
			learning.GET("/lessons/:id", api.GetLesson)
			learning.POST("/lessons/:id/complete", api.CompleteLesson)
		}

		health := authed.Group("/health")
		{
			health.GET("/habits", api.ListHabitTargets)
			health.PUT("/habits/:type", api.SetHabitTarget)
			health.GET("/logs", api.ListHabitLogs)
			health.POST("/log", api.LogHabit)
		}

		wellness := authed.Group("/wellness")
		{
			wellness.GET("/challenges", api.ListChallenges)
			wellness.POST("/challenges/:id/join", api.JoinChallenge)
		}

		mindfulness := authed.Group("/mindfulness")
		{
			mindfulness.GET("/exercises", api.ListExercises)
			mindfulness.GET("/sessions", api.ListMindfulnessSessions)
			mindfulness.POST("/complete", api.CompleteMindfulness)
		}

		study := authed.Group("/study")
		{
			study.GET("/materials", api.ListMaterials)
			study.POST("/materials", api.CreateMaterial)
			study.GET("/sessions", api.ListStudySessions)
			study.POST("/sessions", api.CreateStudySession)
			study.PUT("/sessions/:id/start", api.StartStudySession)
			study.PUT("/sessions/:id/complete", api.CompleteStudySession)
		}

		authed.GET("/rewards", api.ListRewards)

		ai := authed.Group("/ai")
		{
			ai.GET("/insights", api.ListInsights)
			if opts.InsightLimiter != nil {
				ai.POST("/generate-insight", opts.InsightLimiter.Handler(), api.GenerateInsight)
			} else {
				ai.POST("/generate-insight", api.GenerateInsight)
			}
		}

		system := authed.Group("/system")
		{
			system.GET("/ai-settings", api.GetSystemSettings)
			system.PUT("/ai-settings", api.UpdateSystemSettings)
			system.POST("/ai-settings/test", api.TestAIConnection)
		}
	}

	return r
}
