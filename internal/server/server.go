package server

import (
	"net/http"
	"slices"
	"time"

	"anoa.com/devsearch/internal/config"
	"anoa.com/devsearch/internal/jobs"
	"anoa.com/devsearch/internal/middleware"
	"anoa.com/devsearch/pkg/storage"
	"anoa.com/devsearch/pkg/token"
	"anoa.com/devsearch/pkg/validator"

	adminHttp "anoa.com/devsearch/internal/modules/admin/delivery/http"
	adminService "anoa.com/devsearch/internal/modules/admin/service"

	attachmentHttp "anoa.com/devsearch/internal/modules/attachment/delivery/http"
	attachmentRepo "anoa.com/devsearch/internal/modules/attachment/repository"
	attachmentService "anoa.com/devsearch/internal/modules/attachment/service"

	messageHttp "anoa.com/devsearch/internal/modules/message/delivery/http"
	messageRepo "anoa.com/devsearch/internal/modules/message/repository"
	messageService "anoa.com/devsearch/internal/modules/message/service"

	profileHttp "anoa.com/devsearch/internal/modules/profile/delivery/http"
	profileRepo "anoa.com/devsearch/internal/modules/profile/repository"
	profileService "anoa.com/devsearch/internal/modules/profile/service"

	projectHttp "anoa.com/devsearch/internal/modules/project/delivery/http"
	projectRepo "anoa.com/devsearch/internal/modules/project/repository"
	projectService "anoa.com/devsearch/internal/modules/project/service"

	searchHttp "anoa.com/devsearch/internal/modules/search/delivery/http"
	searchService "anoa.com/devsearch/internal/modules/search/service"

	skillHttp "anoa.com/devsearch/internal/modules/skill/delivery/http"
	skillRepo "anoa.com/devsearch/internal/modules/skill/repository"
	skillService "anoa.com/devsearch/internal/modules/skill/service"

	statHttp "anoa.com/devsearch/internal/modules/stat/delivery/http"
	statRepo "anoa.com/devsearch/internal/modules/stat/repository"
	statService "anoa.com/devsearch/internal/modules/stat/service"

	tagHttp "anoa.com/devsearch/internal/modules/tag/delivery/http"
	tagRepo "anoa.com/devsearch/internal/modules/tag/repository"
	tagService "anoa.com/devsearch/internal/modules/tag/service"

	userHttp "anoa.com/devsearch/internal/modules/user/delivery/http"
	userRepo "anoa.com/devsearch/internal/modules/user/repository"
	userService "anoa.com/devsearch/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the external clients the server wires into its modules. Every
// field except DB may be nil; the matching feature then degrades.
type Deps struct {
	DB           *gorm.DB
	Redis        *redis.Client
	ImageStorage storage.ImageStorage
	Search       searchService.SearchService
	Scheduler    *jobs.Scheduler
}

type Server struct {
	engine *gin.Engine
}

func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	db := deps.DB

	if err := validator.Register(); err != nil {
		return nil, err
	}

	var indexer searchService.Indexer = searchService.NoopIndexer{}
	if deps.Search != nil {
		indexer = deps.Search
	}

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL, deps.Redis)

	userRepository := userRepo.NewUserRepository(db)
	profileRepository := profileRepo.NewProfileRepository(db)
	projectRepository := projectRepo.NewProjectRepository(db)
	reviewRepository := projectRepo.NewReviewRepository(db)
	skillRepository := skillRepo.NewSkillRepository(db)
	tagRepository := tagRepo.NewTagRepository(db)
	attachmentRepository := attachmentRepo.NewAttachmentRepository(db)
	messageRepository := messageRepo.NewMessageRepository(db)
	statRepository := statRepo.NewStatRepository(db)
	searchSource := searchService.NewSource(projectRepository, profileRepository)

	authSvc := userService.NewAuthService(userRepository, tokens)
	authHandler := userHttp.NewAuthHandler(authSvc)

	profileSvc := profileService.NewProfileService(profileRepository, userRepository, projectRepository, deps.ImageStorage, indexer, cfg.CloudinaryUploadFolder)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	skillSvc := skillService.NewSkillService(skillRepository, profileRepository, indexer)
	skillHandler := skillHttp.NewSkillHandler(skillSvc)

	projectSvc := projectService.NewProjectService(projectRepository, reviewRepository, profileRepository, tagRepository, attachmentRepository, projectService.Options{
		RedisClient:     deps.Redis,
		ImageStorage:    deps.ImageStorage,
		Indexer:         indexer,
		UploadFolder:    cfg.CloudinaryUploadFolder,
		CreateRateLimit: cfg.RateLimitProject,
	})
	projectHandler := projectHttp.NewProjectHandler(projectSvc)

	tagSvc := tagService.NewTagService(tagRepository)
	tagHandler := tagHttp.NewTagHandler(tagSvc)

	attachmentSvc := attachmentService.NewAttachmentService(attachmentRepository, profileRepository, deps.ImageStorage, cfg.CloudinaryUploadFolder)
	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentSvc)

	messageSvc := messageService.NewMessageService(messageRepository, profileRepository, deps.Redis, cfg.AnonMessageDailyQuota)
	messageHandler := messageHttp.NewMessageHandler(messageSvc, deps.Redis, cfg.Origins())

	searchHandler := searchHttp.NewSearchHandler(deps.Search)

	adminSvc := adminService.NewAdminService(userRepository, profileSvc, deps.Search, searchSource)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	statSvc := statService.NewStatService(statRepository)
	statHandler := statHttp.NewStatHandler(statSvc)

	if deps.Scheduler != nil {
		if err := deps.Scheduler.Register(jobs.CleanupAttachments(cfg.CleanupSchedule, attachmentSvc)); err != nil {
			return nil, err
		}
		if deps.Search != nil {
			if err := deps.Scheduler.Register(jobs.ReindexSearch(cfg.ReindexSchedule, deps.Search, searchSource)); err != nil {
				return nil, err
			}
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	setupCORS(router, cfg.Origins())

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepository, tokens)

	api := router.Group("/api")

	// Public routes (no auth required)
	api.GET("/profiles", profileHandler.GetProfiles)
	api.GET("/profiles/:id", profileHandler.GetProfile)
	api.GET("/projects", projectHandler.GetProjects)
	api.GET("/projects/:id", projectHandler.GetProject)
	api.GET("/tags", tagHandler.GetTags)
	api.GET("/search", searchHandler.Search)
	api.GET("/stats", statHandler.GetStats)
	api.POST("/auth/register", authHandler.Register)

	// Routes that behave differently for signed-in callers
	optional := api.Group("")
	optional.Use(authMiddleware.OptionalAuth())
	{
		optional.POST("/auth/login", authHandler.Login)
		optional.POST("/profiles/:id/messages", messageHandler.SendMessage)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)

		protected.GET("/account", profileHandler.GetAccount)
		protected.PUT("/account", profileHandler.UpdateAccount)
		protected.DELETE("/account", profileHandler.DeleteAccount)

		protected.POST("/skills", skillHandler.CreateSkill)
		protected.PUT("/skills/:id", skillHandler.UpdateSkill)
		protected.DELETE("/skills/:id", skillHandler.DeleteSkill)

		protected.POST("/projects", projectHandler.CreateProject)
		protected.PUT("/projects/:id", projectHandler.UpdateProject)
		protected.DELETE("/projects/:id", projectHandler.DeleteProject)
		protected.POST("/projects/:id/reviews", projectHandler.AddReview)

		protected.GET("/inbox", messageHandler.GetInbox)
		protected.GET("/inbox/ws", messageHandler.StreamInbox)
		protected.GET("/inbox/:id", messageHandler.GetMessage)

		protected.POST("/uploads", attachmentHandler.UploadAttachment)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.DELETE("/profiles/:id", adminHandler.DeleteProfile)
			adminGroup.POST("/tags", tagHandler.CreateTag)
			adminGroup.DELETE("/tags/:id", tagHandler.DeleteTag)
			adminGroup.POST("/search/reindex", adminHandler.Reindex)
		}
	}

	return &Server{engine: router}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// HTTPServer wraps the router with the timeouts used in production.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func setupCORS(router *gin.Engine, origins []string) {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		// browsers reject credentials with a wildcard origin
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = origins
	}

	router.Use(cors.New(corsConfig))
}
