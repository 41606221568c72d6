package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/bioxim/meeti/pkg/logger"
	"github.com/bioxim/meeti/pkg/meeti/admin"
	"github.com/bioxim/meeti/pkg/meeti/attend"
	"github.com/bioxim/meeti/pkg/meeti/auth"
	"github.com/bioxim/meeti/pkg/meeti/comments"
	"github.com/bioxim/meeti/pkg/meeti/config"
	"github.com/bioxim/meeti/pkg/meeti/database"
	"github.com/bioxim/meeti/pkg/meeti/flash"
	"github.com/bioxim/meeti/pkg/meeti/groups"
	"github.com/bioxim/meeti/pkg/meeti/mailer"
	"github.com/bioxim/meeti/pkg/meeti/meetings"
	"github.com/bioxim/meeti/pkg/meeti/models"
	"github.com/bioxim/meeti/pkg/meeti/public"
	"github.com/bioxim/meeti/pkg/meeti/uploads"
	"github.com/bioxim/meeti/pkg/meeti/users"
	"github.com/google/uuid"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// Connect to database
	if err := database.Connect(cfg.DBPath); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database migrations completed")

	// Seed the category reference data (must exist before any group creation)
	if err := ensureCategoriesExist(); err != nil {
		log.Fatal().Err(err).Msg("failed to seed categories")
	}

	if cfg.JWTSecret != "" {
		auth.SetSecret(cfg.JWTSecret)
	}

	// Redis backs the token blacklist and flash queue when configured;
	// otherwise in-process stores keep a single-node deployment working.
	var revoker auth.Revoker
	var flashStore flash.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		revoker = auth.NewRedisRevoker(client)
		flashStore = flash.NewRedisStore(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis stores")
	} else {
		revoker = auth.NewMemoryRevoker()
		flashStore = flash.NewMemoryStore()
		log.Info().Msg("using in-memory stores")
	}

	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			From: cfg.SMTP.From,
		})
	} else {
		mail = mailer.NewLogMailer(log)
	}

	files := uploads.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)

	// Set up Gin router
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Uploaded images are served as static files
	r.Static("/uploads", cfg.Uploads.Dir)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		authHandler := auth.NewHandler(database.GetDB(), revoker, mail, cfg.BaseURL)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Public read routes (meeting pages, group pages, profiles, categories)
		publicHandler := public.NewHandler(database.GetDB())
		publicHandler.RegisterRoutes(api.Group(""))

		attendHandler := attend.NewHandler(database.GetDB())
		attendHandler.RegisterPublicRoutes(api.Group(""))

		// Everything below requires a valid, non-revoked session
		authed := api.Group("", auth.Middleware(revoker))

		// Flash notifications (one-shot queue)
		flashHandler := flash.NewHandler(flashStore)
		flashHandler.RegisterRoutes(authed)

		// Groups routes
		groupsHandler := groups.NewHandler(database.GetDB(), files, flashStore)
		groupsHandler.RegisterRoutes(authed.Group("/groups"))

		// Meetings routes
		meetingsHandler := meetings.NewHandler(database.GetDB(), flashStore)
		meetingsHandler.RegisterRoutes(authed.Group("/meetings"))

		// Profile routes
		usersHandler := users.NewHandler(database.GetDB(), files, flashStore, revoker)
		usersHandler.RegisterRoutes(authed)

		// RSVP and comments
		attendHandler.RegisterRoutes(authed)

		commentsHandler := comments.NewHandler(database.GetDB(), flashStore)
		commentsHandler.RegisterRoutes(authed)

		// Admin panel
		adminHandler := admin.NewHandler(database.GetDB())
		adminHandler.RegisterRoutes(authed.Group("/admin"))
	}

	log.Info().Str("port", cfg.Port).Msg("starting meeti server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// seedCategories is the fixed reference list groups are filed under.
var seedCategories = []string{
	"Learning",
	"Dance",
	"Drinks",
	"Courses and Workshops",
	"Sports",
	"Design",
	"Cultural Identity",
	"Fashion",
	"Music",
	"Parenting",
	"Technology",
	"Travel and Adventure",
}

// ensureCategoriesExist creates any missing categories from the seed list.
// Existing rows are left untouched so the seed is safe to run on every boot.
func ensureCategoriesExist() error {
	db := database.GetDB()

	for _, name := range seedCategories {
		var existing models.Category
		err := db.Where("name = ?", name).First(&existing).Error
		if err == nil {
			continue
		}

		category := models.Category{
			ID:   uuid.New(),
			Name: name,
			Slug: slugify(name),
		}
		if err := db.Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}

func slugify(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		case r == ' ' || r == '-':
			out = append(out, '-')
		}
	}
	return string(out)
}
