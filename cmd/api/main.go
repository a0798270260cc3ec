package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"mediavault/internal/config"
	"mediavault/internal/database"
	"mediavault/internal/middleware"
	"mediavault/internal/modules/admin"
	"mediavault/internal/modules/auth"
	"mediavault/internal/modules/file"
	"mediavault/internal/modules/profile"
	jwtsvc "mediavault/internal/pkg/jwt"
	"mediavault/internal/pkg/logger"
	"mediavault/internal/pkg/mailer"
	"mediavault/internal/repository"
	"mediavault/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logg := logger.New(cfg.LogFile, cfg.Debug)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logg.WithError(err).Fatal("database connection failed")
	}
	if err := repository.AutoMigrate(db); err != nil {
		logg.WithError(err).Fatal("schema migration failed")
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	tempCodeRepo := repository.NewTempCodeRepository(db)
	fileRepo := repository.NewFileRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	var mail auth.Mailer
	if cfg.SMTP.Configured() {
		mail = mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	} else {
		logg.Warn("SMTP is not configured, recovery codes are logged instead of mailed")
		mail = mailer.NewConsoleMailer(logg)
	}

	localStore, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		logg.WithError(err).Fatal("local storage init failed")
	}

	var mediaStore file.MediaStore
	if cfg.Media.Configured() {
		ms, err := storage.NewMediaStore(cfg.Media)
		if err != nil {
			logg.WithError(err).Fatal("media storage init failed")
		}
		mediaStore = ms
	} else {
		logg.Info("remote media store is not configured, remote backend disabled")
	}

	authService := auth.NewService(userRepo, tempCodeRepo, j, mail, logg)
	authHandler := auth.NewHandler(authService)

	adminService := admin.NewService(userRepo, profileRepo, logg)
	adminHandler := admin.NewHandler(adminService)

	profileService := profile.NewService(userRepo, profileRepo)
	profileHandler := profile.NewHandler(profileService)

	fileService := file.NewService(fileRepo, localStore, mediaStore, logg)
	fileHandler := file.NewHandler(fileService, localStore.ResolveURL, cfg.StagingDir, cfg.StorageBackend)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger(logg))

	r.Static("/uploads", cfg.UploadDir)

	v1 := r.Group("/api/v1")
	{
		// public, gated by the shared service token
		public := v1.Group("/")
		public.Use(middleware.ServiceToken(cfg.ServiceToken))
		{
			authHandler.RegisterRoutes(public)
		}

		authenticated := v1.Group("/")
		authenticated.Use(middleware.JWTAuth(j))
		{
			adminOnly := authenticated.Group("/")
			adminOnly.Use(middleware.AdminOnly())
			{
				fileHandler.RegisterRoutes(adminOnly)

				adminGroup := adminOnly.Group("/admin")
				adminHandler.RegisterRoutes(adminGroup)
			}

			userGroup := authenticated.Group("/users")
			userGroup.Use(middleware.RequireRole("user"))
			{
				profileHandler.RegisterRoutes(userGroup)
			}
		}
	}

	logg.WithField("port", cfg.Port).Info("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logg.WithError(err).Fatal("server stopped")
	}
}
