package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"aboard/internal/auth"
	"aboard/internal/config"
	apphttp "aboard/internal/http"
	"aboard/internal/purger"
	"aboard/internal/repository/sqlite"
	"aboard/internal/service"
	"aboard/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	categoryRepo := sqlite.NewCategoryRepository(db)
	tagRepo := sqlite.NewTagRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)

	if err := sqlite.Migrate(ctx, userRepo, categoryRepo, tagRepo, postRepo, commentRepo); err != nil {
		logger.Fatalf("init repositories: %v", err)
	}

	codec, err := auth.NewTokenCodec(cfg.Auth.TokenKey, cfg.Auth.Algorithm)
	if err != nil {
		logger.Fatalf("token codec: %v", err)
	}
	userService := service.NewUserService(userRepo, auth.NewPasswords(cfg.Auth.BcryptCost), codec)

	if cfg.Admin.Email != "" {
		if err := userService.EnsureMaster(ctx, cfg.Admin.Email, cfg.Admin.Name, cfg.Admin.Password); err != nil {
			logger.Fatalf("bootstrap admin: %v", err)
		}
		logger.Infof("admin account %s ready", cfg.Admin.Email)
	}

	services := apphttp.Services{
		Users:      userService,
		Comments:   service.NewCommentService(commentRepo, postRepo),
		Categories: service.NewCategoryService(categoryRepo, postRepo, logger),
		Tags:       service.NewTagService(tagRepo),
	}

	var manager purger.Manager
	if cfg.Storage.Bucket != "" {
		storageSvc, err := buildStorage(ctx, cfg, logger)
		if err != nil {
			logger.Fatalf("setup storage: %v", err)
		}

		manager = purger.NewManager(purger.Config{
			Bucket:        cfg.Storage.Bucket,
			KeyPrefix:     cfg.Storage.KeyPrefix,
			MaxConcurrent: cfg.Purger.MaxConcurrent,
			Logger:        logger,
		}, storageSvc)
		if err := manager.Start(ctx); err != nil {
			logger.Fatalf("start purger: %v", err)
		}

		services.Posts = service.NewPostService(postRepo, categoryRepo, manager, logger)
		services.Attachments = service.NewAttachmentService(service.AttachmentConfig{
			Bucket:    cfg.Storage.Bucket,
			KeyPrefix: cfg.Storage.KeyPrefix,
			URLTTL:    cfg.URLTTL(),
			MaxSize:   cfg.MaxUploadBytes(),
		}, postRepo, storageSvc, logger)
	} else {
		logger.Info("storage bucket not set, attachments disabled")
		services.Posts = service.NewPostService(postRepo, categoryRepo, nil, logger)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(services, auth.NewResolver(codec, userRepo), logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	if manager != nil {
		manager.Shutdown()
	}

	logger.Info("bye")
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
