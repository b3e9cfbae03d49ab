package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusarena/campus-arena-api/internal/config"
	"github.com/campusarena/campus-arena-api/internal/logging"
	"github.com/campusarena/campus-arena-api/internal/media"
	"github.com/campusarena/campus-arena-api/internal/repository/minio"
	"github.com/campusarena/campus-arena-api/internal/repository/postgres"
	"github.com/campusarena/campus-arena-api/internal/repository/redis"
	"github.com/campusarena/campus-arena-api/internal/service"
	transporthttp "github.com/campusarena/campus-arena-api/internal/transport/http"
	"github.com/campusarena/campus-arena-api/internal/transport/mail"
	"github.com/campusarena/campus-arena-api/internal/transport/ws"
	"github.com/campusarena/campus-arena-api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash mirror disabled: %v", err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	minioClient, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect minio: %v", err)
	}
	storage := minio.NewStorage(minioClient, cfg.MinIOPublicURL, cfg.MinIOUseSSL)

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer redisClient.Close()
	presence := redis.NewPresenceStore(redisClient)

	users := postgres.NewUserRepo(db)
	resets := postgres.NewResetTokenRepo(db)
	otps := postgres.NewOTPRepo(db)
	groups := postgres.NewGroupRepo(db)
	messages := postgres.NewMessageRepo(db)
	talks := postgres.NewTalkRepo(db)

	mailer := mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.AppBaseURL)
	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	processor := media.NewFFMPEGProcessor(cfg.FFMPEGPath)

	hub := ws.NewHub(presence)
	go hub.Run()

	verification := service.NewVerificationService(resets, otps, users, cfg.ResetTokenTTL, cfg.OTPTTL)
	authService := service.NewAuthService(users, groups, verification, mailer, jwtManager, cfg.GoogleAudience, mail.CheckMX, cfg.DefaultGroupNames)
	profileService := service.NewProfileService(users, storage, presence, processor, cfg.MinIOBucketAvatar, cfg.AvatarMaxBytes)
	groupService := service.NewGroupService(groups, messages)
	messageService := service.NewMessageService(messages, users, hub)
	talkService := service.NewTalkService(talks)

	e := transporthttp.NewRouter(cfg.AllowOrigins)
	transporthttp.RegisterSwagger(e)
	transporthttp.RegisterAuth(e, authService)
	transporthttp.RegisterUsers(e, authService, profileService)
	transporthttp.RegisterGroups(e, authService, groupService)
	transporthttp.RegisterMessages(e, authService, messageService)
	transporthttp.RegisterTalks(e, authService, talkService)
	transporthttp.RegisterWebsocket(e, authService, hub)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
