package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mockmate-ai/mockmate/config"
	"github.com/mockmate-ai/mockmate/internal/api/handlers"
	"github.com/mockmate-ai/mockmate/internal/api/middleware"
	"github.com/mockmate-ai/mockmate/internal/api/routes"
	"github.com/mockmate-ai/mockmate/internal/cache"
	"github.com/mockmate-ai/mockmate/internal/feedback"
	"github.com/mockmate-ai/mockmate/internal/logger"
	"github.com/mockmate-ai/mockmate/internal/providers/llm"
	"github.com/mockmate-ai/mockmate/internal/providers/stt"
	mongorepo "github.com/mockmate-ai/mockmate/internal/repositories/mongo"
	pgrepo "github.com/mockmate-ai/mockmate/internal/repositories/postgres"
	"github.com/mockmate-ai/mockmate/internal/services"
	"github.com/mockmate-ai/mockmate/internal/storage"
	"github.com/mockmate-ai/mockmate/internal/voice"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Datastores
	pg, err := config.NewPostgres()
	if err != nil {
		log.WithError(err).Fatal("postgres init failed")
	}

	mongoClient, err := config.NewMongo(ctx)
	if err != nil {
		log.WithError(err).Fatal("mongo init failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	mongoDB := config.MongoDatabase(mongoClient)
	if err := config.EnsureMongoIndexes(ctx, mongoDB); err != nil {
		log.WithError(err).Fatal("mongo index bootstrap failed")
	}

	rdb, err := config.NewRedis(ctx)
	if err != nil {
		log.WithError(err).Fatal("redis init failed")
	}
	defer rdb.Close()

	// Providers
	gemini, err := llm.NewVertexGemini(ctx,
		os.Getenv("GCP_PROJECT_ID"),
		envOr("GCP_LOCATION", "us-central1"),
		envOr("GEMINI_MODEL", "gemini-1.5-pro"),
	)
	if err != nil {
		log.WithError(err).Fatal("vertex init failed")
	}
	defer gemini.Close()

	speech, err := stt.NewGoogleSpeech(ctx)
	if err != nil {
		log.WithError(err).Fatal("speech init failed")
	}
	defer speech.Close()

	gcs, err := storage.NewGCSStore(ctx, os.Getenv("GCS_BUCKET"))
	if err != nil {
		log.WithError(err).Fatal("gcs init failed")
	}
	defer gcs.Close()

	// Repositories
	feedbackRepo := pgrepo.NewFeedbackRepo(pg)
	resumeRepo := pgrepo.NewResumeRepo(pg)
	sessionRepo := mongorepo.NewSessionRepo(mongoDB)
	bufferRepo := mongorepo.NewBufferRepo(mongoDB)

	// Voice gateway and workers
	gateway := &voice.Gateway{
		Redis:  rdb,
		Chunks: bufferRepo,
		STT:    speech,
		LLM:    gemini,
		Logger: log,
	}
	if err := gateway.Start(ctx); err != nil {
		log.WithError(err).Fatal("voice gateway start failed")
	}

	// Services
	redisCache := cache.NewRedisCache(rdb)
	reportSvc := services.NewReportService(feedbackRepo, redisCache)
	pipeline := feedback.NewPipeline(gemini, feedbackRepo, log)
	feedbackSvc := services.NewFeedbackService(pipeline, resumeRepo, reportSvc, log)
	resumeSvc := services.NewResumeService(resumeRepo, gcs, gcs, gemini, log)
	bufferSvc := services.NewBufferService(bufferRepo)
	interviewSvc := services.NewInterviewService(ctx, sessionRepo, resumeSvc, feedbackSvc, gateway, log)

	// HTTP
	gin.SetMode(envOr("GIN_MODE", gin.ReleaseMode))
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Session:  handlers.NewSessionHandler(interviewSvc),
		Feedback: handlers.NewFeedbackHandler(feedbackSvc),
		Report:   handlers.NewReportHandler(reportSvc),
		Resume:   handlers.NewResumeHandler(resumeSvc),
		Admin:    handlers.NewAdminHandler(interviewSvc, bufferSvc),
		WS:       handlers.NewWSHandler(interviewSvc, rdb),
	})

	port := envOr("PORT", "8080")
	log.WithField("port", port).Info("server listening")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
