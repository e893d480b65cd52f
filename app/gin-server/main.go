package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/marcohq/marco-backend/config"
	"github.com/marcohq/marco-backend/internal/api/handlers"
	"github.com/marcohq/marco-backend/internal/api/middleware"
	"github.com/marcohq/marco-backend/internal/api/routes"
	"github.com/marcohq/marco-backend/internal/cache"
	"github.com/marcohq/marco-backend/internal/clock"
	"github.com/marcohq/marco-backend/internal/logger"
	mongorepo "github.com/marcohq/marco-backend/internal/repositories/mongo"
	pgrepo "github.com/marcohq/marco-backend/internal/repositories/postgres"
	"github.com/marcohq/marco-backend/internal/providers/stt"
	"github.com/marcohq/marco-backend/internal/services"
	"github.com/marcohq/marco-backend/internal/storage"
	"github.com/marcohq/marco-backend/internal/workers"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()

	// Init MongoDB
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	l.Info("MongoDB connected")

	// Init PostgreSQL
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	l.Info("PostgreSQL connected")

	// Init Redis
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoDB := config.MongoClient.Database(config.MongoDBName())
	sessions := mongorepo.NewSessionRepo(mongoDB)
	events := mongorepo.NewEventRepo(mongoDB)
	turns := pgrepo.NewTurnRepo(config.PostgresDB)
	candidates := pgrepo.NewCandidateRepo(config.PostgresDB)
	evals := pgrepo.NewEvaluationRepo(config.PostgresDB)
	resumeFiles := pgrepo.NewResumeFileRepo(config.PostgresDB)

	interviewCfg := config.LoadInterview()
	clk := clock.Real()

	mgr := services.NewSessionManager(sessions, events, turns, candidates, interviewCfg, clk, l, config.RedisClient)
	evalSvc := services.NewEvaluationService(sessions, turns, candidates, evals, interviewCfg, clk, l)

	var uploader storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		up, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer up.Close()
		uploader = up
	}
	candSvc := services.NewCandidateService(candidates, resumeFiles, uploader)

	// Answer audio transcription workers (optional: needs Google credentials)
	if os.Getenv("DISABLE_STT_WORKERS") != "true" {
		sttProvider, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			l.WithError(err).Warn("STT init failed; answer audio workers disabled")
		} else {
			defer sttProvider.Close()
			pool := &workers.AnswerAudioWorkerPool{
				Redis:  config.RedisClient,
				STT:    sttProvider,
				Logger: l,
			}
			if err := pool.Start(ctx); err != nil {
				log.Fatalf("worker pool error: %v", err)
			}
			l.Info("answer audio workers started")
		}
	}

	statusCache := cache.NewRedisCache(config.RedisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Candidate:  handlers.NewCandidateHandler(candSvc),
		Interview:  handlers.NewInterviewHandler(mgr),
		Proctoring: handlers.NewProctoringHandler(mgr, statusCache),
		Evaluation: handlers.NewEvaluationHandler(evalSvc, mgr),
		WS:         handlers.NewWSHandler(mgr, config.RedisClient),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.WithField("port", port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// enforce time budgets on idle sessions
		mgr.RunSweeper(gctx, 30*time.Second)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
