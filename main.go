package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civicecho-be/analysis"
	"civicecho-be/clustering"
	"civicecho-be/config"
	"civicecho-be/geo"
	"civicecho-be/logger"
	"civicecho-be/metrics"
	"civicecho-be/middlewares"
	"civicecho-be/repository"
	"civicecho-be/repository/memstore"
	"civicecho-be/routes"
	"civicecho-be/services"
	"civicecho-be/speech"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type complaintBackend interface {
	services.ComplaintStore
	clustering.ComplaintScanner
}

type clusterBackend interface {
	services.ClusterStore
	clustering.ClusterCreator
}

type stores struct {
	complaints complaintBackend
	clusters   clusterBackend
	users      services.UserStore
	close      func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: !cfg.Production()})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = appLog.Sync() }()

	if err := run(cfg, appLog); err != nil {
		appLog.Fatal("Server exited", logger.Error(err))
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Warn("Failed to close store", logger.Error(err))
		}
	}()

	rdb, err := config.ConnectRedis(ctx, cfg.RedisAddress, cfg.RedisPassword)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		log.Info("Connected to Redis", logger.String("address", cfg.RedisAddress))
	} else {
		log.Warn("REDIS_ADDRESS not set, complaint rate limiting and geocode caching disabled")
	}

	users := services.NewUserService(st.users, cfg.AuthorityEmails, log)
	matcher := clustering.NewMatcher(clustering.Config{
		DistanceKm:    cfg.ClusterDistanceKm,
		Window:        cfg.ClusterWindow,
		MinSimilarity: cfg.ClusterMinSimilarity,
	}, clustering.NewStore(st.complaints, st.clusters), log)

	complaints := services.NewComplaintService(services.ComplaintDeps{
		Complaints:  st.complaints,
		Clusters:    st.clusters,
		Matcher:     matcher,
		Classifier:  newClassifier(cfg, log),
		Geocoder:    newGeocoder(cfg, rdb),
		Transcriber: speech.NewMockTranscriber(log),
		Rewards:     users,
		Logger:      log,
		Timeout:     cfg.CollaboratorTimeout,
	})

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middlewares.Recovery(log),
		middlewares.RequestContext(log),
		middlewares.RequestLogger(log),
		metrics.Middleware(),
		middlewares.CORS(cfg.CORSOrigin),
	)
	routes.Register(r, routes.Deps{
		Complaints:      complaints,
		Dashboard:       services.NewDashboard(st.complaints, st.clusters),
		Users:           users,
		JWTSecret:       cfg.JWTSecret,
		Redis:           rdb,
		RateLimit:       cfg.ComplaintDailyLimit,
		RateLimitPrefix: cfg.RateLimitPrefix,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, log, cfg.ShutdownTimeout)
}

func openStores(ctx context.Context, cfg *config.Config, log logger.Logger) (*stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("Using in-memory store, data is lost on restart")
		mem := memstore.New()
		return &stores{
			complaints: mem.Complaints,
			clusters:   mem.Clusters,
			users:      mem.Users,
			close:      func(context.Context) error { return nil },
		}, nil
	}

	db, disconnect, err := config.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		_ = disconnect(context.Background())
		return nil, err
	}
	log.Info("MongoDB connection established", logger.String("database", cfg.MongoDatabase))

	return &stores{
		complaints: repository.NewComplaintRepository(db, log),
		clusters:   repository.NewClusterRepository(db),
		users:      repository.NewUserRepository(db),
		close:      disconnect,
	}, nil
}

func newClassifier(cfg *config.Config, log logger.Logger) *analysis.Service {
	if cfg.GoogleNLPAPIKey == "" {
		log.Info("GOOGLE_NLP_API_KEY not set, using keyword classification only")
		return analysis.NewService(log)
	}
	return analysis.NewService(log,
		analysis.WithRemote(analysis.NewLanguageClient("", cfg.GoogleNLPAPIKey, nil)),
		analysis.WithTimeout(cfg.CollaboratorTimeout),
	)
}

func newGeocoder(cfg *config.Config, rdb *redis.Client) geo.Geocoder {
	if !cfg.GeocodeEnabled {
		return nil
	}
	var g geo.Geocoder = geo.NewNominatimClient(cfg.NominatimURL, nil)
	if rdb != nil {
		g = geo.NewCachedGeocoder(g, rdb, cfg.GeocodeCacheTTL)
	}
	return g
}

func serve(ctx context.Context, srv *http.Server, log logger.Logger, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("HTTP server stopped")
	return nil
}
