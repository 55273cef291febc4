package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/media"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/notify"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/repository/memory"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	"github.com/iliyamo/movie-ticket-booking/internal/scheduler"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	log := newLogger(err == nil && cfg.IsProd())
	defer func() { _ = log.Sync() }()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}
	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(prod bool) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if prod {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewExample()
	}
	return log
}

// openStores returns the configured persistence backend and a readiness
// probe. The probe is nil for the in-memory store.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (service.Stores, func(context.Context) error, func(), error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		st := memory.New()
		return service.Stores{
			Users:    st.Users(),
			Tokens:   st.Tokens(),
			Movies:   st.Movies(),
			Shows:    st.Shows(),
			Theatres: st.Theatres(),
			Cineasts: st.Cineasts(),
			Bookings: st.Bookings(),
		}, nil, func() {}, nil
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return service.Stores{}, nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return service.Stores{}, nil, nil, err
	}
	log.Info("mysql ready", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
	return mysqlStores(db), db.PingContext, func() { _ = db.Close() }, nil
}

func mysqlStores(db *sql.DB) service.Stores {
	return service.Stores{
		Users:    repository.NewUserRepo(db),
		Tokens:   repository.NewTokenRepo(db),
		Movies:   repository.NewMovieRepo(db),
		Shows:    repository.NewShowRepo(db),
		Theatres: repository.NewTheatreRepo(db),
		Cineasts: repository.NewCineastRepo(db),
		Bookings: repository.NewBookingRepo(db),
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, ping, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; cache and rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	var pub service.BookingPublisher
	if cfg.RabbitURL != "" {
		pub = queue.NewPublisher(cfg.RabbitURL, log)
	} else {
		log.Warn("RABBITMQ_URL not set; booking events are not published")
	}

	svc := service.New(stores, service.Options{
		Auth: service.AuthConfig{
			Secret:         cfg.JWTSecret,
			AccessTTLMin:   cfg.AccessTTLMin,
			RefreshTTLDays: cfg.RefreshTTLDays,
			BcryptCost:     cfg.BcryptCost,
		},
		SiteURL:   cfg.SiteURL,
		Publisher: pub,
		Logger:    log,
	})

	if cfg.OwnerEmail != "" {
		octx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := svc.Users.EnsureOwner(octx, cfg.OwnerEmail, cfg.OwnerPassword)
		cancel()
		if err != nil {
			return err
		}
	}

	var upload *handler.UploadHandler
	if cfg.MediaEnabled() {
		store, err := media.NewCloudinary(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret, "movie-ticket-booking", log)
		if err != nil {
			return err
		}
		upload = handler.NewUploadHandler(store, log)
	}

	if cfg.RabbitURL != "" {
		go startConsumer(ctx, cfg, log)
	}

	jobs, err := scheduler.New(log)
	if err != nil {
		return err
	}
	if err := jobs.AddTokenPurge(stores.Tokens, cfg.TokenPurgeEvery); err != nil {
		return err
	}
	jobs.Start()
	defer func() { _ = jobs.Shutdown() }()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.Validator{}
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.SiteURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit("25M"))

	rl := config.LoadRateLimitConfig()
	router.Register(e, router.Deps{
		JWTSecret:     cfg.JWTSecret,
		Users:         handler.NewUserHandler(svc.Users),
		Movies:        handler.NewMovieHandler(svc.Movies),
		Shows:         handler.NewShowHandler(svc.Shows),
		Theatres:      handler.NewTheatreHandler(svc.Theatres),
		Cineasts:      handler.NewCineastHandler(svc.Cineasts),
		Bookings:      handler.NewBookingHandler(svc.Bookings),
		Upload:        upload,
		Health:        handler.Health(ping),
		RateLimit:     middleware.NewTokenBucket(rl, rdb, log),
		AuthRateLimit: middleware.NewTokenBucket(middleware.AuthBucket(rl), rdb, log),
		Cache:         middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log),
	})

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", ":"+cfg.Port), zap.String("env", cfg.Env), zap.String("storage", cfg.Storage))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(sctx)
}

// startConsumer mails a confirmation for each booking event, or only logs
// it when SMTP is not configured.
func startConsumer(ctx context.Context, cfg config.Config, log *zap.Logger) {
	handle := func(context.Context, queue.BookingConfirmedEvent) error { return nil }
	if cfg.MailEnabled() {
		m := notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, log)
		handle = m.SendBookingConfirmation
	}
	c := queue.NewConsumer(cfg.RabbitURL, handle, log)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("booking consumer stopped", zap.Error(err))
	}
}
