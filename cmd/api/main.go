package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authmodule "github.com/inkwellhq/inkwell/modules/auth"
	"github.com/inkwellhq/inkwell/pkg/auth"
	"github.com/inkwellhq/inkwell/pkg/config"
	"github.com/inkwellhq/inkwell/pkg/email"
	"github.com/inkwellhq/inkwell/pkg/httpserver"
	"github.com/inkwellhq/inkwell/pkg/logger"
	"github.com/inkwellhq/inkwell/pkg/mongo"
	"github.com/inkwellhq/inkwell/pkg/ratelimit"
	"github.com/inkwellhq/inkwell/pkg/redis"
	"github.com/inkwellhq/inkwell/pkg/userstore"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	GoogleAuth  bool   `env:"GOOGLE_AUTH_ENABLED" envDefault:"false"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, "inkwell-api"))
	logger.SetAsDefault(log)

	var mongoCfg mongo.Config
	config.MustLoad(&mongoCfg)
	db, err := mongo.NewWithDatabase(ctx, mongoCfg)
	if err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	store := userstore.NewMongoStore(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	var issuerCfg auth.TokenIssuerConfig
	config.MustLoad(&issuerCfg)
	issuer, err := auth.NewTokenIssuer(issuerCfg)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	passwordSvc := auth.NewPasswordService(store,
		auth.WithPasswordLogger(log),
	)

	var googleSvc *auth.GoogleService
	if appCfg.GoogleAuth {
		var googleCfg auth.GoogleConfig
		config.MustLoad(&googleCfg)
		googleSvc = auth.NewGoogleService(store,
			auth.NewRedisStateStore(redisClient),
			googleCfg,
			auth.WithGoogleLogger(log),
		)
	}

	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	var mailer email.EmailSender
	if emailCfg.PostmarkServerToken != "" {
		mailer = email.MustNewPostmarkClient(emailCfg)
	} else {
		mailer = email.NewDevSender("./tmp/emails")
		log.Warn("postmark token not set, writing emails to ./tmp/emails")
	}

	var rateCfg ratelimit.Config
	config.MustLoad(&rateCfg)
	limiter, err := ratelimit.New(ratelimit.NewRedisStore(redisClient), rateCfg)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var moduleCfg authmodule.Config
	config.MustLoad(&moduleCfg)
	authSvc := authmodule.NewService(authmodule.Options{
		Password:  passwordSvc,
		Google:    googleSvc,
		Issuer:    issuer,
		Storage:   store,
		Mailer:    mailer,
		Logger:    log,
		ClientURL: moduleCfg.ClientURL,
		RateLimit: ratelimit.Middleware(limiter),
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Mount("/api/auth", authSvc.Router())
	r.Get("/health", healthHandler(
		mongo.Healthcheck(db.Client()),
		redis.Healthcheck(redisClient),
	))

	var serverCfg httpserver.Config
	config.MustLoad(&serverCfg)
	srv := httpserver.New(
		httpserver.WithAddr(serverCfg.Addr),
		httpserver.WithReadTimeout(serverCfg.ReadTimeout),
		httpserver.WithWriteTimeout(serverCfg.WriteTimeout),
		httpserver.WithIdleTimeout(serverCfg.IdleTimeout),
		httpserver.WithShutdownTimeout(serverCfg.ShutdownTimeout),
		httpserver.WithLogger(log),
	)

	return srv.Run(ctx, r)
}

func healthHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				slog.Error("healthcheck failed", logger.Error(err))
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
