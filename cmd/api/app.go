package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"godsendjoseph.dev/r2-gateway/internal/auth"
	"godsendjoseph.dev/r2-gateway/internal/gateway"
	"godsendjoseph.dev/r2-gateway/internal/notification"
	ratelimiter "godsendjoseph.dev/r2-gateway/internal/rateLimiter"
)

type application struct {
	config        config
	logger        *zap.SugaredLogger
	gateway       *gateway.Gateway
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	slackNotifier *notification.SlackNotifier
}

type config struct {
	addr           string
	env            string
	apiURL         string
	r2             r2Config
	publicURL      string
	localDir       string
	maxUploadBytes int64
	auth           authConfig
	rateLimiter    ratelimiter.Config
	timezone       string
	probeSchedule  string
	slack          slackConfig
}

type r2Config struct {
	endpoint        string
	accessKeyID     string
	secretAccessKey string
	bucketName      string
	enabled         bool
}

type authConfig struct {
	token tokenConfig
}

type tokenConfig struct {
	enabled  bool
	secret   string
	audience string
	issuer   string
}

type slackConfig struct {
	webhookURL string
	channel    string
	username   string
	iconEmoji  string
	enabled    bool
}

func (app *application) mount() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "HEAD", "POST", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Use(app.RateLimiterMiddleware)

	router.Use(middleware.Timeout(60 * time.Second))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.notFoundResponse(w, r, errors.New("route not found"))
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		app.methodNotAllowedResponse(w, r, errors.New("method not allowed"))
	})

	app.registerRoutes(router)

	return router
}

func (app *application) run(mux http.Handler) error {
	server := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 30,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		app.logger.Infow("signals caught", "signal", s.String())

		shutdown <- server.Shutdown(ctx)
	}()

	app.logger.Infow("Server has started", "addr", app.config.addr, "env", app.config.env)

	err := server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("Server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
