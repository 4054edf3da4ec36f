package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"godsendjoseph.dev/r2-gateway/internal/auth"
	"godsendjoseph.dev/r2-gateway/internal/cron"
	"godsendjoseph.dev/r2-gateway/internal/env"
	"godsendjoseph.dev/r2-gateway/internal/gateway"
	"godsendjoseph.dev/r2-gateway/internal/notification"
	ratelimiter "godsendjoseph.dev/r2-gateway/internal/rateLimiter"
	"godsendjoseph.dev/r2-gateway/internal/storage"
)

const version = "0.1.0"

func main() {
	if err := env.Load(env.GetString("ENV_FILE", ".env")); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg := loadConfig()

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	bucket, err := newBucket(cfg)
	if err != nil {
		logger.Fatalw("failed to initialize bucket", "error", err)
	}

	publicURL := cfg.publicURL
	if publicURL == "" && cfg.env == "development" {
		// serve objects through this API when no CDN domain is configured
		publicURL = cfg.apiURL + "/v1/objects"
		logger.Infow("CLOUDFLARE_R2_URL not set, serving objects from the API", "public_url", publicURL)
	}

	gw := gateway.New(bucket, gateway.Config{PublicURL: publicURL}, logger)

	slackNotifier := notification.NewSlackNotifier(
		cfg.slack.webhookURL,
		cfg.slack.channel,
		cfg.slack.username,
		cfg.slack.iconEmoji,
		cfg.slack.enabled,
	)

	scheduler, err := cron.NewScheduler(logger, cfg.timezone)
	if err != nil {
		logger.Fatal(err)
	}
	if cfg.probeSchedule != "" {
		jobManager := cron.NewJobManager(logger, gw, slackNotifier)
		scheduler.Custom("bucket-probe", cfg.probeSchedule, jobManager.ProbeBucket())
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := &application{
		config:        cfg,
		logger:        logger,
		gateway:       gw,
		authenticator: auth.NewJWTAuthenticator(cfg.auth.token.secret, cfg.auth.token.audience, cfg.auth.token.issuer),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestPerTimeForIP, cfg.rateLimiter.TimeFrame),
		slackNotifier: slackNotifier,
	}

	mux := app.mount()

	if err := app.run(mux); err != nil {
		logger.Fatal(err)
	}
}

func loadConfig() config {
	return config{
		addr:   env.GetString("ADDR", ":8080"),
		env:    env.GetString("ENV", "development"),
		apiURL: env.GetString("EXTERNAL_URL", "http://localhost:8080"),
		r2: r2Config{
			endpoint:        env.GetString("R2_ENDPOINT", ""),
			accessKeyID:     env.GetSecret("R2_ACCESS_KEY_ID", ""),
			secretAccessKey: env.GetSecret("R2_SECRET_ACCESS_KEY", ""),
			bucketName:      env.GetString("R2_BUCKET_NAME", ""),
			enabled:         env.GetBool("R2_ENABLED", false),
		},
		publicURL:      env.GetString("CLOUDFLARE_R2_URL", ""),
		localDir:       env.GetString("LOCAL_STORAGE_DIR", "./uploads"),
		maxUploadBytes: env.GetInt64("UPLOAD_MAX_BYTES", 10<<20),
		auth: authConfig{
			token: tokenConfig{
				enabled:  env.GetBool("TOKEN_ENABLED", false),
				secret:   env.GetSecret("TOKEN_SECRET", "secret"),
				audience: env.GetString("TOKEN_AUDIENCE", "r2-gateway"),
				issuer:   env.GetString("TOKEN_ISSUER", "r2-gateway"),
			},
		},
		rateLimiter: ratelimiter.Config{
			RequestPerTimeForIP: env.GetInt("RATE_LIMITER_REQUEST_COUNT", 60),
			TimeFrame:           env.GetDuration("RATE_LIMITER_WINDOW", 5*time.Minute),
			Enabled:             env.GetBool("RATE_LIMITER_ENABLED", true),
		},
		timezone:      env.GetString("TIMEZONE", "UTC"),
		probeSchedule: env.GetString("BUCKET_PROBE_SCHEDULE", "*/15 * * * *"),
		slack: slackConfig{
			webhookURL: env.GetSecret("SLACK_WEBHOOK_URL", ""),
			channel:    env.GetString("SLACK_CHANNEL", "#notifications"),
			username:   env.GetString("SLACK_USERNAME", "r2-gateway"),
			iconEmoji:  env.GetString("SLACK_ICON_EMOJI", ":package:"),
			enabled:    env.GetBool("SLACK_ENABLED", false),
		},
	}
}

// newBucket returns R2 when enabled, a local directory in development, and
// nil otherwise. A nil bucket is reported by the gateway as unbound.
func newBucket(cfg config) (storage.Bucket, error) {
	if cfg.r2.enabled {
		r2, err := storage.NewR2Bucket(
			context.Background(),
			cfg.r2.endpoint,
			cfg.r2.accessKeyID,
			cfg.r2.secretAccessKey,
			cfg.r2.bucketName,
		)
		if err != nil {
			return nil, err
		}
		return r2, nil
	}

	if cfg.env == "development" {
		local, err := storage.NewLocalBucket(cfg.localDir)
		if err != nil {
			return nil, err
		}
		return local, nil
	}

	return nil, nil
}
