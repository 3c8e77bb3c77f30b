package config

import (
	"fmt"
	"time"

	"github.com/jacquesbh/tombola/internal/env"

	"go.uber.org/zap"
)

const (
	PortEnv              = "PORT"
	PublicBaseURLEnv     = "PUBLIC_BASE_URL"
	DataPathEnv          = "DATA_PATH"
	SubscribeSecretEnv   = "SUBSCRIBE_JWT_SECRET"
	SubscribeTokenTTLEnv = "SUBSCRIBE_TOKEN_TTL"
	InactivityTimeoutEnv = "INACTIVITY_TIMEOUT"
)

// insecureDevSecret signs subscribe tokens when no secret is configured.
// Fine on a laptop, never in a deployed instance - Load warns loudly when it
// is in effect.
const insecureDevSecret = "!ChangeThisTombolaJWTSecretKey!"

type Config struct {
	Logger *zap.Logger

	Port          int
	PublicBaseURL string

	// DataPath is the badger directory. Empty means in-memory storage,
	// which only makes sense for development and tests.
	DataPath string

	SubscribeTokenSecret string
	SubscribeTokenTTL    time.Duration

	InactivityTimeout time.Duration
}

func Load() (Config, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return Config{}, fmt.Errorf("build logger: %w", err)
	}

	port := env.GetIntOrDefault(PortEnv, 8080)

	publicBaseURL := env.GetStringOrDefault(PublicBaseURLEnv, fmt.Sprintf("http://localhost:%d", port))

	secret := env.GetStringOrDefault(SubscribeSecretEnv, "")
	if secret == "" {
		secret = insecureDevSecret
		logger.Warn("SUBSCRIBE_JWT_SECRET not set, falling back to the insecure development secret; do not run this configuration in production")
	}

	return Config{
		Logger:               logger,
		Port:                 port,
		PublicBaseURL:        publicBaseURL,
		DataPath:             env.GetStringOrDefault(DataPathEnv, ""),
		SubscribeTokenSecret: secret,
		SubscribeTokenTTL:    env.GetDurationOrDefault(SubscribeTokenTTLEnv, time.Hour),
		InactivityTimeout:    env.GetDurationOrDefault(InactivityTimeoutEnv, 6*time.Second),
	}, nil
}
