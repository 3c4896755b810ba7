package config

import (
	"time"

	"github.com/yndnr/quizrally-go/internal/core/service"
	"github.com/yndnr/quizrally-go/internal/storage/batch"
	"github.com/yndnr/quizrally-go/internal/storage/mirror"
	"github.com/yndnr/quizrally-go/internal/storage/snapshot"
)

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:3000"
	DefaultMaxConnections  = 200
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimit       = 20
	DefaultRateBurst       = 40

	DefaultMirrorPath = "./data/mirror"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	quiz := service.DefaultConfig()
	seed := service.DefaultSeedConfig()

	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:               DefaultHTTPAddr,
				MaxConnections:     DefaultMaxConnections,
				ReadTimeout:        DefaultReadTimeout,
				WriteTimeout:       DefaultWriteTimeout,
				IdleTimeout:        DefaultIdleTimeout,
				ShutdownTimeout:    DefaultShutdownTimeout,
				CORSAllowedOrigins: []string{"*"},
				RateLimit:          DefaultRateLimit,
				RateBurst:          DefaultRateBurst,
			},
		},
		Storage: StorageSection{
			DataDir:       snapshot.DefaultDir,
			FileName:      snapshot.DefaultFileName,
			BatchInterval: batch.DefaultInterval,
		},
		Mirror: MirrorSection{
			Driver:    mirror.DriverNone,
			Path:      DefaultMirrorPath,
			QueueSize: mirror.DefaultQueueSize,
		},
		Quiz: QuizSection{
			SurveyBonusPoints: quiz.SurveyBonusPoints,
			SessionTTL:        quiz.SessionTTL,
		},
		Security: SecuritySection{
			EnableRegistration: quiz.EnableRegistration,
		},
		Seed: SeedSection{
			AdminNickname: seed.AdminNickname,
			AdminPassword: seed.AdminPassword,
			DemoAccounts:  seed.DemoAccounts,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// ServiceConfig converts the quiz and security sections for the service layer.
func (c *ServerConfig) ServiceConfig() service.Config {
	return service.Config{
		SurveyBonusPoints:  c.Quiz.SurveyBonusPoints,
		SessionTTL:         c.Quiz.SessionTTL,
		EnableRegistration: c.Security.EnableRegistration,
	}
}

// SeedConfig converts the seed section.
func (c *ServerConfig) SeedConfig() service.SeedConfig {
	return service.SeedConfig{
		AdminNickname: c.Seed.AdminNickname,
		AdminPassword: c.Seed.AdminPassword,
		DemoAccounts:  c.Seed.DemoAccounts,
	}
}

// MirrorConfig converts the mirror section.
func (c *ServerConfig) MirrorConfig() mirror.Config {
	return mirror.Config{
		Driver:    c.Mirror.Driver,
		Path:      c.Mirror.Path,
		QueueSize: c.Mirror.QueueSize,
	}
}
