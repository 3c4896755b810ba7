package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yndnr/quizrally-go/internal/storage/mirror"
)

// Verify validates the configuration and creates the data directory.
func Verify(cfg *ServerConfig) error {
	if err := verifyHTTP(&cfg.Server.HTTP); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyMirror(&cfg.Mirror); err != nil {
		return err
	}
	if err := verifyQuiz(&cfg.Quiz); err != nil {
		return err
	}
	if cfg.Seed.AdminNickname == "" || cfg.Seed.AdminPassword == "" {
		return errors.New("seed.admin_nickname and seed.admin_password are required")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", cfg.Log.Format)
	}
	return nil
}

func verifyHTTP(cfg *HTTPConfig) error {
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q: %w", cfg.Addr, err)
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	for _, f := range []string{cfg.TLSCertFile, cfg.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("server.http tls file: %w", err)
		}
	}
	if cfg.MaxConnections < 0 {
		return errors.New("server.http.max_connections must not be negative")
	}
	if cfg.RateLimit < 0 || cfg.RateBurst < 0 {
		return errors.New("server.http.rate_limit and rate_burst must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateBurst == 0 {
		return errors.New("server.http.rate_burst must be positive when rate_limit is set")
	}
	if _, err := cfg.TrustedProxyPrefixes(); err != nil {
		return fmt.Errorf("server.http.trusted_proxies: %w", err)
	}
	if cfg.StaticDir != "" {
		info, err := os.Stat(cfg.StaticDir)
		if err != nil {
			return fmt.Errorf("server.http.static_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("server.http.static_dir %q is not a directory", cfg.StaticDir)
		}
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}
	if cfg.FileName == "" {
		return errors.New("storage.file_name is required")
	}
	if cfg.BatchInterval <= 0 {
		return errors.New("storage.batch_interval must be positive")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("cannot create data directory: %w", err)
	}
	return nil
}

func verifyMirror(cfg *MirrorSection) error {
	switch cfg.Driver {
	case "", mirror.DriverNone:
		return nil
	case mirror.DriverSQLite, mirror.DriverBadger:
	default:
		return fmt.Errorf("mirror.driver must be none, sqlite or badger, got %q", cfg.Driver)
	}
	if cfg.Path == "" {
		return fmt.Errorf("mirror.path is required for driver %q", cfg.Driver)
	}
	if cfg.QueueSize < 0 {
		return errors.New("mirror.queue_size must not be negative")
	}
	return nil
}

func verifyQuiz(cfg *QuizSection) error {
	if cfg.SurveyBonusPoints < 0 {
		return errors.New("quiz.survey_bonus_points must not be negative")
	}
	if cfg.SessionTTL <= 0 {
		return errors.New("quiz.session_ttl must be positive")
	}
	return nil
}
