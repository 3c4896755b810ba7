package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

// ServerConfig is the root configuration for quizrally-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Mirror   MirrorSection   `koanf:"mirror"`
	Quiz     QuizSection     `koanf:"quiz"`
	Security SecuritySection `koanf:"security"`
	Seed     SeedSection     `koanf:"seed"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// MaxConnections caps concurrently accepted connections. 0 disables the cap.
	MaxConnections int `koanf:"max_connections"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// StaticDir is served at / when set.
	StaticDir string `koanf:"static_dir"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimit is requests per second per client IP. 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// TrustedProxies lists addresses or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are believed. Empty means the peer address is
	// always the client.
	TrustedProxies []string `koanf:"trusted_proxies"`
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address becomes a
// single-host prefix.
func (c HTTPConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, s := range c.TrustedProxies {
		s = strings.TrimSpace(s)
		if strings.Contains(s, "/") {
			p, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// TLSEnabled reports whether both certificate and key are configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// StorageSection configures the snapshot file and batch flushing.
type StorageSection struct {
	DataDir       string        `koanf:"data_dir"`
	FileName      string        `koanf:"file_name"`
	BatchInterval time.Duration `koanf:"batch_interval"`
}

// MirrorSection configures the best-effort secondary copy.
type MirrorSection struct {
	Driver    string `koanf:"driver"`
	Path      string `koanf:"path"`
	QueueSize int    `koanf:"queue_size"`
}

// QuizSection configures scoring and sessions.
type QuizSection struct {
	SurveyBonusPoints float64       `koanf:"survey_bonus_points"`
	SessionTTL        time.Duration `koanf:"session_ttl"`
}

// SecuritySection configures security settings.
type SecuritySection struct {
	EnableRegistration bool `koanf:"enable_registration"`
}

// SeedSection configures the data written into an empty store.
type SeedSection struct {
	AdminNickname string `koanf:"admin_nickname"`
	AdminPassword string `koanf:"admin_password"`
	DemoAccounts  bool   `koanf:"demo_accounts"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
