package command

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/quizrally-go/internal/server/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Server configuration helpers",
		Subcommands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "Load --config with environment overrides and verify it",
				Action: configValidate,
			},
		},
	}
}

func configValidate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := config.Verify(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	src := c.String("config")
	if src == "" {
		src = "defaults"
	}
	summary := map[string]string{
		"source":        src,
		"http.addr":     cfg.Server.HTTP.Addr,
		"storage.file":  filepath.Join(cfg.Storage.DataDir, cfg.Storage.FileName),
		"storage.batch": cfg.Storage.BatchInterval.String(),
		"mirror.driver": cfg.Mirror.Driver,
		"log.level":     cfg.Log.Level,
	}
	return render(c, summary, nil)
}
