package command

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/quizrally-go/internal/storage/mirror"
)

// MirrorCommand returns the mirror subcommand group.
func MirrorCommand() *cli.Command {
	return &cli.Command{
		Name:  "mirror",
		Usage: "Secondary store maintenance",
		Subcommands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Push every record of the snapshot into a mirror store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "driver",
						Usage: "mirror driver: sqlite or badger (defaults to mirror.driver from --config)",
					},
					&cli.StringFlag{
						Name:  "path",
						Usage: "sqlite file or badger directory (defaults to mirror.path from --config)",
					},
				},
				Action: mirrorSync,
			},
		},
	}
}

func mirrorSync(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	mcfg := cfg.MirrorConfig()
	if d := c.String("driver"); d != "" {
		mcfg.Driver = d
	}
	if p := c.String("path"); p != "" {
		mcfg.Path = p
	}
	if mcfg.Driver == "" || mcfg.Driver == mirror.DriverNone {
		return usageError(c, "a mirror driver is required")
	}
	if mcfg.Path == "" {
		return usageError(c, "a mirror path is required")
	}

	snap, err := loadSnapshot(c)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr(c), &slog.HandlerOptions{Level: slog.LevelWarn}))
	sink, err := mirror.Open(mcfg, logger)
	if err != nil {
		return err
	}

	rep, syncErr := mirror.Sync(c.Context, sink, snap.Record, func(kind string, err error) {
		verbosef(c, "%s: %v", kind, err)
	})
	if err := sink.Close(); err != nil && syncErr == nil {
		syncErr = fmt.Errorf("close mirror: %w", err)
	}
	if rep != nil {
		if err := render(c, rep, nil); err != nil {
			return err
		}
	}
	if syncErr != nil {
		return syncErr
	}
	if rep.Failed > 0 {
		return fmt.Errorf("%d records failed to sync", rep.Failed)
	}
	return nil
}
