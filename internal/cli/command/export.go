package command

import (
	"bytes"
	"fmt"
	"time"

	"github.com/natefinch/atomic"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/quizrally-go/internal/core/service"
)

// ExportCommand writes one of the CSV exports from the snapshot.
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a CSV export (scores, survey, questions, full)",
		ArgsUsage: "KIND",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "output file; stdout when empty or -",
			},
			&cli.StringFlag{
				Name:  "tz",
				Usage: "time zone for timestamps, e.g. Asia/Shanghai",
				Value: "Local",
			},
		},
		Action: export,
	}
}

func export(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError(c, "expected exactly one export kind")
	}
	kind, err := service.ParseExportKind(c.Args().First())
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(c.String("tz"))
	if err != nil {
		return fmt.Errorf("time zone: %w", err)
	}

	snap, err := loadSnapshot(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := service.WriteExport(&buf, kind, snap.Store, loc); err != nil {
		return err
	}

	out := c.String("out")
	if out == "" || out == "-" {
		_, err := stdout(c).Write(buf.Bytes())
		return err
	}
	if err := atomic.WriteFile(out, &buf); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	verbosef(c, "wrote %s export to %s", kind, out)
	return nil
}
