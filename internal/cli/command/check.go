package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/quizrally-go/internal/cli/output"
	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/core/service"
)

// ErrIntegrity is returned by check when the snapshot has issues, so the
// process exits non-zero.
var ErrIntegrity = errors.New("integrity issues found")

// CheckResult is the structured output of check.
type CheckResult struct {
	Clean  bool                   `json:"clean"`
	Report domain.IntegrityReport `json:"report"`
}

// CheckCommand runs the integrity scan against the snapshot file.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "Scan the snapshot for orphan records and expired sessions",
		Action: check,
	}
}

func check(c *cli.Context) error {
	snap, err := loadSnapshot(c)
	if err != nil {
		return err
	}

	report := service.CheckIntegrity(snap.Store, time.Now())
	if err := render(c, CheckResult{Clean: report.Clean(), Report: report}, report); err != nil {
		return err
	}
	if !report.Clean() {
		return ErrIntegrity
	}
	if ParseGlobalFlags(c).Output == output.FormatTable {
		fmt.Fprintln(stdout(c), "no issues found")
	}
	return nil
}
