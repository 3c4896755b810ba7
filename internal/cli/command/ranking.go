package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/quizrally-go/internal/core/service"
)

// RankingCommand prints the leaderboard stored in the snapshot.
func RankingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ranking",
		Usage: "Print the leaderboard from the snapshot",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "show at most N entries (0 for all)",
			},
		},
		Action: ranking,
	}
}

func ranking(c *cli.Context) error {
	snap, err := loadSnapshot(c)
	if err != nil {
		return err
	}

	entries := service.RankingOf(snap.Store)
	if n := c.Int("limit"); n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return render(c, entries, nil)
}
