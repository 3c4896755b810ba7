package command

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/natefinch/atomic"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/quizrally-go/internal/cli/connection"
	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/core/service"
)

// DefaultServer is the address of a local quizrally-server.
const DefaultServer = "http://127.0.0.1:3000"

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server base URL",
			EnvVars: []string{"QUIZRALLY_CLI_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "admin session token",
			EnvVars: []string{"QUIZRALLY_CLI_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "nickname",
			Usage:   "admin nickname, used to log in when no token is given",
			EnvVars: []string{"QUIZRALLY_CLI_NICKNAME"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "admin password",
			EnvVars: []string{"QUIZRALLY_CLI_PASSWORD"},
		},
	}
}

// ServerCommand returns the server subcommand group, which operates on a
// running server through the admin API.
func ServerCommand() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"srv"},
		Usage:   "Administer a running quizrally-server",
		Flags:   serverFlags(),
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show storage, mirror and build status",
				Action: withClient(serverStatus),
			},
			{
				Name:   "flush",
				Usage:  "Force a snapshot write now",
				Action: withClient(serverFlush),
			},
			{
				Name:   "integrity",
				Usage:  "Run the integrity scan on the live data",
				Action: withClient(serverIntegrity),
			},
			{
				Name:  "ranking",
				Usage: "Print the live leaderboard",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "show at most N entries (0 for all)"},
				},
				Action: withClient(serverRanking),
			},
			{
				Name:      "export",
				Usage:     "Download a CSV export",
				ArgsUsage: "KIND",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "output file; the suggested file name when empty, stdout for -"},
				},
				Action: withClient(serverExport),
			},
		},
	}
}

type clientAction func(c *cli.Context, client *connection.HTTPClient) error

// withClient builds an authenticated client. Credentials log in for the
// duration of the command and log out afterwards.
func withClient(fn clientAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		client := connection.NewHTTPClient(c.String("server"), c.String("token"))

		if client.Token() == "" {
			nick, pw := c.String("nickname"), c.String("password")
			if nick == "" || pw == "" {
				return usageError(c, "provide --token or --nickname and --password")
			}
			if err := client.Login(c.Context, nick, pw); err != nil {
				return err
			}
			defer client.Logout(context.WithoutCancel(c.Context))
			verbosef(c, "logged in to %s as %s", client.BaseURL(), nick)
		}

		return fn(c, client)
	}
}

func serverStatus(c *cli.Context, client *connection.HTTPClient) error {
	var status map[string]any
	if err := client.Get(c.Context, "/api/admin/status", &status); err != nil {
		return err
	}
	return render(c, status, nil)
}

func serverFlush(c *cli.Context, client *connection.HTTPClient) error {
	var info map[string]any
	if err := client.Post(c.Context, "/api/admin/flush", nil, &info); err != nil {
		return err
	}
	return render(c, info, nil)
}

func serverIntegrity(c *cli.Context, client *connection.HTTPClient) error {
	var res CheckResult
	if err := client.Get(c.Context, "/api/admin/integrity", &res); err != nil {
		return err
	}
	if err := render(c, res, res.Report); err != nil {
		return err
	}
	if !res.Clean {
		return ErrIntegrity
	}
	return nil
}

func serverRanking(c *cli.Context, client *connection.HTTPClient) error {
	path := "/api/ranking"
	if n := c.Int("limit"); n > 0 {
		path += "?limit=" + strconv.Itoa(n)
	}
	var res struct {
		Entries []domain.RankingEntry `json:"entries"`
	}
	if err := client.Get(c.Context, path, &res); err != nil {
		return err
	}
	return render(c, res.Entries, nil)
}

func serverExport(c *cli.Context, client *connection.HTTPClient) error {
	if c.NArg() != 1 {
		return usageError(c, "expected exactly one export kind")
	}
	kind, err := service.ParseExportKind(c.Args().First())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := client.Download(c.Context, "/api/admin/export/"+string(kind), &buf); err != nil {
		return err
	}

	out := c.String("out")
	switch out {
	case "-":
		_, err := stdout(c).Write(buf.Bytes())
		return err
	case "":
		out = kind.FileName()
	}
	if err := atomic.WriteFile(out, &buf); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(stdout(c), "saved %s\n", out)
	return nil
}
