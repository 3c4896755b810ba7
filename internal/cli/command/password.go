package command

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/quizrally-go/pkg/token"
)

// HashPasswordCommand prints the stored form of a password, for seeding
// accounts by hand.
func HashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Hash a password the way the server stores it",
		ArgsUsage: "[PASSWORD]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stdin",
				Usage: "read the password from the first line of stdin",
			},
		},
		Action: hashPassword,
	}
}

func hashPassword(c *cli.Context) error {
	var password string
	switch {
	case c.Bool("stdin"):
		line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read stdin: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	case c.NArg() == 1:
		password = c.Args().First()
	default:
		return usageError(c, "pass the password as an argument or use --stdin")
	}
	if password == "" {
		return usageError(c, "password must not be empty")
	}

	hash, err := token.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout(c), hash)
	return err
}
