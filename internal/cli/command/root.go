package command

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/quizrally-go/internal/cli/output"
	"github.com/yndnr/quizrally-go/internal/infra/buildinfo"
	"github.com/yndnr/quizrally-go/internal/infra/confloader"
	"github.com/yndnr/quizrally-go/internal/server/config"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "quizrally-cli",
		Usage:                "quizrally data and administration tool",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			InspectCommand(),
			CheckCommand(),
			RankingCommand(),
			ExportCommand(),
			MirrorCommand(),
			HashPasswordCommand(),
			ConfigCommand(),
			ServerCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "server configuration file used to locate the data directory",
			EnvVars: []string{"QUIZRALLY_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "data directory holding the snapshot file (overrides --config)",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "snapshot file name inside the data directory",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "print per-record errors and extra detail",
		},
	}
}

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	Config  string
	DataDir string
	File    string
	Output  output.Format
	Wide    bool
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		format = output.FormatTable
	}
	return &GlobalFlags{
		Config:  c.String("config"),
		DataDir: c.String("data-dir"),
		File:    c.String("file"),
		Output:  format,
		Wide:    c.Bool("wide"),
		Verbose: c.Bool("verbose"),
	}
}

// loadConfig resolves the server configuration the same way the server
// does, then applies --data-dir and --file on top.
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	flags := ParseGlobalFlags(c)

	overrides := map[string]any{}
	if flags.DataDir != "" {
		overrides["storage.data_dir"] = flags.DataDir
	}
	if flags.File != "" {
		overrides["storage.file_name"] = flags.File
	}

	cfg := config.Default()
	loader := confloader.NewLoader(
		confloader.WithConfigFile(flags.Config),
		confloader.WithOverrides(overrides),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// render writes data in the selected output format. human, when not nil,
// replaces data for table output.
func render(c *cli.Context, data, human any) error {
	flags := ParseGlobalFlags(c)
	if flags.Output == output.FormatTable && human != nil {
		data = human
	}
	return output.NewFormatter(flags.Output, flags.Wide).Format(stdout(c), data)
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func stderr(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// verbosef prints to stderr when --verbose is set.
func verbosef(c *cli.Context, format string, args ...any) {
	if c.Bool("verbose") {
		fmt.Fprintf(stderr(c), format+"\n", args...)
	}
}

var errUsage = errors.New("invalid usage")

func usageError(c *cli.Context, msg string) error {
	return fmt.Errorf("%w: %s (see %s --help)", errUsage, msg, c.Command.HelpName)
}
