package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/s3gate/bootstrap"
	"github.com/kbukum/s3gate/config"
	"github.com/kbukum/s3gate/gateway"
	"github.com/kbukum/s3gate/version"
)

const serviceName = "s3gate"

func main() {
	if err := newApp().RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(gateway.ExitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:           serviceName,
		Usage:          "Read-only HTTP gateway to an S3 bucket",
		Version:        version.Get().Short(),
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config.yml (default: searched in ./cmd/s3gate, ./config, .)",
				EnvVars: []string{"S3GATE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "Path to a .env file loaded before the environment is read",
				EnvVars: []string{"S3GATE_ENV_FILE"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override logging.level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP gateway",
				Action: serve,
			},
			{
				Name:      "check",
				Usage:     "Probe the bucket: HEAD a key, or list the first page of a prefix ending in /",
				ArgsUsage: "[key | prefix/]",
				Action:    check,
			},
			{
				Name:  "version",
				Usage: "Print build information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version.Get().String())
					return nil
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (*gateway.Config, error) {
	var opts []config.LoaderOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if path := c.String("env-file"); path != "" {
		opts = append(opts, config.WithEnvFile(path))
	}

	cfg := &gateway.Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	app, err := gateway.NewApp(cfg)
	if err != nil {
		return err
	}
	return app.Run(c.Context)
}

func check(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	app, store, err := gateway.NewCheckApp(cfg, bootstrap.WithSummaryWriter(c.App.ErrWriter))
	if err != nil {
		return err
	}
	target := c.Args().First()
	return app.RunTask(c.Context, func(ctx context.Context) error {
		return gateway.Check(ctx, store, target, c.App.Writer)
	})
}
