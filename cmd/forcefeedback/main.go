// Package main is the force feedback rig command itself.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	boundaryfake "go.viam.com/forcefeedback/boundary/fake"
	"go.viam.com/forcefeedback/config"
	"go.viam.com/forcefeedback/logging"
	"go.viam.com/forcefeedback/transport/fake"
)

const (
	// Flags.
	flagConfig         = "config"
	flagDebug          = "debug"
	flagLogFile        = "log-file"
	flagModes          = "modes"
	flagStatusInterval = "status-interval"
	flagDuration       = "duration"
	flagPort           = "port"
	flagVoltage        = "voltage"
	flagLoss           = "loss"
	flagWidth          = "width"
	flagDepth          = "depth"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	var (
		logger     logging.Logger
		cfg        *config.Config
		logClosers []io.Closer
	)

	return &cli.App{
		Name:      "forcefeedback",
		Usage:     "drive the two channel force feedback rig",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also log to a rotating `FILE`",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = logging.NewDebugLogger("forcefeedback")
			} else {
				logger = logging.NewLogger("forcefeedback")
			}
			var err error
			cfg, err = readConfig(c, logger)
			if err != nil {
				return err
			}
			if cfg.LogLevel != "" && !c.Bool(flagDebug) {
				level, err := logging.LevelFromString(cfg.LogLevel)
				if err != nil {
					return err
				}
				logger.SetLevel(level)
			}
			for _, path := range []string{c.String(flagLogFile), cfg.LogFile} {
				if path == "" {
					continue
				}
				appender, closer := logging.NewFileAppender(path)
				logger.AddAppender(appender)
				logClosers = append(logClosers, closer)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			var err error
			if logger != nil {
				// stdout cannot always be synced
				_ = logger.Sync()
			}
			for _, closer := range logClosers {
				err = multierr.Append(err, closer.Close())
			}
			return err
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "drive the rig through the actuator controller",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagModes,
						Usage: "apply modes from `FILE` whenever it changes",
					},
					&cli.DurationFlag{
						Name:  flagStatusInterval,
						Usage: "print a status table this often, 0 to disable",
						Value: 5 * time.Second,
					},
				},
				Action: func(c *cli.Context) error {
					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()
					return runRig(ctx, cfg, logger, runOptions{
						modesFile:      c.String(flagModes),
						statusInterval: c.Duration(flagStatusInterval),
						out:            c.App.Writer,
					})
				},
			},
			{
				Name:  "simulate",
				Usage: "drive the rig against an in-process echo controller",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  flagDuration,
						Usage: "stop after this long, 0 to run until interrupted",
						Value: 10 * time.Second,
					},
					&cli.DurationFlag{
						Name:  flagStatusInterval,
						Usage: "print a status table this often, 0 to disable",
						Value: time.Second,
					},
					&cli.Float64Flag{
						Name:  flagLoss,
						Usage: "fraction of replies the controller drops",
					},
					&cli.Float64Flag{
						Name:  flagWidth,
						Usage: "width of the simulated play area in meters",
						Value: 3,
					},
					&cli.Float64Flag{
						Name:  flagDepth,
						Usage: "depth of the simulated play area in meters",
						Value: 3,
					},
				},
				Action: func(c *cli.Context) error {
					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()
					if d := c.Duration(flagDuration); d > 0 {
						var cancel context.CancelFunc
						ctx, cancel = context.WithTimeout(ctx, d)
						defer cancel()
					}

					ctrl, err := fake.NewController(ctx, "127.0.0.1:0", logger.Sublogger("controller"))
					if err != nil {
						return err
					}
					defer func() {
						if err := ctrl.Close(); err != nil {
							logger.Warnw("cannot close controller", "error", err)
						}
					}()
					ctrl.SetLossRate(c.Float64(flagLoss))

					simCfg := *cfg
					simCfg.Transport.Host = "127.0.0.1"
					simCfg.Transport.Port = ctrl.Port()
					simCfg.Transport.ListenPort = 0
					simCfg.Modes.GameStarted = true
					return runRig(ctx, &simCfg, logger, runOptions{
						sensor:         boundaryfake.NewPlayArea(c.Float64(flagWidth), c.Float64(flagDepth)),
						statusInterval: c.Duration(flagStatusInterval),
						out:            c.App.Writer,
					})
				},
			},
			{
				Name:  "schema",
				Usage: "print the JSON schema of the config file",
				Action: func(c *cli.Context) error {
					out, err := config.SchemaJSON()
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, string(out))
					return err
				},
			},
			{
				Name:  "echo",
				Usage: "act as an echo controller for bench testing",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagPort,
						Usage: "UDP port to listen on",
						Value: 5005,
					},
					&cli.Float64Flag{
						Name:  flagVoltage,
						Usage: "battery voltage to report",
						Value: fake.DefaultVoltage,
					},
					&cli.Float64Flag{
						Name:  flagLoss,
						Usage: "fraction of replies to drop",
					},
				},
				Action: func(c *cli.Context) error {
					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()
					ctrl, err := fake.NewController(ctx, fmt.Sprintf(":%d", c.Int(flagPort)), logger)
					if err != nil {
						return err
					}
					ctrl.SetVoltage(float32(c.Float64(flagVoltage)))
					ctrl.SetLossRate(c.Float64(flagLoss))
					logger.Infof("echoing on %s", ctrl.Addr())
					<-ctx.Done()
					logger.Infow("echo stopped", "received", ctrl.Received(), "echoed", ctrl.Echoed())
					return ctrl.Close()
				},
			},
		},
	}
}

func readConfig(c *cli.Context, logger logging.Logger) (*config.Config, error) {
	path := c.String(flagConfig)
	if path == "" {
		defaults := config.Defaults()
		return &defaults, nil
	}
	cfg, err := config.Read(c.Context, path, logger.Sublogger("config"))
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}
	return cfg, nil
}
