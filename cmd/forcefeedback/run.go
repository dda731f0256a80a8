package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	goutils "go.viam.com/utils"

	"go.viam.com/forcefeedback/boundary"
	"go.viam.com/forcefeedback/config"
	"go.viam.com/forcefeedback/force"
	"go.viam.com/forcefeedback/logging"
	"go.viam.com/forcefeedback/rig"
	rigfake "go.viam.com/forcefeedback/rig/fake"
	"go.viam.com/forcefeedback/transport"
	"go.viam.com/forcefeedback/utils"
)

type runOptions struct {
	sensor         boundary.Sensor
	modesFile      string
	statusInterval time.Duration
	out            io.Writer
}

// runRig drives the rig until ctx is done. Frames come from a scripted reach until a VR bridge
// is attached.
func runRig(ctx context.Context, cfg *config.Config, logger logging.Logger, opts runOptions) (err error) {
	modes := force.NewModes()
	modes.Apply(cfg.Modes)

	engine, err := force.NewEngine(cfg.Engine, cfg.Calibration, opts.sensor, modes, logger.Sublogger("engine"))
	if err != nil {
		return err
	}

	tb := utils.NewTimebase(nil)
	client, err := transport.NewClient(ctx, cfg.Transport, logger.Sublogger("transport"), transport.WithTimebase(tb))
	if err != nil {
		return err
	}
	defer func() {
		err = closeTransport(err, client)
	}()

	r := rig.New(engine, client, tb, nil, logger.Sublogger("rig"))
	loop, err := rig.NewLoop(r, rigfake.NewReach(), cfg.TickHz, logger.Sublogger("loop"))
	if err != nil {
		return err
	}
	if err := loop.Start(); err != nil {
		return err
	}
	defer loop.Stop()

	modesFile := opts.modesFile
	if modesFile == "" {
		modesFile = cfg.ModesFile
	}

	g, gctx := errgroup.WithContext(ctx)
	if modesFile != "" {
		g.Go(func() error {
			return config.WatchModes(gctx, modesFile, modes, logger.Sublogger("modes"))
		})
	}
	if opts.statusInterval > 0 {
		g.Go(func() error {
			for goutils.SelectContextOrWait(gctx, opts.statusInterval) {
				if snap := r.Latest(); snap != nil {
					fmt.Fprintln(opts.out, snap.String())
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}

type contextCloser interface {
	Close(ctx context.Context) error
}

// closeTransport closes c within a second and appends any failure to err.
func closeTransport(err error, c contextCloser) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if closeErr := c.Close(ctx); closeErr != nil {
		err = multierr.Append(err, errors.Wrap(closeErr, "cannot close transport"))
	}
	return err
}
