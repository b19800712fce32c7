package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xtablet/tabmap/internal/config"
	"github.com/xtablet/tabmap/internal/logger"
	"github.com/xtablet/tabmap/internal/mapping"
	"github.com/xtablet/tabmap/internal/x11"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	outputFlag  string
	watchFlag   bool
	displayFlag string
	configFlag  string

	rootCmd = &cobra.Command{
		Use:   "tabmap",
		Short: "Tabmap - map tablets to one output",
		Long: `Tabmap pins the active area of connected drawing tablets to a single
RANDR output instead of letting it stretch across the whole virtual screen.
Run it once after plugging in a tablet, or leave it watching so the mapping
follows docking, undocking and resolution changes.`,
		SilenceUsage: true,
		RunE:         runMap,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "RANDR output to map tablets onto")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "keep running and remap on display or device changes")
	rootCmd.PersistentFlags().StringVar(&displayFlag, "display", "", "X display to connect to (default $DISPLAY)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file path")
}

// initConfig loads the config file and applies its log level. Called at the
// top of every command's RunE.
func initConfig() (*config.Config, error) {
	if configFlag != "" {
		config.SetConfigPath(configFlag)
	}
	if err := config.Init(); err != nil {
		return nil, err
	}
	cfg := config.Get()
	if cfg.Logging.LogLevel != "" {
		logger.SetLevel(cfg.Logging.LogLevel)
	}
	return cfg, nil
}

// display resolves the display to connect to: flag first, then config, then
// the inherited $DISPLAY (empty string).
func display(cfg *config.Config) string {
	if displayFlag != "" {
		return displayFlag
	}
	return cfg.Display
}

func runMap(cmd *cobra.Command, args []string) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}

	target := outputFlag
	if target == "" {
		target = cfg.Output
	}
	if target == "" {
		// No target anywhere; nothing to map. Mirror the original tool
		// and show usage instead of guessing an output.
		return cmd.Help()
	}

	conn, err := x11.Connect(display(cfg))
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetNamePrefixes(cfg.Devices.NamePrefixes)

	engine := mapping.NewEngine(conn, conn, conn, target)

	if !watchFlag {
		res, err := engine.RunCycle()
		if err != nil {
			return err
		}
		for _, f := range res.Failures {
			logger.Warnf("Device %s rejected transform: %v", f.Device, f.Err)
		}
		logger.Infof("Mapped %d device(s) to %s", res.Applied, target)
		return nil
	}

	return runWatch(cfg, conn, engine)
}

// runWatch owns the watch-mode lifecycle: the signal-scoped context, the
// notification fan-in and the config live reload. The connection is closed on
// every exit path by runMap's defer, which also releases the subscriptions
// and unblocks the event pump.
func runWatch(cfg *config.Config, conn *x11.Conn, engine *mapping.Engine) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := conn.Subscribe(cfg.Watch.Devices); err != nil {
		return err
	}

	// One inbound channel drives the loop; display/device notifications
	// and config reloads all funnel into it through a single forwarder so
	// the channel has exactly one sender.
	notify := make(chan mapping.Change, 8)
	reload := make(chan mapping.Change, 1)
	go func() {
		defer close(notify)
		changes := conn.Changes(ctx)
		for {
			var change mapping.Change
			select {
			case <-ctx.Done():
				return
			case change = <-reload:
			case c, ok := <-changes:
				if !ok {
					return
				}
				change = c
			}
			select {
			case notify <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	config.Watch(func(c *config.Config) {
		if c.Logging.LogLevel != "" {
			logger.SetLevel(c.Logging.LogLevel)
		}
		// The -o flag pins the target; without it the config file decides.
		if outputFlag == "" && c.Output != "" && c.Output != engine.Target() {
			logger.Infof("Config reload: target output now %s", c.Output)
			engine.SetTarget(c.Output)
		}
		select {
		case reload <- mapping.Change{Reason: "config reload"}:
		default:
		}
	})

	// Unblock the event wait when a signal lands.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	logger.Infof("Watching display changes, mapping tablets to %s", engine.Target())
	if err := mapping.NewWatcher(engine, notify).Run(ctx); err != nil {
		// The feed closing during shutdown is the normal exit once the
		// context is cancelled.
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
