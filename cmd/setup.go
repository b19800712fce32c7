package cmd

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/xtablet/tabmap/internal/config"
	"github.com/xtablet/tabmap/internal/logger"
	"github.com/xtablet/tabmap/internal/ui"
	"github.com/xtablet/tabmap/internal/x11"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Pick the target output and save it to the config file",
	Long: `Interactively pick the output tablets should be mapped to and write it
to the config file, so plain "tabmap" and "tabmap -w" need no flags.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}

	conn, err := x11.Connect(display(cfg))
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetNamePrefixes(cfg.Devices.NamePrefixes)

	vs, outputMap, err := conn.ReadTopology()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(outputMap))
	for name, out := range outputMap {
		if out.Enabled {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no enabled outputs found")
	}
	sort.Strings(names)

	options := make([]huh.Option[string], len(names))
	for i, name := range names {
		out := outputMap[name]
		label := fmt.Sprintf("%s (%dx%d at %d,%d)", name, out.Width, out.Height, out.X, out.Y)
		options[i] = huh.NewOption(label, name)
	}

	selected := cfg.Output
	watchDevices := cfg.Watch.Devices
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Target Output").
				Description(fmt.Sprintf("Tablets will be mapped onto this output (virtual screen %dx%d)", vs.Width, vs.Height)).
				Options(options...).
				Value(&selected),
			huh.NewConfirm().
				Title("Remap on device hotplug?").
				Description("In watch mode, also remap when a tablet is plugged in or removed").
				Value(&watchDevices),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	if err := config.SetOutput(selected); err != nil {
		return err
	}
	if err := config.SetWatchDevices(watchDevices); err != nil {
		return err
	}

	logger.Infof("Saved target output %s to %s", selected, config.GetConfigPath())

	// Show what the choice covers right away.
	devices, err := conn.Tablets()
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderDevices(devices))
	return nil
}
