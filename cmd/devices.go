package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xtablet/tabmap/internal/ui"
	"github.com/xtablet/tabmap/internal/x11"
)

// DeviceInfo is the JSON shape of one tablet device
type DeviceInfo struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	Kind string  `json:"kind"`
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

var devicesJSON bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List detected tablet devices",
	Long:  `List the input devices classified as tablet hardware, with their raw sensing ranges.`,
	RunE:  runDevices,
}

func init() {
	devicesCmd.Flags().BoolVar(&devicesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
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

	devices, err := conn.Tablets()
	if err != nil {
		return err
	}

	if devicesJSON {
		infos := make([]DeviceInfo, len(devices))
		for i, dev := range devices {
			infos[i] = DeviceInfo{
				ID:   dev.ID,
				Name: dev.Name,
				Kind: string(dev.Kind),
				XMin: dev.X.Min,
				XMax: dev.X.Max,
				YMin: dev.Y.Min,
				YMax: dev.Y.Max,
			}
		}
		return json.NewEncoder(os.Stdout).Encode(infos)
	}

	fmt.Print(ui.RenderDevices(devices))
	return nil
}
