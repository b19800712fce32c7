package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/xtablet/tabmap/internal/mapping"
	"github.com/xtablet/tabmap/internal/ui"
	"github.com/xtablet/tabmap/internal/x11"
)

// OutputsInfo is the JSON shape of the outputs listing
type OutputsInfo struct {
	VirtualScreen ScreenInfo   `json:"virtual_screen"`
	Outputs       []OutputInfo `json:"outputs"`
}

// ScreenInfo describes the virtual screen
type ScreenInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OutputInfo describes a single RANDR output
type OutputInfo struct {
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Enabled bool   `json:"enabled"`
}

var outputsJSON bool

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "List RANDR outputs",
	Long:  `List the outputs of the current display configuration and their geometry within the virtual screen.`,
	RunE:  runOutputs,
}

func init() {
	outputsCmd.Flags().BoolVar(&outputsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(outputsCmd)
}

func runOutputs(cmd *cobra.Command, args []string) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}

	conn, err := x11.Connect(display(cfg))
	if err != nil {
		return err
	}
	defer conn.Close()

	vs, outputMap, err := conn.ReadTopology()
	if err != nil {
		return err
	}

	outputs := make([]mapping.Output, 0, len(outputMap))
	for _, out := range outputMap {
		outputs = append(outputs, out)
	}
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].Name < outputs[j].Name })

	if outputsJSON {
		info := OutputsInfo{
			VirtualScreen: ScreenInfo{Width: vs.Width, Height: vs.Height},
			Outputs:       make([]OutputInfo, len(outputs)),
		}
		for i, out := range outputs {
			info.Outputs[i] = OutputInfo{
				Name:    out.Name,
				X:       out.X,
				Y:       out.Y,
				Width:   out.Width,
				Height:  out.Height,
				Enabled: out.Enabled,
			}
		}
		return json.NewEncoder(os.Stdout).Encode(info)
	}

	fmt.Print(ui.RenderOutputs(vs, outputs, cfg.Output))
	return nil
}
