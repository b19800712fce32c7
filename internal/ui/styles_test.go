package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xtablet/tabmap/internal/mapping"
	"github.com/xtablet/tabmap/internal/tablet"
)

func TestRenderOutputs(t *testing.T) {
	vs := mapping.VirtualScreen{Width: 3840, Height: 1080}
	outputs := []mapping.Output{
		{Name: "DP-1", X: 0, Y: 0, Width: 1920, Height: 1080, Enabled: true},
		{Name: "DP-2", X: 1920, Y: 0, Width: 1920, Height: 1080, Enabled: true},
		{Name: "HDMI-1"},
	}

	got := RenderOutputs(vs, outputs, "DP-2")

	assert.Contains(t, got, "3840x1080")
	assert.Contains(t, got, "DP-1")
	assert.Contains(t, got, "1920x1080+1920+0")
	assert.Contains(t, got, "HDMI-1")
	assert.Contains(t, got, "off")
	// The target is marked.
	assert.Contains(t, got, "* ")
}

func TestRenderDevices(t *testing.T) {
	devices := []tablet.Device{
		{
			ID:   12,
			Name: "Wacom Intuos Pro M Pen stylus",
			Kind: tablet.Stylus,
			X:    tablet.Range{Min: 0, Max: 44704},
			Y:    tablet.Range{Min: 0, Max: 27940},
		},
		{ID: 14, Name: "Wacom Intuos Pro M Pad", Kind: tablet.Pad},
	}

	got := RenderDevices(devices)

	assert.Contains(t, got, "Tablet devices (2)")
	assert.Contains(t, got, "Wacom Intuos Pro M Pen stylus")
	assert.Contains(t, got, "id=12")
	assert.Contains(t, got, "stylus")
	assert.Contains(t, got, "44704")
	// The pad has no absolute axes and no axes line.
	padLine := strings.Index(got, "Wacom Intuos Pro M Pad")
	assert.NotEqual(t, -1, padLine)
}

func TestRenderDevicesEmpty(t *testing.T) {
	got := RenderDevices(nil)
	assert.Contains(t, got, "No tablet devices detected")
}
