// Package tablet models digitizer input devices and decides which of the
// pointer devices an X server reports are tablet hardware worth remapping.
package tablet

import (
	"fmt"
	"strings"
)

// TransformProperty is the per-device property the X input pipeline consults
// when scaling raw device coordinates to screen coordinates. A device without
// it cannot be remapped at all.
const TransformProperty = "Coordinate Transformation Matrix"

// ToolTypeProperty names the tool type the driver reports for one logical
// device of a physical tablet (stylus, eraser, pad, ...).
const ToolTypeProperty = "Wacom Tool Type"

// Kind is the logical role of one device of a physical tablet. A single piece
// of hardware usually shows up as several devices with distinct kinds.
type Kind string

const (
	Stylus Kind = "stylus"
	Eraser Kind = "eraser"
	Pad    Kind = "pad"
	Touch  Kind = "touch"
	Cursor Kind = "cursor"

	// Generic marks a device recognized by vendor prefix whose name and
	// properties carry no specific tool type.
	Generic Kind = "tablet"
)

// Range is the raw sensing range of one axis as reported by the device.
type Range struct {
	Min float64
	Max float64
}

// Device is one logical tablet device as enumerated from the input subsystem.
type Device struct {
	ID   int
	Name string
	Kind Kind

	// Raw sensing ranges of the absolute X/Y valuators. Zero ranges mean
	// the device did not report absolute axes (e.g. a pad).
	X Range
	Y Range
}

func (d Device) String() string {
	return fmt.Sprintf("%s (id=%d, %s)", d.Name, d.ID, d.Kind)
}

// Meta is the hardware-reported metadata classification runs against.
type Meta struct {
	Name       string
	ToolType   string   // value of ToolTypeProperty, empty when absent
	Properties []string // names of the device's properties
}

// HasProperty reports whether the device exposes the named property.
func (m Meta) HasProperty(name string) bool {
	for _, p := range m.Properties {
		if p == name {
			return true
		}
	}
	return false
}

// kindTokens are the recognized type tags, matched case-insensitively against
// the tool-type property value or the trailing token of a device name.
var kindTokens = map[string]Kind{
	"stylus": Stylus,
	"pen":    Stylus,
	"eraser": Eraser,
	"pad":    Pad,
	"touch":  Touch,
	"finger": Touch,
	"cursor": Cursor,
}

// Classify decides whether a device is tablet hardware and which kind. It is
// a predicate over the reported metadata: the tool-type property wins, then
// the trailing name token, then the configured vendor name prefixes. Devices
// without the coordinate transformation property are never tablets here, and
// plain pointers that happen to carry the property (every X pointer does) are
// excluded because they match none of the tags.
func Classify(m Meta, namePrefixes []string) (Kind, bool) {
	if !m.HasProperty(TransformProperty) {
		return "", false
	}
	if k, ok := kindTokens[normalizeToken(m.ToolType)]; ok {
		return k, true
	}
	if k, ok := kindTokens[lastNameToken(m.Name)]; ok {
		return k, true
	}
	for _, prefix := range namePrefixes {
		if prefix != "" && strings.HasPrefix(m.Name, prefix) {
			return Generic, true
		}
	}
	return "", false
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.Trim(s, "()"))
}

func lastNameToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return normalizeToken(fields[len(fields)-1])
}
