// Package mapping is the engine that pins tablet input to one output: it
// computes the coordinate transformation matrix constraining a device's
// sensing area to the target output's rectangle within the virtual screen,
// and applies it to every tablet device found.
package mapping

import (
	"errors"
	"fmt"
)

var (
	// ErrTopologyUnavailable means the display configuration could not be
	// queried at all (RANDR missing, connection lost).
	ErrTopologyUnavailable = errors.New("display topology unavailable")

	// ErrTopologyInvalid means the reported geometry cannot be trusted,
	// e.g. a zero-size virtual screen mid-reconfiguration.
	ErrTopologyInvalid = errors.New("display topology invalid")

	// ErrInputUnavailable means input devices could not be enumerated.
	ErrInputUnavailable = errors.New("input subsystem unavailable")
)

// VirtualScreen is the bounding rectangle containing all active outputs, the
// space the server scales all device input into.
type VirtualScreen struct {
	Width  int
	Height int
}

// Output is one RANDR output. Disabled outputs keep their name in the
// topology map so a temporarily dark target is distinguishable from an
// unknown one in diagnostics.
type Output struct {
	Name    string
	X       int
	Y       int
	Width   int
	Height  int
	Enabled bool
}

// Matrix is a row-major 3x3 affine transform over the normalized
// [0,1]x[0,1] device coordinate space, in the layout the X server's
// coordinate transformation property expects.
type Matrix [9]float32

// Identity maps the device onto the whole virtual screen, the server default.
var Identity = Matrix{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
}

// Apply transforms a normalized device point. Only used by diagnostics and
// tests; the server does the real work once the property is set.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return float64(m[0])*x + float64(m[1])*y + float64(m[2]),
		float64(m[3])*x + float64(m[4])*y + float64(m[5])
}

func (m Matrix) String() string {
	return fmt.Sprintf("[%g %g %g; %g %g %g; %g %g %g]",
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
}

// Compute builds the transform that maps the full device space onto out's
// rectangle within vs. The output may legitimately exceed the virtual screen
// for a moment during a reconfiguration; the raw matrix is returned unclamped
// since the server is the source of truth and stabilizes on its own.
func Compute(vs VirtualScreen, out Output) (Matrix, error) {
	if vs.Width <= 0 || vs.Height <= 0 {
		return Identity, fmt.Errorf("%w: virtual screen %dx%d", ErrTopologyInvalid, vs.Width, vs.Height)
	}
	scaleX := float32(out.Width) / float32(vs.Width)
	scaleY := float32(out.Height) / float32(vs.Height)
	offsetX := float32(out.X) / float32(vs.Width)
	offsetY := float32(out.Y) / float32(vs.Height)
	return Matrix{
		scaleX, 0, offsetX,
		0, scaleY, offsetY,
		0, 0, 1,
	}, nil
}
