package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name string
		vs   VirtualScreen
		out  Output
		want Matrix
	}{
		{
			name: "right half of side-by-side dual head",
			vs:   VirtualScreen{Width: 3840, Height: 1080},
			out:  Output{Name: "right", X: 1920, Y: 0, Width: 1920, Height: 1080, Enabled: true},
			want: Matrix{
				0.5, 0, 0.5,
				0, 1, 0,
				0, 0, 1,
			},
		},
		{
			name: "left half of side-by-side dual head",
			vs:   VirtualScreen{Width: 3840, Height: 1080},
			out:  Output{Name: "left", X: 0, Y: 0, Width: 1920, Height: 1080, Enabled: true},
			want: Matrix{
				0.5, 0, 0,
				0, 1, 0,
				0, 0, 1,
			},
		},
		{
			name: "single output spanning the screen",
			vs:   VirtualScreen{Width: 1920, Height: 1080},
			out:  Output{Name: "only", X: 0, Y: 0, Width: 1920, Height: 1080, Enabled: true},
			want: Identity,
		},
		{
			name: "stacked layout, bottom output",
			vs:   VirtualScreen{Width: 1920, Height: 2160},
			out:  Output{Name: "bottom", X: 0, Y: 1080, Width: 1920, Height: 1080, Enabled: true},
			want: Matrix{
				1, 0, 0,
				0, 0.5, 0.5,
				0, 0, 1,
			},
		},
		{
			name: "output larger than the screen stays unclamped",
			vs:   VirtualScreen{Width: 1920, Height: 1080},
			out:  Output{Name: "big", X: 0, Y: 0, Width: 3840, Height: 1080, Enabled: true},
			want: Matrix{
				2, 0, 0,
				0, 1, 0,
				0, 0, 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.vs, tt.out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeInvalidScreen(t *testing.T) {
	for _, vs := range []VirtualScreen{
		{Width: 0, Height: 1080},
		{Width: 1920, Height: 0},
		{Width: -1920, Height: 1080},
	} {
		_, err := Compute(vs, Output{Name: "any", Width: 100, Height: 100, Enabled: true})
		assert.ErrorIs(t, err, ErrTopologyInvalid, "screen %dx%d", vs.Width, vs.Height)
	}
}

// The transform must carry the normalized device corners onto the output's
// corners in normalized virtual-screen coordinates.
func TestComputeCornerMapping(t *testing.T) {
	vs := VirtualScreen{Width: 3840, Height: 2160}
	out := Output{Name: "DP-2", X: 1920, Y: 1080, Width: 1920, Height: 1080, Enabled: true}

	m, err := Compute(vs, out)
	require.NoError(t, err)

	x0, y0 := m.Apply(0, 0)
	assert.InDelta(t, 0.5, x0, 1e-6)
	assert.InDelta(t, 0.5, y0, 1e-6)

	x1, y1 := m.Apply(1, 1)
	assert.InDelta(t, 1.0, x1, 1e-6)
	assert.InDelta(t, 1.0, y1, 1e-6)
}
