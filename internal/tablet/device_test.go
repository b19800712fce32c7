package tablet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func meta(name, toolType string, props ...string) Meta {
	return Meta{Name: name, ToolType: toolType, Properties: props}
}

func TestClassify(t *testing.T) {
	prefixes := []string{"Wacom"}

	tests := []struct {
		name     string
		meta     Meta
		wantKind Kind
		wantOK   bool
	}{
		{
			name:     "stylus by tool type",
			meta:     meta("Wacom Intuos Pro M Pen stylus", "STYLUS", TransformProperty, ToolTypeProperty),
			wantKind: Stylus,
			wantOK:   true,
		},
		{
			name:     "eraser by tool type",
			meta:     meta("Wacom Intuos Pro M Pen eraser", "ERASER", TransformProperty, ToolTypeProperty),
			wantKind: Eraser,
			wantOK:   true,
		},
		{
			name:     "touch by tool type",
			meta:     meta("Wacom Intuos Pro M Finger touch", "TOUCH", TransformProperty, ToolTypeProperty),
			wantKind: Touch,
			wantOK:   true,
		},
		{
			name: "tool type beats name token",
			// Driver says eraser even though the name ends in "Pen".
			meta:     meta("Tablet Monitor Pen", "ERASER", TransformProperty, ToolTypeProperty),
			wantKind: Eraser,
			wantOK:   true,
		},
		{
			name:     "stylus by trailing name token without tool type",
			meta:     meta("UGTABLET 24 inch PenDisplay stylus", "", TransformProperty),
			wantKind: Stylus,
			wantOK:   true,
		},
		{
			name:     "parenthesized name token",
			meta:     meta("XP-PEN Artist 13.3 (Pen)", "", TransformProperty),
			wantKind: Stylus,
			wantOK:   true,
		},
		{
			name:     "pad by name token",
			meta:     meta("Wacom Intuos Pro M Pad", "", TransformProperty),
			wantKind: Pad,
			wantOK:   true,
		},
		{
			name:     "cursor device",
			meta:     meta("Wacom Intuos4 8x13 cursor", "CURSOR", TransformProperty, ToolTypeProperty),
			wantKind: Cursor,
			wantOK:   true,
		},
		{
			name:     "vendor prefix only",
			meta:     meta("Wacom Bamboo 16FG 4x5", "", TransformProperty),
			wantKind: Generic,
			wantOK:   true,
		},
		{
			name:   "plain mouse with transform property is not a tablet",
			meta:   meta("Logitech USB Optical Mouse", "", TransformProperty),
			wantOK: false,
		},
		{
			name:   "touchpad is not a tablet",
			meta:   meta("SynPS/2 Synaptics TouchPad", "", TransformProperty),
			wantOK: false,
		},
		{
			name: "stylus without transform property cannot be mapped",
			meta: meta("Wacom Intuos Pro M Pen stylus", "STYLUS", ToolTypeProperty),
			// Every mappable pointer carries the property; its absence
			// means the server cannot apply a matrix at all.
			wantOK: false,
		},
		{
			name:   "virtual core pointer",
			meta:   meta("Virtual core XTEST pointer", "", TransformProperty),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := Classify(tt.meta, prefixes)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKind, kind)
			}
		})
	}
}

func TestClassifyCustomPrefixes(t *testing.T) {
	m := meta("Huion Tablet", "", TransformProperty)

	_, ok := Classify(m, []string{"Wacom"})
	assert.False(t, ok)

	kind, ok := Classify(m, []string{"Wacom", "Huion"})
	assert.True(t, ok)
	assert.Equal(t, Generic, kind)

	// Empty prefixes never match anything.
	_, ok = Classify(m, []string{""})
	assert.False(t, ok)
}

func TestDeviceString(t *testing.T) {
	dev := Device{ID: 14, Name: "Wacom Intuos Pro M Pen stylus", Kind: Stylus}
	assert.Equal(t, "Wacom Intuos Pro M Pen stylus (id=14, stylus)", dev.String())
}
