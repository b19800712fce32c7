package x11

import (
	"fmt"

	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/xtablet/tabmap/internal/logger"
	"github.com/xtablet/tabmap/internal/mapping"
)

// ReadTopology snapshots the virtual screen and every RANDR output.
//
// The virtual screen is read from the live root window geometry rather than
// the connection-setup snapshot: a cycle running mid-reconfiguration must see
// the rectangle the server currently scales input into, not the one from
// connect time. Outputs keep their map entry even when disconnected or
// disabled so a missing target stays distinguishable from an unplugged one.
func (c *Conn) ReadTopology() (mapping.VirtualScreen, map[string]mapping.Output, error) {
	geom, err := xproto.GetGeometry(c.x, xproto.Drawable(c.root)).Reply()
	if err != nil {
		return mapping.VirtualScreen{}, nil, fmt.Errorf("%w: root geometry: %v", mapping.ErrTopologyUnavailable, err)
	}
	vs := mapping.VirtualScreen{Width: int(geom.Width), Height: int(geom.Height)}

	res, err := randr.GetScreenResourcesCurrent(c.x, c.root).Reply()
	if err != nil {
		return mapping.VirtualScreen{}, nil, fmt.Errorf("%w: screen resources: %v", mapping.ErrTopologyUnavailable, err)
	}

	outputs := make(map[string]mapping.Output, len(res.Outputs))
	for _, id := range res.Outputs {
		info, err := randr.GetOutputInfo(c.x, id, 0).Reply()
		if err != nil {
			// An output can vanish between the resource list and this
			// query; it simply has no entry this cycle.
			logger.Debugf("Output %d disappeared during query: %v", id, err)
			continue
		}
		out := mapping.Output{Name: string(info.Name)}
		if info.Connection == randr.ConnectionConnected && info.Crtc != 0 {
			crtc, err := randr.GetCrtcInfo(c.x, info.Crtc, 0).Reply()
			if err != nil {
				logger.Debugf("CRTC %d of output %s disappeared during query: %v", info.Crtc, out.Name, err)
			} else if crtc.Mode != 0 {
				out.Enabled = true
				out.X = int(crtc.X)
				out.Y = int(crtc.Y)
				out.Width = int(crtc.Width)
				out.Height = int(crtc.Height)
			}
		}
		outputs[out.Name] = out
	}
	return vs, outputs, nil
}
