package x11

import (
	"context"
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"

	"github.com/xtablet/tabmap/internal/logger"
	"github.com/xtablet/tabmap/internal/mapping"
)

// GenericEvent is an X generic event (code 35), the envelope XI2 wraps its
// events in. xproto's stock decoder throws the extension opcode and event
// type away, so this package installs its own.
type GenericEvent struct {
	Extension byte
	Sequence  uint16
	Length    uint32
	EvType    uint16
}

func (e GenericEvent) Bytes() []byte { return nil }

func (e GenericEvent) String() string {
	return fmt.Sprintf("GenericEvent {Extension: %d, EvType: %d}", e.Extension, e.EvType)
}

func newGenericEvent(buf []byte) xgb.Event {
	return GenericEvent{
		Extension: buf[1],
		Sequence:  xgb.Get16(buf[2:]),
		Length:    xgb.Get32(buf[4:]),
		EvType:    xgb.Get16(buf[8:]),
	}
}

func init() {
	// Runs after xproto's init (import order), overriding its GeGeneric
	// decoder.
	xgb.NewEventFuncs[35] = newGenericEvent
}

// Subscribe registers for display-configuration change notifications and,
// when withDevices is set, for XI2 hierarchy events so tablets plugged in
// mid-session are mapped without waiting for a display change. The
// subscription lives on the connection and is released when it closes.
func (c *Conn) Subscribe(withDevices bool) error {
	mask := randr.NotifyMaskScreenChange |
		randr.NotifyMaskCrtcChange |
		randr.NotifyMaskOutputChange |
		randr.NotifyMaskOutputProperty |
		randr.NotifyMaskProviderChange |
		randr.NotifyMaskProviderProperty |
		randr.NotifyMaskResourceChange
	if err := randr.SelectInputChecked(c.x, c.root, uint16(mask)).Check(); err != nil {
		return fmt.Errorf("%w: RANDR select input: %v", mapping.ErrTopologyUnavailable, err)
	}

	if withDevices {
		masks := []eventMask{{deviceID: xiAllDevices, mask: 1 << xiHierarchyChanged}}
		if _, err := c.xiRequest(xiOpSelectEvents, encodeXISelectEvents(c.root, masks), false); err != nil {
			return fmt.Errorf("%w: XISelectEvents: %v", mapping.ErrInputUnavailable, err)
		}
	}
	return nil
}

// Changes pumps subscribed notifications into a channel of mapping changes.
// The channel closes when the connection does; a full channel drops the
// notification since a remap is already pending and every cycle recomputes
// from scratch anyway.
func (c *Conn) Changes(ctx context.Context) <-chan mapping.Change {
	ch := make(chan mapping.Change, 8)
	go func() {
		defer close(ch)
		for {
			ev, xerr := c.x.WaitForEvent()
			if ev == nil && xerr == nil {
				return // connection closed
			}
			if xerr != nil {
				logger.Debugf("Display server error event: %v", xerr)
				continue
			}

			reason := c.changeReason(ev)
			if reason == "" {
				continue
			}
			select {
			case ch <- mapping.Change{Reason: reason}:
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
	return ch
}

func (c *Conn) changeReason(ev xgb.Event) string {
	switch e := ev.(type) {
	case randr.ScreenChangeNotifyEvent:
		return "screen change"
	case randr.NotifyEvent:
		switch e.SubCode {
		case randr.NotifyCrtcChange:
			return "crtc change"
		case randr.NotifyOutputChange:
			return "output change"
		case randr.NotifyOutputProperty:
			return "output property change"
		case randr.NotifyProviderChange:
			return "provider change"
		case randr.NotifyProviderProperty:
			return "provider property change"
		case randr.NotifyResourceChange:
			return "resource change"
		}
		return "display change"
	case GenericEvent:
		if e.Extension == c.xiOpcode && e.EvType == xiHierarchyChanged {
			return "device hierarchy change"
		}
	}
	return ""
}
