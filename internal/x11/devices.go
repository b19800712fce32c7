package x11

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/xtablet/tabmap/internal/logger"
	"github.com/xtablet/tabmap/internal/mapping"
	"github.com/xtablet/tabmap/internal/tablet"
)

// Tablets enumerates all attached devices and keeps the ones classified as
// tablet hardware. An empty result is normal; only a failing XIQueryDevice
// makes the input subsystem count as unavailable.
func (c *Conn) Tablets() ([]tablet.Device, error) {
	buf, err := c.xiRequest(xiOpQueryDevice, encodeXIQueryDevice(xiAllDevices), true)
	if err != nil {
		return nil, fmt.Errorf("%w: XIQueryDevice: %v", mapping.ErrInputUnavailable, err)
	}
	infos, err := parseXIQueryDeviceReply(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mapping.ErrInputUnavailable, err)
	}

	var devices []tablet.Device
	for _, info := range infos {
		// Transforms live on the physical (slave or floating) devices;
		// masters aggregate and have no hardware identity.
		if info.Use != xiSlavePointer && info.Use != xiFloatingSlave {
			continue
		}
		if !info.Enabled {
			continue
		}

		meta, err := c.deviceMeta(info)
		if err != nil {
			// The device can unplug between enumeration and the
			// property queries; skip it this cycle.
			logger.Debugf("Skipping device %q: %v", info.Name, err)
			continue
		}
		kind, ok := tablet.Classify(meta, c.namePrefixes)
		if !ok {
			continue
		}

		dev := tablet.Device{
			ID:   int(info.ID),
			Name: info.Name,
			Kind: kind,
		}
		for _, v := range info.Valuators {
			if v.Mode != xiModeAbsolute {
				continue
			}
			switch v.Number {
			case 0:
				dev.X = tablet.Range{Min: v.Min, Max: v.Max}
			case 1:
				dev.Y = tablet.Range{Min: v.Min, Max: v.Max}
			}
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// deviceMeta collects the metadata classification runs against: the device's
// property names and, when present, the tool type the driver reports.
func (c *Conn) deviceMeta(info xiDeviceInfo) (tablet.Meta, error) {
	buf, err := c.xiRequest(xiOpListProperties, encodeXIListProperties(info.ID), true)
	if err != nil {
		return tablet.Meta{}, fmt.Errorf("XIListProperties: %w", err)
	}

	meta := tablet.Meta{Name: info.Name}
	var toolTypeAtom xproto.Atom
	for _, a := range parseXIListPropertiesReply(buf) {
		name, err := c.atomName(a)
		if err != nil {
			return tablet.Meta{}, err
		}
		meta.Properties = append(meta.Properties, name)
		if name == tablet.ToolTypeProperty {
			toolTypeAtom = a
		}
	}

	if toolTypeAtom != 0 {
		toolType, err := c.toolType(info.ID, toolTypeAtom)
		if err != nil {
			return tablet.Meta{}, err
		}
		meta.ToolType = toolType
	}
	return meta, nil
}

// toolType reads the tool-type property, whose value is an atom naming the
// tool (STYLUS, ERASER, PAD, TOUCH, CURSOR).
func (c *Conn) toolType(deviceID uint16, property xproto.Atom) (string, error) {
	buf, err := c.xiRequest(xiOpGetProperty, encodeXIGetProperty(deviceID, property, xproto.AtomAtom, 0, 1), true)
	if err != nil {
		return "", fmt.Errorf("XIGetProperty: %w", err)
	}
	value, err := parseXIGetPropertyReply(buf)
	if err != nil {
		return "", err
	}
	if value.Type != xproto.AtomAtom || value.Format != 32 || len(value.Data) < 4 {
		return "", nil
	}
	a := xproto.Atom(xgb.Get32(value.Data))
	if a == 0 {
		return "", nil
	}
	return c.atomName(a)
}

// SetTransform writes the matrix as the device's coordinate transformation
// property, nine FLOAT items replacing the previous value.
func (c *Conn) SetTransform(dev tablet.Device, m mapping.Matrix) error {
	property, err := c.atom(tablet.TransformProperty)
	if err != nil {
		return err
	}
	floatAtom, err := c.atom("FLOAT")
	if err != nil {
		return err
	}
	payload := encodeXIChangeProperty(uint16(dev.ID), xiPropModeReplace, 32, property, floatAtom, 9, matrixPropertyData(m))
	if _, err := c.xiRequest(xiOpChangeProperty, payload, false); err != nil {
		return fmt.Errorf("set transform on %q: %w", dev.Name, err)
	}
	return nil
}
