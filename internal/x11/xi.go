package x11

import (
	"fmt"
	"math"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/xtablet/tabmap/internal/mapping"
)

// xgb ships no usable XInput bindings (the property requests never made it
// past the protocol's union types), so the handful of XI2 requests this tool
// needs are encoded by hand on top of xgb's request plumbing. Wire layouts
// follow inputproto's XI2 specification.

const xiExtName = "XInputExtension"

// XI2 minor opcodes
const (
	xiOpSelectEvents   = 46
	xiOpQueryVersion   = 47
	xiOpQueryDevice    = 48
	xiOpListProperties = 56
	xiOpChangeProperty = 57
	xiOpGetProperty    = 59
)

// Device uses from XIQueryDevice
const (
	xiMasterPointer  = 1
	xiMasterKeyboard = 2
	xiSlavePointer   = 3
	xiSlaveKeyboard  = 4
	xiFloatingSlave  = 5
)

const (
	xiAllDevices = 0

	// XI_HierarchyChanged event type, fired on device add/remove.
	xiHierarchyChanged = 11

	xiClassValuator = 2
	xiModeAbsolute  = 1

	xiPropModeReplace = 0
)

// initXInput locates the extension and negotiates XI 2.0, the version that
// introduced device properties and hierarchy events.
func (c *Conn) initXInput() error {
	reply, err := xproto.QueryExtension(c.x, uint16(len(xiExtName)), xiExtName).Reply()
	if err != nil {
		return fmt.Errorf("%w: query extension: %v", mapping.ErrInputUnavailable, err)
	}
	if !reply.Present {
		return fmt.Errorf("%w: XInputExtension not present", mapping.ErrInputUnavailable)
	}
	c.xiOpcode = reply.MajorOpcode

	buf, err := c.xiRequest(xiOpQueryVersion, encodeXIQueryVersion(2, 0), true)
	if err != nil {
		return fmt.Errorf("%w: XIQueryVersion: %v", mapping.ErrInputUnavailable, err)
	}
	major, minor := parseXIQueryVersionReply(buf)
	if major < 2 {
		return fmt.Errorf("%w: server speaks XI %d.%d, need 2.0", mapping.ErrInputUnavailable, major, minor)
	}
	return nil
}

// xiRequest issues one XI2 request. Requests without replies are checked so
// errors surface synchronously.
func (c *Conn) xiRequest(minor byte, payload []byte, wantReply bool) ([]byte, error) {
	cookie := c.x.NewCookie(true, wantReply)
	c.x.NewRequest(assembleRequest(c.xiOpcode, minor, payload), cookie)
	if !wantReply {
		return nil, cookie.Check()
	}
	return cookie.Reply()
}

// assembleRequest prefixes the 4-byte extension request header. The payload
// must already be padded to a multiple of 4.
func assembleRequest(opcode, minor byte, payload []byte) []byte {
	if len(payload)%4 != 0 {
		panic("x11: unpadded XI2 request payload")
	}
	buf := make([]byte, 4+len(payload))
	buf[0] = opcode
	buf[1] = minor
	xgb.Put16(buf[2:], uint16(len(buf)/4))
	copy(buf[4:], payload)
	return buf
}

func encodeXIQueryVersion(major, minor uint16) []byte {
	buf := make([]byte, 4)
	xgb.Put16(buf[0:], major)
	xgb.Put16(buf[2:], minor)
	return buf
}

func parseXIQueryVersionReply(buf []byte) (major, minor uint16) {
	return xgb.Get16(buf[8:]), xgb.Get16(buf[10:])
}

func encodeXIQueryDevice(deviceID uint16) []byte {
	buf := make([]byte, 4)
	xgb.Put16(buf[0:], deviceID)
	return buf
}

func encodeXIListProperties(deviceID uint16) []byte {
	buf := make([]byte, 4)
	xgb.Put16(buf[0:], deviceID)
	return buf
}

func encodeXIGetProperty(deviceID uint16, property, typ xproto.Atom, offset, length uint32) []byte {
	buf := make([]byte, 20)
	xgb.Put16(buf[0:], deviceID)
	// buf[2] = delete (false), buf[3] = pad
	xgb.Put32(buf[4:], uint32(property))
	xgb.Put32(buf[8:], uint32(typ))
	xgb.Put32(buf[12:], offset)
	xgb.Put32(buf[16:], length)
	return buf
}

func encodeXIChangeProperty(deviceID uint16, mode, format byte, property, typ xproto.Atom, numItems uint32, data []byte) []byte {
	buf := make([]byte, 16+pad4(len(data)))
	xgb.Put16(buf[0:], deviceID)
	buf[2] = mode
	buf[3] = format
	xgb.Put32(buf[4:], uint32(property))
	xgb.Put32(buf[8:], uint32(typ))
	xgb.Put32(buf[12:], numItems)
	copy(buf[16:], data)
	return buf
}

// eventMask is one XISelectEvents mask entry.
type eventMask struct {
	deviceID uint16
	mask     uint32
}

func encodeXISelectEvents(window xproto.Window, masks []eventMask) []byte {
	buf := make([]byte, 8+8*len(masks))
	xgb.Put32(buf[0:], uint32(window))
	xgb.Put16(buf[4:], uint16(len(masks)))
	for i, m := range masks {
		off := 8 + 8*i
		xgb.Put16(buf[off:], m.deviceID)
		xgb.Put16(buf[off+2:], 1) // mask length in 4-byte units
		xgb.Put32(buf[off+4:], m.mask)
	}
	return buf
}

// matrixPropertyData serializes a transform as 9 FLOAT items in the
// connection's byte order (xgb always speaks little-endian).
func matrixPropertyData(m mapping.Matrix) []byte {
	buf := make([]byte, 36)
	for i, v := range m {
		xgb.Put32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// xiDeviceInfo is one DEVICEINFO record from an XIQueryDevice reply.
type xiDeviceInfo struct {
	ID         uint16
	Use        uint16
	Attachment uint16
	Enabled    bool
	Name       string
	Valuators  []xiValuatorClass
}

// xiValuatorClass is one absolute or relative axis of a device.
type xiValuatorClass struct {
	Number uint16
	Label  xproto.Atom
	Min    float64
	Max    float64
	Mode   byte
}

// parseXIQueryDeviceReply walks the DEVICEINFO records of a raw reply.
func parseXIQueryDeviceReply(buf []byte) ([]xiDeviceInfo, error) {
	if len(buf) < 32 {
		return nil, fmt.Errorf("XIQueryDevice reply truncated (%d bytes)", len(buf))
	}
	numInfos := int(xgb.Get16(buf[8:]))
	infos := make([]xiDeviceInfo, 0, numInfos)

	off := 32
	for i := 0; i < numInfos; i++ {
		if off+12 > len(buf) {
			return nil, fmt.Errorf("XIQueryDevice reply truncated at device %d", i)
		}
		info := xiDeviceInfo{
			ID:         xgb.Get16(buf[off:]),
			Use:        xgb.Get16(buf[off+2:]),
			Attachment: xgb.Get16(buf[off+4:]),
			Enabled:    buf[off+10] != 0,
		}
		numClasses := int(xgb.Get16(buf[off+6:]))
		nameLen := int(xgb.Get16(buf[off+8:]))

		off += 12
		if off+nameLen > len(buf) {
			return nil, fmt.Errorf("XIQueryDevice reply truncated in device %d name", i)
		}
		info.Name = string(buf[off : off+nameLen])
		off += pad4(nameLen)

		for j := 0; j < numClasses; j++ {
			if off+6 > len(buf) {
				return nil, fmt.Errorf("XIQueryDevice reply truncated in device %d classes", i)
			}
			classType := xgb.Get16(buf[off:])
			classLen := 4 * int(xgb.Get16(buf[off+2:]))
			if classLen < 6 || off+classLen > len(buf) {
				return nil, fmt.Errorf("XIQueryDevice reply has bad class length %d", classLen)
			}
			if classType == xiClassValuator && classLen >= 44 {
				info.Valuators = append(info.Valuators, xiValuatorClass{
					Number: xgb.Get16(buf[off+6:]),
					Label:  xproto.Atom(xgb.Get32(buf[off+8:])),
					Min:    fp3232(buf[off+12:]),
					Max:    fp3232(buf[off+20:]),
					Mode:   buf[off+40],
				})
			}
			off += classLen
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func parseXIListPropertiesReply(buf []byte) []xproto.Atom {
	if len(buf) < 32 {
		return nil
	}
	n := int(xgb.Get16(buf[8:]))
	atoms := make([]xproto.Atom, 0, n)
	for i := 0; i < n && 32+4*i+4 <= len(buf); i++ {
		atoms = append(atoms, xproto.Atom(xgb.Get32(buf[32+4*i:])))
	}
	return atoms
}

// xiPropertyValue is the decoded head of an XIGetProperty reply.
type xiPropertyValue struct {
	Type     xproto.Atom
	Format   byte
	NumItems uint32
	Data     []byte
}

func parseXIGetPropertyReply(buf []byte) (xiPropertyValue, error) {
	if len(buf) < 32 {
		return xiPropertyValue{}, fmt.Errorf("XIGetProperty reply truncated (%d bytes)", len(buf))
	}
	v := xiPropertyValue{
		Type:     xproto.Atom(xgb.Get32(buf[8:])),
		NumItems: xgb.Get32(buf[16:]),
		Format:   buf[20],
	}
	size := 0
	switch v.Format {
	case 8:
		size = 1
	case 16:
		size = 2
	case 32:
		size = 4
	}
	end := 32 + size*int(v.NumItems)
	if end > len(buf) {
		end = len(buf)
	}
	v.Data = buf[32:end]
	return v, nil
}

// fp3232 decodes the XI2 fixed-point format: a signed 32.32 value.
func fp3232(buf []byte) float64 {
	integral := int32(xgb.Get32(buf[0:]))
	frac := xgb.Get32(buf[4:])
	return float64(integral) + float64(frac)/(1<<32)
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
