// Package x11 owns the display server connection. It feeds the mapping
// engine with RANDR topology, XI2 tablet devices and change notifications,
// and applies transforms through the device property interface.
package x11

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/xtablet/tabmap/internal/mapping"
)

// Conn is the long-lived X connection plus the extension state the mapper
// needs. It implements mapping.TopologySource, mapping.DeviceSource and
// mapping.TransformSink, so one owned resource object backs the whole cycle
// and tests can swap in fakes per interface.
type Conn struct {
	x    *xgb.Conn
	root xproto.Window

	// XInputExtension major opcode, from QueryExtension. All XI2 requests
	// and the generic events it emits carry it.
	xiOpcode byte

	// Vendor name prefixes handed to tablet classification.
	namePrefixes []string

	atoms map[string]xproto.Atom
}

// Connect opens a connection to the named display ("" means $DISPLAY) and
// initializes the RANDR and XInput extensions. Either extension missing is
// fatal here: without RANDR there is no topology, without XI2 no way to reach
// device properties.
func Connect(display string) (*Conn, error) {
	x, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to display server: %w", err)
	}

	c := &Conn{
		x:     x,
		root:  xproto.Setup(x).DefaultScreen(x).Root,
		atoms: make(map[string]xproto.Atom),
	}

	if err := randr.Init(x); err != nil {
		x.Close()
		return nil, fmt.Errorf("%w: RANDR init: %v", mapping.ErrTopologyUnavailable, err)
	}

	if err := c.initXInput(); err != nil {
		x.Close()
		return nil, err
	}

	return c, nil
}

// SetNamePrefixes configures the vendor prefixes used when classifying
// devices whose metadata carries no explicit tool type.
func (c *Conn) SetNamePrefixes(prefixes []string) {
	c.namePrefixes = prefixes
}

// Close releases the connection and with it every subscription held on it.
// Safe to call from another goroutine to unblock a pending event wait.
func (c *Conn) Close() {
	c.x.Close()
}

// atom interns a named atom, caching replies for the process lifetime. Atoms
// are interned with onlyIfExists set: a name the server never saw (e.g. FLOAT
// on a server without any float property) comes back as zero.
func (c *Conn) atom(name string) (xproto.Atom, error) {
	if a, ok := c.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(c.x, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern atom %q: %w", name, err)
	}
	if reply.Atom == 0 {
		return 0, fmt.Errorf("atom %q does not exist on this server", name)
	}
	c.atoms[name] = reply.Atom
	return reply.Atom, nil
}

func (c *Conn) atomName(a xproto.Atom) (string, error) {
	reply, err := xproto.GetAtomName(c.x, a).Reply()
	if err != nil {
		return "", fmt.Errorf("name of atom %d: %w", a, err)
	}
	return reply.Name, nil
}
