package mapping

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xtablet/tabmap/internal/logger"
	"github.com/xtablet/tabmap/internal/tablet"
)

// TopologySource reads the live display configuration. Pure read, no side
// effects.
type TopologySource interface {
	ReadTopology() (VirtualScreen, map[string]Output, error)
}

// DeviceSource enumerates the currently attached tablet devices. No tablet
// hardware is a normal state and yields an empty slice, not an error.
type DeviceSource interface {
	Tablets() ([]tablet.Device, error)
}

// TransformSink applies a matrix as one device's coordinate transformation
// property.
type TransformSink interface {
	SetTransform(dev tablet.Device, m Matrix) error
}

// Failure records one device that rejected its transform during a cycle.
// Failures are diagnostics for the caller to log, never fatal.
type Failure struct {
	Device tablet.Device
	Err    error
}

// Result is the outcome of one compute-and-apply cycle.
type Result struct {
	// Applied counts devices whose transform was successfully updated.
	Applied int

	// Matrix is the transform computed for this cycle. Zero value when the
	// target output was absent or disabled.
	Matrix Matrix

	// Failures lists devices that rejected the transform.
	Failures []Failure
}

// Apply maps every device onto the named output within vs. A target that is
// absent from the topology or currently disabled is an expected state (the
// monitor may be unplugged) and yields a zero-count result with no error.
// Per-device failures are collected and do not stop the remaining devices.
func Apply(sink TransformSink, vs VirtualScreen, outputs map[string]Output, target string, devices []tablet.Device) (Result, error) {
	out, ok := outputs[target]
	if !ok || !out.Enabled {
		logger.Debugf("Output %q not active, leaving tablets untouched", target)
		return Result{}, nil
	}

	m, err := Compute(vs, out)
	if err != nil {
		return Result{}, err
	}

	res := Result{Matrix: m}
	for _, dev := range devices {
		if err := sink.SetTransform(dev, m); err != nil {
			res.Failures = append(res.Failures, Failure{Device: dev, Err: err})
			continue
		}
		logger.Infof("Updating %s", dev)
		res.Applied++
	}
	return res, nil
}

// Engine composes the topology, device and transform interfaces into the
// compute-and-apply cycle. All snapshots are local to one cycle; across
// cycles the engine carries only the target name and a log-gating summary.
type Engine struct {
	topology TopologySource
	devices  DeviceSource
	sink     TransformSink

	mu     sync.Mutex
	target string

	// lastActive is the previous cycle's active-output summary, kept only
	// to gate the "outputs changed" log line. Cycles always reapply.
	lastActive string
}

// NewEngine creates an engine mapping tablets onto the named output.
func NewEngine(topology TopologySource, devices DeviceSource, sink TransformSink, target string) *Engine {
	return &Engine{
		topology: topology,
		devices:  devices,
		sink:     sink,
		target:   target,
	}
}

// Target returns the current target output name.
func (e *Engine) Target() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

// SetTarget changes the target output for subsequent cycles. Safe to call
// from a config-reload callback while the watch loop runs.
func (e *Engine) SetTarget(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.target = name
}

// RunCycle takes fresh topology and device snapshots and applies the mapping.
func (e *Engine) RunCycle() (Result, error) {
	vs, outputs, err := e.topology.ReadTopology()
	if err != nil {
		return Result{}, err
	}
	e.logActiveChange(outputs)
	devices, err := e.devices.Tablets()
	if err != nil {
		return Result{}, err
	}
	return Apply(e.sink, vs, outputs, e.Target(), devices)
}

// logActiveChange reports how the active output set moved since the last
// cycle. The remap itself is unconditional; only this line is change-gated.
func (e *Engine) logActiveChange(outputs map[string]Output) {
	summary := activeSummary(outputs)
	e.mu.Lock()
	prev := e.lastActive
	e.lastActive = summary
	e.mu.Unlock()
	if prev != "" && prev != summary {
		logger.Infof("Active outputs changed from [%s] to [%s]", prev, summary)
	}
}

func activeSummary(outputs map[string]Output) string {
	parts := make([]string, 0, len(outputs))
	for _, out := range outputs {
		if out.Enabled {
			parts = append(parts, fmt.Sprintf("%s %dx%d+%d+%d", out.Name, out.Width, out.Height, out.X, out.Y))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
