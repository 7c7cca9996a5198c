// Package trajectory loads and holds a precomputed replay plan: the reference
// trajectory produced by the offline optimizer and the per-step control
// commands that drive the robot along it.
package trajectory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

// Plan pairs a reference trajectory with its control sequence, index for
// index. It is immutable after construction; accessors return copies so no
// caller can mutate the plan behind the playback loop.
type Plan struct {
	refs     []r3.Vector
	controls [][]float64
}

// New builds a plan from parallel reference and control slices. Both inputs
// are copied. The slices must be non-empty, the same length, and every
// control vector must have the same width.
func New(refs []r3.Vector, controls [][]float64) (*Plan, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("trajectory: plan has no steps")
	}
	if len(refs) != len(controls) {
		return nil, fmt.Errorf("trajectory: %d reference points but %d control vectors", len(refs), len(controls))
	}

	width := len(controls[0])
	if width == 0 {
		return nil, fmt.Errorf("trajectory: control vectors are empty")
	}
	for i, c := range controls {
		if len(c) != width {
			return nil, fmt.Errorf("trajectory: control vector %d has width %d, expected %d", i, len(c), width)
		}
	}

	p := &Plan{
		refs:     make([]r3.Vector, len(refs)),
		controls: make([][]float64, len(controls)),
	}
	copy(p.refs, refs)
	for i, c := range controls {
		p.controls[i] = append([]float64(nil), c...)
	}
	return p, nil
}

// Steps returns the number of steps N in the plan.
func (p *Plan) Steps() int { return len(p.refs) }

// ControlWidth returns the number of channels in each control vector.
func (p *Plan) ControlWidth() int { return len(p.controls[0]) }

// Reference returns the reference position for step i.
func (p *Plan) Reference(i int) r3.Vector { return p.refs[i] }

// Control returns a copy of the control vector for step i.
func (p *Plan) Control(i int) []float64 {
	return append([]float64(nil), p.controls[i]...)
}

// References returns a copy of the full reference trajectory, used for
// report rendering.
func (p *Plan) References() []r3.Vector {
	return append([]r3.Vector(nil), p.refs...)
}

// refColumnPrefix and controlColumnPrefix identify plan columns in the CSV
// header. Reference columns are expected in x, y, z file order.
const (
	refColumnPrefix     = "ref_delta_"
	controlColumnPrefix = "control_"
)

// Load reads a plan CSV from disk. A missing or malformed file is a startup
// failure; no partial plan is ever returned.
func Load(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trajectory: open plan file: %w", err)
	}
	defer f.Close()

	plan, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("trajectory: %s: %w", path, err)
	}
	return plan, nil
}

// Read parses a plan from CSV data. The header row must contain exactly
// three ref_delta_* columns and at least one control_* column; other columns
// are ignored.
func Read(r io.Reader) (*Plan, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var refCols, controlCols []int
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case strings.HasPrefix(name, refColumnPrefix):
			refCols = append(refCols, i)
		case strings.HasPrefix(name, controlColumnPrefix):
			controlCols = append(controlCols, i)
		}
	}
	if len(refCols) != 3 {
		return nil, fmt.Errorf("expected 3 %s* columns, found %d", refColumnPrefix, len(refCols))
	}
	if len(controlCols) == 0 {
		return nil, fmt.Errorf("no %s* columns found", controlColumnPrefix)
	}

	var refs []r3.Vector
	var controls [][]float64
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		row++

		var xyz [3]float64
		for j, col := range refCols {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", row, header[col], err)
			}
			xyz[j] = v
		}
		refs = append(refs, r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]})

		control := make([]float64, len(controlCols))
		for j, col := range controlCols {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", row, header[col], err)
			}
			control[j] = v
		}
		controls = append(controls, control)
	}

	return New(refs, controls)
}
