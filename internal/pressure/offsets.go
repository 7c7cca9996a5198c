// Package pressure loads the per-chamber pressure offsets applied to every
// dispatched control command. Offsets come from a one-off calibration of the
// robot's resting chamber pressures.
package pressure

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadOffsets reads one offset per line from the calibration file. Blank
// lines and lines starting with '#' are skipped. The file must contain at
// least one value.
func LoadOffsets(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pressure: open offsets file: %w", err)
	}
	defer f.Close()

	var offsets []float64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("pressure: %s line %d: %w", path, line, err)
		}
		offsets = append(offsets, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pressure: read offsets file: %w", err)
	}
	if len(offsets) == 0 {
		return nil, fmt.Errorf("pressure: %s contains no offset values", path)
	}
	return offsets, nil
}

// Apply returns command + offsets element-wise. The input command is not
// modified. Lengths must match; the caller validates widths at startup.
func Apply(command, offsets []float64) []float64 {
	out := make([]float64, len(command))
	for i := range command {
		out[i] = command[i] + offsets[i]
	}
	return out
}
