package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestPortOptionsNormalize(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		opts, err := PortOptions{}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, 115200, opts.BaudRate)
		assert.Equal(t, 8, opts.DataBits)
		assert.Equal(t, 1, opts.StopBits)
		assert.Equal(t, "N", opts.Parity)
	})

	t.Run("parity spellings", func(t *testing.T) {
		t.Parallel()
		for _, spelling := range []string{"e", "E", "even", "EVEN"} {
			opts, err := PortOptions{Parity: spelling}.Normalize()
			require.NoError(t, err)
			assert.Equal(t, "E", opts.Parity)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()
		_, err := PortOptions{DataBits: 9}.Normalize()
		assert.Error(t, err)
		_, err = PortOptions{StopBits: 3}.Normalize()
		assert.Error(t, err)
		_, err = PortOptions{Parity: "Q"}.Normalize()
		assert.Error(t, err)
	})
}

func TestPortOptionsSerialMode(t *testing.T) {
	t.Parallel()

	mode, err := PortOptions{BaudRate: 9600, Parity: "odd", StopBits: 2}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, 9600, mode.BaudRate)
	assert.Equal(t, serial.OddParity, mode.Parity)
	assert.Equal(t, serial.TwoStopBits, mode.StopBits)
}

func TestFormatCommand(t *testing.T) {
	t.Parallel()

	line := formatCommand([]float64{1, -0.5, 2.25})
	assert.Equal(t, "1.000000,-0.500000,2.250000\n", line)
}
