package trajectory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlanCSV = `step,ref_delta_x,ref_delta_y,ref_delta_z,control_p1,control_p2,control_p3
0,0.0,0.0,0.0,1.0,2.0,3.0
1,1.0,0.0,0.0,1.1,2.1,3.1
2,2.0,0.0,0.0,1.2,2.2,3.2
3,3.0,0.0,0.0,1.3,2.3,3.3
`

func TestRead(t *testing.T) {
	t.Parallel()

	plan, err := Read(strings.NewReader(samplePlanCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, plan.Steps())
	assert.Equal(t, 3, plan.ControlWidth())

	wantRefs := []r3.Vector{
		{X: 0}, {X: 1}, {X: 2}, {X: 3},
	}
	if diff := cmp.Diff(wantRefs, plan.References()); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []float64{1.1, 2.1, 3.1}, plan.Control(1))
}

func TestReadRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		csv  string
	}{
		{
			name: "missing reference columns",
			csv:  "ref_delta_x,ref_delta_y,control_a\n0,0,1\n",
		},
		{
			name: "no control columns",
			csv:  "ref_delta_x,ref_delta_y,ref_delta_z\n0,0,0\n",
		},
		{
			name: "non-numeric reference cell",
			csv:  "ref_delta_x,ref_delta_y,ref_delta_z,control_a\nbogus,0,0,1\n",
		},
		{
			name: "non-numeric control cell",
			csv:  "ref_delta_x,ref_delta_y,ref_delta_z,control_a\n0,0,0,bogus\n",
		},
		{
			name: "empty file",
			csv:  "",
		},
		{
			name: "header only",
			csv:  "ref_delta_x,ref_delta_y,ref_delta_z,control_a\n",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Read(strings.NewReader(tc.csv))
			assert.Error(t, err)
		})
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	refs := []r3.Vector{{X: 1}, {X: 2}}

	t.Run("length mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := New(refs, [][]float64{{1}})
		assert.Error(t, err)
	})

	t.Run("ragged control widths", func(t *testing.T) {
		t.Parallel()
		_, err := New(refs, [][]float64{{1, 2}, {1}})
		assert.Error(t, err)
	})

	t.Run("inputs are copied", func(t *testing.T) {
		t.Parallel()
		controls := [][]float64{{1, 2}, {3, 4}}
		plan, err := New(refs, controls)
		require.NoError(t, err)

		controls[0][0] = 99
		assert.Equal(t, []float64{1, 2}, plan.Control(0))

		got := plan.Control(1)
		got[0] = 42
		assert.Equal(t, []float64{3, 4}, plan.Control(1))
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("round trip from disk", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "planned_trajectory.csv")
		require.NoError(t, os.WriteFile(path, []byte(samplePlanCSV), 0o644))

		plan, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 4, plan.Steps())
	})

	t.Run("missing file is fatal", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
		assert.Error(t, err)
	})
}
