package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/pulse-filter/internal/filter"
)

const (
	us        = time.Microsecond
	threshold = 53 * us
)

func rise(at int) Transition { return Transition{At: time.Duration(at) * us, Level: filter.High} }
func fall(at int) Transition { return Transition{At: time.Duration(at) * us, Level: filter.Low} }

func TestScenarios(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
		want  []Transition
	}{
		{
			name:  "short pulse never reaches output",
			edges: Pulses([2]time.Duration{0, 30 * us}),
			want:  nil,
		},
		{
			name:  "pulse exactly at threshold gives zero-width output",
			edges: Pulses([2]time.Duration{0, 53 * us}),
			want:  []Transition{rise(53), fall(53)},
		},
		{
			name:  "long pulse delayed by threshold, release not delayed",
			edges: Pulses([2]time.Duration{0, 100 * us}),
			want:  []Transition{rise(53), fall(100)},
		},
		{
			name: "glitch then qualifying pulse timed independently",
			edges: Pulses(
				[2]time.Duration{0, 20 * us},
				[2]time.Duration{25 * us, 55 * us},
			),
			want: []Transition{rise(78), fall(80)},
		},
		{
			name:  "one unit under threshold is suppressed",
			edges: Pulses([2]time.Duration{0, 52 * us}),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Run(threshold, tt.edges)
			assert.Equal(t, tt.want, res.Output)
		})
	}
}

func TestOutputAppearsIffWidthAtLeastThreshold(t *testing.T) {
	for w := 1; w <= 120; w++ {
		width := time.Duration(w) * us
		res := Run(threshold, Pulses([2]time.Duration{10 * us, width}))

		if width < threshold {
			assert.Empty(t, res.Output, "width %v", width)
			assert.Equal(t, 1, res.Counts.Suppressed, "width %v", width)
			continue
		}
		require.Len(t, res.Output, 2, "width %v", width)
		assert.Equal(t, 10*us+threshold, res.Output[0].At, "rising edge delayed by threshold")
		assert.Equal(t, 10*us+width, res.Output[1].At, "falling edge not delayed")
		assert.Equal(t, 1, res.Counts.Qualified, "width %v", width)
	}
}

func TestBackToBackGlitchDoesNotExtendOutput(t *testing.T) {
	res := Run(threshold, Pulses(
		[2]time.Duration{0, 100 * us},
		[2]time.Duration{101 * us, 10 * us},
		[2]time.Duration{112 * us, 10 * us},
	))

	assert.Equal(t, []Transition{rise(53), fall(100)}, res.Output)
	assert.Equal(t, 1, res.Counts.Qualified)
	assert.Equal(t, 2, res.Counts.Suppressed)
}

func TestTrailingHighPulseQualifiesAfterLastEdge(t *testing.T) {
	res := Run(threshold, []Edge{{At: 5 * us, Level: filter.High}})
	assert.Equal(t, []Transition{rise(58)}, res.Output)
}

func TestRepeatedLevelIsNotAnEdge(t *testing.T) {
	res := Run(threshold, []Edge{
		{At: 0, Level: filter.High},
		{At: 40 * us, Level: filter.High},
		{At: 60 * us, Level: filter.Low},
	})
	assert.Equal(t, []Transition{rise(53), fall(60)}, res.Output)
	assert.Equal(t, 1, res.Counts.Rising)
}

func TestUnsortedEdges(t *testing.T) {
	res := Run(threshold, []Edge{
		{At: 100 * us, Level: filter.Low},
		{At: 0, Level: filter.High},
	})
	assert.Equal(t, []Transition{rise(53), fall(100)}, res.Output)
}

func TestParseWaveform(t *testing.T) {
	edges, err := ParseWaveform("0:H, 30:L,45us:high, 1ms:0", us)
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{At: 0, Level: filter.High},
		{At: 30 * us, Level: filter.Low},
		{At: 45 * us, Level: filter.High},
		{At: time.Millisecond, Level: filter.Low},
	}, edges)
}

func TestParseWaveformErrors(t *testing.T) {
	for _, in := range []string{"0", "x:H", "10:maybe"} {
		_, err := ParseWaveform(in, us)
		assert.Error(t, err, "input %q", in)
	}

	edges, err := ParseWaveform("", us)
	require.NoError(t, err)
	assert.Empty(t, edges)
}
