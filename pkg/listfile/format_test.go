package listfile

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eez-psu/psu-go/pkg/list"
	"github.com/eez-psu/psu-go/pkg/psuerr"
)

func encode(t *testing.T, l Lists) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, DefaultFormat().Encode(&buf, l))
	return buf.String()
}

func TestEncode(t *testing.T) {
	got := encode(t, Lists{
		Dwell:   []float64{0.5, 0.25},
		Voltage: []float64{1, 2, 3},
		Current: []float64{0.1},
	})

	want := "0.500000,1.000000,0.100000\n" +
		"0.250000,2.000000,=\n" +
		"=,3.000000,=\n"
	assert.Equal(t, want, got)
}

func TestEncodeEmpty(t *testing.T) {
	assert.Equal(t, "", encode(t, Lists{}))
}

func TestEncodeCustomFormat(t *testing.T) {
	var buf bytes.Buffer
	f := Format{Separator: ';', NoValue: '*'}
	require.NoError(t, f.Encode(&buf, Lists{Voltage: []float64{-1.5}}))
	assert.Equal(t, "*;-1.500000;*\n", buf.String())
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Lists
	}{
		{
			name: "Ragged",
			in:   "0.5,1,0.1\n0.25,2,=\n=,3,=\n",
			want: Lists{Dwell: []float64{0.5, 0.25}, Voltage: []float64{1, 2, 3}, Current: []float64{0.1}},
		},
		{
			name: "NoTrailingNewline",
			in:   "1,2,3",
			want: Lists{Dwell: []float64{1}, Voltage: []float64{2}, Current: []float64{3}},
		},
		{
			name: "LeadingWhitespace",
			in:   "  1 ,\t2, 3\r\n\n   4,5,6\n",
			want: Lists{Dwell: []float64{1, 4}, Voltage: []float64{2, 5}, Current: []float64{3, 6}},
		},
		{
			name: "EmptyColumn",
			in:   "=,1,=\n=,2,=\n",
			want: Lists{Voltage: []float64{1, 2}},
		},
		{
			name: "Exponent",
			in:   "1e-3,+2.5E1,-.5\n",
			want: Lists{Dwell: []float64{0.001}, Voltage: []float64{25}, Current: []float64{-0.5}},
		},
		{
			name: "Empty",
			in:   "  \n",
			want: Lists{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultFormat().Decode(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, len(tt.want.Dwell), len(got.Dwell))
			assert.Equal(t, len(tt.want.Voltage), len(got.Voltage))
			assert.Equal(t, len(tt.want.Current), len(got.Current))
			assertLists(t, tt.want, got)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"MarkerBeforeColumnEnded", "=,1,1\n1,1,1\n"},
		{"OutOfOrder", "1,1,1\n1,=,1\n1,1,1\n"},
		{"IllegalToken", "1,abc,1\n"},
		{"TruncatedRow", "1,2\n"},
		{"BareSign", "1,-,2\n"},
		{"TrailingGarbage", "1,2,3x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultFormat().Decode(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, psuerr.ErrMalformedListFile)
		})
	}
}

func TestDecodeStopsAtMaxLength(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < list.MaxLength+5; i++ {
		sb.WriteString("1,2,3\n")
	}

	got, err := DefaultFormat().Decode(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Len(t, got.Voltage, list.MaxLength)
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	randomList := func(n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = rng.Float64()*200 - 100
		}
		return out
	}

	lengths := [][3]int{
		{0, 0, 0},
		{1, 1, 1},
		{3, 0, 5},
		{0, 7, 0},
		{list.MaxLength, 1, 2},
		{list.MaxLength, list.MaxLength, list.MaxLength},
	}
	for i := 0; i < 20; i++ {
		lengths = append(lengths, [3]int{rng.Intn(list.MaxLength + 1), rng.Intn(20), rng.Intn(list.MaxLength + 1)})
	}

	for _, n := range lengths {
		in := Lists{Dwell: randomList(n[0]), Voltage: randomList(n[1]), Current: randomList(n[2])}

		out, err := DefaultFormat().Decode(strings.NewReader(encode(t, in)))
		require.NoError(t, err, "lengths %v", n)
		require.Len(t, out.Dwell, n[0])
		require.Len(t, out.Voltage, n[1])
		require.Len(t, out.Current, n[2])
		assertLists(t, in, out)
	}
}

func TestFormatValidate(t *testing.T) {
	assert.NoError(t, DefaultFormat().Validate())
	assert.NoError(t, Format{Separator: ';', NoValue: '*'}.Validate())

	for _, f := range []Format{
		{Separator: ',', NoValue: ','},
		{Separator: ' ', NoValue: '='},
		{Separator: ',', NoValue: '-'},
		{Separator: '1', NoValue: '='},
		{Separator: ',', NoValue: 0},
	} {
		assert.ErrorIs(t, f.Validate(), ErrInvalidFormat, "%q/%q", f.Separator, f.NoValue)
	}
}

func assertLists(t *testing.T, want, got Lists) {
	t.Helper()
	pairs := [][2][]float64{{want.Dwell, got.Dwell}, {want.Voltage, got.Voltage}, {want.Current, got.Current}}
	for _, p := range pairs {
		require.Equal(t, len(p[0]), len(p[1]))
		for i := range p[0] {
			assert.InDelta(t, p[0][i], p[1][i], 1e-6)
		}
	}
}
