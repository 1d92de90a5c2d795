package thinkgear

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strengths(samples []Sample) []int {
	out := make([]int, 0, len(samples))
	for _, s := range samples {
		out = append(out, s.BlinkStrength)
	}
	return out
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []int
		consumed int
	}{
		{
			name:     "single record",
			input:    `{"blinkStrength":85}`,
			want:     []int{85},
			consumed: 20,
		},
		{
			name:     "carriage return separated",
			input:    "{\"blinkStrength\":85}\r{\"blinkStrength\":40}\r",
			want:     []int{85, 40},
			consumed: 42,
		},
		{
			name:     "record without blink is dropped",
			input:    `{"poorSignalLevel":0,"eSense":{"attention":50}}{"blinkStrength":71}`,
			want:     []int{71},
			consumed: 67,
		},
		{
			name:     "non-integer blink is dropped",
			input:    `{"blinkStrength":"high"}{"blinkStrength":70.5}{"blinkStrength":90}`,
			want:     []int{90},
			consumed: 66,
		},
		{
			name:     "garbage between records",
			input:    `xx{"blinkStrength":1}  ]] {"blinkStrength":2}`,
			want:     []int{1, 2},
			consumed: 45,
		},
		{
			name:     "invalid json object is skipped",
			input:    `{"blinkStrength":,}{"blinkStrength":3}`,
			want:     []int{3},
			consumed: 38,
		},
		{
			name:     "record cut by carriage return is dropped",
			input:    "{\"blinkStrength\":\r{\"blinkStrength\":90}\r",
			want:     []int{90},
			consumed: 39,
		},
		{
			name:     "record cut inside a string is dropped",
			input:    "{\"blinkStr\n{\"blinkStrength\":64}",
			want:     []int{64},
			consumed: 31,
		},
		{
			name:     "braces inside strings",
			input:    `{"status":"{scanning}","x":"\"}","blinkStrength":77}`,
			want:     []int{77},
			consumed: 52,
		},
		{
			name:     "partial trailing record",
			input:    `{"blinkStrength":80}{"blinkStr`,
			want:     []int{80},
			consumed: 20,
		},
		{
			name:     "only partial",
			input:    `{"blinkStrength":8`,
			want:     []int{},
			consumed: 0,
		},
		{
			name:     "empty",
			input:    "",
			want:     []int{},
			consumed: 0,
		},
		{
			name:     "negative and large values are not clamped",
			input:    `{"blinkStrength":-5}{"blinkStrength":1000}`,
			want:     []int{-5, 1000},
			consumed: 42,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples, n := Decode([]byte(tt.input))
			assert.Equal(t, tt.want, strengths(samples))
			assert.Equal(t, tt.consumed, n)
		})
	}
}

func TestDecode_OptionalFields(t *testing.T) {
	samples, _ := Decode([]byte(`{"poorSignalLevel":26,"eSense":{"attention":61,"meditation":48},"blinkStrength":92}`))
	require.Len(t, samples, 1)

	s := samples[0]
	assert.Equal(t, 92, s.BlinkStrength)
	require.NotNil(t, s.PoorSignalLevel)
	assert.Equal(t, 26, *s.PoorSignalLevel)
	require.NotNil(t, s.Attention)
	assert.Equal(t, 61, *s.Attention)
	require.NotNil(t, s.Meditation)
	assert.Equal(t, 48, *s.Meditation)

	samples, _ = Decode([]byte(`{"blinkStrength":92}`))
	require.Len(t, samples, 1)
	assert.Nil(t, samples[0].PoorSignalLevel)
	assert.Nil(t, samples[0].Attention)
}

func TestDecoder_SplitReads(t *testing.T) {
	stream := "{\"blinkStrength\":85}\r{\"eSense\":{\"attention\":3}}\r{\"blinkStrength\":72}\r"

	for size := 1; size <= len(stream); size++ {
		d := NewDecoder(0)
		var got []int
		for i := 0; i < len(stream); i += size {
			end := min(i+size, len(stream))
			got = append(got, strengths(d.Feed([]byte(stream[i:end])))...)
		}
		assert.Equal(t, []int{85, 72}, got, "chunk size %d", size)
		assert.Equal(t, 0, d.Pending(), "chunk size %d", size)
	}
}

func TestDecoder_TruncatedFrameResyncs(t *testing.T) {
	d := NewDecoder(0)

	assert.Empty(t, d.Feed([]byte("{\"blinkStrength\":\r")))
	assert.Equal(t, 0, d.Pending())

	var got []int
	for i := 0; i < 50; i++ {
		got = append(got, strengths(d.Feed([]byte(fmt.Sprintf("{\"blinkStrength\":%d}\r", 50+i))))...)
	}
	require.Len(t, got, 50)
	assert.Equal(t, 50, got[0])
	assert.Equal(t, 99, got[49])
	assert.Equal(t, 0, d.Pending())
	assert.Zero(t, d.Overflows())
}

func TestDecoder_KeepsPartialTail(t *testing.T) {
	d := NewDecoder(0)

	assert.Empty(t, d.Feed([]byte(`{"blinkStre`)))
	assert.Equal(t, 11, d.Pending())

	assert.Equal(t, []int{99}, strengths(d.Feed([]byte(`ngth":99}`))))
	assert.Equal(t, 0, d.Pending())
}

func TestDecoder_OversizedRecordResyncs(t *testing.T) {
	d := NewDecoder(32)

	junk := `{"payload":"` + strings.Repeat("a", 64)
	assert.Empty(t, d.Feed([]byte(junk)))
	assert.Equal(t, 1, d.Overflows())
	assert.LessOrEqual(t, d.Pending(), 32)

	// The unterminated string swallowed the buffer; the next record
	// still decodes once it arrives after the discarded bytes.
	got := d.Feed([]byte(`{"blinkStrength":88}`))
	assert.Equal(t, []int{88}, strengths(got))
}

func TestHandshake(t *testing.T) {
	assert.Equal(t, "{\"enableRawOutput\":false,\"format\":\"Json\"}\n", string(DefaultHandshake().Bytes()))

	var sb strings.Builder
	require.NoError(t, WriteHandshake(&sb))
	assert.Equal(t, string(DefaultHandshake().Bytes()), sb.String())
}
