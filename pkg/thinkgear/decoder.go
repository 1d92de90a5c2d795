package thinkgear

import (
	"bytes"
	"encoding/json"
)

// DefaultMaxFrameBytes bounds a single unterminated record.
const DefaultMaxFrameBytes = 64 << 10

// Sample is a decoded record. BlinkStrength is always present; the other
// fields are set only when the same record carried them.
type Sample struct {
	BlinkStrength   int
	PoorSignalLevel *int
	Attention       *int
	Meditation      *int
}

// frame matches the subset of the bridge record we read.
type frame struct {
	BlinkStrength   *int `json:"blinkStrength"`
	PoorSignalLevel *int `json:"poorSignalLevel"`
	ESense          *struct {
		Attention  *int `json:"attention"`
		Meditation *int `json:"meditation"`
	} `json:"eSense"`
}

// Decode extracts every complete JSON object from buf and returns the samples
// decoded from them, in order, plus the number of bytes consumed. A trailing
// partial object is not consumed. Bytes between objects are consumed, and so
// is a record cut short by a line break, which is dropped.
func Decode(buf []byte) ([]Sample, int) {
	var samples []Sample
	i := 0
	for i < len(buf) {
		if buf[i] != '{' {
			i++
			continue
		}
		end, status := objectEnd(buf, i)
		if status == recordPartial {
			break
		}
		if status == recordComplete {
			if s, ok := parseSample(buf[i:end]); ok {
				samples = append(samples, s)
			}
		}
		i = end
	}
	return samples, i
}

type recordStatus int

const (
	recordComplete recordStatus = iota
	recordTruncated
	recordPartial
)

// objectEnd scans the object starting at buf[start], tracking strings and
// escapes. For a complete object it returns the index just past its closing
// '}'. Bridge records never span lines and JSON strings cannot hold a raw
// line break, so any CR or LF ends the record early: the result is then
// recordTruncated with the index just past the line break. recordPartial
// means buf ends inside the object.
func objectEnd(buf []byte, start int) (int, recordStatus) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(buf); i++ {
		c := buf[i]
		if c == '\r' || c == '\n' {
			return i + 1, recordTruncated
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, recordComplete
			}
		}
	}
	return 0, recordPartial
}

func parseSample(raw []byte) (Sample, bool) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Sample{}, false
	}
	if f.BlinkStrength == nil {
		return Sample{}, false
	}
	s := Sample{
		BlinkStrength:   *f.BlinkStrength,
		PoorSignalLevel: f.PoorSignalLevel,
	}
	if f.ESense != nil {
		s.Attention = f.ESense.Attention
		s.Meditation = f.ESense.Meditation
	}
	return s, true
}

// Decoder accumulates reads and yields samples as records complete.
// It is not safe for concurrent use.
type Decoder struct {
	buf      []byte
	max      int
	overflow int
}

// NewDecoder creates a decoder. maxFrameBytes <= 0 uses DefaultMaxFrameBytes.
func NewDecoder(maxFrameBytes int) *Decoder {
	if maxFrameBytes <= 0 {
		maxFrameBytes = DefaultMaxFrameBytes
	}
	return &Decoder{max: maxFrameBytes}
}

// Feed appends p and returns the samples completed by it.
func (d *Decoder) Feed(p []byte) []Sample {
	d.buf = append(d.buf, p...)

	var out []Sample
	for {
		samples, n := Decode(d.buf)
		out = append(out, samples...)
		d.shift(n)
		if len(d.buf) <= d.max {
			return out
		}
		// An unterminated record outgrew the limit: skip its opening brace
		// and resynchronise on the next one.
		d.overflow++
		next := bytes.IndexByte(d.buf[1:], '{')
		if next < 0 {
			d.buf = d.buf[:0]
			return out
		}
		d.shift(next + 1)
	}
}

// Pending returns the number of buffered bytes awaiting completion.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

// Overflows returns how many oversized records were discarded.
func (d *Decoder) Overflows() int {
	return d.overflow
}

func (d *Decoder) shift(n int) {
	if n <= 0 {
		return
	}
	d.buf = d.buf[:copy(d.buf, d.buf[n:])]
}
