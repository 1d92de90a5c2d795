package thinkgear

import (
	"encoding/json"
	"io"
)

// FormatJSON asks the bridge for JSON records.
const FormatJSON = "Json"

// HandshakeConfig is the configuration message sent once after connecting.
type HandshakeConfig struct {
	EnableRawOutput bool   `json:"enableRawOutput"`
	Format          string `json:"format"`
}

// DefaultHandshake requests JSON records without raw EEG samples.
func DefaultHandshake() HandshakeConfig {
	return HandshakeConfig{EnableRawOutput: false, Format: FormatJSON}
}

// Bytes returns the newline-terminated wire form.
func (h HandshakeConfig) Bytes() []byte {
	b, _ := json.Marshal(h)
	return append(b, '\n')
}

// WriteHandshake writes the default handshake to w.
func WriteHandshake(w io.Writer) error {
	_, err := w.Write(DefaultHandshake().Bytes())
	return err
}
