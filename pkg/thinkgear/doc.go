// Package thinkgear decodes the JSON stream served by a ThinkGear-style
// biosignal bridge.
//
// The bridge sends one JSON object per record, separated by carriage returns,
// and read boundaries do not line up with record boundaries. [Decode] works on
// an append-only buffer and reports how many bytes it consumed; [Decoder]
// keeps the unconsumed tail between reads.
//
// Only records carrying an integer "blinkStrength" become a [Sample]. Every
// other record, and anything that is not valid JSON, is skipped without
// stopping the stream.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package thinkgear
