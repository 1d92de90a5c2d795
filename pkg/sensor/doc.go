// Package sensor owns the connection to the blink bridge and turns
// decoded samples into scan triggers.
//
// A [Link] dials through a [Dialer], sends the handshake once, reads
// fixed-size chunks, decodes them with package thinkgear and forwards every
// sample at or above the configured threshold to a [TriggerSink] in the order
// the samples arrived. Connection progress is reported to a [Notifier] and,
// once a session has been established, its loss is reported to the sink as an
// interrupt.
//
// By default the link is fail-stop: when the stream ends [Link.Run] returns.
// Setting ReconnectAttempts enables bounded reconnection with jittered
// exponential backoff.
package sensor
