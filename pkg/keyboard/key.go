package keyboard

import (
	"fmt"
	"strings"
)

// Kind classifies what committing a key does.
type Kind int

const (
	KindChar Kind = iota
	KindDelete
	KindSpace
	KindSend
	KindExit
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindChar:
		return "char"
	case KindDelete:
		return "delete"
	case KindSpace:
		return "space"
	case KindSend:
		return "send"
	case KindExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Labels of the command keys.
const (
	LabelDelete = "DELETE"
	LabelSpace  = "SPACE"
	LabelSend   = "SEND"
	LabelExit   = "EXIT"
)

// Key is one cell of a layout.
type Key struct {
	Label string
	Kind  Kind
}

// ParseKey classifies a layout label. Command labels are case-insensitive;
// any other non-empty label is a character key that inserts itself.
func ParseKey(label string) (Key, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Key{}, fmt.Errorf("%w: empty key label", ErrInvalidLayout)
	}
	switch strings.ToUpper(label) {
	case LabelDelete:
		return Key{Label: LabelDelete, Kind: KindDelete}, nil
	case LabelSpace:
		return Key{Label: LabelSpace, Kind: KindSpace}, nil
	case LabelSend:
		return Key{Label: LabelSend, Kind: KindSend}, nil
	case LabelExit:
		return Key{Label: LabelExit, Kind: KindExit}, nil
	}
	return Key{Label: label, Kind: KindChar}, nil
}

// String returns the key label.
func (k Key) String() string {
	return k.Label
}
