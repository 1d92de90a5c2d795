package historyprune

import "github.com/bft-labs/blinkscan/pkg/blinkscan"

// WithHistoryPrune returns a blinkscan Option that keeps the history
// within cfg.Retention. It has no effect when history is disabled.
func WithHistoryPrune(cfg Config) blinkscan.Option {
	return blinkscan.WithPlugin(New(cfg))
}
