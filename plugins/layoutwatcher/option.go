package layoutwatcher

import "github.com/bft-labs/blinkscan/pkg/blinkscan"

// WithLayoutWatcher returns a blinkscan Option that reloads Config.LayoutFile
// whenever it changes.
//
// Usage:
//
//	b, err := blinkscan.New(cfg,
//	    layoutwatcher.WithLayoutWatcher(layoutwatcher.Config{
//	        DebounceDelay: 500 * time.Millisecond,
//	    }),
//	)
func WithLayoutWatcher(cfg Config) blinkscan.Option {
	return blinkscan.WithPlugin(New(cfg))
}

// WithDefaultLayoutWatcher enables layout reloading with default settings.
func WithDefaultLayoutWatcher() blinkscan.Option {
	return WithLayoutWatcher(DefaultConfig())
}
