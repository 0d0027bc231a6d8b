package capture

import (
	"context"
)

// Options selects what to capture on the visited page.
type Options struct {
	// Selector is a CSS selector; when set, only the matching element is
	// captured. ClassName is an alternative spelling for selecting by a
	// single class.
	Selector  string
	ClassName string

	// Headers are extra HTTP headers sent with the navigation request.
	Headers map[string]string

	// MaskSelectors name elements to black out before capturing, for
	// content that legitimately changes between runs.
	MaskSelectors []string
}

type Capturer interface {
	// Capture navigates to url and returns a PNG screenshot of the page or
	// of the element selected by options.
	Capture(ctx context.Context, url string, options Options) ([]byte, error)
}
