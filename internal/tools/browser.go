package tools

import (
	"context"
	"net/url"

	"github.com/VanshArora01/anay/internal/automation"
)

// BrowserAgent drives the default browser. It reuses the system facade for
// the actual open call so both share one per-OS table.
type BrowserAgent struct {
	sys *SystemControl
}

func NewBrowserAgent(sys *SystemControl) *BrowserAgent {
	return &BrowserAgent{sys: sys}
}

func (b *BrowserAgent) Open(ctx context.Context, rawURL string) (automation.Result, error) {
	return b.sys.OpenBrowser(ctx, rawURL)
}

func (b *BrowserAgent) Search(ctx context.Context, query string) (automation.Result, error) {
	searchURL := "https://www.google.com/search?q=" + url.QueryEscape(query)
	res, err := b.sys.OpenBrowser(ctx, searchURL)
	if err != nil {
		return automation.Result{}, err
	}
	res.Message = "Searching for: " + query
	return res, nil
}
