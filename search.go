package main

import (
	"context"
	"sync/atomic"
)

// Tab keys for the bottom navigation stacks a dashboard action can jump to.
const (
	TabSearch = "search"
	TabStores = "stores"
	TabOrders = "orders"
)

// SearchFunc issues the search request itself.
type SearchFunc func(ctx context.Context, text string) error

// TabSwitchFunc moves the client to another bottom-navigation tab.
type TabSwitchFunc func(tabKey string)

// SearchController sequences a search submission: issue the request, then
// switch to the search tab once it completes. The switch is skipped after
// Dismiss so a completion never acts on a torn-down screen.
type SearchController struct {
	search      SearchFunc
	switchToTab TabSwitchFunc
	dismissed   atomic.Bool
}

// NewSearchController wires the two collaborators together.
func NewSearchController(search SearchFunc, switchToTab TabSwitchFunc) *SearchController {
	return &SearchController{search: search, switchToTab: switchToTab}
}

// Submit runs the search and, if the controller is still live when it
// finishes, switches to the search tab.
func (c *SearchController) Submit(ctx context.Context, text string) error {
	if err := c.search(ctx, text); err != nil {
		return err
	}
	if c.dismissed.Load() {
		return nil
	}
	c.switchToTab(TabSearch)
	return nil
}

// Dismiss marks the owning screen as gone; later completions become no-ops.
func (c *SearchController) Dismiss() {
	c.dismissed.Store(true)
}
