package main

// SectionStatus tells the dashboard how to render one of its sections. The
// four values are mutually exclusive: loading wins over unavailable, which
// wins over empty, which wins over ready.
type SectionStatus string

const (
	SectionLoading     SectionStatus = "loading"
	SectionUnavailable SectionStatus = "unavailable"
	SectionEmpty       SectionStatus = "empty"
	SectionReady       SectionStatus = "ready"
)

// maxDashboardItems caps both dashboard carousels; "see all" links to the
// full tab.
const maxDashboardItems = 5

// ShopSection is the nearby-shops carousel state.
type ShopSection struct {
	Status SectionStatus `json:"status"`
	Shops  []Shop        `json:"shops,omitempty"`
}

// OrderSection is the latest-orders carousel state.
type OrderSection struct {
	Status SectionStatus `json:"status"`
	Orders []Order       `json:"orders,omitempty"`
}

// NearbyShopSection picks the shops to show on the dashboard: the first five
// in the backend's proximity order, minus paused ones. Pausing is applied
// after the cut so a paused shop still uses up one of the five slots; all
// five paused yields a ready section with no shops, not an empty one.
func NearbyShopSection(loading bool, fetchErr bool, account *ClientAccount) ShopSection {
	switch {
	case loading:
		return ShopSection{Status: SectionLoading}
	case fetchErr:
		return ShopSection{Status: SectionUnavailable}
	case account == nil || len(account.NearbyShops) == 0:
		return ShopSection{Status: SectionEmpty}
	}
	nearby := account.NearbyShops
	if len(nearby) > maxDashboardItems {
		nearby = nearby[:maxDashboardItems]
	}
	shops := make([]Shop, 0, len(nearby))
	for _, s := range nearby {
		if s.IsPaused {
			continue
		}
		shops = append(shops, s)
	}
	return ShopSection{Status: SectionReady, Shops: shops}
}

// LatestOrderSection picks the orders to show on the dashboard: the last five
// of the chronologically ascending list, most recent first.
func LatestOrderSection(loading bool, fetchErr bool, account *ClientAccount) OrderSection {
	switch {
	case loading:
		return OrderSection{Status: SectionLoading}
	case fetchErr:
		return OrderSection{Status: SectionUnavailable}
	case account == nil || len(account.Orders) == 0:
		return OrderSection{Status: SectionEmpty}
	}
	all := account.Orders
	start := 0
	if len(all) > maxDashboardItems {
		start = len(all) - maxDashboardItems
	}
	window := all[start:]
	orders := make([]Order, len(window))
	for i, o := range window {
		orders[len(window)-1-i] = o
	}
	return OrderSection{Status: SectionReady, Orders: orders}
}
