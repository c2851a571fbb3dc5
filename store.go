package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	devMu sync.Mutex

	devAccounts = map[string]*ClientAccount{
		"c1": {
			ID:        "c1",
			FirstName: "Amelie",
			NearbyShops: []Shop{
				{ID: "s1", Name: "Marché Jean-Talon", IsOpen: true},
				{ID: "s2", Name: "Boucherie Atlantique", IsOpen: true},
				{ID: "s3", Name: "Poissonnerie du Port", IsOpen: false, IsPaused: true},
				{ID: "s4", Name: "Fromagerie Hamel", IsOpen: true},
				{ID: "s5", Name: "Boulangerie Guillaume", IsOpen: true, IsPaused: true},
				{ID: "s6", Name: "Épicerie Latina", IsOpen: true},
				{ID: "s7", Name: "Fruiterie Milano", IsOpen: true},
			},
			Orders: []Order{
				{ID: "o1", OrderNumber: "EP-1001", Logs: []OrderLog{{StatusPlaced}, {StatusDelivered}}},
				{ID: "o2", OrderNumber: "EP-1002", Logs: []OrderLog{{StatusPlaced}, {StatusCancelled}}},
				{ID: "o3", OrderNumber: "EP-1003", Logs: []OrderLog{{StatusPlaced}, {StatusPreparing}, {StatusReady}}},
				{ID: "o4", OrderNumber: "EP-1004", Logs: []OrderLog{{StatusPlaced}, {StatusPreparing}}},
				{ID: "o5", OrderNumber: "EP-1005", Logs: []OrderLog{{StatusPlaced}}},
				{ID: "o6", OrderNumber: "EP-1006", Logs: []OrderLog{{StatusPlaced}}},
			},
		},
	}

	devVariants = []ProductVariant{
		{
			ID: "v1", Title: "1 lb", Stock: 12, Price: 2.00, ByWeight: true,
			AvailableForSale: true, Taxable: false,
			ImageURL:       "https://via.placeholder.com/800x600.png?text=DEV+IMAGE",
			RelatedProduct: RelatedProduct{Title: "Gala Apples", Tags: []string{"fruits", "local"}},
		},
		{
			ID: "v2", Title: "500 g", Stock: 5, Price: 7.49,
			AvailableForSale: true, Taxable: true,
			ImageURL:       "https://via.placeholder.com/800x600.png?text=DEV+IMAGE",
			RelatedProduct: RelatedProduct{Title: "Wild Sockeye Salmon", Tags: []string{"fish", "frozen"}},
		},
		{
			ID: "v3", Title: "Single", Stock: 0, Price: 4.25,
			AvailableForSale: true, Taxable: true,
			ImageURL:       "https://via.placeholder.com/800x600.png?text=DEV+IMAGE",
			RelatedProduct: RelatedProduct{Title: "Sourdough Loaf", Tags: []string{"bakery"}},
		},
		{
			ID: "v4", Title: "250 g", Stock: 8, Price: 11.99,
			AvailableForSale: false, Taxable: true,
			ImageURL:       "https://via.placeholder.com/800x600.png?text=DEV+IMAGE",
			RelatedProduct: RelatedProduct{Title: "Aged Cheddar", Tags: []string{"dairy"}},
		},
	}

	devCategories = []Category{
		{ID: 1, Name: "FRUITS_AND_VEGETABLES"},
		{ID: 2, Name: "FISH_AND_SEAFOOD"},
		{ID: 3, Name: "HEALTHY"},
		{ID: 4, Name: "KETO"},
		{ID: 5, Name: "BAKERY"},
		{ID: 6, Name: "WORLD_PRODUCTS"},
		{ID: 7, Name: "BUTCHER"},
	}
	devNextCatID int64 = 8

	devCartLines []CartLine
)

// DevGetAccount returns a copy of the in-memory account for dev mode so the
// caller can never mutate the seeded snapshot.
func DevGetAccount(clientID string) (*ClientAccount, bool) {
	devMu.Lock()
	defer devMu.Unlock()
	src, ok := devAccounts[clientID]
	if !ok {
		return nil, false
	}
	cp := &ClientAccount{ID: src.ID, FirstName: src.FirstName}
	cp.NearbyShops = append(cp.NearbyShops, src.NearbyShops...)
	for _, o := range src.Orders {
		oc := Order{ID: o.ID, OrderNumber: o.OrderNumber}
		oc.Logs = append(oc.Logs, o.Logs...)
		cp.Orders = append(cp.Orders, oc)
	}
	return cp, true
}

// DevGetVariants returns a copy of the in-memory variants for dev mode.
func DevGetVariants() []ProductVariant {
	devMu.Lock()
	defer devMu.Unlock()
	cp := make([]ProductVariant, len(devVariants))
	copy(cp, devVariants)
	return cp
}

// DevGetVariant looks up a single variant by id.
func DevGetVariant(id string) (ProductVariant, bool) {
	devMu.Lock()
	defer devMu.Unlock()
	for _, v := range devVariants {
		if v.ID == id {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// DevAddVariant stores a new variant and returns its generated id.
func DevAddVariant(v ProductVariant) string {
	devMu.Lock()
	defer devMu.Unlock()
	v.ID = uuid.NewString()
	devVariants = append(devVariants, v)
	return v.ID
}

// DevReplaceVariant swaps the stored variant with the same id.
func DevReplaceVariant(v ProductVariant) bool {
	devMu.Lock()
	defer devMu.Unlock()
	for i := range devVariants {
		if devVariants[i].ID == v.ID {
			devVariants[i] = v
			return true
		}
	}
	return false
}

// DevDeleteVariant removes a variant by id.
func DevDeleteVariant(id string) bool {
	devMu.Lock()
	defer devMu.Unlock()
	for i, v := range devVariants {
		if v.ID == id {
			devVariants = append(devVariants[:i], devVariants[i+1:]...)
			return true
		}
	}
	return false
}

// DevSearchVariants matches the search text against variant and product
// titles, case-insensitively.
func DevSearchVariants(text string) []ProductVariant {
	devMu.Lock()
	defer devMu.Unlock()
	var out []ProductVariant
	for _, v := range devVariants {
		if containsFold(v.Title, text) || containsFold(v.RelatedProduct.Title, text) {
			out = append(out, v)
		}
	}
	return out
}

// DevAddCartLine appends a cart line and returns it with id and timestamp set.
func DevAddCartLine(clientID, variantID string, quantity float64) CartLine {
	devMu.Lock()
	defer devMu.Unlock()
	line := CartLine{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		VariantID: variantID,
		Quantity:  quantity,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	devCartLines = append(devCartLines, line)
	return line
}

// DevGetCartLines returns the cart lines recorded for a client.
func DevGetCartLines(clientID string) []CartLine {
	devMu.Lock()
	defer devMu.Unlock()
	var out []CartLine
	for _, l := range devCartLines {
		if l.ClientID == clientID {
			out = append(out, l)
		}
	}
	return out
}

func DevGetCategories() []Category {
	devMu.Lock()
	defer devMu.Unlock()
	cp := make([]Category, len(devCategories))
	copy(cp, devCategories)
	return cp
}

func DevGetCategory(id int64) (Category, bool) {
	devMu.Lock()
	defer devMu.Unlock()
	for _, c := range devCategories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func DevAddCategory(name string) Category {
	devMu.Lock()
	defer devMu.Unlock()
	c := Category{ID: devNextCatID, Name: name}
	devNextCatID++
	devCategories = append(devCategories, c)
	return c
}

func DevUpdateCategory(id int64, name string) bool {
	devMu.Lock()
	defer devMu.Unlock()
	for i := range devCategories {
		if devCategories[i].ID == id {
			devCategories[i].Name = name
			return true
		}
	}
	return false
}

func DevDeleteCategory(id int64) bool {
	devMu.Lock()
	defer devMu.Unlock()
	for i, c := range devCategories {
		if c.ID == id {
			devCategories = append(devCategories[:i], devCategories[i+1:]...)
			return true
		}
	}
	return false
}

// FormatPrice renders a price the way the DECIMAL columns store it.
func FormatPrice(p float64) string {
	return fmt.Sprintf("%.2f", p)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
