package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// handler tests run against the dev store (db == nil), same as DEV_MODE=true.

func TestDashboardHandler(t *testing.T) {
	h := dashboardHandler(nil)

	t.Run("full view for a known client", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard?client_id=c1", nil)
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var view DashboardView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))

		assert.Equal(t, "Amelie", view.FirstName)

		require.Equal(t, SectionReady, view.NearbyShops.Status)
		require.Len(t, view.NearbyShops.Shops, 3)
		assert.Equal(t, "s1", view.NearbyShops.Shops[0].ID)
		assert.Equal(t, "s2", view.NearbyShops.Shops[1].ID)
		assert.Equal(t, "s4", view.NearbyShops.Shops[2].ID)

		require.Equal(t, SectionReady, view.LatestOrders.Status)
		require.Len(t, view.LatestOrders.Orders, 5)
		assert.Equal(t, "EP-1006", view.LatestOrders.Orders[0].OrderNumber)
		assert.Equal(t, StatusPlaced, view.LatestOrders.Orders[0].CurrentStatus)
		assert.Equal(t, "EP-1002", view.LatestOrders.Orders[4].OrderNumber)
		assert.Equal(t, StatusCancelled, view.LatestOrders.Orders[4].CurrentStatus)

		assert.Len(t, view.Categories, 7)
	})

	t.Run("client_id required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		rec := httptest.NewRecorder()
		h(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("failed fetch degrades both sections", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard?client_id=nobody", nil)
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var view DashboardView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
		assert.Equal(t, SectionUnavailable, view.NearbyShops.Status)
		assert.Equal(t, SectionUnavailable, view.LatestOrders.Status)
		assert.Empty(t, view.NearbyShops.Shops)
		assert.Empty(t, view.LatestOrders.Orders)
	})
}

func TestCartHandler(t *testing.T) {
	h := cartHandler(nil)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	t.Run("records a line for a purchasable variant", func(t *testing.T) {
		rec := post(`{"client_id":"c-cart","variant_id":"v1","quantity":"2.5"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var line CartLine
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&line))
		assert.NotEmpty(t, line.ID)
		assert.Equal(t, "v1", line.VariantID)
		assert.Equal(t, 2.5, line.Quantity)
	})

	t.Run("out of stock is rejected", func(t *testing.T) {
		rec := post(`{"client_id":"c-cart","variant_id":"v3","quantity":"1"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "out of stock")
	})

	t.Run("not for sale is rejected", func(t *testing.T) {
		rec := post(`{"client_id":"c-cart","variant_id":"v4","quantity":"1"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unparsable quantity is rejected", func(t *testing.T) {
		rec := post(`{"client_id":"c-cart","variant_id":"v1","quantity":"abc"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		rec := post(`{"client_id":"c-cart","variant_id":"v1","quantity":"0"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown variant", func(t *testing.T) {
		rec := post(`{"client_id":"c-cart","variant_id":"nope","quantity":"1"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lists the recorded lines", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cart?client_id=c-cart", nil)
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var lines []CartLine
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&lines))
		require.Len(t, lines, 1)
		assert.Equal(t, "v1", lines[0].VariantID)
	})
}

func TestSearchHandler(t *testing.T) {
	h := searchHandler(nil)

	t.Run("returns results and the tab to activate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"text":"salmon"}`))
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var out struct {
			ActiveTab string        `json:"active_tab"`
			Results   []variantView `json:"results"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, TabSearch, out.ActiveTab)
		require.Len(t, out.Results, 1)
		assert.Equal(t, "v2", out.Results[0].ID)
	})

	t.Run("text required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"text":"  "}`))
		rec := httptest.NewRecorder()
		h(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVariantsHandler(t *testing.T) {
	h := variantsHandler(nil, "")

	t.Run("listing carries the per-kg reference price", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var out []variantView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		require.NotEmpty(t, out)

		byID := map[string]variantView{}
		for _, v := range out {
			byID[v.ID] = v
		}
		assert.Equal(t, "4.41", byID["v1"].PricePerKg)
		assert.Empty(t, byID["v2"].PricePerKg)
	})

	t.Run("create requires admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
		rec := httptest.NewRecorder()
		h(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestVariantItemHandler(t *testing.T) {
	h := variantItemHandler(nil, "")

	t.Run("get single variant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products/v1", nil)
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var v variantView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
		assert.Equal(t, "Gala Apples", v.RelatedProduct.Title)
		assert.Equal(t, "4.41", v.PricePerKg)
	})

	t.Run("unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products/nope", nil)
		rec := httptest.NewRecorder()
		h(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update requires admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/products/v1", strings.NewReader(`{"stock":4}`))
		rec := httptest.NewRecorder()
		h(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
