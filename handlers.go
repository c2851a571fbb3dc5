package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/creasty/defaults"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
)

var queryDecoder = schema.NewDecoder()

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
}

// isAdmin checks the session cookie for a simple admin flag.
func isAdmin(r *http.Request) bool {
	c, err := r.Cookie("session")
	if err != nil {
		// no cookie, fallback to token header/query
	} else if c.Value == "admin" {
		return true
	}
	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		return false
	}
	if h := r.Header.Get("X-Admin-Token"); h != "" && h == adminToken {
		return true
	}
	if q := r.URL.Query().Get("token"); q != "" && q == adminToken {
		return true
	}
	return false
}

// loginHandler expects JSON {"username","password"} and sets a session cookie for admin.
func loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var cred struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if cred.Username == "admin" && cred.Password == os.Getenv("ADMIN_TOKEN") && cred.Password != "" {
			http.SetCookie(w, &http.Cookie{
				Name:     "session",
				Value:    "admin",
				Path:     "/",
				HttpOnly: true,
				// In production set Secure: true and SameSite
			})
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
}

func logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
		w.WriteHeader(http.StatusOK)
	}
}

// dashboardQuery carries the dashboard request parameters; distance defaults
// to the 15 km radius the mobile client asks for.
type dashboardQuery struct {
	ClientID string `schema:"client_id"`
	Distance int    `schema:"distance" default:"15"`
}

// orderView decorates an order with its derived current status for display.
type orderView struct {
	Order
	CurrentStatus OrderStatus `json:"current_status"`
}

type orderSectionView struct {
	Status SectionStatus `json:"status"`
	Orders []orderView   `json:"orders,omitempty"`
}

// DashboardView is the full payload the dashboard screen renders from.
type DashboardView struct {
	FirstName    string           `json:"first_name"`
	NearbyShops  ShopSection      `json:"nearby_shops"`
	LatestOrders orderSectionView `json:"latest_orders"`
	Categories   []Category       `json:"categories"`
}

// dashboardHandler computes the dashboard view state for one client: the
// greeting, the nearby-shops section, the latest-orders section and the
// category carousel. A failed account fetch degrades both sections to
// unavailable, never to an error response, so the screen always has
// something to render.
func dashboardHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var q dashboardQuery
		if err := defaults.Set(&q); err != nil {
			log.Println("dashboard defaults error:", err)
		}
		if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
			http.Error(w, "invalid query: "+err.Error(), http.StatusBadRequest)
			return
		}
		if q.ClientID == "" {
			http.Error(w, "client_id required", http.StatusBadRequest)
			return
		}

		account, err := fetchClientAccount(db, q.ClientID, q.Distance)
		if err != nil {
			log.Println("dashboard fetch account error:", err)
		}
		fetchErr := err != nil

		view := DashboardView{
			NearbyShops: NearbyShopSection(false, fetchErr, account),
		}
		if account != nil {
			view.FirstName = account.FirstName
		}
		section := LatestOrderSection(false, fetchErr, account)
		view.LatestOrders = orderSectionView{Status: section.Status}
		for _, o := range section.Orders {
			view.LatestOrders.Orders = append(view.LatestOrders.Orders, orderView{Order: o, CurrentStatus: o.CurrentStatus()})
		}

		cats, err := listCategories(db)
		if err != nil {
			log.Println("dashboard list categories error:", err)
		} else {
			view.Categories = cats
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(view)
	}
}

// variantView decorates a variant with the per-kilogram reference price for
// by-weight items.
type variantView struct {
	ProductVariant
	PricePerKg string `json:"price_per_kg,omitempty"`
}

func newVariantView(v ProductVariant) variantView {
	out := variantView{ProductVariant: v}
	if v.ByWeight {
		out.PricePerKg = PricePerKilogram(v.Price)
	}
	return out
}

// variantsHandler lists variants (public) and creates them (admin).
func variantsHandler(db *sql.DB, cloudURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			variants, err := listVariants(db)
			if err != nil {
				log.Println("listVariants error:", err)
				http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			out := make([]variantView, 0, len(variants))
			for _, v := range variants {
				out = append(out, newVariantView(v))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			createVariant(db, cloudURL)(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// createVariant accepts multipart form fields product_title, tags (comma
// separated), title, stock, price, by_weight, available_for_sale, taxable and
// an optional image file. Admin only.
func createVariant(db *sql.DB, cloudURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(20 << 20); err != nil {
			http.Error(w, "parse multipart: "+err.Error(), http.StatusBadRequest)
			return
		}

		v := ProductVariant{
			Title:            r.FormValue("title"),
			AvailableForSale: r.FormValue("available_for_sale") != "false",
			ByWeight:         r.FormValue("by_weight") == "true",
			Taxable:          r.FormValue("taxable") != "false",
		}
		v.RelatedProduct.Title = r.FormValue("product_title")
		if tags := strings.TrimSpace(r.FormValue("tags")); tags != "" {
			v.RelatedProduct.Tags = strings.Split(tags, ",")
		}
		if v.Title == "" || v.RelatedProduct.Title == "" {
			http.Error(w, "title and product_title required", http.StatusBadRequest)
			return
		}
		v.Stock, _ = strconv.Atoi(r.FormValue("stock"))
		if v.Stock < 0 {
			http.Error(w, "stock must not be negative", http.StatusBadRequest)
			return
		}
		v.Price, _ = strconv.ParseFloat(r.FormValue("price"), 64)
		if v.Price < 0 {
			http.Error(w, "price must not be negative", http.StatusBadRequest)
			return
		}

		file, _, ferr := r.FormFile("file")
		var imagePublicID string

		if db == nil {
			if ferr == nil {
				// no Cloudinary in dev; consume the file to avoid leaks
				_ = file.Close()
			}
			v.ImageURL = "https://via.placeholder.com/800x600.png?text=DEV+IMAGE"
			id := DevAddVariant(v)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": id, "image_url": v.ImageURL})
			return
		}

		if ferr == nil {
			defer file.Close()
			cld, err := cloudinary.NewFromURL(cloudURL)
			if err != nil {
				log.Println("cloudinary init:", err)
				http.Error(w, "cloudinary init error", http.StatusInternalServerError)
				return
			}
			uploadResult, err := cld.Upload.Upload(context.Background(), file, uploader.UploadParams{})
			if err != nil {
				log.Println("upload error:", err)
				http.Error(w, "upload failed", http.StatusInternalServerError)
				return
			}
			v.ImageURL = uploadResult.SecureURL
			if uploadResult.PublicID != "" {
				imagePublicID = uploadResult.PublicID
			}
		}

		productID := uuid.NewString()
		if _, err := db.Exec("INSERT INTO products (id, title, tags, created_at) VALUES (?, ?, ?, ?)",
			productID, v.RelatedProduct.Title, strings.Join(v.RelatedProduct.Tags, ","), time.Now()); err != nil {
			log.Println("db insert product error:", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		v.ID = uuid.NewString()
		if _, err := db.Exec(`INSERT INTO product_variants
			(id, product_id, title, image_url, image_public_id, stock, price, by_weight, available_for_sale, taxable, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, productID, v.Title, v.ImageURL, sqlNullString(imagePublicID), v.Stock, FormatPrice(v.Price),
			v.ByWeight, v.AvailableForSale, v.Taxable, time.Now()); err != nil {
			log.Println("db insert variant error:", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": v.ID, "image_url": v.ImageURL})
	}
}

// variantItemHandler handles GET/PUT/DELETE for /api/products/{id}
func variantItemHandler(db *sql.DB, cloudURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 4 || parts[3] == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		id := parts[3]

		switch r.Method {
		case http.MethodGet:
			v, err := fetchVariant(db, id)
			if err != nil {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(newVariantView(v))
			return

		case http.MethodPut:
			if !isAdmin(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			// partial update: only provided fields change
			var payload struct {
				Title            *string  `json:"title"`
				Stock            *int     `json:"stock"`
				Price            *float64 `json:"price"`
				ByWeight         *bool    `json:"by_weight"`
				AvailableForSale *bool    `json:"available_for_sale"`
				Taxable          *bool    `json:"taxable"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
				return
			}
			if payload.Stock != nil && *payload.Stock < 0 {
				http.Error(w, "stock must not be negative", http.StatusBadRequest)
				return
			}
			if payload.Price != nil && *payload.Price < 0 {
				http.Error(w, "price must not be negative", http.StatusBadRequest)
				return
			}

			if db == nil {
				v, ok := DevGetVariant(id)
				if !ok {
					http.Error(w, "not found", http.StatusNotFound)
					return
				}
				if payload.Title != nil {
					v.Title = *payload.Title
				}
				if payload.Stock != nil {
					v.Stock = *payload.Stock
				}
				if payload.Price != nil {
					v.Price = *payload.Price
				}
				if payload.ByWeight != nil {
					v.ByWeight = *payload.ByWeight
				}
				if payload.AvailableForSale != nil {
					v.AvailableForSale = *payload.AvailableForSale
				}
				if payload.Taxable != nil {
					v.Taxable = *payload.Taxable
				}
				if !DevReplaceVariant(v) {
					http.Error(w, "not found", http.StatusNotFound)
					return
				}
				w.WriteHeader(http.StatusOK)
				return
			}

			setCols := []string{}
			args := []interface{}{}
			if payload.Title != nil {
				setCols = append(setCols, "title = ?")
				args = append(args, *payload.Title)
			}
			if payload.Stock != nil {
				setCols = append(setCols, "stock = ?")
				args = append(args, *payload.Stock)
			}
			if payload.Price != nil {
				setCols = append(setCols, "price = ?")
				args = append(args, FormatPrice(*payload.Price))
			}
			if payload.ByWeight != nil {
				setCols = append(setCols, "by_weight = ?")
				args = append(args, *payload.ByWeight)
			}
			if payload.AvailableForSale != nil {
				setCols = append(setCols, "available_for_sale = ?")
				args = append(args, *payload.AvailableForSale)
			}
			if payload.Taxable != nil {
				setCols = append(setCols, "taxable = ?")
				args = append(args, *payload.Taxable)
			}
			if len(setCols) == 0 {
				http.Error(w, "no fields to update", http.StatusBadRequest)
				return
			}
			query := "UPDATE product_variants SET " + strings.Join(setCols, ", ") + " WHERE id = ?"
			args = append(args, id)
			res, err := db.Exec(query, args...)
			if err != nil {
				log.Println("db update variant error:", err)
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			if n, _ := res.RowsAffected(); n == 0 {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			return

		case http.MethodDelete:
			if !isAdmin(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if db == nil {
				if !DevDeleteVariant(id) {
					http.Error(w, "not found", http.StatusNotFound)
					return
				}
				w.WriteHeader(http.StatusOK)
				return
			}
			// attempt to delete the Cloudinary image if present
			var imgPublicID sql.NullString
			if err := db.QueryRow("SELECT image_public_id FROM product_variants WHERE id = ?", id).Scan(&imgPublicID); err != nil {
				log.Println("variant DELETE select image_public_id error:", err)
			} else if imgPublicID.Valid && imgPublicID.String != "" {
				cld, err := cloudinary.NewFromURL(cloudURL)
				if err == nil {
					if _, err := cld.Upload.Destroy(context.Background(), uploader.DestroyParams{PublicID: imgPublicID.String}); err != nil {
						log.Println("cloudinary destroy error:", err)
					}
				} else {
					log.Println("cloudinary init for delete error:", err)
				}
			}
			res, err := db.Exec("DELETE FROM product_variants WHERE id=?", id)
			if err != nil {
				log.Println("db delete variant error:", err)
				http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			if n, _ := res.RowsAffected(); n == 0 {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			return

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
	}
}

// cartHandler is the add-to-cart sink (POST) and the cart listing (GET). The
// POST path runs the request through the same variant card gates the client
// uses, so an unavailable or out-of-stock variant can never produce a line.
func cartHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			clientID := r.URL.Query().Get("client_id")
			if clientID == "" {
				http.Error(w, "client_id required", http.StatusBadRequest)
				return
			}
			lines, err := listCartLines(db, clientID)
			if err != nil {
				log.Println("listCartLines error:", err)
				http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(lines)
			return

		case http.MethodPost:
			var payload struct {
				ClientID  string `json:"client_id"`
				VariantID string `json:"variant_id"`
				Quantity  string `json:"quantity"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
				return
			}
			if payload.ClientID == "" || payload.VariantID == "" {
				http.Error(w, "client_id and variant_id required", http.StatusBadRequest)
				return
			}

			variant, err := fetchVariant(db, payload.VariantID)
			if err != nil {
				http.Error(w, "variant not found", http.StatusNotFound)
				return
			}

			var line CartLine
			var sinkErr error
			card := NewVariantCard(variant, func(variantID string, quantity float64) {
				line, sinkErr = insertCartLine(db, payload.ClientID, variantID, quantity)
			})
			card.SetQuantity(payload.Quantity)

			if !card.Purchasable() {
				if card.OutOfStock() {
					http.Error(w, "out of stock", http.StatusConflict)
					return
				}
				http.Error(w, "variant not available for sale", http.StatusConflict)
				return
			}
			if !card.AddToCart() {
				http.Error(w, "quantity must be a positive number", http.StatusBadRequest)
				return
			}
			if sinkErr != nil {
				log.Println("insertCartLine error:", sinkErr)
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(line)
			return

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
	}
}

// searchHandler runs a product search and tells the client which tab to
// activate once the results are in.
func searchHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
		payload.Text = strings.TrimSpace(payload.Text)
		if payload.Text == "" {
			http.Error(w, "text required", http.StatusBadRequest)
			return
		}

		var results []variantView
		var activeTab string
		ctrl := NewSearchController(func(ctx context.Context, text string) error {
			variants, err := searchVariants(db, text)
			if err != nil {
				return err
			}
			for _, v := range variants {
				results = append(results, newVariantView(v))
			}
			return nil
		}, func(tabKey string) {
			activeTab = tabKey
		})
		if err := ctrl.Submit(r.Context(), payload.Text); err != nil {
			log.Println("search error:", err)
			http.Error(w, "search failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"active_tab": activeTab,
			"results":    results,
		})
	}
}

func categoriesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cats, err := listCategories(db)
			if err != nil {
				log.Println("categoriesHandler db.Query error:", err)
				http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(cats)
			return

		case http.MethodPost:
			if !isAdmin(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			var payload struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
				return
			}
			payload.Name = strings.TrimSpace(payload.Name)
			if payload.Name == "" {
				http.Error(w, "name required", http.StatusBadRequest)
				return
			}
			if db == nil {
				c := DevAddCategory(payload.Name)
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(c)
				return
			}
			res, err := db.Exec("INSERT INTO categories (name) VALUES (?)", payload.Name)
			if err != nil {
				log.Println("categories POST db.Exec error:", err)
				http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			id, _ := res.LastInsertId()
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(Category{ID: id, Name: payload.Name})
			return

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
	}
}

func categoryItemHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 4 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		id, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		if !isAdmin(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		switch r.Method {
		case http.MethodPut:
			var payload struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			payload.Name = strings.TrimSpace(payload.Name)
			if payload.Name == "" {
				http.Error(w, "name required", http.StatusBadRequest)
				return
			}
			if db == nil {
				if !DevUpdateCategory(id, payload.Name) {
					http.Error(w, "not found", http.StatusNotFound)
					return
				}
				w.WriteHeader(http.StatusOK)
				return
			}
			res, err := db.Exec("UPDATE categories SET name=? WHERE id=?", payload.Name, id)
			if err != nil {
				log.Println("category PUT db.Exec error:", err)
				http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			if n, _ := res.RowsAffected(); n == 0 {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			return

		case http.MethodDelete:
			if db == nil {
				if !DevDeleteCategory(id) {
					http.Error(w, "not found", http.StatusNotFound)
					return
				}
				w.WriteHeader(http.StatusOK)
				return
			}
			res, err := db.Exec("DELETE FROM categories WHERE id=?", id)
			if err != nil {
				log.Println("category DELETE db.Exec error:", err)
				http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
				return
			}
			if n, _ := res.RowsAffected(); n == 0 {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			return

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
	}
}

func sqlNullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
