package main

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// scanVariant reads one variant row joined with its product. Price comes back
// as a string from the DECIMAL column.
func scanVariant(scan func(dest ...interface{}) error) (ProductVariant, error) {
	var v ProductVariant
	var priceStr string
	var tags string
	if err := scan(&v.ID, &v.Title, &v.ImageURL, &v.Stock, &priceStr, &v.ByWeight,
		&v.AvailableForSale, &v.Taxable, &v.RelatedProduct.Title, &tags); err != nil {
		return ProductVariant{}, err
	}
	v.Price, _ = strconv.ParseFloat(priceStr, 64)
	if tags != "" {
		v.RelatedProduct.Tags = strings.Split(tags, ",")
	}
	return v, nil
}

const variantSelect = `SELECT v.id, v.title, IFNULL(v.image_url,''), v.stock, v.price,
	v.by_weight, v.available_for_sale, v.taxable, p.title, IFNULL(p.tags,'')
	FROM product_variants v JOIN products p ON p.id = v.product_id`

// listVariants returns every variant with its product info.
func listVariants(db *sql.DB) ([]ProductVariant, error) {
	if db == nil {
		return DevGetVariants(), nil
	}
	rows, err := db.Query(variantSelect + " ORDER BY v.created_at DESC, v.id")
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()
	var out []ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// fetchVariant returns one variant by id.
func fetchVariant(db *sql.DB, id string) (ProductVariant, error) {
	if db == nil {
		v, ok := DevGetVariant(id)
		if !ok {
			return ProductVariant{}, fmt.Errorf("variant %s not found", id)
		}
		return v, nil
	}
	row := db.QueryRow(variantSelect+" WHERE v.id = ?", id)
	v, err := scanVariant(row.Scan)
	if err != nil {
		return ProductVariant{}, fmt.Errorf("scan variant: %w", err)
	}
	return v, nil
}

// searchVariants matches the text against variant and product titles.
func searchVariants(db *sql.DB, text string) ([]ProductVariant, error) {
	if db == nil {
		return DevSearchVariants(text), nil
	}
	like := "%" + text + "%"
	rows, err := db.Query(variantSelect+" WHERE v.title LIKE ? OR p.title LIKE ? ORDER BY p.title, v.title", like, like)
	if err != nil {
		return nil, fmt.Errorf("query search: %w", err)
	}
	defer rows.Close()
	var out []ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// insertCartLine records one add-to-cart request.
func insertCartLine(db *sql.DB, clientID, variantID string, quantity float64) (CartLine, error) {
	if db == nil {
		return DevAddCartLine(clientID, variantID, quantity), nil
	}
	line := CartLine{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		VariantID: variantID,
		Quantity:  quantity,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	if _, err := db.Exec("INSERT INTO cart_lines (id, client_id, variant_id, quantity, created_at) VALUES (?, ?, ?, ?, ?)",
		line.ID, line.ClientID, line.VariantID, line.Quantity, time.Now()); err != nil {
		return CartLine{}, fmt.Errorf("insert cart line: %w", err)
	}
	return line, nil
}

// listCartLines returns the lines recorded for a client, oldest first.
func listCartLines(db *sql.DB, clientID string) ([]CartLine, error) {
	if db == nil {
		return DevGetCartLines(clientID), nil
	}
	rows, err := db.Query(`SELECT id, client_id, variant_id, quantity, created_at
		FROM cart_lines WHERE client_id = ? ORDER BY created_at ASC, id ASC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()
	var out []CartLine
	for rows.Next() {
		var l CartLine
		var created interface{}
		if err := rows.Scan(&l.ID, &l.ClientID, &l.VariantID, &l.Quantity, &created); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		// created_at may be time.Time or []byte/string depending on the driver
		switch v := created.(type) {
		case time.Time:
			l.CreatedAt = v.Format(time.RFC3339)
		case []byte:
			l.CreatedAt = string(v)
		case string:
			l.CreatedAt = v
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// listCategories returns the shop categories in name order.
func listCategories(db *sql.DB) ([]Category, error) {
	if db == nil {
		return DevGetCategories(), nil
	}
	rows, err := db.Query("SELECT id, name FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
