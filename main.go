package main

import (
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

func main() {
	dsn := os.Getenv("MYSQL_DSN")
	cloudURL := os.Getenv("CLOUDINARY_URL")
	devMode := false
	if v := os.Getenv("DEV_MODE"); v == "1" || strings.ToLower(v) == "true" {
		devMode = true
	}
	if !devMode {
		if dsn == "" || cloudURL == "" {
			log.Fatal("env MYSQL_DSN and CLOUDINARY_URL must be set (or set DEV_MODE=true to run without external services)")
		}
	}

	// If DSN requests tls=tidb, register a TLS config named "tidb".
	if strings.Contains(dsn, "tls=tidb") {
		// Try to load CA file from env TIDB_CA or default path used by TiDB Cloud docs
		caPath := os.Getenv("TIDB_CA")
		if caPath == "" {
			caPath = "/etc/ssl/certs/ca-certificates.crt"
		}
		pool := x509.NewCertPool()
		if b, err := os.ReadFile(caPath); err == nil {
			if ok := pool.AppendCertsFromPEM(b); ok {
				mysql.RegisterTLSConfig("tidb", &tls.Config{RootCAs: pool})
			} else {
				// fallback to InsecureSkipVerify if certs can't be parsed
				log.Printf("warning: could not parse CA file %s, falling back to InsecureSkipVerify", caPath)
				mysql.RegisterTLSConfig("tidb", &tls.Config{InsecureSkipVerify: true})
			}
		} else {
			log.Printf("warning: could not read CA file %s: %v, falling back to InsecureSkipVerify", caPath, err)
			mysql.RegisterTLSConfig("tidb", &tls.Config{InsecureSkipVerify: true})
		}
	}

	var db *sql.DB
	var err error
	if !devMode {
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			log.Fatalf("ping db: %v", err)
		}

		if err := ensureTable(db); err != nil {
			log.Fatalf("ensure table: %v", err)
		}
	} else {
		log.Println("DEV_MODE=true: running without MySQL/Cloudinary (in-memory store, placeholder images)")
		// keep db == nil; handlers fall back to the dev store when db==nil
		db = nil
	}

	// API endpoints consumed by the mobile client
	http.HandleFunc("/api/login", loginHandler())
	http.HandleFunc("/api/logout", logoutHandler())
	http.HandleFunc("/api/dashboard", dashboardHandler(db))
	http.HandleFunc("/api/products", variantsHandler(db, cloudURL))
	http.HandleFunc("/api/products/", variantItemHandler(db, cloudURL))
	http.HandleFunc("/api/cart", cartHandler(db))
	http.HandleFunc("/api/search", searchHandler(db))
	http.HandleFunc("/api/categories", categoriesHandler(db))
	http.HandleFunc("/api/categories/", categoryItemHandler(db))

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"service": "epipresto", "status": "ok"})
	})

	log.Println("server listening on :8000")
	if err := http.ListenAndServe(":8000", nil); err != nil {
		log.Fatalf("server: %v", err)
	}
}
