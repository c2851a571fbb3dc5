package main

import (
	"database/sql"
	"fmt"
	"sync"
)

// fetchClientAccount assembles the account read model for one client: first
// name, nearby shops within maxDistance km in proximity order, and orders in
// ascending chronological order with their status logs. Dev store when db==nil.
func fetchClientAccount(db *sql.DB, clientID string, maxDistance int) (*ClientAccount, error) {
	if db == nil {
		account, ok := DevGetAccount(clientID)
		if !ok {
			return nil, fmt.Errorf("client %s not found", clientID)
		}
		return account, nil
	}

	account := &ClientAccount{ID: clientID}
	row := db.QueryRow("SELECT first_name FROM clients WHERE id = ?", clientID)
	if err := row.Scan(&account.FirstName); err != nil {
		return nil, fmt.Errorf("scan client: %w", err)
	}

	// Proximity order comes from the backend link table; it is never re-sorted
	// here.
	rows, err := db.Query(`SELECT s.id, s.name, s.is_open, s.is_paused
		FROM client_shops cs
		JOIN shops s ON s.id = cs.shop_id
		WHERE cs.client_id = ? AND cs.distance_km <= ?
		ORDER BY cs.position ASC`, clientID, maxDistance)
	if err != nil {
		return nil, fmt.Errorf("query nearby shops: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.IsOpen, &s.IsPaused); err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		account.NearbyShops = append(account.NearbyShops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shops: %w", err)
	}

	orderRows, err := db.Query(`SELECT id, order_number FROM orders
		WHERE client_id = ? ORDER BY created_at ASC, id ASC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer orderRows.Close()
	for orderRows.Next() {
		var o Order
		if err := orderRows.Scan(&o.ID, &o.OrderNumber); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		account.Orders = append(account.Orders, o)
	}
	if err := orderRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range account.Orders {
		logRows, err := db.Query(`SELECT status FROM order_logs
			WHERE order_id = ? ORDER BY id ASC`, account.Orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("query order logs: %w", err)
		}
		for logRows.Next() {
			var l OrderLog
			if err := logRows.Scan(&l.Status); err != nil {
				logRows.Close()
				return nil, fmt.Errorf("scan order log: %w", err)
			}
			account.Orders[i].Logs = append(account.Orders[i].Logs, l)
		}
		if err := logRows.Err(); err != nil {
			logRows.Close()
			return nil, fmt.Errorf("iterate order logs: %w", err)
		}
		logRows.Close()
	}

	return account, nil
}

// AccountFetchFunc produces the account snapshot for a client.
type AccountFetchFunc func(clientID string, maxDistance int) (*ClientAccount, error)

// AccountQuery is the one suspending operation behind the dashboard: a
// fire-and-forget fetch that settles exactly once into either an error or a
// snapshot. Selectors read its state and re-derive their sections from it.
type AccountQuery struct {
	mu      sync.Mutex
	loading bool
	err     error
	account *ClientAccount
	done    chan struct{}
}

// StartAccountQuery kicks off the fetch and returns the cell immediately in
// its loading state.
func StartAccountQuery(fetch AccountFetchFunc, clientID string, maxDistance int) *AccountQuery {
	q := &AccountQuery{loading: true, done: make(chan struct{})}
	go func() {
		account, err := fetch(clientID, maxDistance)
		q.mu.Lock()
		q.loading = false
		if err != nil {
			q.err = err
		} else {
			q.account = account
		}
		q.mu.Unlock()
		close(q.done)
	}()
	return q
}

// State reports the three mutually exclusive fetch states plus the snapshot
// once loaded.
func (q *AccountQuery) State() (loading bool, fetchErr bool, account *ClientAccount) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loading, q.err != nil, q.account
}

// Wait blocks until the fetch settles.
func (q *AccountQuery) Wait() {
	<-q.done
}
