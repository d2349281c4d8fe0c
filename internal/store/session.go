package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// sigpassKey is the fixed key the local wallet address persists under,
// matching the storage key the dApp uses in the browser
const sigpassKey = "SIGPASS_ADDRESS"

// SessionRepository persists the local wallet selection
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *Database) *SessionRepository {
	return &SessionRepository{db: db.GetDB()}
}

// SaveLocalAddress stores the local wallet address, replacing any
// previous value
func (r *SessionRepository) SaveLocalAddress(address string) error {
	_, err := r.db.Exec(`
		INSERT INTO wallet_state (key, address, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET address = excluded.address, updated_at = excluded.updated_at`,
		sigpassKey, address, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save local address: %w", err)
	}
	return nil
}

// LocalAddress returns the persisted local wallet address, if any
func (r *SessionRepository) LocalAddress() (string, bool, error) {
	var address string
	err := r.db.Get(&address, `SELECT address FROM wallet_state WHERE key = ?`, sigpassKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load local address: %w", err)
	}
	return address, true, nil
}

// ClearLocalAddress removes the persisted local wallet address. Only an
// explicit disconnect calls this.
func (r *SessionRepository) ClearLocalAddress() error {
	if _, err := r.db.Exec(`DELETE FROM wallet_state WHERE key = ?`, sigpassKey); err != nil {
		return fmt.Errorf("clear local address: %w", err)
	}
	return nil
}
