package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
)

// ActivityRepository persists settled workflow results so past
// buy/mint/resell outcomes can be listed after a restart
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *Database) *ActivityRepository {
	return &ActivityRepository{db: db.GetDB()}
}

// Record stores one settled workflow result
func (r *ActivityRepository) Record(result models.WorkflowResult) error {
	_, err := r.db.NamedExec(`
		INSERT INTO activity (id, op, status, token_id, tx_hash, message, settled_at)
		VALUES (:id, :op, :status, :token_id, :tx_hash, :message, :settled_at)`,
		result,
	)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// List returns the most recent results, newest first
func (r *ActivityRepository) List(limit int) ([]models.WorkflowResult, error) {
	if limit <= 0 {
		limit = 50
	}

	results := []models.WorkflowResult{}
	err := r.db.Select(&results, `
		SELECT id, op, status, token_id, tx_hash, message, settled_at
		FROM activity
		ORDER BY settled_at DESC, id
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return results, nil
}
