package models

import (
	"io"
	"time"
)

// WorkflowOp is the kind of state-changing operation a workflow runs
type WorkflowOp string

const (
	OpBuy    WorkflowOp = "buy"
	OpMint   WorkflowOp = "mint"
	OpResell WorkflowOp = "resell"
)

// WorkflowStatus is the settled outcome of a workflow run
type WorkflowStatus string

const (
	// StatusSuccess means the transaction was mined successfully
	StatusSuccess WorkflowStatus = "success"
	// StatusReverted means the transaction was mined but failed on chain
	StatusReverted WorkflowStatus = "reverted"
	// StatusCancelled means the signer declined the signature request
	StatusCancelled WorkflowStatus = "cancelled"
	// StatusValidationError means the input was rejected before anything ran
	StatusValidationError WorkflowStatus = "validation_error"
	// StatusPreconditionError means a required dependency was unavailable
	StatusPreconditionError WorkflowStatus = "precondition_error"
	// StatusUploadFailed means a pin call failed; no write was submitted
	StatusUploadFailed WorkflowStatus = "upload_failed"
	// StatusFailed means submission or confirmation failed off chain
	StatusFailed WorkflowStatus = "failed"
)

// Attempted reports whether a write call reached the chain
func (s WorkflowStatus) Attempted() bool {
	switch s {
	case StatusValidationError, StatusPreconditionError, StatusUploadFailed, StatusCancelled:
		return false
	}
	return true
}

// WorkflowResult is the single settled outcome shape all three workflows
// funnel into
type WorkflowResult struct {
	ID        string         `json:"id" db:"id"`
	Op        WorkflowOp     `json:"op" db:"op"`
	Status    WorkflowStatus `json:"status" db:"status"`
	TokenID   string         `json:"token_id,omitempty" db:"token_id"`
	TxHash    string         `json:"tx_hash,omitempty" db:"tx_hash"`
	Message   string         `json:"message,omitempty" db:"message"`
	SettledAt time.Time      `json:"settled_at" db:"settled_at"`
}

// BuyRequest represents a request to buy a listed item
type BuyRequest struct {
	TokenID    string `json:"token_id"`
	Passphrase string `json:"passphrase,omitempty"`
}

// MintRequest carries the validated mint form. Image is the attached
// file content; ImageName its original filename.
type MintRequest struct {
	Name        string
	Description string
	Price       string
	ImageName   string
	Image       io.Reader
	Passphrase  string
}

// ResellRequest represents a request to relist a previously sold item
type ResellRequest struct {
	TokenID    string `json:"token_id"`
	Price      string `json:"price"`
	Passphrase string `json:"passphrase,omitempty"`
}

// ActivityListResponse represents the response for the activity endpoint
type ActivityListResponse struct {
	Activity   []WorkflowResult `json:"activity"`
	TotalCount int              `json:"total_count"`
}
