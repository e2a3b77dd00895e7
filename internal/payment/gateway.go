// Package payment adapts the remote payment gateway.
package payment

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// Gateway failures, classified so the API can answer with the right status
var (
	ErrDeclined           = errors.New("payment declined")
	ErrInvalidNonce       = errors.New("invalid payment nonce")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrRejected           = errors.New("payment request rejected by gateway")
)

// SaleResult is what the gateway reported for a sale
type SaleResult struct {
	Success           bool
	TransactionID     string
	Status            string
	Amount            string
	ProcessorResponse string
	Raw               json.RawMessage // Full gateway transaction, stored with the order
}

// Gateway issues client tokens and submits sales.
// SubmitSale is not idempotent and must not be retried.
type Gateway interface {
	IssueClientToken(ctx context.Context) (string, error)
	SubmitSale(ctx context.Context, amount decimal.Decimal, nonce, orderRef string) (*SaleResult, error)
}

// Unavailable is the gateway used when no credentials are configured
type Unavailable struct{}

func (Unavailable) IssueClientToken(context.Context) (string, error) {
	return "", ErrGatewayUnavailable
}

func (Unavailable) SubmitSale(context.Context, decimal.Decimal, string, string) (*SaleResult, error) {
	return nil, ErrGatewayUnavailable
}
