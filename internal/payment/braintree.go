package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

// Config holds the merchant credentials
type Config struct {
	Environment string // sandbox or production
	MerchantID  string
	PublicKey   string
	PrivateKey  string
}

// btClient is the part of the Braintree SDK the adapter calls
type btClient interface {
	GenerateToken(ctx context.Context) (string, error)
	CreateTransaction(ctx context.Context, req *braintree.TransactionRequest) (*braintree.Transaction, error)
}

type sdkClient struct {
	bt *braintree.Braintree
}

func (s sdkClient) GenerateToken(ctx context.Context) (string, error) {
	return s.bt.ClientToken().Generate(ctx)
}

func (s sdkClient) CreateTransaction(ctx context.Context, req *braintree.TransactionRequest) (*braintree.Transaction, error) {
	return s.bt.Transaction().Create(ctx, req)
}

// Braintree is the Gateway backed by Braintree
type Braintree struct {
	client btClient
}

// NewBraintree builds the adapter; all credentials are required
func NewBraintree(cfg Config) (*Braintree, error) {
	if cfg.MerchantID == "" || cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, errors.New("braintree: merchant id, public key and private key are required")
	}
	env := braintree.Sandbox
	switch cfg.Environment {
	case "", "sandbox":
	case "production":
		env = braintree.Production
	default:
		return nil, fmt.Errorf("braintree: unknown environment %q", cfg.Environment)
	}
	return &Braintree{client: sdkClient{bt: braintree.New(env, cfg.MerchantID, cfg.PublicKey, cfg.PrivateKey)}}, nil
}

// IssueClientToken returns a token the client uses to collect a nonce
func (b *Braintree) IssueClientToken(ctx context.Context) (string, error) {
	token, err := b.client.GenerateToken(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: client token: %v", ErrGatewayUnavailable, err)
	}
	return token, nil
}

// SubmitSale charges amount against nonce and submits it for settlement
func (b *Braintree) SubmitSale(ctx context.Context, amount decimal.Decimal, nonce, orderRef string) (*SaleResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	tx, err := b.client.CreateTransaction(ctx, &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             toBraintreeDecimal(amount),
		PaymentMethodNonce: nonce,
		OrderId:            orderRef,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	})
	if err != nil {
		return nil, classify(err)
	}
	res := saleResult(tx)
	if !res.Success {
		return res, fmt.Errorf("%w: transaction %s is %s", ErrDeclined, res.TransactionID, res.Status)
	}
	return res, nil
}

func saleResult(tx *braintree.Transaction) *SaleResult {
	res := &SaleResult{
		TransactionID:     tx.Id,
		Status:            string(tx.Status),
		ProcessorResponse: tx.ProcessorResponseText,
	}
	if tx.Amount != nil {
		res.Amount = tx.Amount.String()
	}
	switch tx.Status {
	case braintree.TransactionStatusAuthorized,
		braintree.TransactionStatusSubmittedForSettlement,
		braintree.TransactionStatusSettling,
		braintree.TransactionStatusSettled:
		res.Success = true
	}
	if raw, err := json.Marshal(tx); err == nil {
		res.Raw = raw
	}
	return res
}

// Transaction validation codes that blame the payment method nonce
var nonceCodes = map[string]bool{
	"91564": true, // Already consumed
	"91565": true, // Unknown or expired
	"91566": true, // Cannot be used for this transaction
	"91567": true, // Locked
	"91568": true, // Still being verified
}

// classify maps SDK errors onto the package sentinels
func classify(err error) error {
	var bte *braintree.BraintreeError
	if !errors.As(err, &bte) {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	switch {
	case bte.StatusCode() >= 500:
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	case bte.Transaction != nil:
		return fmt.Errorf("%w: %s", ErrDeclined, bte.ErrorMessage)
	}
	return fmt.Errorf("%w: %s", validationKind(bte.For("Transaction").All()), bte.ErrorMessage)
}

// validationKind picks the sentinel for a request the gateway refused to process.
// Nonce problems win over amount problems; anything else is a rejected request.
func validationKind(verrs []braintree.ValidationError) error {
	kind := ErrRejected
	for _, ve := range verrs {
		switch {
		case nonceCodes[ve.Code] || ve.Attribute == "PaymentMethodNonce":
			return ErrInvalidNonce
		case ve.Attribute == "Amount":
			kind = ErrInvalidAmount
		}
	}
	return kind
}

// toBraintreeDecimal converts without rounding
func toBraintreeDecimal(d decimal.Decimal) *braintree.Decimal {
	scale := 0
	if exp := d.Exponent(); exp < 0 {
		scale = int(-exp)
	}
	return braintree.NewDecimal(d.Shift(int32(scale)).IntPart(), scale)
}
