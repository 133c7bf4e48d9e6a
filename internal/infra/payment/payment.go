package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"
)

var ErrDisabled = errors.New("online payments are not configured")

type CheckoutRequest struct {
	// Reference is the booking reference, echoed back by the provider as the
	// external reference of the payment.
	Reference string
	Title     string
	Amount    decimal.Decimal
	Currency  string
}

type Checkout struct {
	ID  string
	URL string
}

type Payment struct {
	ID        string
	Status    string
	Reference string
	Amount    decimal.Decimal
}

// Approved reports whether the provider settled the payment.
func (p Payment) Approved() bool {
	return p.Status == "approved"
}

type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error)
	GetPayment(ctx context.Context, id string) (Payment, error)
}

// -------- MercadoPago --------

type MercadoPago struct {
	preferences preference.Client
	payments    payment.Client

	notificationURL string
	redirectURL     string
}

func NewMercadoPago(accessToken, notificationURL, redirectURL string) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPago{
		preferences:     preference.NewClient(cfg),
		payments:        payment.NewClient(cfg),
		notificationURL: notificationURL,
		redirectURL:     redirectURL,
	}, nil
}

func (m *MercadoPago) CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	body := preference.Request{
		Items: []preference.ItemRequest{
			{
				ID:         req.Reference,
				Title:      req.Title,
				Quantity:   1,
				UnitPrice:  req.Amount.InexactFloat64(),
				CurrencyID: req.Currency,
			},
		},
		ExternalReference: req.Reference,
		NotificationURL:   m.notificationURL,
	}
	if m.redirectURL != "" {
		body.BackURLs = &preference.BackURLsRequest{
			Success: m.redirectURL,
			Pending: m.redirectURL,
			Failure: m.redirectURL,
		}
	}

	res, err := m.preferences.Create(ctx, body)
	if err != nil {
		return Checkout{}, fmt.Errorf("create preference: %w", err)
	}

	return Checkout{ID: res.ID, URL: res.InitPoint}, nil
}

func (m *MercadoPago) GetPayment(ctx context.Context, id string) (Payment, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return Payment{}, fmt.Errorf("payment id %q: %w", id, err)
	}

	res, err := m.payments.Get(ctx, n)
	if err != nil {
		return Payment{}, fmt.Errorf("get payment: %w", err)
	}

	return Payment{
		ID:        strconv.Itoa(res.ID),
		Status:    res.Status,
		Reference: res.ExternalReference,
		Amount:    decimal.NewFromFloat(res.TransactionAmount),
	}, nil
}

// -------- Disabled --------

type Disabled struct{}

func (Disabled) CreateCheckout(context.Context, CheckoutRequest) (Checkout, error) {
	return Checkout{}, ErrDisabled
}

func (Disabled) GetPayment(context.Context, string) (Payment, error) {
	return Payment{}, ErrDisabled
}

var (
	_ Gateway = (*MercadoPago)(nil)
	_ Gateway = Disabled{}
)
