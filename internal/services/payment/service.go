// Package payment turns card payments into wallet credits. The gateway
// charge happens first; only a captured charge is written to the ledger,
// so a declined card never touches wallet state.
package payment

import (
	"context"
	"errors"
	"fmt"
	"os"

	"talkastro/internal/models"
	"talkastro/internal/services/ledger"
	"talkastro/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
)

var (
	ErrChargeDeclined = errors.New("card charge declined")
	ErrMissingToken   = errors.New("card token is required")
)

// Gateway captures a card payment and returns the provider's charge id.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, currency, cardToken, description string) (string, error)
}

// Wallet is the slice of the ledger this service needs.
type Wallet interface {
	Credit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Wallet, error)
}

type Service interface {
	// Recharge charges the card token and credits the captured amount to
	// the user's wallet with the standard recharge description.
	Recharge(ctx context.Context, userID uint, amount decimal.Decimal, cardToken string) (*models.Wallet, error)
}

type service struct {
	gateway Gateway
	wallet  Wallet
}

func NewService(gateway Gateway, wallet Wallet) Service {
	return &service{gateway: gateway, wallet: wallet}
}

func (s *service) Recharge(ctx context.Context, userID uint, amount decimal.Decimal, cardToken string) (*models.Wallet, error) {
	if cardToken == "" {
		return nil, ErrMissingToken
	}
	if err := validation.Amount(amount); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidAmount, err)
	}
	// A cancelled caller must not place a charge.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chargeID, err := s.gateway.Charge(ctx, amount, "inr", cardToken, models.DefaultCreditDescription)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"amount":  amount.String(),
		}).Warn("recharge payment declined")
		return nil, err
	}

	wallet, err := s.wallet.Credit(ctx, userID, amount, models.DefaultCreditDescription)
	if err != nil {
		// The card was charged but the wallet was not credited. This needs
		// an operator; log everything required to reconcile it.
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":   userID,
			"amount":    amount.String(),
			"charge_id": chargeID,
		}).Error("charge captured but wallet credit failed")
		return nil, fmt.Errorf("charge %s captured but wallet credit failed: %w", chargeID, err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"amount":    amount.String(),
		"charge_id": chargeID,
	}).Info("wallet recharged")

	return wallet, nil
}

// StripeGateway charges cards through Stripe. Amounts are rupees with
// paise precision; Stripe wants the smallest currency unit.
type StripeGateway struct{}

func NewStripeGateway() (*StripeGateway, error) {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return nil, errors.New("STRIPE_SECRET_KEY not configured")
	}
	stripe.Key = key
	return &StripeGateway{}, nil
}

func (g *StripeGateway) Charge(ctx context.Context, amount decimal.Decimal, currency, cardToken, description string) (string, error) {
	params := &stripe.ChargeParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(amount.Mul(decimal.NewFromInt(100)).IntPart()),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
	}
	if err := params.SetSource(cardToken); err != nil {
		return "", ErrMissingToken
	}

	ch, err := charge.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return "", fmt.Errorf("%w: %s", ErrChargeDeclined, stripeErr.Msg)
		}
		return "", err
	}
	return ch.ID, nil
}

var _ Gateway = (*StripeGateway)(nil)
var _ Wallet = (ledger.Service)(nil)
