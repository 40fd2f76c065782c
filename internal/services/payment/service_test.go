package payment

import (
	"context"
	"testing"

	"talkastro/internal/models"
	"talkastro/internal/services/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct{ mock.Mock }

func (m *MockGateway) Charge(ctx context.Context, amount decimal.Decimal, currency, cardToken, description string) (string, error) {
	args := m.Called(ctx, amount, currency, cardToken, description)
	return args.String(0), args.Error(1)
}

type MockWallet struct{ mock.Mock }

func (m *MockWallet) Credit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func TestRecharge_ChargeThenCredit(t *testing.T) {
	gateway := new(MockGateway)
	wallet := new(MockWallet)

	amount := decimal.RequireFromString("500")
	gateway.On("Charge", mock.Anything, amount, "inr", "tok_visa", "Wallet recharge").
		Return("ch_123", nil)
	wallet.On("Credit", mock.Anything, uint(1), amount, "Wallet recharge").
		Return(&models.Wallet{UserID: 1, Balance: amount}, nil)

	svc := NewService(gateway, wallet)

	got, err := svc.Recharge(context.Background(), 1, amount, "tok_visa")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(amount))
	gateway.AssertExpectations(t)
	wallet.AssertExpectations(t)
}

func TestRecharge_DeclinedChargeNeverCredits(t *testing.T) {
	gateway := new(MockGateway)
	wallet := new(MockWallet)

	amount := decimal.RequireFromString("500")
	gateway.On("Charge", mock.Anything, amount, "inr", "tok_chargeDeclined", "Wallet recharge").
		Return("", ErrChargeDeclined)

	svc := NewService(gateway, wallet)

	_, err := svc.Recharge(context.Background(), 1, amount, "tok_chargeDeclined")
	assert.ErrorIs(t, err, ErrChargeDeclined)
	wallet.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecharge_InvalidAmountRejectedBeforeCharge(t *testing.T) {
	gateway := new(MockGateway)

	svc := NewService(gateway, new(MockWallet))

	_, err := svc.Recharge(context.Background(), 1, decimal.NewFromInt(-100), "tok_visa")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecharge_CancelledContextPlacesNoCharge(t *testing.T) {
	gateway := new(MockGateway)
	wallet := new(MockWallet)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(gateway, wallet)

	_, err := svc.Recharge(ctx, 1, decimal.NewFromInt(100), "tok_visa")
	assert.ErrorIs(t, err, context.Canceled)
	gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	wallet.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecharge_MissingToken(t *testing.T) {
	svc := NewService(new(MockGateway), new(MockWallet))

	_, err := svc.Recharge(context.Background(), 1, decimal.NewFromInt(100), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}
