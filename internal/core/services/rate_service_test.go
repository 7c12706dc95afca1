package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/core/services"
)

type RateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	source       portssvc.RateSource
	ctx          context.Context
}

func (suite *RateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.source = services.NewRateService(suite.mockRateRepo, "usd", map[string]decimal.Decimal{
		"eur": decimal.NewFromFloat(1.08),
	})
	suite.ctx = context.Background()
}

func (suite *RateServiceTestSuite) TestRate_SameCurrencyIsOne() {
	rate, err := suite.source.Rate(suite.ctx, "USD", "usd")

	suite.NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1)))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindExchangeRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RateServiceTestSuite) TestRate_StoredRatePreferred() {
	suite.mockRateRepo.On("FindExchangeRate", mock.Anything, "EUR", "USD").
		Return(&domain.ExchangeRate{
			FromCurrencyCode: "EUR",
			ToCurrencyCode:   "USD",
			Rate:             decimal.NewFromFloat(1.1),
		}, nil).Once()

	rate, err := suite.source.Rate(suite.ctx, "EUR", "USD")

	suite.NoError(err)
	// The stored 1.10 wins over the static 1.08.
	suite.True(rate.Equal(decimal.NewFromFloat(1.1)))
}

func (suite *RateServiceTestSuite) TestRate_StaticFallbackForeignToBase() {
	suite.mockRateRepo.On("FindExchangeRate", mock.Anything, "EUR", "USD").
		Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.source.Rate(suite.ctx, "eur", "USD")

	suite.NoError(err)
	suite.True(rate.Equal(decimal.NewFromFloat(1.08)))
}

func (suite *RateServiceTestSuite) TestRate_StaticFallbackBaseToForeignInverts() {
	suite.mockRateRepo.On("FindExchangeRate", mock.Anything, "USD", "EUR").
		Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.source.Rate(suite.ctx, "USD", "EUR")

	suite.NoError(err)
	expected := decimal.NewFromInt(1).Div(decimal.NewFromFloat(1.08))
	suite.True(rate.Equal(expected))
}

func (suite *RateServiceTestSuite) TestRate_UnknownPair() {
	suite.mockRateRepo.On("FindExchangeRate", mock.Anything, "GBP", "USD").
		Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.source.Rate(suite.ctx, "GBP", "USD")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.True(rate.IsZero())
}

func (suite *RateServiceTestSuite) TestRate_NoStaticTableConfigured() {
	bare := services.NewRateService(suite.mockRateRepo, "USD", nil)
	suite.mockRateRepo.On("FindExchangeRate", mock.Anything, "EUR", "USD").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := bare.Rate(suite.ctx, "EUR", "USD")

	suite.ErrorIs(err, apperrors.ErrNotConfigured)
}

func TestRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RateServiceTestSuite))
}
