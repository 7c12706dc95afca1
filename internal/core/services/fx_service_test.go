package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/core/services"
	"github.com/closepilot/ledgercore/internal/dto"
)

type FxServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockRateSource  *MockRateSource
	mockJournalSvc  *MockJournalService
	mockDirectory   *MockDirectory
	mockCompanySvc  *MockCompanyService
	mockCloseout    *MockCloseoutStore
	service         portssvc.FxRevaluationSvcFacade
	ctx             context.Context
}

func (suite *FxServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockRateSource = new(MockRateSource)
	suite.mockJournalSvc = new(MockJournalService)
	suite.mockDirectory = new(MockDirectory)
	suite.mockCompanySvc = new(MockCompanyService)
	suite.mockCloseout = new(MockCloseoutStore)
	suite.service = services.NewFxService(
		suite.mockAccountRepo,
		suite.mockRateSource,
		suite.mockJournalSvc,
		suite.mockDirectory,
		suite.mockCompanySvc,
		suite.mockCloseout,
	)
	suite.ctx = context.Background()

	suite.mockCompanySvc.On("GetCompanyByID", mock.Anything, testTenantID, testCompanyID).
		Return(&domain.Company{
			CompanyID:        testCompanyID,
			TenantID:         testTenantID,
			BaseCurrencyCode: "USD",
			IsActive:         true,
		}, nil).Maybe()
}

func eurAccount(balance int64) domain.Account {
	return domain.Account{
		AccountID:    "acc-eur",
		TenantID:     testTenantID,
		CompanyID:    testCompanyID,
		Code:         "1300",
		Name:         "EUR Balance",
		AccountType:  domain.Asset,
		CurrencyCode: "EUR",
		IsActive:     true,
		Balance:      decimal.NewFromInt(balance),
	}
}

func (suite *FxServiceTestSuite) TestPreview_ComputesRevaluation() {
	suite.mockAccountRepo.On("ListForeignCurrencyAccounts", mock.Anything, testTenantID, testCompanyID, "USD").
		Return([]domain.Account{eurAccount(10000)}, nil).Once()
	suite.mockRateSource.On("Rate", mock.Anything, "EUR", "USD").
		Return(decimal.NewFromFloat(1.08), nil).Once()

	preview, err := suite.service.PreviewRevaluation(suite.ctx, testTenantID, testCompanyID, "2025-03")

	suite.NoError(err)
	suite.Require().NotNil(preview)
	suite.Require().Len(preview.Lines, 1)
	suite.Empty(preview.Errors)
	line := preview.Lines[0]
	suite.True(line.BaseBalance.Equal(decimal.NewFromInt(10800)))
	suite.True(line.Revaluation.Equal(decimal.NewFromInt(800)))
}

func (suite *FxServiceTestSuite) TestPreview_RateFailureReportedNotFatal() {
	suite.mockAccountRepo.On("ListForeignCurrencyAccounts", mock.Anything, testTenantID, testCompanyID, "USD").
		Return([]domain.Account{eurAccount(10000)}, nil).Once()
	suite.mockRateSource.On("Rate", mock.Anything, "EUR", "USD").
		Return(decimal.Zero, errors.New("no rate configured")).Once()

	preview, err := suite.service.PreviewRevaluation(suite.ctx, testTenantID, testCompanyID, "2025-03")

	suite.NoError(err)
	suite.Require().NotNil(preview)
	suite.Empty(preview.Lines)
	suite.Require().Len(preview.Errors, 1)
	suite.Contains(preview.Errors[0], "acc-eur")
}

func (suite *FxServiceTestSuite) TestPost_UnresolvedRatesRejected() {
	suite.mockAccountRepo.On("ListForeignCurrencyAccounts", mock.Anything, testTenantID, testCompanyID, "USD").
		Return([]domain.Account{eurAccount(10000)}, nil).Once()
	suite.mockRateSource.On("Rate", mock.Anything, "EUR", "USD").
		Return(decimal.Zero, errors.New("no rate configured")).Once()

	resp, err := suite.service.PostRevaluation(suite.ctx, testTenantID, testCompanyID, "2025-03", testActorID)

	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FxServiceTestSuite) TestPost_GainPostsDebitForeignCreditGain() {
	// Rate 0.95 on 10000 EUR gives revaluation -500: an FX gain pair.
	suite.mockAccountRepo.On("ListForeignCurrencyAccounts", mock.Anything, testTenantID, testCompanyID, "USD").
		Return([]domain.Account{eurAccount(10000)}, nil).Once()
	suite.mockRateSource.On("Rate", mock.Anything, "EUR", "USD").
		Return(decimal.NewFromFloat(0.95), nil).Once()
	suite.mockDirectory.On("Resolve", mock.Anything, testTenantID, testCompanyID, domain.RoleFxGain, testActorID).
		Return(&domain.Account{AccountID: "acc-fxgain", AccountType: domain.Revenue, IsActive: true}, nil).Once()

	var postedReq dto.PostEntryRequest
	suite.mockJournalSvc.On("PostEntry", mock.Anything, testTenantID, testCompanyID, mock.Anything, testActorID).
		Run(func(args mock.Arguments) {
			postedReq = args.Get(3).(dto.PostEntryRequest)
		}).
		Return(&domain.JournalEntry{EntryID: "entry-fx", Status: domain.Posted}, nil).Once()
	suite.mockCloseout.On("SaveRevaluationSnapshot", mock.Anything, mock.MatchedBy(func(s domain.RevaluationSnapshot) bool {
		return s.Period == domain.Period("2025-03") && s.EntryID == "entry-fx" && len(s.Lines) == 1
	})).Return(nil).Once()
	suite.mockCloseout.On("AppendRun", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-03"),
		mock.MatchedBy(func(r domain.RunRecord) bool {
			return r.Type == domain.RunFxRevaluation &&
				r.Detail.Posted == 1 &&
				r.Detail.Amount.Equal(decimal.NewFromInt(500))
		})).Return(nil).Once()

	resp, err := suite.service.PostRevaluation(suite.ctx, testTenantID, testCompanyID, "2025-03", testActorID)

	suite.NoError(err)
	suite.Require().NotNil(resp)
	suite.Equal("entry-fx", resp.EntryID)
	suite.Require().Len(postedReq.Lines, 2)
	suite.Equal("acc-eur", postedReq.Lines[0].AccountID)
	suite.True(postedReq.Lines[0].Debit.Equal(decimal.NewFromInt(500)))
	suite.Equal("acc-fxgain", postedReq.Lines[1].AccountID)
	suite.True(postedReq.Lines[1].Credit.Equal(decimal.NewFromInt(500)))
	suite.Equal("FX-2025-03", postedReq.Reference)
	suite.True(postedReq.Date.Equal(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)))
	suite.mockCloseout.AssertExpectations(suite.T())
}

func (suite *FxServiceTestSuite) TestPost_LossPostsDebitLossCreditForeign() {
	suite.mockAccountRepo.On("ListForeignCurrencyAccounts", mock.Anything, testTenantID, testCompanyID, "USD").
		Return([]domain.Account{eurAccount(10000)}, nil).Once()
	suite.mockRateSource.On("Rate", mock.Anything, "EUR", "USD").
		Return(decimal.NewFromFloat(1.08), nil).Once()
	suite.mockDirectory.On("Resolve", mock.Anything, testTenantID, testCompanyID, domain.RoleFxLoss, testActorID).
		Return(&domain.Account{AccountID: "acc-fxloss", AccountType: domain.Expense, IsActive: true}, nil).Once()

	var postedReq dto.PostEntryRequest
	suite.mockJournalSvc.On("PostEntry", mock.Anything, testTenantID, testCompanyID, mock.Anything, testActorID).
		Run(func(args mock.Arguments) {
			postedReq = args.Get(3).(dto.PostEntryRequest)
		}).
		Return(&domain.JournalEntry{EntryID: "entry-fx", Status: domain.Posted}, nil).Once()
	suite.mockCloseout.On("SaveRevaluationSnapshot", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockCloseout.On("AppendRun", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-03"), mock.Anything).
		Return(nil).Once()

	resp, err := suite.service.PostRevaluation(suite.ctx, testTenantID, testCompanyID, "2025-03", testActorID)

	suite.NoError(err)
	suite.Require().NotNil(resp)
	suite.Require().Len(postedReq.Lines, 2)
	suite.Equal("acc-fxloss", postedReq.Lines[0].AccountID)
	suite.True(postedReq.Lines[0].Debit.Equal(decimal.NewFromInt(800)))
	suite.Equal("acc-eur", postedReq.Lines[1].AccountID)
	suite.True(postedReq.Lines[1].Credit.Equal(decimal.NewFromInt(800)))
}

func (suite *FxServiceTestSuite) TestPost_ZeroRevaluationSkipsEntryKeepsAudit() {
	suite.mockAccountRepo.On("ListForeignCurrencyAccounts", mock.Anything, testTenantID, testCompanyID, "USD").
		Return([]domain.Account{eurAccount(10000)}, nil).Once()
	suite.mockRateSource.On("Rate", mock.Anything, "EUR", "USD").
		Return(decimal.NewFromInt(1), nil).Once()
	suite.mockCloseout.On("SaveRevaluationSnapshot", mock.Anything, mock.MatchedBy(func(s domain.RevaluationSnapshot) bool {
		return s.EntryID == ""
	})).Return(nil).Once()
	suite.mockCloseout.On("AppendRun", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-03"),
		mock.MatchedBy(func(r domain.RunRecord) bool {
			return r.Type == domain.RunFxRevaluation && r.Detail.Posted == 0 && r.Detail.Amount.IsZero()
		})).Return(nil).Once()

	resp, err := suite.service.PostRevaluation(suite.ctx, testTenantID, testCompanyID, "2025-03", testActorID)

	suite.NoError(err)
	suite.Require().NotNil(resp)
	suite.Empty(resp.EntryID)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockCloseout.AssertExpectations(suite.T())
}

func (suite *FxServiceTestSuite) TestHistory_NotFound() {
	suite.mockCloseout.On("FindRevaluationSnapshot", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-03")).
		Return(nil, apperrors.ErrNotFound).Once()

	snapshot, err := suite.service.GetRevaluationHistory(suite.ctx, testTenantID, testCompanyID, "2025-03")

	suite.Nil(snapshot)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestFxServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FxServiceTestSuite))
}
