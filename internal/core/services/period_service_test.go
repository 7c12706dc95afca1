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

type PeriodServiceTestSuite struct {
	suite.Suite
	mockCloseout   *MockCloseoutStore
	mockJournalSvc *MockJournalService
	mockCompanySvc *MockCompanyService
	service        portssvc.PeriodSvcFacade
	ctx            context.Context
}

func (suite *PeriodServiceTestSuite) SetupTest() {
	suite.mockCloseout = new(MockCloseoutStore)
	suite.mockJournalSvc = new(MockJournalService)
	suite.mockCompanySvc = new(MockCompanyService)
	suite.service = services.NewPeriodService(suite.mockCloseout, suite.mockJournalSvc, suite.mockCompanySvc)
	suite.ctx = context.Background()

	suite.mockCompanySvc.On("GetCompanyByID", mock.Anything, testTenantID, testCompanyID).
		Return(&domain.Company{
			CompanyID:        testCompanyID,
			TenantID:         testTenantID,
			BaseCurrencyCode: "USD",
			IsActive:         true,
		}, nil).Maybe()
}

func (suite *PeriodServiceTestSuite) closedState() *domain.PeriodState {
	return &domain.PeriodState{Status: domain.PeriodClosed, Actor: "controller-1", UpdatedAt: time.Now().UTC()}
}

func (suite *PeriodServiceTestSuite) TestGetStatus_AbsentMeansOpen() {
	suite.mockCloseout.On("GetPeriodState", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-05")).
		Return(nil, apperrors.ErrNotFound).Once()

	state, err := suite.service.GetStatus(suite.ctx, testTenantID, testCompanyID, "2025-05")

	suite.NoError(err)
	suite.Equal(domain.PeriodOpen, state.Status)
}

func (suite *PeriodServiceTestSuite) TestLock_StoresAttributedState() {
	suite.mockCloseout.On("SetPeriodState", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-05"),
		mock.MatchedBy(func(s domain.PeriodState) bool {
			return s.Status == domain.PeriodLocked && s.Actor == testActorID && !s.UpdatedAt.IsZero()
		})).Return(nil).Once()

	state, err := suite.service.Lock(suite.ctx, testTenantID, testCompanyID, "2025-05", testActorID)

	suite.NoError(err)
	suite.Equal(domain.PeriodLocked, state.Status)
	suite.Equal(testActorID, state.Actor)
	suite.mockCloseout.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestUnlock_ReopensClosedPeriod() {
	suite.mockCloseout.On("SetPeriodState", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-05"),
		mock.MatchedBy(func(s domain.PeriodState) bool { return s.Status == domain.PeriodOpen })).
		Return(nil).Once()

	state, err := suite.service.Unlock(suite.ctx, testTenantID, testCompanyID, "2025-05", testActorID)

	suite.NoError(err)
	suite.Equal(domain.PeriodOpen, state.Status)
}

func (suite *PeriodServiceTestSuite) TestCompleteClose() {
	suite.mockCloseout.On("SetPeriodState", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-05"),
		mock.MatchedBy(func(s domain.PeriodState) bool { return s.Status == domain.PeriodClosed })).
		Return(nil).Once()

	state, err := suite.service.CompleteClose(suite.ctx, testTenantID, testCompanyID, "2025-05", testActorID)

	suite.NoError(err)
	suite.Equal(domain.PeriodClosed, state.Status)
}

func adjustmentRequest() dto.PriorPeriodAdjustmentRequest {
	return dto.PriorPeriodAdjustmentRequest{
		Description: "Missed accrual for January",
		Lines: []dto.AdjustmentLineRequest{
			{AccountID: "acc-expense", Debit: decimal.NewFromInt(250)},
			{AccountID: "acc-payable", Credit: decimal.NewFromInt(250)},
		},
	}
}

func (suite *PeriodServiceTestSuite) TestAdjustment_OpenSourceRejected() {
	suite.mockCloseout.On("GetPeriodState", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-01")).
		Return(nil, apperrors.ErrNotFound).Once()

	resp, err := suite.service.PostPriorPeriodAdjustment(suite.ctx, testTenantID, testCompanyID, "2025-01", adjustmentRequest(), testActorID)

	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestAdjustment_RedirectsPastClosedMonths() {
	// January is closed, February is closed too, March has no stored state.
	suite.mockCloseout.On("GetPeriodState", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-01")).
		Return(suite.closedState(), nil).Once()
	suite.mockCloseout.On("GetPeriodState", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-02")).
		Return(suite.closedState(), nil).Once()
	suite.mockCloseout.On("GetPeriodState", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-03")).
		Return(nil, apperrors.ErrNotFound).Once()

	marchStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	suite.mockJournalSvc.On("PostEntry", mock.Anything, testTenantID, testCompanyID,
		mock.MatchedBy(func(req dto.PostEntryRequest) bool {
			return req.Date.Equal(marchStart) &&
				req.Reference == "ADJ-2025-01" &&
				req.EntryType == "adjustment" &&
				len(req.Lines) == 2
		}), testActorID).
		Return(&domain.JournalEntry{EntryID: "entry-adj", Status: domain.Posted}, nil).Once()

	// The audit record lands in the source period's run ledger.
	suite.mockCloseout.On("AppendRun", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-01"),
		mock.MatchedBy(func(r domain.RunRecord) bool {
			return r.Type == domain.RunAdjustment &&
				r.Detail.EntryID == "entry-adj" &&
				r.Detail.PostedInto == domain.Period("2025-03") &&
				r.Detail.Amount.Equal(decimal.NewFromInt(250))
		})).Return(nil).Once()

	resp, err := suite.service.PostPriorPeriodAdjustment(suite.ctx, testTenantID, testCompanyID, "2025-01", adjustmentRequest(), testActorID)

	suite.NoError(err)
	suite.Require().NotNil(resp)
	suite.Equal("entry-adj", resp.EntryID)
	suite.Equal("2025-01", resp.SourcePeriod)
	suite.Equal("2025-03", resp.PostedInto)
	suite.True(resp.Amount.Equal(decimal.NewFromInt(250)))
	suite.mockCloseout.AssertExpectations(suite.T())
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestAdjustment_NoOpenPeriodWithinWalk() {
	// Source and every following month are closed.
	suite.mockCloseout.On("GetPeriodState", mock.Anything, testTenantID, testCompanyID, mock.Anything).
		Return(suite.closedState(), nil)

	resp, err := suite.service.PostPriorPeriodAdjustment(suite.ctx, testTenantID, testCompanyID, "2025-01", adjustmentRequest(), testActorID)

	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestAdjustment_RunAppendFailureReported() {
	suite.mockCloseout.On("GetPeriodState", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-01")).
		Return(suite.closedState(), nil).Once()
	suite.mockCloseout.On("GetPeriodState", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-02")).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockJournalSvc.On("PostEntry", mock.Anything, testTenantID, testCompanyID, mock.Anything, testActorID).
		Return(&domain.JournalEntry{EntryID: "entry-adj", Status: domain.Posted}, nil).Once()
	suite.mockCloseout.On("AppendRun", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-01"), mock.Anything).
		Return(errors.New("redis down")).Once()

	resp, err := suite.service.PostPriorPeriodAdjustment(suite.ctx, testTenantID, testCompanyID, "2025-01", adjustmentRequest(), testActorID)

	suite.Nil(resp)
	suite.Error(err)
	suite.Contains(err.Error(), "entry-adj")
}

func TestPeriodServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PeriodServiceTestSuite))
}
