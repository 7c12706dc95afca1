package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/core/services"
)

type ConsistencyServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockJournalRepo *MockJournalRepository
	mockCloseout    *MockCloseoutStore
	mockCompanySvc  *MockCompanyService
	service         portssvc.ConsistencySvcFacade
	ctx             context.Context
}

func (suite *ConsistencyServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockCloseout = new(MockCloseoutStore)
	suite.mockCompanySvc = new(MockCompanyService)
	suite.service = services.NewConsistencyService(
		suite.mockAccountRepo,
		suite.mockJournalRepo,
		suite.mockCloseout,
		suite.mockCompanySvc,
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

func postedEntry(id string) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:   id,
		TenantID:  testTenantID,
		CompanyID: testCompanyID,
		EntryDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:    domain.Posted,
	}
}

func balancedPair(entryID string) []domain.JournalLine {
	return []domain.JournalLine{
		{LineID: entryID + "-l1", EntryID: entryID, AccountID: "acc-cash", Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
		{LineID: entryID + "-l2", EntryID: entryID, AccountID: "acc-revenue", Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
	}
}

func (suite *ConsistencyServiceTestSuite) TestCheckAccountTypes_FlagsUnknownType() {
	suite.mockAccountRepo.On("ListAccounts", mock.Anything, testTenantID, testCompanyID).
		Return([]domain.Account{
			{AccountID: "acc-1", Name: "Cash", AccountType: domain.Asset, IsActive: true},
			{AccountID: "acc-2", Name: "Mystery", AccountType: domain.AccountType("SLUSH"), IsActive: true},
		}, nil).Once()

	result, err := suite.service.CheckAccountTypes(suite.ctx, testTenantID, testCompanyID)

	suite.NoError(err)
	suite.False(result.IsValid)
	suite.Require().Len(result.Errors, 1)
	suite.Contains(result.Errors[0], "acc-2")
	suite.NotEmpty(result.Suggestions)
}

func (suite *ConsistencyServiceTestSuite) TestCheckEntryBalances_DetectsUnbalancedPosted() {
	bad := postedEntry("entry-bad")
	good := postedEntry("entry-good")
	draft := postedEntry("entry-draft")
	draft.Status = domain.Draft

	badLines := balancedPair("entry-bad")
	badLines[1].Credit = decimal.NewFromInt(90)

	suite.mockJournalRepo.On("ListEntries", mock.Anything, testTenantID, testCompanyID, 200, (*string)(nil)).
		Return([]domain.JournalEntry{bad, good, draft}, nil, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryIDs", mock.Anything, []string{"entry-bad", "entry-good", "entry-draft"}).
		Return(map[string][]domain.JournalLine{
			"entry-bad":  badLines,
			"entry-good": balancedPair("entry-good"),
			// Draft entries are exempt from the balance invariant.
		}, nil).Once()

	result, err := suite.service.CheckEntryBalances(suite.ctx, testTenantID, testCompanyID)

	suite.NoError(err)
	suite.False(result.IsValid)
	suite.Require().Len(result.Errors, 1)
	suite.Contains(result.Errors[0], "entry-bad")
	suite.Contains(result.Errors[0], "10")
}

func (suite *ConsistencyServiceTestSuite) TestCheckEntryBalances_PostedWithoutLines() {
	empty := postedEntry("entry-empty")
	suite.mockJournalRepo.On("ListEntries", mock.Anything, testTenantID, testCompanyID, 200, (*string)(nil)).
		Return([]domain.JournalEntry{empty}, nil, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryIDs", mock.Anything, []string{"entry-empty"}).
		Return(map[string][]domain.JournalLine{}, nil).Once()

	result, err := suite.service.CheckEntryBalances(suite.ctx, testTenantID, testCompanyID)

	suite.NoError(err)
	suite.False(result.IsValid)
	suite.Require().Len(result.Errors, 1)
	suite.Contains(result.Errors[0], "no lines")
}

func (suite *ConsistencyServiceTestSuite) TestCheckOrphanLines() {
	suite.mockJournalRepo.On("FindOrphanLines", mock.Anything, testTenantID, testCompanyID).
		Return([]domain.JournalLine{
			{LineID: "line-x", EntryID: "entry-gone", AccountID: "acc-gone"},
		}, nil).Once()

	result, err := suite.service.CheckOrphanLines(suite.ctx, testTenantID, testCompanyID)

	suite.NoError(err)
	suite.False(result.IsValid)
	suite.Require().Len(result.Errors, 1)
	suite.Contains(result.Errors[0], "line-x")
	suite.NotEmpty(result.Suggestions)
}

func (suite *ConsistencyServiceTestSuite) TestCheckReversalLinks_MissingLink() {
	broken := postedEntry("entry-rev")
	broken.Status = domain.Reversed

	suite.mockJournalRepo.On("ListEntries", mock.Anything, testTenantID, testCompanyID, 200, (*string)(nil)).
		Return([]domain.JournalEntry{broken}, nil, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryIDs", mock.Anything, []string{"entry-rev"}).
		Return(map[string][]domain.JournalLine{}, nil).Once()

	result, err := suite.service.CheckReversalLinks(suite.ctx, testTenantID, testCompanyID)

	suite.NoError(err)
	suite.False(result.IsValid)
	suite.Require().Len(result.Errors, 1)
	suite.Contains(result.Errors[0], "no reversing entry link")
}

func (suite *ConsistencyServiceTestSuite) TestCheckReversalLinks_BackLinkMismatch() {
	reversalID := "entry-reversal"
	reversed := postedEntry("entry-orig")
	reversed.Status = domain.Reversed
	reversed.ReversingEntryID = &reversalID

	someoneElse := "entry-other"
	reversal := postedEntry(reversalID)
	reversal.OriginalEntryID = &someoneElse

	suite.mockJournalRepo.On("ListEntries", mock.Anything, testTenantID, testCompanyID, 200, (*string)(nil)).
		Return([]domain.JournalEntry{reversed}, nil, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryIDs", mock.Anything, []string{"entry-orig"}).
		Return(map[string][]domain.JournalLine{}, nil).Once()
	suite.mockJournalRepo.On("FindEntryByID", mock.Anything, reversalID).
		Return(&reversal, nil).Once()

	result, err := suite.service.CheckReversalLinks(suite.ctx, testTenantID, testCompanyID)

	suite.NoError(err)
	suite.False(result.IsValid)
	suite.Require().Len(result.Errors, 1)
	suite.Contains(result.Errors[0], "does not link back")
}

func (suite *ConsistencyServiceTestSuite) TestCheckReversalLinks_WellFormedPair() {
	reversalID := "entry-reversal"
	originalID := "entry-orig"
	reversed := postedEntry(originalID)
	reversed.Status = domain.Reversed
	reversed.ReversingEntryID = &reversalID

	reversal := postedEntry(reversalID)
	reversal.OriginalEntryID = &originalID

	suite.mockJournalRepo.On("ListEntries", mock.Anything, testTenantID, testCompanyID, 200, (*string)(nil)).
		Return([]domain.JournalEntry{reversed, reversal}, nil, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryIDs", mock.Anything, []string{originalID, reversalID}).
		Return(map[string][]domain.JournalLine{}, nil).Once()
	suite.mockJournalRepo.On("FindEntryByID", mock.Anything, reversalID).
		Return(&reversal, nil).Once()

	result, err := suite.service.CheckReversalLinks(suite.ctx, testTenantID, testCompanyID)

	suite.NoError(err)
	suite.True(result.IsValid)
	suite.Empty(result.Errors)
}

func (suite *ConsistencyServiceTestSuite) TestRunAll_AggregatesAllChecks() {
	suite.mockAccountRepo.On("ListAccounts", mock.Anything, testTenantID, testCompanyID).
		Return([]domain.Account{
			{AccountID: "acc-1", Name: "Cash", AccountType: domain.Asset, IsActive: true},
		}, nil).Once()
	// Entry paging serves both the balance and the reversal-link checks.
	suite.mockJournalRepo.On("ListEntries", mock.Anything, testTenantID, testCompanyID, 200, (*string)(nil)).
		Return([]domain.JournalEntry{postedEntry("entry-1")}, nil, nil).Twice()
	suite.mockJournalRepo.On("FindLinesByEntryIDs", mock.Anything, []string{"entry-1"}).
		Return(map[string][]domain.JournalLine{"entry-1": balancedPair("entry-1")}, nil).Twice()
	suite.mockJournalRepo.On("FindOrphanLines", mock.Anything, testTenantID, testCompanyID).
		Return([]domain.JournalLine{}, nil).Once()
	suite.mockCloseout.On("FindRevaluationSnapshot", mock.Anything, testTenantID, testCompanyID, mock.Anything).
		Return(nil, apperrors.ErrNotFound)

	report, err := suite.service.RunAll(suite.ctx, testTenantID, testCompanyID)

	suite.NoError(err)
	suite.Require().NotNil(report)
	suite.True(report.IsValid)
	suite.Zero(report.ErrorCount)
	suite.Len(report.Results, 5)
}

func (suite *ConsistencyServiceTestSuite) TestRunAll_SnapshotWithMissingEntry() {
	currentPeriod := domain.PeriodOf(time.Now().UTC())

	suite.mockAccountRepo.On("ListAccounts", mock.Anything, testTenantID, testCompanyID).
		Return([]domain.Account{}, nil).Once()
	suite.mockJournalRepo.On("ListEntries", mock.Anything, testTenantID, testCompanyID, 200, (*string)(nil)).
		Return([]domain.JournalEntry{}, nil, nil).Twice()
	suite.mockJournalRepo.On("FindOrphanLines", mock.Anything, testTenantID, testCompanyID).
		Return([]domain.JournalLine{}, nil).Once()
	suite.mockCloseout.On("FindRevaluationSnapshot", mock.Anything, testTenantID, testCompanyID, currentPeriod).
		Return(&domain.RevaluationSnapshot{
			TenantID:  testTenantID,
			CompanyID: testCompanyID,
			Period:    currentPeriod,
			EntryID:   "entry-gone",
		}, nil).Once()
	suite.mockCloseout.On("FindRevaluationSnapshot", mock.Anything, testTenantID, testCompanyID, mock.Anything).
		Return(nil, apperrors.ErrNotFound)
	suite.mockJournalRepo.On("FindEntryByID", mock.Anything, "entry-gone").
		Return(nil, apperrors.ErrNotFound).Once()

	report, err := suite.service.RunAll(suite.ctx, testTenantID, testCompanyID)

	suite.NoError(err)
	suite.Require().NotNil(report)
	suite.False(report.IsValid)
	suite.Equal(1, report.ErrorCount)
}

func TestConsistencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConsistencyServiceTestSuite))
}
