package services_test

import (
	"context"
	"errors"
	"fmt"
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

const (
	testTenantID  = "tenant-1"
	testCompanyID = "company-1"
	testActorID   = "user-1"
)

type JournalServiceTestSuite struct {
	suite.Suite
	mockEntryRepo     *MockJournalRepository
	mockInventoryRepo *MockInventoryRepository
	mockDirectory     *MockDirectory
	mockCompanySvc    *MockCompanyService
	mockCloseout      *MockCloseoutStore
	service           portssvc.JournalSvcFacade
	ctx               context.Context

	company        *domain.Company
	cashAccount    domain.Account
	revenueAccount domain.Account
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockJournalRepository)
	suite.mockInventoryRepo = new(MockInventoryRepository)
	suite.mockDirectory = new(MockDirectory)
	suite.mockCompanySvc = new(MockCompanyService)
	suite.mockCloseout = new(MockCloseoutStore)
	suite.service = services.NewJournalService(
		suite.mockEntryRepo,
		suite.mockInventoryRepo,
		suite.mockDirectory,
		suite.mockCompanySvc,
		suite.mockCloseout,
		5*time.Second,
	)
	suite.ctx = context.Background()

	suite.company = &domain.Company{
		CompanyID:        testCompanyID,
		TenantID:         testTenantID,
		Name:             "Acme Ltd",
		BaseCurrencyCode: "USD",
		IsActive:         true,
	}
	suite.cashAccount = domain.Account{
		AccountID:   "acc-cash",
		TenantID:    testTenantID,
		CompanyID:   testCompanyID,
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
		IsActive:    true,
	}
	suite.revenueAccount = domain.Account{
		AccountID:   "acc-revenue",
		TenantID:    testTenantID,
		CompanyID:   testCompanyID,
		Code:        "4000",
		Name:        "Revenue",
		AccountType: domain.Revenue,
		IsActive:    true,
	}
}

func (suite *JournalServiceTestSuite) expectCompanyLookup() {
	suite.mockCompanySvc.On("GetCompanyByID", mock.Anything, testTenantID, testCompanyID).
		Return(suite.company, nil).Once()
}

func (suite *JournalServiceTestSuite) expectAccountsLookup() {
	suite.mockDirectory.On("GetAccountsByIDs", mock.Anything, testTenantID, testCompanyID, mock.Anything).
		Return(map[string]domain.Account{
			suite.cashAccount.AccountID:    suite.cashAccount,
			suite.revenueAccount.AccountID: suite.revenueAccount,
		}, nil).Once()
}

func (suite *JournalServiceTestSuite) expectOpenPeriod() {
	suite.mockCloseout.On("GetPeriodState", mock.Anything, testTenantID, testCompanyID, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()
}

func (suite *JournalServiceTestSuite) balancedRequest() dto.PostEntryRequest {
	return dto.PostEntryRequest{
		Date: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Memo: "March services invoice",
		Lines: []dto.EntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromInt(100)},
			{AccountID: suite.revenueAccount.AccountID, Credit: decimal.NewFromInt(100)},
		},
	}
}

func (suite *JournalServiceTestSuite) TestPostEntry_Success() {
	suite.expectCompanyLookup()
	suite.expectAccountsLookup()
	suite.expectOpenPeriod()
	suite.mockEntryRepo.On("SaveEntry",
		mock.Anything,
		mock.MatchedBy(func(e domain.JournalEntry) bool {
			return e.Status == domain.Posted && e.CurrencyCode == "USD" && e.EntryType == "manual"
		}),
		mock.Anything, mock.Anything, mock.Anything,
	).Return(nil).Once()

	entry, err := suite.service.PostEntry(suite.ctx, testTenantID, testCompanyID, suite.balancedRequest(), testActorID)

	suite.NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(domain.Posted, entry.Status)
	suite.Equal("USD", entry.CurrencyCode)
	suite.Len(entry.Lines, 2)
	suite.True(entry.TotalDebits().Equal(entry.TotalCredits()))
	suite.mockEntryRepo.AssertExpectations(suite.T())
	suite.mockCloseout.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostEntry_TransientSaveRetried() {
	suite.expectCompanyLookup()
	suite.expectAccountsLookup()
	suite.expectOpenPeriod()
	transient := fmt.Errorf("insert entry: %w", apperrors.ErrTransient)
	suite.mockEntryRepo.On("SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(transient).Twice()
	suite.mockEntryRepo.On("SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	entry, err := suite.service.PostEntry(suite.ctx, testTenantID, testCompanyID, suite.balancedRequest(), testActorID)

	suite.NoError(err)
	suite.Require().NotNil(entry)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostEntry_TransientSaveGivesUpAfterBoundedAttempts() {
	suite.expectCompanyLookup()
	suite.expectAccountsLookup()
	suite.expectOpenPeriod()
	transient := fmt.Errorf("insert entry: %w", apperrors.ErrTransient)
	suite.mockEntryRepo.On("SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(transient).Times(3)

	entry, err := suite.service.PostEntry(suite.ctx, testTenantID, testCompanyID, suite.balancedRequest(), testActorID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrTransient)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostEntry_UnbalancedRejected() {
	suite.expectCompanyLookup()
	suite.expectAccountsLookup()

	req := suite.balancedRequest()
	req.Lines[1].Credit = decimal.NewFromInt(90)

	entry, err := suite.service.PostEntry(suite.ctx, testTenantID, testCompanyID, req, testActorID)

	suite.Nil(entry)
	var unbalanced *apperrors.UnbalancedError
	suite.Require().ErrorAs(err, &unbalanced)
	suite.True(unbalanced.Delta().Equal(decimal.NewFromInt(10)))
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostEntry_UnbalancedDraftAllowed() {
	suite.expectCompanyLookup()
	suite.expectAccountsLookup()
	suite.mockEntryRepo.On("SaveEntry",
		mock.Anything,
		mock.MatchedBy(func(e domain.JournalEntry) bool { return e.Status == domain.Draft }),
		mock.Anything, mock.Anything, mock.Anything,
	).Return(nil).Once()

	req := suite.balancedRequest()
	req.AsDraft = true
	req.Lines[1].Credit = decimal.NewFromInt(90)

	entry, err := suite.service.PostEntry(suite.ctx, testTenantID, testCompanyID, req, testActorID)

	suite.NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(domain.Draft, entry.Status)
	// Drafts never touch the period guard or the balance columns.
	suite.mockCloseout.AssertNotCalled(suite.T(), "GetPeriodState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostEntry_LockedPeriodRejected() {
	suite.expectCompanyLookup()
	suite.expectAccountsLookup()
	suite.mockCloseout.On("GetPeriodState", mock.Anything, testTenantID, testCompanyID, domain.Period("2025-03")).
		Return(&domain.PeriodState{Status: domain.PeriodLocked, Actor: "controller-1"}, nil).Once()

	entry, err := suite.service.PostEntry(suite.ctx, testTenantID, testCompanyID, suite.balancedRequest(), testActorID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostEntry_SingleLineRejected() {
	suite.expectCompanyLookup()

	req := suite.balancedRequest()
	req.Lines = req.Lines[:1]

	entry, err := suite.service.PostEntry(suite.ctx, testTenantID, testCompanyID, req, testActorID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestPostEntry_NegativeAmountRejected() {
	suite.expectCompanyLookup()

	req := suite.balancedRequest()
	req.Lines[0].Debit = decimal.NewFromInt(-100)

	entry, err := suite.service.PostEntry(suite.ctx, testTenantID, testCompanyID, req, testActorID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestPostEntry_InactiveAccountRejected() {
	suite.expectCompanyLookup()
	inactive := suite.cashAccount
	inactive.IsActive = false
	suite.mockDirectory.On("GetAccountsByIDs", mock.Anything, testTenantID, testCompanyID, mock.Anything).
		Return(map[string]domain.Account{
			inactive.AccountID:             inactive,
			suite.revenueAccount.AccountID: suite.revenueAccount,
		}, nil).Once()

	entry, err := suite.service.PostEntry(suite.ctx, testTenantID, testCompanyID, suite.balancedRequest(), testActorID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestPostEntry_UnknownAccountRejected() {
	suite.expectCompanyLookup()
	suite.mockDirectory.On("GetAccountsByIDs", mock.Anything, testTenantID, testCompanyID, mock.Anything).
		Return(map[string]domain.Account{
			suite.revenueAccount.AccountID: suite.revenueAccount,
		}, nil).Once()

	entry, err := suite.service.PostEntry(suite.ctx, testTenantID, testCompanyID, suite.balancedRequest(), testActorID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) draftEntryFixture() *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:   "entry-1",
		TenantID:  testTenantID,
		CompanyID: testCompanyID,
		EntryDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Memo:      "March services invoice",
		Status:    domain.Draft,
	}
}

func (suite *JournalServiceTestSuite) balancedLinesFixture(entryID string) []domain.JournalLine {
	return []domain.JournalLine{
		{LineID: "line-1", EntryID: entryID, AccountID: suite.cashAccount.AccountID, Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
		{LineID: "line-2", EntryID: entryID, AccountID: suite.revenueAccount.AccountID, Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
	}
}

func (suite *JournalServiceTestSuite) TestPostDraft_Success() {
	draft := suite.draftEntryFixture()
	suite.mockEntryRepo.On("FindEntryByID", mock.Anything, draft.EntryID).Return(draft, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", mock.Anything, draft.EntryID).
		Return(suite.balancedLinesFixture(draft.EntryID), nil).Once()
	suite.expectOpenPeriod()
	suite.expectAccountsLookup()
	suite.mockEntryRepo.On("MarkEntryPosted", mock.Anything, draft.EntryID, mock.Anything, testActorID, mock.Anything).
		Return(nil).Once()

	entry, err := suite.service.PostDraft(suite.ctx, testTenantID, testCompanyID, draft.EntryID, testActorID)

	suite.NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(domain.Posted, entry.Status)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostDraft_AlreadyPostedConflict() {
	posted := suite.draftEntryFixture()
	posted.Status = domain.Posted
	suite.mockEntryRepo.On("FindEntryByID", mock.Anything, posted.EntryID).Return(posted, nil).Once()

	entry, err := suite.service.PostDraft(suite.ctx, testTenantID, testCompanyID, posted.EntryID, testActorID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *JournalServiceTestSuite) TestPostDraft_NoLines() {
	draft := suite.draftEntryFixture()
	suite.mockEntryRepo.On("FindEntryByID", mock.Anything, draft.EntryID).Return(draft, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", mock.Anything, draft.EntryID).
		Return([]domain.JournalLine{}, nil).Once()

	entry, err := suite.service.PostDraft(suite.ctx, testTenantID, testCompanyID, draft.EntryID, testActorID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrNoLines)
}

func (suite *JournalServiceTestSuite) TestPostDraft_WrongCompanyHidden() {
	draft := suite.draftEntryFixture()
	draft.CompanyID = "someone-elses-company"
	suite.mockEntryRepo.On("FindEntryByID", mock.Anything, draft.EntryID).Return(draft, nil).Once()

	entry, err := suite.service.PostDraft(suite.ctx, testTenantID, testCompanyID, draft.EntryID, testActorID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestReverseEntry_Success() {
	original := suite.draftEntryFixture()
	original.Status = domain.Posted
	original.Memo = "March rent"
	suite.mockEntryRepo.On("FindEntryByID", mock.Anything, original.EntryID).Return(original, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", mock.Anything, original.EntryID).
		Return(suite.balancedLinesFixture(original.EntryID), nil).Once()
	suite.expectOpenPeriod()
	suite.expectAccountsLookup()
	suite.mockEntryRepo.On("SaveReversal",
		mock.Anything,
		mock.MatchedBy(func(e domain.JournalEntry) bool {
			return e.Status == domain.Posted &&
				e.Reference == "REV-"+original.EntryID &&
				e.Memo == "Reversal: March rent" &&
				e.OriginalEntryID != nil && *e.OriginalEntryID == original.EntryID
		}),
		mock.Anything, mock.Anything, original.EntryID, testActorID, mock.Anything,
	).Return(nil).Once()

	reversal, err := suite.service.ReverseEntry(suite.ctx, testTenantID, testCompanyID, original.EntryID, testActorID)

	suite.NoError(err)
	suite.Require().NotNil(reversal)
	suite.Require().Len(reversal.Lines, 2)
	// Debit and credit swap per line.
	suite.True(reversal.Lines[0].Credit.Equal(decimal.NewFromInt(100)))
	suite.True(reversal.Lines[0].Debit.IsZero())
	suite.True(reversal.Lines[1].Debit.Equal(decimal.NewFromInt(100)))
	suite.True(reversal.Lines[1].Credit.IsZero())
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestReverseEntry_SaveFailureLeavesNoPartialState() {
	original := suite.draftEntryFixture()
	original.Status = domain.Posted
	suite.mockEntryRepo.On("FindEntryByID", mock.Anything, original.EntryID).Return(original, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", mock.Anything, original.EntryID).
		Return(suite.balancedLinesFixture(original.EntryID), nil).Once()
	suite.expectOpenPeriod()
	suite.expectAccountsLookup()
	suite.mockEntryRepo.On("SaveReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, original.EntryID, testActorID, mock.Anything).
		Return(errors.New("connection reset")).Once()

	reversal, err := suite.service.ReverseEntry(suite.ctx, testTenantID, testCompanyID, original.EntryID, testActorID)

	suite.Nil(reversal)
	suite.Error(err)
	// The reversal insert and the status flip share one repository call, so a
	// failure cannot commit the reversal while the original stays POSTED.
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestReverseEntry_DraftConflict() {
	draft := suite.draftEntryFixture()
	suite.mockEntryRepo.On("FindEntryByID", mock.Anything, draft.EntryID).Return(draft, nil).Once()

	reversal, err := suite.service.ReverseEntry(suite.ctx, testTenantID, testCompanyID, draft.EntryID, testActorID)

	suite.Nil(reversal)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *JournalServiceTestSuite) TestReverseEntry_ReversalOfReversalRejected() {
	originalID := "entry-0"
	reversalEntry := suite.draftEntryFixture()
	reversalEntry.Status = domain.Posted
	reversalEntry.OriginalEntryID = &originalID
	suite.mockEntryRepo.On("FindEntryByID", mock.Anything, reversalEntry.EntryID).Return(reversalEntry, nil).Once()

	reversal, err := suite.service.ReverseEntry(suite.ctx, testTenantID, testCompanyID, reversalEntry.EntryID, testActorID)

	suite.Nil(reversal)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *JournalServiceTestSuite) TestReplaceDraftLines_PostedImmutable() {
	posted := suite.draftEntryFixture()
	posted.Status = domain.Posted
	suite.mockEntryRepo.On("FindEntryByID", mock.Anything, posted.EntryID).Return(posted, nil).Once()

	req := dto.ReplaceLinesRequest{Lines: suite.balancedRequest().Lines}
	entry, err := suite.service.ReplaceDraftLines(suite.ctx, testTenantID, testCompanyID, posted.EntryID, req, testActorID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrImmutable)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "ReplaceDraftLines", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestReplaceDraftLines_Success() {
	draft := suite.draftEntryFixture()
	suite.mockEntryRepo.On("FindEntryByID", mock.Anything, draft.EntryID).Return(draft, nil).Once()
	suite.expectAccountsLookup()
	suite.mockEntryRepo.On("ReplaceDraftLines", mock.Anything, draft.EntryID, mock.Anything).Return(nil).Once()

	req := dto.ReplaceLinesRequest{Lines: suite.balancedRequest().Lines}
	entry, err := suite.service.ReplaceDraftLines(suite.ctx, testTenantID, testCompanyID, draft.EntryID, req, testActorID)

	suite.NoError(err)
	suite.Require().NotNil(entry)
	suite.Len(entry.Lines, 2)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) resolveFixture(role domain.AccountRole, accountID string, accountType domain.AccountType) {
	suite.mockDirectory.On("Resolve", mock.Anything, testTenantID, testCompanyID, role, testActorID).
		Return(&domain.Account{
			AccountID:   accountID,
			TenantID:    testTenantID,
			CompanyID:   testCompanyID,
			AccountType: accountType,
			IsActive:    true,
		}, nil).Once()
}

func (suite *JournalServiceTestSuite) TestPostSale_Success() {
	suite.expectCompanyLookup()
	suite.expectOpenPeriod()
	suite.resolveFixture(domain.RoleCash, "acc-cash", domain.Asset)
	suite.resolveFixture(domain.RoleRevenue, "acc-revenue", domain.Revenue)
	suite.resolveFixture(domain.RoleSalesDiscounts, "acc-discounts", domain.Revenue)
	suite.resolveFixture(domain.RoleTaxPayable, "acc-tax", domain.Liability)
	suite.resolveFixture(domain.RoleCOGS, "acc-cogs", domain.Expense)
	suite.resolveFixture(domain.RoleInventory, "acc-inventory", domain.Asset)
	suite.mockInventoryRepo.On("FindProductByID", mock.Anything, "prod-1").
		Return(&domain.Product{ProductID: "prod-1", SKU: "SKU-1"}, nil).Once()

	var savedMovements []domain.InventoryMovement
	suite.mockEntryRepo.On("SaveEntry",
		mock.Anything,
		mock.MatchedBy(func(e domain.JournalEntry) bool {
			return e.EntryType == "sale" && e.Status == domain.Posted
		}),
		mock.Anything, mock.Anything, mock.Anything,
	).Run(func(args mock.Arguments) {
		savedMovements = args.Get(4).([]domain.InventoryMovement)
	}).Return(nil).Once()

	req := dto.PostSaleRequest{
		Date:     time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Subtotal: decimal.NewFromInt(150),
		Discount: decimal.NewFromInt(5),
		Tax:      decimal.NewFromInt(20),
		CostLines: []dto.SaleCostLine{
			{ProductID: "prod-1", CostPrice: decimal.NewFromInt(10), Quantity: decimal.NewFromInt(2)},
		},
	}

	entry, err := suite.service.PostSale(suite.ctx, testTenantID, testCompanyID, req, testActorID)

	suite.NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal("Cash sale", entry.Memo)
	// cash, revenue, discount, tax, cogs, inventory
	suite.Len(entry.Lines, 6)
	suite.True(entry.TotalDebits().Equal(entry.TotalCredits()))
	// Cash leg carries subtotal - discount + tax.
	suite.True(entry.Lines[0].Debit.Equal(decimal.NewFromInt(165)))
	suite.Require().Len(savedMovements, 1)
	suite.Equal("prod-1", savedMovements[0].ProductID)
	suite.True(savedMovements[0].QuantityDelta.Equal(decimal.NewFromInt(-2)))
	suite.Equal("sale", savedMovements[0].Reason)
	suite.mockEntryRepo.AssertExpectations(suite.T())
	suite.mockDirectory.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostSale_DiscountTaxAndCogsShape() {
	suite.expectCompanyLookup()
	suite.expectOpenPeriod()
	suite.resolveFixture(domain.RoleCash, "acc-cash", domain.Asset)
	suite.resolveFixture(domain.RoleRevenue, "acc-revenue", domain.Revenue)
	suite.resolveFixture(domain.RoleSalesDiscounts, "acc-discounts", domain.Revenue)
	suite.resolveFixture(domain.RoleTaxPayable, "acc-tax", domain.Liability)
	suite.resolveFixture(domain.RoleCOGS, "acc-cogs", domain.Expense)
	suite.resolveFixture(domain.RoleInventory, "acc-inventory", domain.Asset)
	suite.mockInventoryRepo.On("FindProductByID", mock.Anything, "prod-1").
		Return(&domain.Product{ProductID: "prod-1", SKU: "SKU-1"}, nil).Once()
	suite.mockEntryRepo.On("SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	req := dto.PostSaleRequest{
		Date:     time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Subtotal: decimal.NewFromInt(10000),
		Discount: decimal.NewFromInt(1000),
		Tax:      decimal.NewFromInt(1500),
		CostLines: []dto.SaleCostLine{
			{ProductID: "prod-1", CostPrice: decimal.NewFromInt(5000), Quantity: decimal.NewFromInt(1)},
		},
	}

	entry, err := suite.service.PostSale(suite.ctx, testTenantID, testCompanyID, req, testActorID)

	suite.NoError(err)
	suite.Require().NotNil(entry)
	suite.Require().Len(entry.Lines, 6)
	// Debit Cash 10500; Credit Revenue 10000; Debit Sales Discounts 1000;
	// Credit Tax Payable 1500; Debit COGS 5000; Credit Inventory 5000.
	suite.Equal("acc-cash", entry.Lines[0].AccountID)
	suite.True(entry.Lines[0].Debit.Equal(decimal.NewFromInt(10500)))
	suite.Equal("acc-revenue", entry.Lines[1].AccountID)
	suite.True(entry.Lines[1].Credit.Equal(decimal.NewFromInt(10000)))
	suite.Equal("acc-discounts", entry.Lines[2].AccountID)
	suite.True(entry.Lines[2].Debit.Equal(decimal.NewFromInt(1000)))
	suite.Equal("acc-tax", entry.Lines[3].AccountID)
	suite.True(entry.Lines[3].Credit.Equal(decimal.NewFromInt(1500)))
	suite.Equal("acc-cogs", entry.Lines[4].AccountID)
	suite.True(entry.Lines[4].Debit.Equal(decimal.NewFromInt(5000)))
	suite.Equal("acc-inventory", entry.Lines[5].AccountID)
	suite.True(entry.Lines[5].Credit.Equal(decimal.NewFromInt(5000)))
	suite.True(entry.TotalDebits().Equal(decimal.NewFromInt(16500)))
	suite.True(entry.TotalCredits().Equal(decimal.NewFromInt(16500)))
}

func (suite *JournalServiceTestSuite) TestPostSale_NonPositiveSubtotalRejected() {
	suite.expectCompanyLookup()

	req := dto.PostSaleRequest{
		Date:     time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Subtotal: decimal.Zero,
	}

	entry, err := suite.service.PostSale(suite.ctx, testTenantID, testCompanyID, req, testActorID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestGetEntryByID_LoadsLines() {
	entryFixture := suite.draftEntryFixture()
	suite.mockEntryRepo.On("FindEntryByID", mock.Anything, entryFixture.EntryID).Return(entryFixture, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", mock.Anything, entryFixture.EntryID).
		Return(suite.balancedLinesFixture(entryFixture.EntryID), nil).Once()

	entry, err := suite.service.GetEntryByID(suite.ctx, testTenantID, testCompanyID, entryFixture.EntryID)

	suite.NoError(err)
	suite.Require().NotNil(entry)
	suite.Len(entry.Lines, 2)
}

func (suite *JournalServiceTestSuite) TestListEntries_DefaultLimit() {
	suite.expectCompanyLookup()
	suite.mockEntryRepo.On("ListEntries", mock.Anything, testTenantID, testCompanyID, 20, (*string)(nil)).
		Return([]domain.JournalEntry{*suite.draftEntryFixture()}, nil, nil).Once()

	page, err := suite.service.ListEntries(suite.ctx, testTenantID, testCompanyID, dto.ListEntriesParams{})

	suite.NoError(err)
	suite.Require().NotNil(page)
	suite.Len(page.Entries, 1)
	suite.Nil(page.NextToken)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestListEntries_RepositoryError() {
	suite.expectCompanyLookup()
	suite.mockEntryRepo.On("ListEntries", mock.Anything, testTenantID, testCompanyID, 20, (*string)(nil)).
		Return(nil, nil, errors.New("db down")).Once()

	page, err := suite.service.ListEntries(suite.ctx, testTenantID, testCompanyID, dto.ListEntriesParams{})

	suite.Nil(page)
	suite.Error(err)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
