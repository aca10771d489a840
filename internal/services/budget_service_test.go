package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/pkg/logger"
	"hardwarestore/testhelpers"
)

type BudgetServiceTestSuite struct {
	suite.Suite
	db      *testhelpers.TestDB
	service *budgetService
	ctx     context.Context
	now     time.Time
}

func (suite *BudgetServiceTestSuite) SetupTest() {
	suite.db = testhelpers.SetupTestDB(suite.T())
	suite.now = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	suite.service = newBudgetService(suite.db.Store, func() time.Time { return suite.now }, logger.Nop())
	suite.ctx = context.Background()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (suite *BudgetServiceTestSuite) TestCreateAndRead() {
	budget := &models.Budget{Category: " Tools ", Amount: dec("1200"), Period: models.Period{Year: 2024, Month: 4}}
	suite.Require().NoError(suite.service.Create(suite.ctx, budget))

	suite.Equal("Tools", budget.Category)
	suite.Equal("2024-04", budget.Period.String())
	suite.True(budget.Spent.IsZero())

	byPeriod, err := suite.service.ByPeriod(suite.ctx, models.Period{Year: 2024, Month: 4})
	suite.Require().NoError(err)
	suite.Len(byPeriod, 1)

	err = suite.service.Create(suite.ctx, &models.Budget{Category: "Tools", Amount: dec("5"), Period: models.Period{Year: 2024, Month: 4}})
	suite.True(errors.Is(err, common.ErrDuplicateName))
}

func (suite *BudgetServiceTestSuite) TestCreateValidation() {
	cases := []*models.Budget{
		{Category: "", Amount: dec("1"), Period: models.Period{Year: 2024, Month: 1}},
		{Category: "Tools", Amount: dec("-1"), Period: models.Period{Year: 2024, Month: 1}},
		{Category: "Tools", Amount: dec("1")},
	}
	for _, budget := range cases {
		suite.True(errors.Is(suite.service.Create(suite.ctx, budget), common.ErrValidation))
	}
}

func (suite *BudgetServiceTestSuite) TestRecordExpenseWithoutBudgetIsNoop() {
	err := suite.service.RecordExpense(suite.ctx, "Tools", models.Period{Year: 2024, Month: 3}, dec("40"))
	suite.NoError(err)
	suite.Equal(0, testhelpers.CountRows(suite.T(), suite.db, "budget"))
}

func (suite *BudgetServiceTestSuite) TestRecordExpenseMatchesCategoryAndPeriod() {
	march := testhelpers.SetupTestBudget(suite.T(), suite.db, "Tools", "2024-03", "500")
	april := testhelpers.SetupTestBudget(suite.T(), suite.db, "Tools", "2024-04", "500")

	suite.Require().NoError(suite.service.RecordExpense(suite.ctx, "Tools", models.Period{Year: 2024, Month: 3}, dec("120.50")))

	budget, err := suite.service.Get(suite.ctx, march)
	suite.Require().NoError(err)
	suite.True(dec("120.5").Equal(budget.Spent), "spent %s", budget.Spent)

	budget, err = suite.service.Get(suite.ctx, april)
	suite.Require().NoError(err)
	suite.True(budget.Spent.IsZero())
}

func (suite *BudgetServiceTestSuite) TestSpentStaysInWholeCents() {
	id := testhelpers.SetupTestBudget(suite.T(), suite.db, "Fasteners", "2024-03", "1000")
	march := models.Period{Year: 2024, Month: 3}

	suite.Require().NoError(suite.service.RecordExpense(suite.ctx, "Fasteners", march, dec("0.10")))
	suite.Require().NoError(suite.service.RecordExpense(suite.ctx, "Fasteners", march, dec("0.20")))

	budget, err := suite.service.Get(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Equal("0.3", budget.Spent.String())

	summary, err := suite.service.Summary(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal("0.3", summary.TotalSpent.String())
	suite.Equal("999.7", summary.TotalRemaining.String())

	vs, err := suite.service.VsActual(suite.ctx, "Fasteners")
	suite.Require().NoError(err)
	suite.Equal("999.7", vs.Remaining.String())
}

func (suite *BudgetServiceTestSuite) TestExpenseTransactionCountsAgainstCurrentMonth() {
	id := testhelpers.SetupTestBudget(suite.T(), suite.db, "Utilities", "2024-03", "300")

	tx := &models.Transaction{Type: models.TransactionExpense, Amount: dec("75"), Description: "Electric bill", Category: "Utilities"}
	suite.Require().NoError(suite.service.RecordTransaction(suite.ctx, tx))
	suite.NotZero(tx.ID)
	suite.Equal(suite.now, tx.Date)

	income := &models.Transaction{Type: models.TransactionIncome, Amount: dec("90"), Description: "Scrap metal", Category: "Utilities"}
	suite.Require().NoError(suite.service.RecordTransaction(suite.ctx, income))

	budget, err := suite.service.Get(suite.ctx, id)
	suite.Require().NoError(err)
	suite.True(dec("75").Equal(budget.Spent), "spent %s", budget.Spent)

	vs, err := suite.service.VsActual(suite.ctx, "Utilities")
	suite.Require().NoError(err)
	suite.True(vs.HasBudget)
	suite.True(dec("225").Equal(vs.Remaining))
	suite.True(dec("25").Equal(vs.PercentUsed), "percent %s", vs.PercentUsed)

	expenses, err := suite.service.TransactionsByType(suite.ctx, models.TransactionExpense)
	suite.Require().NoError(err)
	suite.Len(expenses, 1)

	all, err := suite.service.Transactions(suite.ctx, 10)
	suite.Require().NoError(err)
	suite.Len(all, 2)
}

func (suite *BudgetServiceTestSuite) TestRecordTransactionValidation() {
	err := suite.service.RecordTransaction(suite.ctx, &models.Transaction{Type: "refund", Amount: dec("1"), Description: "x", Category: "y"})
	suite.True(errors.Is(err, common.ErrValidation))

	err = suite.service.RecordTransaction(suite.ctx, &models.Transaction{Type: models.TransactionIncome, Amount: dec("1"), Description: " ", Category: "y"})
	suite.True(errors.Is(err, common.ErrValidation))

	suite.Equal(0, testhelpers.CountRows(suite.T(), suite.db, "transactions"))
}

func (suite *BudgetServiceTestSuite) TestVsActualWithoutBudget() {
	vs, err := suite.service.VsActual(suite.ctx, "Pumps")
	suite.Require().NoError(err)
	suite.False(vs.HasBudget)
	suite.Equal(models.Period{Year: 2024, Month: 3}, vs.Period)
	suite.True(vs.PercentUsed.IsZero())
}

func (suite *BudgetServiceTestSuite) TestUpdateAndSummary() {
	id := testhelpers.SetupTestBudget(suite.T(), suite.db, "Safety", "2024-03", "100")
	testhelpers.SetupTestBudget(suite.T(), suite.db, "Pumps", "2024-03", "50")

	spent := dec("30")
	budget, err := suite.service.Update(suite.ctx, id, models.BudgetUpdate{Spent: &spent})
	suite.Require().NoError(err)
	suite.True(spent.Equal(budget.Spent))

	summary, err := suite.service.Summary(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(2), summary.BudgetCount)
	suite.True(dec("150").Equal(summary.TotalAllocated))
	suite.True(dec("120").Equal(summary.TotalRemaining))

	_, err = suite.service.Update(suite.ctx, 999, models.BudgetUpdate{Spent: &spent})
	suite.True(errors.Is(err, common.ErrNotFound))
}

func TestBudgetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}
