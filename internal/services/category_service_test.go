package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/pkg/logger"
	"hardwarestore/testhelpers"
)

type CategoryServiceTestSuite struct {
	suite.Suite
	db      *testhelpers.TestDB
	service CategoryService
	ctx     context.Context
}

func (suite *CategoryServiceTestSuite) SetupTest() {
	suite.db = testhelpers.SetupTestDB(suite.T())
	suite.service = NewCategoryService(suite.db.Store, logger.Nop())
	suite.ctx = context.Background()
}

func (suite *CategoryServiceTestSuite) TestCreateTrimsName() {
	category := &models.Category{Name: "  Garden  ", Description: testhelpers.StringPtr(" ")}
	suite.Require().NoError(suite.service.Create(suite.ctx, category))

	suite.NotZero(category.ID)
	suite.Equal("Garden", category.Name)
	suite.Nil(category.Description)
}

func (suite *CategoryServiceTestSuite) TestCreateRejectsDuplicateIgnoringCase() {
	err := suite.service.Create(suite.ctx, &models.Category{Name: " tools "})
	suite.True(errors.Is(err, common.ErrDuplicateName))

	err = suite.service.Create(suite.ctx, &models.Category{Name: ""})
	suite.True(errors.Is(err, common.ErrValidation))
}

func (suite *CategoryServiceTestSuite) TestUpdateKeepsOwnName() {
	id := testhelpers.SetupTestCategory(suite.T(), suite.db, "Paint")

	updated, err := suite.service.Update(suite.ctx, id, models.CategoryUpdate{
		Name:        testhelpers.StringPtr("PAINT"),
		Description: testhelpers.StringPtr("Interior and exterior"),
	})
	suite.Require().NoError(err)
	suite.Equal("PAINT", updated.Name)
	suite.Require().NotNil(updated.Description)
	suite.Equal("Interior and exterior", *updated.Description)

	_, err = suite.service.Update(suite.ctx, id, models.CategoryUpdate{Name: testhelpers.StringPtr("Valves")})
	suite.True(errors.Is(err, common.ErrDuplicateName))
}

func (suite *CategoryServiceTestSuite) TestDeleteRefusedWhileItemsReferenceIt() {
	id := testhelpers.SetupTestCategory(suite.T(), suite.db, "Lumber")
	testhelpers.SetupTestItem(suite.T(), suite.db, testhelpers.ItemFixture{Name: "2x4 Stud", CategoryID: &id, Quantity: 50})

	err := suite.service.Delete(suite.ctx, id)
	suite.True(errors.Is(err, common.ErrInUse))
	suite.Require().NotNil(common.AsError(err))
	suite.Equal("1", common.AsError(err).Details["references"])

	_, err = suite.service.Get(suite.ctx, id)
	suite.NoError(err)
}

func (suite *CategoryServiceTestSuite) TestDelete() {
	id := testhelpers.SetupTestCategory(suite.T(), suite.db, "Seasonal")
	suite.Require().NoError(suite.service.Delete(suite.ctx, id))

	_, err := suite.service.Get(suite.ctx, id)
	suite.True(errors.Is(err, common.ErrNotFound))

	err = suite.service.Delete(suite.ctx, id)
	suite.True(errors.Is(err, common.ErrNotFound))
}

func (suite *CategoryServiceTestSuite) TestListIncludesSeededCategories() {
	categories, err := suite.service.List(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(categories, 9)
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}
