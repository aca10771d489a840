package services

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/pkg/logger"
	"hardwarestore/testhelpers"
)

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, objectName, reader, size, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

func (m *MockObjectStorage) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type BackupServiceTestSuite struct {
	suite.Suite
	db      *testhelpers.TestDB
	storage *MockObjectStorage
	service *backupService
	ctx     context.Context
}

func (suite *BackupServiceTestSuite) SetupTest() {
	suite.db = testhelpers.SetupTestDB(suite.T())
	suite.storage = new(MockObjectStorage)
	now := time.Date(2024, time.May, 2, 8, 30, 0, 0, time.UTC)
	suite.service = newBackupService(suite.db.Store, suite.storage, func() time.Time { return now }, logger.Nop())
	suite.ctx = context.Background()

	category := testhelpers.SetupTestCategory(suite.T(), suite.db, "Lumber")
	staff := testhelpers.SetupTestStaff(suite.T(), suite.db, "Pat")
	item := testhelpers.SetupTestItem(suite.T(), suite.db, testhelpers.ItemFixture{
		Name:       "Plywood Sheet",
		CategoryID: &category,
		SKU:        testhelpers.StringPtr("LUM-1"),
		Quantity:   12,
	})
	_, err := suite.db.Store.Run(suite.ctx, `
		INSERT INTO sales (item_id, quantity, unit_price, total_price, customer_name, staff_id)
		VALUES (?, 2, 30, 60, 'Sam', ?)`, item, staff)
	suite.Require().NoError(err)
	testhelpers.SetupTestBudget(suite.T(), suite.db, "Lumber", "2024-05", "800")
}

func (suite *BackupServiceTestSuite) TestSnapshotRestoreRoundTrip() {
	before, err := suite.service.Info(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(10), before.Tables["categories"])
	suite.Equal(int64(1), before.Tables["sales"])

	backup, err := suite.service.Snapshot(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(models.BackupVersion, backup.Version)
	suite.Equal("sqlite", backup.Source)

	// diverge from the snapshot before restoring it
	_, err = suite.db.Store.Run(suite.ctx, `DELETE FROM sales`)
	suite.Require().NoError(err)
	testhelpers.SetupTestItem(suite.T(), suite.db, testhelpers.ItemFixture{Name: "Extra", Quantity: 1})

	report, err := suite.service.Restore(suite.ctx, backup)
	suite.Require().NoError(err)
	suite.Equal(1, report.Restored["sales"])
	suite.Empty(report.Failed)

	after, err := suite.service.Info(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(before.Tables, after.Tables)

	restored, err := NewSaleService(suite.db.Store, nil, logger.Nop()).Get(suite.ctx, backup.Data.Sales[0].ID)
	suite.Require().NoError(err)
	suite.Equal("Sam", restored.CustomerName)
	suite.Require().NotNil(restored.StaffName)
	suite.Equal("Pat", *restored.StaffName)
}

func (suite *BackupServiceTestSuite) TestRestoreCountsFailedRecords() {
	backup, err := suite.service.Snapshot(suite.ctx)
	suite.Require().NoError(err)
	// a sale pointing at an item that is not in the backup
	orphan := *backup.Data.Sales[0]
	orphan.ID = 500
	orphan.ItemID = 999
	backup.Data.Sales = append(backup.Data.Sales, &orphan)

	report, err := suite.service.Restore(suite.ctx, backup)
	suite.Error(err)
	suite.Equal(1, report.Restored["sales"])
	suite.Equal(1, report.Failed["sales"])
	suite.Equal(1, testhelpers.CountRows(suite.T(), suite.db, "sales"))
}

func (suite *BackupServiceTestSuite) TestRestoreRejectsUnknownVersion() {
	_, err := suite.service.Restore(suite.ctx, &models.Backup{Version: "9.9"})
	suite.True(errors.Is(err, common.ErrValidation))
	suite.Equal(1, testhelpers.CountRows(suite.T(), suite.db, "sales"))
}

func (suite *BackupServiceTestSuite) TestUploadWritesSnapshot() {
	suite.storage.On("EnsureBucketExists", mock.Anything).Return(nil)
	suite.storage.On("Upload", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.AnythingOfType("int64"), "application/json").
		Return(nil)

	name, err := suite.service.Upload(suite.ctx)
	suite.Require().NoError(err)
	suite.Regexp(regexp.MustCompile(`^backups/hardware_store_backup_20240502_083000_[0-9a-f]{8}\.json$`), name)
	suite.storage.AssertExpectations(suite.T())
}

func (suite *BackupServiceTestSuite) TestUploadStopsWhenBucketUnavailable() {
	suite.storage.On("EnsureBucketExists", mock.Anything).Return(errors.New("access denied"))

	_, err := suite.service.Upload(suite.ctx)
	suite.Error(err)
	suite.storage.AssertNotCalled(suite.T(), "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBackupServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BackupServiceTestSuite))
}

func TestUploadWithoutStorage(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	service := NewBackupService(db.Store, nil, logger.Nop())

	_, err := service.Upload(context.Background())
	assert.Error(t, err)
}
