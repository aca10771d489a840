package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

func TestCreateSaleSurfacesRecountFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	quantityQuery := regexp.QuoteMeta(`SELECT quantity FROM inventory WHERE id = $1`)

	mock.ExpectBegin()
	mock.ExpectQuery(quantityQuery).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(5))
	mock.ExpectQuery(`INSERT INTO sales`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))
	// another checkout took the stock between the read and the guarded write
	mock.ExpectExec(`UPDATE inventory`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(quantityQuery).
		WithArgs(int64(3)).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	service := NewSaleService(database.NewPostgresStore(mock), nil, logger.Nop())
	_, err = service.Create(context.Background(), models.NewSale{
		ItemID:       3,
		Quantity:     2,
		UnitPrice:    decimal.RequireFromString("4.00"),
		CustomerName: "Ann Builder",
	})

	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrInsufficientStock))
	be, ok := database.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, database.BackendPostgres, be.Backend)
	assert.NoError(t, mock.ExpectationsWereMet())
}
