package purchasereqstore

import (
	"procurement-backend/models"
	purchaseapimodels "procurement-backend/models/api/purchase"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (Provider, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewInstance(gormDB), mock
}

func TestCompareAndUpdate(t *testing.T) {
	casQuery := `UPDATE "purchase_requests" SET .* WHERE id = \$\d+ AND status = \$\d+`

	t.Run("status matches", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(casQuery).
			WithArgs(string(models.PRStatusApproved), sqlmock.AnyArg(), "req-1", string(models.PRStatusPending)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		updated, err := store.CompareAndUpdate("req-1", models.PRStatusPending, map[string]interface{}{
			"status": models.PRStatusApproved,
		})
		require.NoError(t, err)
		require.True(t, updated)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status already changed", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(casQuery).
			WillReturnResult(sqlmock.NewResult(0, 0))

		updated, err := store.CompareAndUpdate("req-1", models.PRStatusPending, map[string]interface{}{
			"status": models.PRStatusWithdrawn,
		})
		require.NoError(t, err)
		require.False(t, updated)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty update", func(t *testing.T) {
		store, mock := newMockStore(t)
		_, err := store.CompareAndUpdate("req-1", models.PRStatusPending, map[string]interface{}{})
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "purchase_requests" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))

	rec, err := store.GetByID("missing")
	require.NoError(t, err)
	require.Nil(t, rec)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListCountFilter(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "purchase_requests" WHERE status = \$1 AND LOWER\(department\) = \$2 AND requester_id = \$3`).
		WithArgs(string(models.PRStatusInReview), "it", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := store.ListCount(purchaseapimodels.PrFilter{
		Status:      models.PRStatusInReview,
		Department:  "IT",
		RequesterID: "u-1",
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
