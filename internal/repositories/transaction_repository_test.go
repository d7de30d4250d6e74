package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmsportal/internal/models/db_models"
	"pmsportal/internal/testutil"
	"pmsportal/pkg/utils"
)

func TestTransactionRepository_FindByIdentifier(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	testutil.SeedSIP(t, db, "SIP_1", "C100", db_models.StatusActive)
	testutil.SeedOrder(t, db, "ORD_1", "C100", db_models.StatusActive)

	for _, id := range []string{"SIP_1", "cf_SIP_1", "sess_SIP_1"} {
		txn, err := repo.FindByIdentifier(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, txn, id)
		assert.Equal(t, "SIP_1", txn.OrderID)
	}

	txn, err := repo.FindByIdentifier(ctx, "cf_ORD_1")
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, "ORD_1", txn.OrderID)

	txn, err = repo.FindByIdentifier(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, txn)
}

func TestTransactionRepository_FindByOrderAndAccount(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	testutil.SeedSIP(t, db, "SIP_1", "C100", db_models.StatusActive)

	txn, err := repo.FindByOrderAndAccount(ctx, "SIP_1", "C100")
	require.NoError(t, err)
	require.NotNil(t, txn)

	txn, err = repo.FindByOrderAndAccount(ctx, "SIP_1", "C200")
	require.NoError(t, err)
	assert.Nil(t, txn)
}

func TestTransactionRepository_SearchLike(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepository(db)
	testutil.SeedOrder(t, db, "ORD_1700000000_abcd1234", "C100", db_models.StatusPaid)

	rows, err := repo.SearchLike(context.Background(), "abcd", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ORD_1700000000_abcd1234", rows[0].OrderID)
}

func TestTransactionRepository_SearchLike_WildcardsAreLiteral(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	testutil.SeedOrder(t, db, "ORD_A1", "C100", db_models.StatusPaid)
	testutil.SeedOrder(t, db, "ORDXA1", "C100", db_models.StatusPaid)

	rows, err := repo.SearchLike(ctx, "D_A", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ORD_A1", rows[0].OrderID)

	rows, err = repo.SearchLike(ctx, "%", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTransactionRepository_ListByAccount_Filters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	testutil.SeedSIP(t, db, "SIP_1", "C100", db_models.StatusActive)
	testutil.SeedSIP(t, db, "SIP_2", "C100", db_models.StatusCancelled)
	testutil.SeedOrder(t, db, "ORD_1", "C100", db_models.StatusPaid)
	testutil.SeedOrder(t, db, "ORD_2", "C200", db_models.StatusActive)
	unsynced := testutil.SeedSIP(t, db, "SIP_3", "C100", db_models.StatusInitialized)
	require.NoError(t, db.Model(unsynced).Update("cf_subscription_id", nil).Error)

	all, err := repo.ListByAccount(ctx, "C100", TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	open, err := repo.ListByAccount(ctx, "C100", TransactionFilter{
		ExcludeStatus: []db_models.PaymentStatus{db_models.StatusPaid, db_models.StatusCancelled},
	})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	sips, err := repo.ListByAccount(ctx, "C100", TransactionFilter{
		Types:    []db_models.PaymentType{db_models.PaymentTypeSIP},
		Statuses: []db_models.PaymentStatus{db_models.StatusActive},
	})
	require.NoError(t, err)
	require.Len(t, sips, 1)
	assert.Equal(t, "SIP_1", sips[0].OrderID)

	missing, err := repo.ListByAccount(ctx, "C100", TransactionFilter{MissingGateway: true})
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "SIP_3", missing[0].OrderID)
}

func TestTransactionRepository_ListOpenAccounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepository(db)

	testutil.SeedSIP(t, db, "SIP_1", "C100", db_models.StatusActive)
	testutil.SeedSIP(t, db, "SIP_2", "C100", db_models.StatusPaused)
	testutil.SeedOrder(t, db, "ORD_1", "C200", db_models.StatusPaid)
	testutil.SeedOrder(t, db, "ORD_2", "C300", db_models.StatusCreated)

	codes, err := repo.ListOpenAccounts(context.Background(), []db_models.PaymentStatus{db_models.StatusPaid})
	require.NoError(t, err)
	assert.Equal(t, []string{"C100", "C300"}, codes)
}

func TestTransactionRepository_UpdateWithVersion(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	testutil.SeedSIP(t, db, "SIP_1", "C100", db_models.StatusActive)

	err := repo.UpdateWithVersion(ctx, "SIP_1", 1, map[string]interface{}{
		"payment_status": db_models.StatusPaused,
	})
	require.NoError(t, err)

	row := testutil.Reload(t, db, "SIP_1")
	assert.Equal(t, db_models.StatusPaused, row.PaymentStatus)
	assert.Equal(t, int64(2), row.Version)

	t.Run("stale version is rejected", func(t *testing.T) {
		err := repo.UpdateWithVersion(ctx, "SIP_1", 1, map[string]interface{}{
			"payment_status": db_models.StatusActive,
		})
		assert.ErrorIs(t, err, utils.ErrConcurrentUpdate)
		assert.Equal(t, db_models.StatusPaused, testutil.Reload(t, db, "SIP_1").PaymentStatus)
	})

	t.Run("missing row", func(t *testing.T) {
		err := repo.UpdateWithVersion(ctx, "SIP_404", 1, map[string]interface{}{
			"payment_status": db_models.StatusActive,
		})
		assert.ErrorIs(t, err, utils.ErrTransactionNotFound)
	})
}

func TestTransactionRepository_CanceledAtWrittenOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	testutil.SeedSIP(t, db, "SIP_1", "C100", db_models.StatusActive)

	first := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateWithVersion(ctx, "SIP_1", 1, map[string]interface{}{
		"payment_status": db_models.StatusCancelled,
		"canceled_at":    first,
	}))
	require.NoError(t, repo.UpdateWithVersion(ctx, "SIP_1", 2, map[string]interface{}{
		"payment_status": db_models.StatusCancelled,
		"canceled_at":    first.Add(24 * time.Hour),
	}))

	row := testutil.Reload(t, db, "SIP_1")
	require.NotNil(t, row.CanceledAt)
	assert.True(t, first.Equal(*row.CanceledAt), "canceled_at moved to %s", row.CanceledAt)
	assert.Equal(t, int64(3), row.Version)
}
