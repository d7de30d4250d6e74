// Package testutil holds shared test fixtures.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pmsportal/internal/infra"
	"pmsportal/internal/models/db_models"
)

// NewTestDB returns a migrated in-memory SQLite database private to the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.Migrate(db))
	return db
}

func Ptr[T any](v T) *T { return &v }

// SeedSIP inserts a SIP row with a gateway subscription id in the given status.
func SeedSIP(t *testing.T, db *gorm.DB, orderID, nuvamaCode string, status db_models.PaymentStatus) *db_models.PaymentTransaction {
	t.Helper()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	txn := &db_models.PaymentTransaction{
		OrderID:          orderID,
		NuvamaCode:       nuvamaCode,
		ClientName:       "Test Client",
		Amount:           decimal.NewFromInt(5000),
		Currency:         "INR",
		PaymentType:      db_models.PaymentTypeSIP,
		PaymentStatus:    status,
		CfSubscriptionID: Ptr("cf_" + orderID),
		PaymentSessionID: Ptr("sess_" + orderID),
		Frequency:        Ptr("monthly"),
		StartDate:        &start,
		NextChargeDate:   &start,
		Version:          1,
	}
	require.NoError(t, db.Create(txn).Error)
	return txn
}

// SeedOrder inserts a one-time order row in the given status.
func SeedOrder(t *testing.T, db *gorm.DB, orderID, nuvamaCode string, status db_models.PaymentStatus) *db_models.PaymentTransaction {
	t.Helper()
	txn := &db_models.PaymentTransaction{
		OrderID:          orderID,
		NuvamaCode:       nuvamaCode,
		ClientName:       "Test Client",
		Amount:           decimal.NewFromInt(2500),
		Currency:         "INR",
		PaymentType:      db_models.PaymentTypeOneTime,
		PaymentStatus:    status,
		CfOrderID:        Ptr("cf_" + orderID),
		PaymentSessionID: Ptr("sess_" + orderID),
		Version:          1,
	}
	require.NoError(t, db.Create(txn).Error)
	return txn
}

// Reload reads the row back from the database.
func Reload(t *testing.T, db *gorm.DB, orderID string) db_models.PaymentTransaction {
	t.Helper()
	var txn db_models.PaymentTransaction
	require.NoError(t, db.First(&txn, "order_id = ?", orderID).Error)
	return txn
}
