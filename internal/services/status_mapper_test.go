package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dbm "pmsportal/internal/models/db_models"
)

func TestMapStatus_OneTime(t *testing.T) {
	cases := map[string]dbm.PaymentStatus{
		"SUCCESS":    dbm.StatusPaid,
		"FAILED":     dbm.StatusFailed,
		"PENDING":    dbm.StatusActive,
		"ACTIVE":     dbm.StatusActive,
		"CREATED":    dbm.StatusActive,
		"EXPIRED":    dbm.StatusExpired,
		"CANCELLED":  dbm.StatusCancelled,
		"TERMINATED": dbm.StatusCancelled,
		"PAID":       dbm.StatusPaid,
	}
	for raw, want := range cases {
		assert.Equal(t, want, MapStatus(raw, dbm.PaymentTypeOneTime), raw)
		assert.Equal(t, want, MapStatus(raw, dbm.PaymentTypeNewStrategy), raw)
	}
}

func TestMapStatus_SIP(t *testing.T) {
	cases := map[string]dbm.PaymentStatus{
		"ACTIVE":                dbm.StatusActive,
		"INITIALISED":           dbm.StatusPending,
		"INITIALIZED":           dbm.StatusPending,
		"BANK_APPROVAL_PENDING": dbm.StatusBankApprovalPending,
		"PENDING":               dbm.StatusPending,
		"ON_HOLD":               dbm.StatusOnHold,
		"PAUSED":                dbm.StatusPaused,
		"CUSTOMER_PAUSED":       dbm.StatusCustomerPaused,
		"COMPLETED":             dbm.StatusCompleted,
		"CUSTOMER_CANCELLED":    dbm.StatusCancelled,
		"CANCELLED":             dbm.StatusCancelled,
		"EXPIRED":               dbm.StatusExpired,
		"LINK_EXPIRED":          dbm.StatusExpired,
		"FAILED":                dbm.StatusFailed,
	}
	for raw, want := range cases {
		assert.Equal(t, want, MapStatus(raw, dbm.PaymentTypeSIP), raw)
	}
}

func TestMapStatus_CaseInsensitiveAndPassThrough(t *testing.T) {
	assert.Equal(t, dbm.StatusPaid, MapStatus("  success ", dbm.PaymentTypeOneTime))
	assert.Equal(t, dbm.StatusCustomerPaused, MapStatus("Customer_Paused", dbm.PaymentTypeSIP))
	assert.Equal(t, dbm.PaymentStatus("USER_DROPPED"), MapStatus("user_dropped", dbm.PaymentTypeOneTime))
	assert.Equal(t, dbm.PaymentStatus("SOMETHING_NEW"), MapStatus("something_new", dbm.PaymentTypeSIP))
	assert.Equal(t, dbm.PaymentStatus(""), MapStatus("", dbm.PaymentTypeSIP))
}

func TestMapStatus_IdempotentOnTargetVocabulary(t *testing.T) {
	for _, pt := range []dbm.PaymentType{dbm.PaymentTypeOneTime, dbm.PaymentTypeSIP} {
		table := oneTimeStatusMap
		if pt == dbm.PaymentTypeSIP {
			table = sipStatusMap
		}
		for raw := range table {
			once := MapStatus(raw, pt)
			if _, isSource := table[string(once)]; !isSource {
				continue
			}
			assert.Equal(t, once, MapStatus(string(once), pt), "%s/%s", pt, raw)
		}
	}
}
