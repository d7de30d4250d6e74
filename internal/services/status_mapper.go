package services

import (
	"strings"

	dbm "pmsportal/internal/models/db_models"
)

var oneTimeStatusMap = map[string]dbm.PaymentStatus{
	"SUCCESS":    dbm.StatusPaid,
	"PAID":       dbm.StatusPaid,
	"FAILED":     dbm.StatusFailed,
	"PENDING":    dbm.StatusActive,
	"ACTIVE":     dbm.StatusActive,
	"CREATED":    dbm.StatusActive,
	"EXPIRED":    dbm.StatusExpired,
	"CANCELLED":  dbm.StatusCancelled,
	"TERMINATED": dbm.StatusCancelled,
}

// The UI tells ON_HOLD, PAUSED and CUSTOMER_PAUSED apart, so they keep their spelling.
var sipStatusMap = map[string]dbm.PaymentStatus{
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

// MapStatus translates a gateway status into the stored vocabulary for paymentType.
// Matching is case-insensitive; unknown input is returned upper-cased.
func MapStatus(raw string, paymentType dbm.PaymentType) dbm.PaymentStatus {
	key := strings.ToUpper(strings.TrimSpace(raw))

	table := oneTimeStatusMap
	if paymentType == dbm.PaymentTypeSIP {
		table = sipStatusMap
	}
	if status, ok := table[key]; ok {
		return status
	}
	return dbm.PaymentStatus(key)
}
