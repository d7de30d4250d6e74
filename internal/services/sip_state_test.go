package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "pmsportal/internal/models/db_models"
	"pmsportal/pkg/utils"
)

var allStatuses = []dbm.PaymentStatus{
	dbm.StatusCreated, dbm.StatusInitialized, dbm.StatusPending, dbm.StatusBankApprovalPending,
	dbm.StatusActive, dbm.StatusOnHold, dbm.StatusPaused, dbm.StatusCustomerPaused, dbm.StatusPaid,
	dbm.StatusCompleted, dbm.StatusFailed, dbm.StatusCancelled, dbm.StatusExpired, dbm.StatusUserDropped,
}

func TestCheckTransition(t *testing.T) {
	legal := map[SIPAction]map[dbm.PaymentStatus]bool{
		SIPPause:  {dbm.StatusActive: true},
		SIPResume: {dbm.StatusPaused: true, dbm.StatusCustomerPaused: true},
		SIPCancel: {},
	}
	for _, s := range allStatuses {
		if s != dbm.StatusCancelled && s != dbm.StatusExpired {
			legal[SIPCancel][s] = true
		}
	}
	targets := map[SIPAction]dbm.PaymentStatus{
		SIPPause:  dbm.StatusPaused,
		SIPResume: dbm.StatusActive,
		SIPCancel: dbm.StatusCancelled,
	}

	for action, from := range legal {
		for _, current := range allStatuses {
			got, err := CheckTransition(action, current)
			if from[current] {
				require.NoError(t, err, "%s from %s", action, current)
				assert.Equal(t, targets[action], got)
			} else {
				assert.ErrorIs(t, err, utils.ErrInvalidTransition, "%s from %s", action, current)
				assert.Contains(t, err.Error(), string(current))
			}
		}
	}
}

func TestCheckTransition_UnknownAction(t *testing.T) {
	_, err := CheckTransition("REFUND", dbm.StatusActive)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestParseSIPAction(t *testing.T) {
	for raw, want := range map[string]SIPAction{"pause": SIPPause, "Resume": SIPResume, "ACTIVATE": SIPResume, "cancel": SIPCancel} {
		got, err := ParseSIPAction(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSIPAction("stop")
	assert.ErrorIs(t, err, utils.ErrValidation)
}
