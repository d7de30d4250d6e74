package services

import (
	"fmt"
	"strings"

	"pmsportal/internal/clients/cashfree"
	dbm "pmsportal/internal/models/db_models"
	"pmsportal/pkg/utils"
)

// SIPAction is a client-requested change to a subscription.
type SIPAction string

const (
	SIPPause  SIPAction = "PAUSE"
	SIPResume SIPAction = "ACTIVATE"
	SIPCancel SIPAction = "CANCEL"
)

// ParseSIPAction accepts the manage-sip actions plus the pause-resume aliases.
func ParseSIPAction(raw string) (SIPAction, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PAUSE":
		return SIPPause, nil
	case "ACTIVATE", "RESUME":
		return SIPResume, nil
	case "CANCEL":
		return SIPCancel, nil
	}
	return "", fmt.Errorf("%w: unsupported action %q", utils.ErrValidation, raw)
}

type sipTransition struct {
	from    []dbm.PaymentStatus // empty means any status that is not terminal
	to      dbm.PaymentStatus
	gateway cashfree.SubscriptionAction
	verb    string
}

var sipTransitions = map[SIPAction]sipTransition{
	SIPPause: {
		from:    []dbm.PaymentStatus{dbm.StatusActive},
		to:      dbm.StatusPaused,
		gateway: cashfree.ActionPause,
		verb:    "pause",
	},
	SIPResume: {
		from:    []dbm.PaymentStatus{dbm.StatusPaused, dbm.StatusCustomerPaused},
		to:      dbm.StatusActive,
		gateway: cashfree.ActionActivate,
		verb:    "resume",
	},
	SIPCancel: {
		to:      dbm.StatusCancelled,
		gateway: cashfree.ActionCancel,
		verb:    "cancel",
	},
}

// terminalStatuses stamp canceled_at and cannot be cancelled again.
var terminalStatuses = []dbm.PaymentStatus{dbm.StatusCancelled, dbm.StatusExpired}

// closedStatuses are skipped by the reconciliation sweep.
var closedStatuses = []dbm.PaymentStatus{
	dbm.StatusPaid,
	dbm.StatusCancelled,
	dbm.StatusExpired,
	dbm.StatusCompleted,
	dbm.StatusFailed,
}

// pendingStatuses back the sweep's "pending" filter. ACTIVE only counts for non-SIP rows.
var pendingStatuses = []dbm.PaymentStatus{
	dbm.StatusCreated,
	dbm.StatusActive,
	dbm.StatusInitialized,
	dbm.StatusPending,
	dbm.StatusBankApprovalPending,
}

// IsTerminal reports whether status is a closed end state of a subscription.
func IsTerminal(status dbm.PaymentStatus) bool {
	return containsStatus(terminalStatuses, status)
}

// CheckTransition returns the status action leads to from current, or ErrInvalidTransition.
func CheckTransition(action SIPAction, current dbm.PaymentStatus) (dbm.PaymentStatus, error) {
	tr, ok := sipTransitions[action]
	if !ok {
		return "", fmt.Errorf("%w: unsupported action %q", utils.ErrValidation, action)
	}

	allowed := containsStatus(tr.from, current)
	if len(tr.from) == 0 {
		allowed = !IsTerminal(current)
	}
	if !allowed {
		return "", fmt.Errorf("%w: cannot %s subscription in status %s", utils.ErrInvalidTransition, tr.verb, current)
	}
	return tr.to, nil
}

func gatewayAction(action SIPAction) cashfree.SubscriptionAction {
	return sipTransitions[action].gateway
}

func containsStatus(list []dbm.PaymentStatus, status dbm.PaymentStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}
