package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gorm.io/datatypes"

	"pmsportal/internal/clients/cashfree"
	dbm "pmsportal/internal/models/db_models"
	"pmsportal/internal/models/response_models"
	"pmsportal/internal/repositories"
	"pmsportal/pkg/utils"
)

const (
	SyncFilterOpen    = ""
	SyncFilterPending = "pending"
	SyncFilterUnsync  = "unsync"
)

type ReconcileService interface {
	// SyncClient re-fetches the account's open transactions from the gateway one at a time
	// and writes back whatever drifted. A failing row is reported and the sweep moves on.
	SyncClient(ctx context.Context, nuvamaCode, filter string) (*response_models.SyncReport, error)
	// SyncAll runs SyncClient for every account that still has open transactions.
	SyncAll(ctx context.Context) ([]response_models.SyncReport, error)
}

type reconcileService struct {
	repo    repositories.TransactionRepository
	gateway PaymentGateway
	limiter *rate.Limiter
	log     zerolog.Logger
	now     func() time.Time
}

// NewReconcileService spaces gateway calls at least delay apart. A zero delay disables pacing.
func NewReconcileService(repo repositories.TransactionRepository, gateway PaymentGateway, delay time.Duration, log zerolog.Logger) ReconcileService {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &reconcileService{
		repo:    repo,
		gateway: gateway,
		limiter: rate.NewLimiter(limit, 1),
		log:     log.With().Str("component", "reconcile").Logger(),
		now:     time.Now,
	}
}

type rowOutcome int

const (
	rowSkipped rowOutcome = iota
	rowUpdated
)

func (s *reconcileService) SyncClient(ctx context.Context, nuvamaCode, filter string) (*response_models.SyncReport, error) {
	nuvamaCode = strings.TrimSpace(nuvamaCode)
	if nuvamaCode == "" {
		return nil, fmt.Errorf("%w: nuvama_code is required", utils.ErrValidation)
	}
	rows, err := s.rowsFor(ctx, nuvamaCode, strings.ToLower(strings.TrimSpace(filter)))
	if err != nil {
		return nil, err
	}

	report := &response_models.SyncReport{NuvamaCode: nuvamaCode, Total: len(rows)}
	for i := range rows {
		txn := &rows[i]
		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}

		outcome, err := s.syncRow(ctx, txn)
		switch {
		case err == nil && outcome == rowUpdated:
			report.Updated++
		case err == nil:
			report.Skipped++
		case cashfree.IsNotFound(err):
			report.NotFound++
			report.Errors = append(report.Errors, response_models.RowError{OrderID: txn.OrderID, Error: err.Error()})
		default:
			report.Failed++
			report.Errors = append(report.Errors, response_models.RowError{OrderID: txn.OrderID, Error: err.Error()})
			s.log.Warn().Err(err).Str("order_id", txn.OrderID).Msg("Row sync failed")
		}
	}

	s.log.Info().
		Str("nuvama_code", nuvamaCode).
		Int("total", report.Total).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("not_found", report.NotFound).
		Msg("Client sync finished")
	return report, nil
}

func (s *reconcileService) SyncAll(ctx context.Context) ([]response_models.SyncReport, error) {
	codes, err := s.repo.ListOpenAccounts(ctx, closedStatuses)
	if err != nil {
		return nil, err
	}
	reports := make([]response_models.SyncReport, 0, len(codes))
	for _, code := range codes {
		report, err := s.SyncClient(ctx, code, SyncFilterOpen)
		if report != nil {
			reports = append(reports, *report)
		}
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func (s *reconcileService) rowsFor(ctx context.Context, nuvamaCode, filter string) ([]dbm.PaymentTransaction, error) {
	switch filter {
	case SyncFilterOpen:
		return s.repo.ListByAccount(ctx, nuvamaCode, repositories.TransactionFilter{ExcludeStatus: closedStatuses})
	case SyncFilterUnsync:
		return s.repo.ListByAccount(ctx, nuvamaCode, repositories.TransactionFilter{ExcludeStatus: closedStatuses, MissingGateway: true})
	case SyncFilterPending:
		rows, err := s.repo.ListByAccount(ctx, nuvamaCode, repositories.TransactionFilter{Statuses: pendingStatuses})
		if err != nil {
			return nil, err
		}
		out := rows[:0]
		for _, r := range rows {
			if r.IsSIP() && r.PaymentStatus == dbm.StatusActive {
				continue
			}
			out = append(out, r)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: status filter must be pending or unsync", utils.ErrValidation)
}

func (s *reconcileService) syncRow(ctx context.Context, txn *dbm.PaymentTransaction) (rowOutcome, error) {
	if txn.IsSIP() {
		return s.syncSubscription(ctx, txn)
	}
	return s.syncOrder(ctx, txn)
}

func (s *reconcileService) syncSubscription(ctx context.Context, txn *dbm.PaymentTransaction) (rowOutcome, error) {
	// rows still missing the gateway id are looked up by the id we created them with
	id := txn.GatewaySubscriptionID()
	if id == "" {
		id = txn.OrderID
	}
	sub, err := s.gateway.GetSubscription(ctx, id)
	if err != nil {
		return rowSkipped, err
	}

	fields := map[string]interface{}{}
	status := MapStatus(sub.SubscriptionStatus, dbm.PaymentTypeSIP)
	if sub.SubscriptionStatus != "" && status != txn.PaymentStatus {
		fields["payment_status"] = status
		if IsTerminal(status) {
			fields["canceled_at"] = s.now()
		}
	}
	if sub.CfSubscriptionID != "" && sub.CfSubscriptionID != txn.GatewaySubscriptionID() {
		fields["cf_subscription_id"] = sub.CfSubscriptionID
	}
	if sub.SubscriptionSessionID != "" && sub.SubscriptionSessionID != deref(txn.PaymentSessionID) {
		fields["payment_session_id"] = sub.SubscriptionSessionID
	}
	if next, ok := utils.ParseGatewayTime(sub.NextScheduleDate); ok {
		// the gateway is authoritative here, even when the date moves backwards
		if txn.NextChargeDate == nil || !next.Equal(*txn.NextChargeDate) {
			fields["next_charge_date"] = next
		}
	}
	if len(fields) == 0 {
		return rowSkipped, nil
	}
	if len(sub.Raw) > 0 {
		fields["gateway_response"] = datatypes.JSON(sub.Raw)
	}
	return s.write(ctx, txn, fields)
}

func (s *reconcileService) syncOrder(ctx context.Context, txn *dbm.PaymentTransaction) (rowOutcome, error) {
	order, err := s.gateway.GetOrder(ctx, txn.OrderID)
	if err != nil {
		return rowSkipped, err
	}

	fields := map[string]interface{}{}
	status := MapStatus(order.OrderStatus, txn.PaymentType)

	// PAID orders need their settling payment; ACTIVE ones may have a payment the order
	// status has not caught up with yet.
	if status == dbm.StatusActive || (status == dbm.StatusPaid && txn.CfPaymentID == nil) {
		payments, err := s.gateway.GetOrderPayments(ctx, txn.OrderID)
		if err != nil {
			return rowSkipped, err
		}
		if pay := latestPayment(payments); pay != nil {
			if MapStatus(pay.PaymentStatus, txn.PaymentType) == dbm.StatusPaid {
				status = dbm.StatusPaid
			}
			if id := pay.CfPaymentID.String(); id != "" && id != deref(txn.CfPaymentID) {
				fields["cf_payment_id"] = id
				if t, ok := utils.ParseGatewayTime(pay.PaymentTime); ok {
					fields["payment_time"] = t
					if txn.LastGatewayEventAt == nil || t.After(*txn.LastGatewayEventAt) {
						fields["last_gateway_event_at"] = t
					}
				}
				if pay.PaymentGroup != "" {
					fields["payment_group"] = pay.PaymentGroup
				}
				if pay.PaymentMessage != "" {
					fields["payment_message"] = pay.PaymentMessage
				}
				if len(pay.PaymentMethod) > 0 && json.Valid(pay.PaymentMethod) {
					fields["payment_method"] = datatypes.JSON(pay.PaymentMethod)
				}
			}
		}
	}

	if order.OrderStatus != "" && status != txn.PaymentStatus {
		fields["payment_status"] = status
		if IsTerminal(status) {
			fields["canceled_at"] = s.now()
		}
	}
	if order.CfOrderID != "" && order.CfOrderID != deref(txn.CfOrderID) {
		fields["cf_order_id"] = order.CfOrderID
	}
	if order.PaymentSessionID != "" && order.PaymentSessionID != deref(txn.PaymentSessionID) {
		fields["payment_session_id"] = order.PaymentSessionID
	}
	if len(fields) == 0 {
		return rowSkipped, nil
	}
	if len(order.Raw) > 0 {
		fields["gateway_response"] = datatypes.JSON(order.Raw)
	}
	return s.write(ctx, txn, fields)
}

func (s *reconcileService) write(ctx context.Context, txn *dbm.PaymentTransaction, fields map[string]interface{}) (rowOutcome, error) {
	now := s.now()
	fields["last_synced_at"] = now
	fields["updated_at"] = now
	if err := s.repo.UpdateWithVersion(ctx, txn.OrderID, txn.Version, fields); err != nil {
		return rowSkipped, err
	}
	s.log.Debug().Str("order_id", txn.OrderID).Strs("fields", fieldNames(fields)).Msg("Row reconciled")
	return rowUpdated, nil
}

func latestPayment(payments []cashfree.Payment) *cashfree.Payment {
	var (
		latest   *cashfree.Payment
		latestAt time.Time
	)
	for i := range payments {
		p := &payments[i]
		at, _ := utils.ParseGatewayTime(p.PaymentTime)
		if latest == nil || at.After(latestAt) {
			latest, latestAt = p, at
		}
	}
	return latest
}

func fieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	return names
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
