package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	dbm "pmsportal/internal/models/db_models"
	"pmsportal/internal/models/response_models"
	"pmsportal/internal/repositories"
	"pmsportal/pkg/utils"
)

var (
	ErrWebhookHeaders   = fmt.Errorf("%w: x-webhook-signature and x-webhook-timestamp are required", utils.ErrValidation)
	ErrWebhookSignature = fmt.Errorf("%w: webhook signature mismatch", utils.ErrForbidden)
)

// WebhookDelivery is one inbound gateway callback, body untouched.
type WebhookDelivery struct {
	Signature      string
	Timestamp      string
	IdempotencyKey string
	RawBody        []byte
}

type WebhookService interface {
	Handle(ctx context.Context, d WebhookDelivery) (*response_models.WebhookResult, error)
}

type webhookService struct {
	secret  string
	repo    repositories.TransactionRepository
	events  repositories.WebhookEventRepository
	mail    IMailService
	log     zerolog.Logger
	now     func() time.Time
	retries int
}

func NewWebhookService(secret string, repo repositories.TransactionRepository, events repositories.WebhookEventRepository, mail IMailService, log zerolog.Logger) WebhookService {
	return &webhookService{
		secret:  secret,
		repo:    repo,
		events:  events,
		mail:    mail,
		log:     log.With().Str("component", "webhook").Logger(),
		now:     time.Now,
		retries: 3,
	}
}

// VerifySignature checks signature against HMAC-SHA256(secret, timestamp+body). Both base64
// and hex encodings of the digest are accepted.
func VerifySignature(secret, signature, timestamp string, body []byte) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	expected := mac.Sum(nil)

	signature = strings.TrimSpace(signature)
	if got, err := base64.StdEncoding.DecodeString(signature); err == nil && hmac.Equal(got, expected) {
		return true
	}
	if got, err := hex.DecodeString(signature); err == nil && hmac.Equal(got, expected) {
		return true
	}
	return false
}

// flexID decodes identifiers the gateway sends either as strings or as numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	*f = flexID(b)
	return nil
}

type webhookOrder struct {
	OrderID     string            `json:"order_id"`
	OrderAmount float64           `json:"order_amount"`
	OrderStatus string            `json:"order_status"`
	OrderTags   map[string]string `json:"order_tags"`
}

type webhookPayment struct {
	CfPaymentID    flexID          `json:"cf_payment_id"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentAmount  float64         `json:"payment_amount"`
	PaymentTime    string          `json:"payment_time"`
	PaymentMessage string          `json:"payment_message"`
	PaymentGroup   string          `json:"payment_group"`
	PaymentMethod  json.RawMessage `json:"payment_method"`
}

type webhookSubscription struct {
	SubscriptionID     string `json:"subscription_id"`
	CfSubscriptionID   flexID `json:"cf_subscription_id"`
	SubscriptionStatus string `json:"subscription_status"`
	NextScheduleDate   string `json:"next_schedule_date"`
}

type webhookData struct {
	Order               *webhookOrder        `json:"order"`
	Payment             *webhookPayment      `json:"payment"`
	SubscriptionDetails *webhookSubscription `json:"subscription_details"`

	// subscription payment events put these at the top of data
	SubscriptionID       string  `json:"subscription_id"`
	CfSubscriptionID     flexID  `json:"cf_subscription_id"`
	CfPaymentID          flexID  `json:"cf_payment_id"`
	PaymentStatus        string  `json:"payment_status"`
	PaymentAmount        float64 `json:"payment_amount"`
	PaymentInitiatedDate string  `json:"payment_initiated_date"`
}

type webhookPayload struct {
	Type      string          `json:"type"`
	EventTime string          `json:"event_time"`
	Data      webhookData     `json:"data"`
	Order     *webhookOrder   `json:"order"`
	Payment   *webhookPayment `json:"payment"`
}

func (p *webhookPayload) order() *webhookOrder {
	if p.Data.Order != nil {
		return p.Data.Order
	}
	return p.Order
}

func (p *webhookPayload) payment() *webhookPayment {
	if p.Data.Payment != nil {
		return p.Data.Payment
	}
	if p.Payment != nil {
		return p.Payment
	}
	if p.Data.CfPaymentID != "" || p.Data.PaymentStatus != "" {
		return &webhookPayment{
			CfPaymentID:   p.Data.CfPaymentID,
			PaymentStatus: p.Data.PaymentStatus,
			PaymentAmount: p.Data.PaymentAmount,
			PaymentTime:   p.Data.PaymentInitiatedDate,
		}
	}
	return nil
}

func (p *webhookPayload) subscription() *webhookSubscription {
	if p.Data.SubscriptionDetails != nil {
		return p.Data.SubscriptionDetails
	}
	if p.Data.SubscriptionID != "" || p.Data.CfSubscriptionID != "" {
		return &webhookSubscription{SubscriptionID: p.Data.SubscriptionID, CfSubscriptionID: p.Data.CfSubscriptionID}
	}
	return nil
}

// NormalizeEventType upper-cases t and drops a trailing _WEBHOOK.
func NormalizeEventType(t string) string {
	return strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(t)), "_WEBHOOK")
}

func isSubscriptionEvent(eventType string) bool {
	return strings.HasPrefix(eventType, "SUBSCRIPTION_")
}

// notifyEvents are mailed to the operator once persisted.
var notifyEvents = map[string]bool{
	"PAYMENT_SUCCESS":              true,
	"PAYMENT_FAILED":               true,
	"ORDER_PAID":                   true,
	"SUBSCRIPTION_PAYMENT_SUCCESS": true,
	"SUBSCRIPTION_PAYMENT_FAILED":  true,
}

func (s *webhookService) Handle(ctx context.Context, d WebhookDelivery) (*response_models.WebhookResult, error) {
	if strings.TrimSpace(d.Signature) == "" || strings.TrimSpace(d.Timestamp) == "" {
		return nil, ErrWebhookHeaders
	}
	if !VerifySignature(s.secret, d.Signature, d.Timestamp, d.RawBody) {
		s.log.Warn().Str("timestamp", d.Timestamp).Msg("Rejected webhook with bad signature")
		return nil, ErrWebhookSignature
	}

	var payload webhookPayload
	if err := json.Unmarshal(d.RawBody, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook body: %v", utils.ErrValidation, err)
	}
	eventType := NormalizeEventType(payload.Type)

	key := strings.TrimSpace(d.IdempotencyKey)
	if key == "" {
		sum := sha256.Sum256([]byte(d.Signature + d.Timestamp))
		key = hex.EncodeToString(sum[:])
	}

	event := &dbm.WebhookEvent{
		IdempotencyKey: key,
		EventType:      eventType,
		OrderID:        s.referenceID(&payload, eventType),
		Payload:        datatypes.JSON(d.RawBody),
		SignatureValid: true,
		Status:         dbm.WebhookReceived,
	}
	created, err := s.events.Record(ctx, event)
	if err != nil {
		return nil, err
	}
	if !created {
		prior, err := s.events.FindByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if prior != nil && (prior.Status == dbm.WebhookProcessed || prior.Status == dbm.WebhookIgnored) {
			s.log.Info().Str("idempotency_key", key).Str("order_id", prior.OrderID).Msg("Duplicate webhook delivery")
			return &response_models.WebhookResult{Success: true, OrderID: prior.OrderID, Duplicate: true}, nil
		}
		if prior != nil {
			event = prior
		}
	}

	result, notification, err := s.process(ctx, &payload, eventType)
	if err != nil {
		s.finish(ctx, event.ID, dbm.WebhookHandleFailed, err.Error())
		return nil, err
	}
	status := dbm.WebhookProcessed
	if !result.StatusUpdated {
		status = dbm.WebhookIgnored
	}
	s.finish(ctx, event.ID, status, "")

	if notification != nil {
		if err := s.mail.SendPaymentNotification(*notification); err != nil {
			s.log.Warn().Err(err).Str("order_id", result.OrderID).Msg("Operator notification failed")
		}
	}
	return result, nil
}

func (s *webhookService) finish(ctx context.Context, id uint, status dbm.WebhookEventStatus, msg string) {
	if id == 0 {
		return
	}
	if err := s.events.MarkProcessed(ctx, id, status, msg); err != nil {
		s.log.Error().Err(err).Uint("event_id", id).Msg("Could not mark webhook event")
	}
}

func (s *webhookService) referenceID(p *webhookPayload, eventType string) string {
	if isSubscriptionEvent(eventType) {
		if sub := p.subscription(); sub != nil {
			if sub.SubscriptionID != "" {
				return sub.SubscriptionID
			}
			return string(sub.CfSubscriptionID)
		}
	}
	if o := p.order(); o != nil {
		return o.OrderID
	}
	return ""
}

func (s *webhookService) locate(ctx context.Context, p *webhookPayload, eventType string) (*dbm.PaymentTransaction, error) {
	var candidates []string
	if isSubscriptionEvent(eventType) {
		if sub := p.subscription(); sub != nil {
			candidates = append(candidates, sub.SubscriptionID, string(sub.CfSubscriptionID))
		}
	}
	if o := p.order(); o != nil {
		candidates = append(candidates, o.OrderID, o.OrderTags["subscription_id"], o.OrderTags["order_id"])
	}
	for _, id := range candidates {
		if id == "" {
			continue
		}
		txn, err := s.repo.FindByIdentifier(ctx, id)
		if err != nil || txn != nil {
			return txn, err
		}
	}
	return nil, nil
}

// process applies the event to its transaction. Stale and unknown events come back with
// StatusUpdated false and no error.
func (s *webhookService) process(ctx context.Context, p *webhookPayload, eventType string) (*response_models.WebhookResult, *PaymentNotification, error) {
	ref := s.referenceID(p, eventType)
	for attempt := 0; ; attempt++ {
		txn, err := s.locate(ctx, p, eventType)
		if err != nil {
			return nil, nil, err
		}
		if txn == nil {
			s.log.Warn().Str("type", eventType).Str("ref", ref).Msg("Webhook for unknown transaction")
			return &response_models.WebhookResult{Success: true, OrderID: ref}, nil, nil
		}

		// Only gateway timestamps are ordered against each other; an event without one is
		// applied as received.
		eventAt, timed := s.eventTime(p)
		if timed && txn.LastGatewayEventAt != nil && eventAt.Before(*txn.LastGatewayEventAt) {
			s.log.Info().
				Str("order_id", txn.OrderID).
				Str("type", eventType).
				Time("event_at", eventAt).
				Time("last_event_at", *txn.LastGatewayEventAt).
				Msg("Ignoring stale webhook")
			return &response_models.WebhookResult{Success: true, OrderID: txn.OrderID}, nil, nil
		}

		var gatewayAt *time.Time
		if timed {
			gatewayAt = &eventAt
		}
		fields, newStatus := s.buildUpdate(txn, p, eventType, gatewayAt)
		err = s.repo.UpdateWithVersion(ctx, txn.OrderID, txn.Version, fields)
		if errors.Is(err, utils.ErrConcurrentUpdate) && attempt+1 < s.retries {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		s.log.Info().
			Str("order_id", txn.OrderID).
			Str("type", eventType).
			Str("from", string(txn.PaymentStatus)).
			Str("to", string(newStatus)).
			Msg("Webhook applied")

		var notification *PaymentNotification
		if notifyEvents[eventType] {
			notification = &PaymentNotification{
				EventType:   eventType,
				OrderID:     txn.OrderID,
				NuvamaCode:  txn.NuvamaCode,
				ClientName:  txn.ClientName,
				PaymentType: string(txn.PaymentType),
				Status:      string(newStatus),
				Amount:      txn.Amount.StringFixed(2) + " " + txn.Currency,
			}
			if pay := p.payment(); pay != nil {
				notification.CfPaymentID = string(pay.CfPaymentID)
				notification.Message = pay.PaymentMessage
			}
		}
		return &response_models.WebhookResult{Success: true, OrderID: txn.OrderID, StatusUpdated: true}, notification, nil
	}
}

// eventTime returns the gateway's own time for the event: payment time, else event time.
func (s *webhookService) eventTime(p *webhookPayload) (time.Time, bool) {
	if pay := p.payment(); pay != nil {
		if t, ok := utils.ParseGatewayTime(pay.PaymentTime); ok {
			return t, true
		}
	}
	return utils.ParseGatewayTime(p.EventTime)
}

func (s *webhookService) buildUpdate(txn *dbm.PaymentTransaction, p *webhookPayload, eventType string, gatewayAt *time.Time) (map[string]interface{}, dbm.PaymentStatus) {
	now := s.now()
	fields := map[string]interface{}{
		"last_synced_at": now,
		"updated_at":     now,
	}
	if gatewayAt != nil {
		fields["last_gateway_event_at"] = *gatewayAt
	}
	status := txn.PaymentStatus

	if sub := p.subscription(); sub != nil && isSubscriptionEvent(eventType) {
		if sub.SubscriptionStatus != "" {
			status = MapStatus(sub.SubscriptionStatus, dbm.PaymentTypeSIP)
		}
		if sub.CfSubscriptionID != "" && txn.GatewaySubscriptionID() == "" {
			fields["cf_subscription_id"] = string(sub.CfSubscriptionID)
		}
		if next, ok := utils.ParseGatewayTime(sub.NextScheduleDate); ok {
			// only the sweep may move next_charge_date backwards
			if txn.NextChargeDate == nil || next.After(*txn.NextChargeDate) {
				fields["next_charge_date"] = next
			}
		}
	}

	if pay := p.payment(); pay != nil {
		if pay.CfPaymentID != "" {
			fields["cf_payment_id"] = string(pay.CfPaymentID)
		}
		if t, ok := utils.ParseGatewayTime(pay.PaymentTime); ok {
			fields["payment_time"] = t
		}
		if pay.PaymentGroup != "" {
			fields["payment_group"] = pay.PaymentGroup
		}
		if len(pay.PaymentMethod) > 0 && json.Valid(pay.PaymentMethod) {
			fields["payment_method"] = datatypes.JSON(pay.PaymentMethod)
		}
		if pay.PaymentMessage != "" {
			fields["payment_message"] = pay.PaymentMessage
		}
	}

	// A subscription charge only records metadata on its SIP; the subscription status comes
	// from subscription status events. Every other event maps through the row's own table.
	if !txn.IsSIP() || !isSubscriptionEvent(eventType) {
		status = s.paymentStatus(txn, p, eventType)
	}

	if status != txn.PaymentStatus {
		fields["payment_status"] = status
	}
	if IsTerminal(status) {
		fields["canceled_at"] = s.now()
	}
	return fields, status
}

func (s *webhookService) paymentStatus(txn *dbm.PaymentTransaction, p *webhookPayload, eventType string) dbm.PaymentStatus {
	if pay := p.payment(); pay != nil && pay.PaymentStatus != "" {
		return MapStatus(pay.PaymentStatus, txn.PaymentType)
	}
	switch eventType {
	case "ORDER_PAID", "PAYMENT_SUCCESS":
		return dbm.StatusPaid
	case "PAYMENT_FAILED":
		return dbm.StatusFailed
	case "PAYMENT_USER_DROPPED":
		return dbm.StatusUserDropped
	}
	if o := p.order(); o != nil && o.OrderStatus != "" {
		return MapStatus(o.OrderStatus, txn.PaymentType)
	}
	return txn.PaymentStatus
}
