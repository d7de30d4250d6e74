package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmsportal/internal/config"
	"pmsportal/internal/models/db_models"
	"pmsportal/internal/testutil"
)

func newTestMailer(t *testing.T, cfg config.SMTPConfig) *smtpMailService {
	t.Helper()
	svc, err := NewSMTPMailService(cfg)
	require.NoError(t, err)
	return svc.(*smtpMailService)
}

func TestMail_PaymentTemplate(t *testing.T) {
	m := newTestMailer(t, config.SMTPConfig{})
	body, err := render(m.paymentTpl, PaymentNotification{
		EventType: "PAYMENT_SUCCESS", OrderID: "ORD_1", NuvamaCode: "C100", ClientName: "Asha",
		PaymentType: "ONE_TIME", Status: "PAID", Amount: "2500.00 INR", CfPaymentID: "991",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Order:      ORD_1")
	assert.Contains(t, body, "Payment ID: 991")
	assert.NotContains(t, body, "Message:")
}

func TestMail_InquiryTemplateShowsRating(t *testing.T) {
	m := newTestMailer(t, config.SMTPConfig{})
	rating := 4
	body, err := render(m.inquiryTpl, struct {
		*db_models.Inquiry
		Rating int
	}{Inquiry: &db_models.Inquiry{Kind: "feedback", Name: "Asha", Email: "a@example.com", Message: "Great", Rating: &rating}, Rating: rating})
	require.NoError(t, err)
	assert.Contains(t, body, "Rating:  4/5")
	assert.NotContains(t, body, "Referred:")
}

func TestMail_BuildMessageHeaders(t *testing.T) {
	m := newTestMailer(t, config.SMTPConfig{From: "noreply@example.com", FromName: "Wealth Désk"})
	msg := string(m.buildMessage("ops@example.com", "Payment ✓", "line one\nline two"))

	assert.Contains(t, msg, "From: =?UTF-8?q?Wealth_D=C3=A9sk?= <noreply@example.com>\r\n")
	assert.Contains(t, msg, "To: ops@example.com\r\n")
	assert.Contains(t, msg, "Subject: =?UTF-8?q?")
	assert.True(t, strings.HasSuffix(msg, "line one\r\nline two\r\n"))
}

func TestMail_OperatorAddressRequired(t *testing.T) {
	m := newTestMailer(t, config.SMTPConfig{})

	assert.ErrorIs(t, m.SendPaymentNotification(PaymentNotification{OrderID: "ORD_1"}), ErrOperatorEmailNotConfigured)
	assert.ErrorIs(t, m.SendInquiryNotification(&db_models.Inquiry{Name: "A", Rating: testutil.Ptr(1)}), ErrOperatorEmailNotConfigured)
}
