package services

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"pmsportal/internal/config"
	dbm "pmsportal/internal/models/db_models"
)

var ErrOperatorEmailNotConfigured = errors.New("operator email is not configured")

type IMailService interface {
	// SendPaymentNotification tells the operator about a settled or failed payment.
	SendPaymentNotification(n PaymentNotification) error
	SendInquiryNotification(inquiry *dbm.Inquiry) error
	SendOTP(to, code string, ttl time.Duration) error
}

type PaymentNotification struct {
	EventType   string
	OrderID     string
	NuvamaCode  string
	ClientName  string
	PaymentType string
	Status      string
	Amount      string
	CfPaymentID string
	Message     string
}

type smtpMailService struct {
	cfg        config.SMTPConfig
	paymentTpl *template.Template
	inquiryTpl *template.Template
	otpTpl     *template.Template
}

func NewSMTPMailService(cfg config.SMTPConfig) (IMailService, error) {
	paymentTpl, err := template.New("payment").Parse(paymentTemplate)
	if err != nil {
		return nil, err
	}
	inquiryTpl, err := template.New("inquiry").Parse(inquiryTemplate)
	if err != nil {
		return nil, err
	}
	otpTpl, err := template.New("otp").Parse(otpTemplate)
	if err != nil {
		return nil, err
	}
	return &smtpMailService{
		cfg:        cfg,
		paymentTpl: paymentTpl,
		inquiryTpl: inquiryTpl,
		otpTpl:     otpTpl,
	}, nil
}

const paymentTemplate = `Payment event {{.EventType}}

Order:      {{.OrderID}}
Account:    {{.NuvamaCode}} {{.ClientName}}
Type:       {{.PaymentType}}
Status:     {{.Status}}
Amount:     {{.Amount}}
{{if .CfPaymentID}}Payment ID: {{.CfPaymentID}}
{{end}}{{if .Message}}Message:    {{.Message}}
{{end}}`

const inquiryTemplate = `New {{.Kind}} from {{.Name}}

Email:   {{.Email}}
{{if .Phone}}Phone:   {{.Phone}}
{{end}}{{if .NuvamaCode}}Account: {{.NuvamaCode}}
{{end}}{{if .ReferredName}}Referred: {{.ReferredName}} {{.ReferredPhone}}
{{end}}{{if .Rating}}Rating:  {{.Rating}}/5
{{end}}
{{.Message}}
`

const otpTemplate = `Your {{.AppName}} login code is {{.Code}}.

It expires in {{.Minutes}} minutes. If you did not try to sign in, ignore this email.
`

func (s *smtpMailService) SendPaymentNotification(n PaymentNotification) error {
	if s.cfg.OperatorEmail == "" {
		return ErrOperatorEmailNotConfigured
	}
	body, err := render(s.paymentTpl, n)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("[%s] %s %s", s.cfg.AppName, n.EventType, n.OrderID)
	return s.send(s.cfg.OperatorEmail, subject, body)
}

func (s *smtpMailService) SendInquiryNotification(inquiry *dbm.Inquiry) error {
	if s.cfg.OperatorEmail == "" {
		return ErrOperatorEmailNotConfigured
	}
	data := struct {
		*dbm.Inquiry
		Rating int
	}{Inquiry: inquiry}
	if inquiry.Rating != nil {
		data.Rating = *inquiry.Rating
	}
	body, err := render(s.inquiryTpl, data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("[%s] New %s from %s", s.cfg.AppName, inquiry.Kind, inquiry.Name)
	return s.send(s.cfg.OperatorEmail, subject, body)
}

func (s *smtpMailService) SendOTP(to, code string, ttl time.Duration) error {
	body, err := render(s.otpTpl, map[string]any{
		"AppName": s.cfg.AppName,
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	})
	if err != nil {
		return err
	}
	return s.send(to, fmt.Sprintf("Your %s login code", s.cfg.AppName), body)
}

func render(tpl *template.Template, data any) (string, error) {
	var b bytes.Buffer
	if err := tpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *smtpMailService) buildMessage(to, subject, body string) []byte {
	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", s.formatFromHeader())
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n", strings.ReplaceAll(body, "\n", "\r\n"))
	return msg.Bytes()
}

func (s *smtpMailService) send(to, subject, body string) error {
	msg := s.buildMessage(to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.UseSSL {
		// SMTPS, implicit TLS on 465
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsCfg)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(tlsCfg); err != nil {
				return err
			}
		} else if s.cfg.RequireTLS {
			return fmt.Errorf("server does not support STARTTLS and RequireTLS=true")
		}
	}

	if s.cfg.Username != "" {
		if err = c.Auth(auth); err != nil {
			return err
		}
	}
	if err = c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

func (s *smtpMailService) formatFromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", name), s.cfg.From)
}
