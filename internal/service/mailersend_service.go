package service

import (
	"context"
	"fmt"
	"log"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"

	"github.com/mailersend/mailersend-go"
)

// MailerSendService is the fallback email provider.
type MailerSendService struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSendService(apiKey, fromEmail, fromName string) *MailerSendService {
	return &MailerSendService{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
}

func (es *MailerSendService) SendOTPEmail(ctx context.Context, data OTPEmailData) error {
	message := es.client.Email.NewMessage()
	message.SetFrom(es.from)
	message.SetRecipients([]mailersend.Recipient{{Name: data.Name, Email: data.Email}})
	message.SetSubject("Kode Verifikasi DropInDrop")
	message.SetHTML(otpEmailHTML(data))

	res, err := es.client.Email.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("mailersend: failed to send OTP email: %w", err)
	}

	log.Printf("MailerSendService: OTP email queued, message id=%s", res.Header.Get("X-Message-Id"))
	return nil
}

func (es *MailerSendService) SendDispatchReport(ctx context.Context, to, dropName string, report models.DispatchReport) error {
	subject := fmt.Sprintf("Laporan Drop: %s", dropName)
	if !report.OverallSuccess {
		subject = fmt.Sprintf("[SEBAGIAN GAGAL] Laporan Drop: %s", dropName)
	}

	message := es.client.Email.NewMessage()
	message.SetFrom(es.from)
	message.SetRecipients([]mailersend.Recipient{{Email: to}})
	message.SetSubject(subject)
	message.SetHTML(dispatchReportHTML(dropName, report))

	res, err := es.client.Email.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("mailersend: failed to send dispatch report: %w", err)
	}

	log.Printf("MailerSendService: dispatch report queued, message id=%s", res.Header.Get("X-Message-Id"))
	return nil
}
