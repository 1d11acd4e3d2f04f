package service

import (
	"context"
	"fmt"
	"log"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"

	"github.com/resend/resend-go/v2"
)

type ResendService struct {
	client *resend.Client
	from   string
}

func NewResendService(apiKey, fromEmail, fromName string) *ResendService {
	return &ResendService{
		client: resend.NewClient(apiKey),
		from:   fmt.Sprintf("%s <%s>", fromName, fromEmail),
	}
}

func (rs *ResendService) SendOTPEmail(ctx context.Context, data OTPEmailData) error {
	log.Printf("ResendService: sending OTP email to %s", data.Email)

	params := &resend.SendEmailRequest{
		From:    rs.from,
		To:      []string{data.Email},
		Subject: "Kode Verifikasi DropInDrop",
		Html:    otpEmailHTML(data),
	}

	sent, err := rs.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend: failed to send OTP email: %w", err)
	}

	log.Printf("ResendService: OTP email sent, id=%s", sent.Id)
	return nil
}

func (rs *ResendService) SendDispatchReport(ctx context.Context, to, dropName string, report models.DispatchReport) error {
	subject := fmt.Sprintf("Laporan Drop: %s", dropName)
	if !report.OverallSuccess {
		subject = fmt.Sprintf("[SEBAGIAN GAGAL] Laporan Drop: %s", dropName)
	}

	params := &resend.SendEmailRequest{
		From:    rs.from,
		To:      []string{to},
		Subject: subject,
		Html:    dispatchReportHTML(dropName, report),
	}

	sent, err := rs.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend: failed to send dispatch report: %w", err)
	}

	log.Printf("ResendService: dispatch report sent, id=%s", sent.Id)
	return nil
}
