package service

import (
	"context"
	"fmt"
	"log"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"
)

type OTPEmailData struct {
	Email     string
	Name      string
	OTPCode   string
	ExpiresIn int // in minutes
}

// EmailProvider interface for different email services
type EmailProvider interface {
	SendOTPEmail(ctx context.Context, data OTPEmailData) error
	SendDispatchReport(ctx context.Context, to, dropName string, report models.DispatchReport) error
}

// MultiProviderEmailService handles multiple email providers with fallback
type MultiProviderEmailService struct {
	providers []EmailProvider
}

func NewMultiProviderEmailService(providers []EmailProvider) *MultiProviderEmailService {
	return &MultiProviderEmailService{providers: providers}
}

func (m *MultiProviderEmailService) SendOTPEmail(ctx context.Context, data OTPEmailData) error {
	return m.send(ctx, "OTP email", func(p EmailProvider) error {
		return p.SendOTPEmail(ctx, data)
	})
}

func (m *MultiProviderEmailService) SendDispatchReport(ctx context.Context, to, dropName string, report models.DispatchReport) error {
	return m.send(ctx, "dispatch report", func(p EmailProvider) error {
		return p.SendDispatchReport(ctx, to, dropName, report)
	})
}

// send tries every configured provider in order until one succeeds.
func (m *MultiProviderEmailService) send(ctx context.Context, kind string, fn func(EmailProvider) error) error {
	if len(m.providers) == 0 {
		return fmt.Errorf("no email providers configured")
	}

	var lastErr error
	for i, provider := range m.providers {
		err := fn(provider)
		if err == nil {
			log.Printf("MultiProviderEmailService: %s sent via provider %d", kind, i+1)
			return nil
		}
		log.Printf("MultiProviderEmailService: provider %d failed for %s: %v", i+1, kind, err)
		lastErr = err
	}

	return fmt.Errorf("all email providers failed. Last error: %w", lastErr)
}

func (m *MultiProviderEmailService) GetProviderCount() int {
	return len(m.providers)
}

// dispatchReportHTML renders the per-group breakdown for the admin email.
func dispatchReportHTML(dropName string, report models.DispatchReport) string {
	status := "BERHASIL"
	if !report.OverallSuccess {
		status = "SEBAGIAN GAGAL"
	}

	rows := ""
	for _, r := range report.Results {
		outcome := "OK"
		if !r.Success {
			outcome = "GAGAL: " + r.Error
		}
		rows += fmt.Sprintf("<tr><td>%s</td><td>%s</td></tr>", r.GroupID, outcome)
	}

	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; color: #333;">
		<h2>Laporan Pengiriman Drop: %s</h2>
		<p>Status: <strong>%s</strong></p>
		<table border="1" cellpadding="6" cellspacing="0">
			<tr><th>Group</th><th>Hasil</th></tr>
			%s
		</table>
		<p style="color: #6b7280; font-size: 13px;">Email otomatis dari DropInDrop.</p>
	</body>
	</html>`, dropName, status, rows)
}

// otpEmailHTML renders the verification code email.
func otpEmailHTML(data OTPEmailData) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; color: #333;">
		<h2>Kode Verifikasi DropInDrop</h2>
		<p>Halo <strong>%s</strong>,</p>
		<p>Gunakan kode berikut untuk verifikasi:</p>
		<div style="font-size: 32px; font-weight: bold; letter-spacing: 5px; font-family: 'Courier New', monospace;">%s</div>
		<p>Kode ini berlaku selama %d menit.</p>
	</body>
	</html>`, data.Name, data.OTPCode, data.ExpiresIn)
}
