package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/config"
)

// WhatsAppService is a thin façade over a WAHA-compatible HTTP gateway.
// Every call goes through a bounded retry with a fixed delay; after the
// attempts are exhausted the last error is returned to the caller.
type WhatsAppService struct {
	baseURL  string
	apiKey   string
	session  string
	client   *http.Client
	attempts int
	delay    time.Duration
}

func NewWhatsAppService() *WhatsAppService {
	cfg := config.GetConfig()
	return NewWhatsAppServiceWith(
		cfg.WhatsApp.BaseURL,
		cfg.WhatsApp.APIKey,
		cfg.WhatsApp.Session,
		cfg.WhatsApp.RetryAttempts,
		time.Duration(cfg.WhatsApp.RetryDelayMs)*time.Millisecond,
	)
}

func NewWhatsAppServiceWith(baseURL, apiKey, session string, attempts int, delay time.Duration) *WhatsAppService {
	if attempts < 1 {
		attempts = 1
	}
	return &WhatsAppService{
		baseURL: baseURL,
		apiKey:  apiKey,
		session: session,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		attempts: attempts,
		delay:    delay,
	}
}

type sessionStatusResponse struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type sendTextRequest struct {
	Session string `json:"session"`
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
}

type sendImageRequest struct {
	Session string    `json:"session"`
	ChatID  string    `json:"chatId"`
	File    fileByURL `json:"file"`
	Caption string    `json:"caption,omitempty"`
}

type fileByURL struct {
	URL string `json:"url"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// GatewayGroup is a group as reported by the gateway.
type GatewayGroup struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Participants int    `json:"participants"`
}

// withRetry runs op up to s.attempts times with a fixed delay between
// attempts. No backoff growth: the gateway recovers fast or not at all.
func (s *WhatsAppService) withRetry(ctx context.Context, name string, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if err := op(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == s.attempts {
			break
		}

		log.Printf("WhatsAppService: %s failed (attempt %d/%d), retrying in %v: %v",
			name, attempt, s.attempts, s.delay, lastErr)

		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, s.attempts, lastErr)
}

func (s *WhatsAppService) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d body=%q", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w body=%q", err, string(respBody))
		}
	}
	return nil
}

// EnsureSessionReady checks that the outbound session is connected. It is
// idempotent and safe to call before every send, including concurrently.
func (s *WhatsAppService) EnsureSessionReady(ctx context.Context) error {
	return s.withRetry(ctx, "session check", func() error {
		var status sessionStatusResponse
		if err := s.doJSON(ctx, http.MethodGet, "/api/sessions/"+s.session, nil, &status); err != nil {
			return err
		}
		if status.Status != "WORKING" {
			return fmt.Errorf("session %s not ready: status=%s", s.session, status.Status)
		}
		return nil
	})
}

// SendText sends one text message to a chat and returns the gateway message id.
func (s *WhatsAppService) SendText(ctx context.Context, chatID, text string) (string, error) {
	var resp sendResponse
	err := s.withRetry(ctx, "send text", func() error {
		return s.doJSON(ctx, http.MethodPost, "/api/sendText", sendTextRequest{
			Session: s.session,
			ChatID:  chatID,
			Text:    text,
		}, &resp)
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// SendImage sends an image by URL with an optional caption.
func (s *WhatsAppService) SendImage(ctx context.Context, chatID, imageURL, caption string) (string, error) {
	var resp sendResponse
	err := s.withRetry(ctx, "send image", func() error {
		return s.doJSON(ctx, http.MethodPost, "/api/sendImage", sendImageRequest{
			Session: s.session,
			ChatID:  chatID,
			File:    fileByURL{URL: imageURL},
			Caption: caption,
		}, &resp)
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// GetGroups lists the groups the session participates in.
func (s *WhatsAppService) GetGroups(ctx context.Context) ([]GatewayGroup, error) {
	var groups []GatewayGroup
	err := s.withRetry(ctx, "get groups", func() error {
		groups = nil
		return s.doJSON(ctx, http.MethodGet, "/api/"+s.session+"/groups", nil, &groups)
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}
