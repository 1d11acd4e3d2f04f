package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newGatewayService(t *testing.T, handler http.Handler, attempts int) (*WhatsAppService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewWhatsAppServiceWith(server.URL, "test-key", "default", attempts, time.Millisecond), server
}

func TestSendText(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		var gotBody sendTextRequest
		var gotAPIKey string
		svc, _ := newGatewayService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/sendText" {
				t.Errorf("path = %s, want /api/sendText", r.URL.Path)
			}
			gotAPIKey = r.Header.Get("X-Api-Key")
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("decode body: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "wamid.OK"})
		}), 3)

		id, err := svc.SendText(context.Background(), "120363001@g.us", "halo grup")
		if err != nil {
			t.Fatalf("SendText() error = %v", err)
		}
		if id != "wamid.OK" {
			t.Errorf("message id = %s, want wamid.OK", id)
		}
		if gotAPIKey != "test-key" {
			t.Errorf("api key = %s, want test-key", gotAPIKey)
		}
		if gotBody.Session != "default" || gotBody.ChatID != "120363001@g.us" || gotBody.Text != "halo grup" {
			t.Errorf("request body = %+v", gotBody)
		}
	})

	t.Run("retries until success", func(t *testing.T) {
		t.Parallel()
		var calls int32
		svc, _ := newGatewayService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "wamid.RETRY"})
		}), 3)

		id, err := svc.SendText(context.Background(), "120363001@g.us", "halo")
		if err != nil {
			t.Fatalf("SendText() error = %v", err)
		}
		if id != "wamid.RETRY" {
			t.Errorf("message id = %s, want wamid.RETRY", id)
		}
		if got := atomic.LoadInt32(&calls); got != 3 {
			t.Errorf("gateway called %d times, want 3", got)
		}
	})

	t.Run("retries exhausted surfaces last error", func(t *testing.T) {
		t.Parallel()
		var calls int32
		svc, _ := newGatewayService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			http.Error(w, "boom", http.StatusInternalServerError)
		}), 3)

		_, err := svc.SendText(context.Background(), "120363001@g.us", "halo")
		if err == nil {
			t.Fatal("SendText() expected error")
		}
		if !strings.Contains(err.Error(), "failed after 3 attempts") {
			t.Errorf("error = %q, want attempts count", err)
		}
		if !strings.Contains(err.Error(), "status 500") {
			t.Errorf("error = %q, want last gateway status", err)
		}
		if got := atomic.LoadInt32(&calls); got != 3 {
			t.Errorf("gateway called %d times, want 3", got)
		}
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		t.Parallel()
		svc, _ := newGatewayService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}), 5)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := svc.SendText(ctx, "120363001@g.us", "halo"); err == nil {
			t.Fatal("SendText() expected error")
		}
	})
}

func TestEnsureSessionReady(t *testing.T) {
	t.Parallel()

	t.Run("working session", func(t *testing.T) {
		t.Parallel()
		svc, _ := newGatewayService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/sessions/default" {
				t.Errorf("path = %s, want /api/sessions/default", r.URL.Path)
			}
			json.NewEncoder(w).Encode(map[string]string{"name": "default", "status": "WORKING"})
		}), 1)

		if err := svc.EnsureSessionReady(context.Background()); err != nil {
			t.Errorf("EnsureSessionReady() error = %v", err)
		}
	})

	t.Run("stopped session", func(t *testing.T) {
		t.Parallel()
		svc, _ := newGatewayService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"name": "default", "status": "STOPPED"})
		}), 1)

		err := svc.EnsureSessionReady(context.Background())
		if err == nil {
			t.Fatal("EnsureSessionReady() expected error")
		}
		if !strings.Contains(err.Error(), "STOPPED") {
			t.Errorf("error = %q, want session status", err)
		}
	})
}

func TestGetGroups(t *testing.T) {
	t.Parallel()

	svc, _ := newGatewayService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/default/groups" {
			t.Errorf("path = %s, want /api/default/groups", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "120363001@g.us", "name": "Reseller A", "participants": 120},
			{"id": "120363002@g.us", "name": "Reseller B", "participants": 45},
		})
	}), 2)

	groups, err := svc.GetGroups(context.Background())
	if err != nil {
		t.Fatalf("GetGroups() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].ID != "120363001@g.us" || groups[0].Participants != 120 {
		t.Errorf("first group = %+v", groups[0])
	}
}

func TestSendImage(t *testing.T) {
	t.Parallel()

	var gotBody sendImageRequest
	svc, _ := newGatewayService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sendImage" {
			t.Errorf("path = %s, want /api/sendImage", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "wamid.IMG"})
	}), 1)

	id, err := svc.SendImage(context.Background(), "120363001@g.us", "https://cdn.example.com/a.jpg", "produk baru")
	if err != nil {
		t.Fatalf("SendImage() error = %v", err)
	}
	if id != "wamid.IMG" {
		t.Errorf("message id = %s, want wamid.IMG", id)
	}
	if gotBody.File.URL != "https://cdn.example.com/a.jpg" || gotBody.Caption != "produk baru" {
		t.Errorf("request body = %+v", gotBody)
	}
}
