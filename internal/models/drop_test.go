package models

import (
	"strings"
	"testing"
	"time"
)

func draftDrop() Drop {
	return Drop{
		ID:            "11111111-1111-1111-1111-111111111111",
		Name:          "Drop Senin",
		ScheduledDate: time.Now().Add(2 * time.Hour),
		Status:        DropStatusDraft,
		CreatedBy:     "22222222-2222-2222-2222-222222222222",
		Items: []DropItem{
			{ProductID: "p1", SortOrder: 0},
			{ProductID: "p2", SortOrder: 1},
		},
		GroupIDs:  []string{"g1", "g2"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestSchedule(t *testing.T) {
	t.Parallel()

	t.Run("from draft", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		out, err := d.Schedule()
		if err != nil {
			t.Fatalf("Schedule() error = %v", err)
		}
		if out.Status != DropStatusScheduled {
			t.Errorf("status = %s, want %s", out.Status, DropStatusScheduled)
		}
		if d.Status != DropStatusDraft {
			t.Errorf("original drop mutated: status = %s", d.Status)
		}
	})

	t.Run("reschedule allowed", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		d.Status = DropStatusScheduled
		if _, err := d.Schedule(); err != nil {
			t.Errorf("Schedule() from SCHEDULED error = %v", err)
		}
	})

	t.Run("without products", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		d.Items = nil
		_, err := d.Schedule()
		if !IsValidationError(err) {
			t.Fatalf("Schedule() error = %v, want validation error", err)
		}
		if !strings.Contains(err.Error(), "without products") {
			t.Errorf("error = %q, want mention of missing products", err)
		}
	})

	t.Run("without groups", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		d.GroupIDs = nil
		_, err := d.Schedule()
		if !IsValidationError(err) {
			t.Fatalf("Schedule() error = %v, want validation error", err)
		}
		if !strings.Contains(err.Error(), "without target groups") {
			t.Errorf("error = %q, want mention of missing groups", err)
		}
	})

	t.Run("terminal states rejected", func(t *testing.T) {
		t.Parallel()
		for _, status := range []string{DropStatusSent, DropStatusCancelled} {
			d := draftDrop()
			d.Status = status
			if _, err := d.Schedule(); !IsValidationError(err) {
				t.Errorf("Schedule() from %s error = %v, want validation error", status, err)
			}
		}
	})
}

func TestMarkAsSent(t *testing.T) {
	t.Parallel()

	t.Run("records sent_at and message id", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		d.Status = DropStatusScheduled
		out, err := d.MarkAsSent("wamid.ABC123")
		if err != nil {
			t.Fatalf("MarkAsSent() error = %v", err)
		}
		if out.Status != DropStatusSent {
			t.Errorf("status = %s, want %s", out.Status, DropStatusSent)
		}
		if out.SentAt == nil {
			t.Error("SentAt not set")
		}
		if out.WhatsAppMessageID == nil || *out.WhatsAppMessageID != "wamid.ABC123" {
			t.Errorf("WhatsAppMessageID = %v, want wamid.ABC123", out.WhatsAppMessageID)
		}
	})

	t.Run("empty message id stays nil", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		out, err := d.MarkAsSent("")
		if err != nil {
			t.Fatalf("MarkAsSent() error = %v", err)
		}
		if out.WhatsAppMessageID != nil {
			t.Errorf("WhatsAppMessageID = %v, want nil", out.WhatsAppMessageID)
		}
	})

	t.Run("already sent", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		sent, err := d.MarkAsSent("wamid.1")
		if err != nil {
			t.Fatalf("MarkAsSent() error = %v", err)
		}
		if _, err := sent.MarkAsSent("wamid.2"); !IsValidationError(err) {
			t.Errorf("second MarkAsSent() error = %v, want validation error", err)
		}
	})

	t.Run("cancelled cannot be sent", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		d.Status = DropStatusCancelled
		if _, err := d.MarkAsSent("wamid.1"); !IsValidationError(err) {
			t.Errorf("MarkAsSent() from CANCELLED error = %v, want validation error", err)
		}
	})
}

func TestCancel(t *testing.T) {
	t.Parallel()

	for _, status := range []string{DropStatusDraft, DropStatusScheduled} {
		d := draftDrop()
		d.Status = status
		out, err := d.Cancel()
		if err != nil {
			t.Fatalf("Cancel() from %s error = %v", status, err)
		}
		if out.Status != DropStatusCancelled {
			t.Errorf("status = %s, want %s", out.Status, DropStatusCancelled)
		}
	}

	for _, status := range []string{DropStatusSent, DropStatusCancelled} {
		d := draftDrop()
		d.Status = status
		if _, err := d.Cancel(); !IsValidationError(err) {
			t.Errorf("Cancel() from %s error = %v, want validation error", status, err)
		}
	}
}

func TestApplyUpdate(t *testing.T) {
	t.Parallel()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		name := "Drop Selasa"
		out, err := d.ApplyUpdate(DropUpdate{Name: &name})
		if err != nil {
			t.Fatalf("ApplyUpdate() error = %v", err)
		}
		if out.Name != "Drop Selasa" {
			t.Errorf("name = %s, want Drop Selasa", out.Name)
		}
		if len(out.Items) != 2 || len(out.GroupIDs) != 2 {
			t.Errorf("items/groups changed: %d items, %d groups", len(out.Items), len(out.GroupIDs))
		}
	})

	t.Run("terminal drop rejects update", func(t *testing.T) {
		t.Parallel()
		for _, status := range []string{DropStatusSent, DropStatusCancelled} {
			d := draftDrop()
			d.Status = status
			name := "x"
			if _, err := d.ApplyUpdate(DropUpdate{Name: &name}); !IsValidationError(err) {
				t.Errorf("ApplyUpdate() on %s error = %v, want validation error", status, err)
			}
		}
	})

	t.Run("past scheduled date rejected", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		past := time.Now().Add(-time.Hour)
		if _, err := d.ApplyUpdate(DropUpdate{ScheduledDate: &past}); !IsValidationError(err) {
			t.Errorf("ApplyUpdate() error = %v, want validation error", err)
		}
	})

	t.Run("empty item list rejected", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		if _, err := d.ApplyUpdate(DropUpdate{Items: []DropItem{}}); !IsValidationError(err) {
			t.Errorf("ApplyUpdate() error = %v, want validation error", err)
		}
	})

	t.Run("empty group list rejected", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		if _, err := d.ApplyUpdate(DropUpdate{GroupIDs: []string{}}); !IsValidationError(err) {
			t.Errorf("ApplyUpdate() error = %v, want validation error", err)
		}
	})

	t.Run("duplicate products rejected", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		items := []DropItem{{ProductID: "p1"}, {ProductID: "p1"}}
		if _, err := d.ApplyUpdate(DropUpdate{Items: items}); !IsValidationError(err) {
			t.Errorf("ApplyUpdate() error = %v, want validation error", err)
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		status := "ARCHIVED"
		if _, err := d.ApplyUpdate(DropUpdate{Status: &status}); !IsValidationError(err) {
			t.Errorf("ApplyUpdate() error = %v, want validation error", err)
		}
	})

	t.Run("sent status rejected, send flow only", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		status := DropStatusSent
		_, err := d.ApplyUpdate(DropUpdate{Status: &status})
		if !IsValidationError(err) {
			t.Fatalf("ApplyUpdate() error = %v, want validation error", err)
		}
		if !strings.Contains(err.Error(), "cannot be marked as sent") {
			t.Errorf("error = %q, want send-flow rejection", err)
		}
	})

	t.Run("failed update leaves original untouched", func(t *testing.T) {
		t.Parallel()
		d := draftDrop()
		name := "baru"
		items := []DropItem{{ProductID: "p1"}, {ProductID: "p1"}}
		_, err := d.ApplyUpdate(DropUpdate{Name: &name, Items: items})
		if err == nil {
			t.Fatal("ApplyUpdate() expected error")
		}
		if d.Name != "Drop Senin" || len(d.Items) != 2 {
			t.Errorf("original drop mutated: name=%s items=%d", d.Name, len(d.Items))
		}
	})
}

func TestCanBeSent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mod  func(*Drop)
		want bool
	}{
		{"draft with items and groups", func(d *Drop) {}, true},
		{"scheduled", func(d *Drop) { d.Status = DropStatusScheduled }, true},
		{"sent", func(d *Drop) { d.Status = DropStatusSent }, false},
		{"cancelled", func(d *Drop) { d.Status = DropStatusCancelled }, false},
		{"no items", func(d *Drop) { d.Items = nil }, false},
		{"no groups", func(d *Drop) { d.GroupIDs = nil }, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := draftDrop()
			tt.mod(&d)
			if got := d.CanBeSent(); got != tt.want {
				t.Errorf("CanBeSent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasGroup(t *testing.T) {
	t.Parallel()

	d := draftDrop()
	if !d.HasGroup("g1") {
		t.Error("HasGroup(g1) = false, want true")
	}
	if d.HasGroup("g9") {
		t.Error("HasGroup(g9) = true, want false")
	}
}

func TestValidateDropGroups(t *testing.T) {
	t.Parallel()

	if err := ValidateDropGroups([]string{"g1", "g2"}); err != nil {
		t.Errorf("ValidateDropGroups() error = %v", err)
	}
	if err := ValidateDropGroups([]string{"g1", "g1"}); !IsValidationError(err) {
		t.Errorf("ValidateDropGroups() error = %v, want validation error", err)
	}
}
