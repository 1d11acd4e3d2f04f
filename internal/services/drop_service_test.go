package services

import (
	"strings"
	"testing"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"
)

func newTestDropService() (*DropService, *memoryDropStore) {
	store := newMemoryDropStore()
	svc := NewDropServiceWith(store, testCatalog(), testDirectory(), time.UTC)
	return svc, store
}

func validInput() CreateDropInput {
	return CreateDropInput{
		Name:          "Drop Jumat",
		ScheduledDate: time.Now().Add(3 * time.Hour),
		ProductIDs:    []string{"p1", "p2"},
		GroupIDs:      []string{"g1", "g2"},
		CreatedBy:     "admin-1",
	}
}

func TestCreateDrop(t *testing.T) {
	t.Parallel()

	t.Run("valid input", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()
		drop, err := svc.Create(validInput())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if drop.Status != models.DropStatusDraft {
			t.Errorf("status = %s, want %s", drop.Status, models.DropStatusDraft)
		}
		if len(drop.Items) != 2 {
			t.Fatalf("items = %d, want 2", len(drop.Items))
		}
		if drop.Items[0].ProductID != "p1" || drop.Items[0].SortOrder != 0 {
			t.Errorf("first item = %+v, want p1 at sort order 0", drop.Items[0])
		}
		if drop.Items[1].SortOrder != 1 {
			t.Errorf("second item sort order = %d, want 1", drop.Items[1].SortOrder)
		}
	})

	t.Run("lead time boundary", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()

		input := validInput()
		input.ScheduledDate = time.Now().Add(30 * time.Minute)
		if _, err := svc.Create(input); !models.IsValidationError(err) {
			t.Errorf("Create() 30min ahead error = %v, want validation error", err)
		}

		input.ScheduledDate = time.Now().Add(time.Hour + time.Second)
		if _, err := svc.Create(input); err != nil {
			t.Errorf("Create() 1h1s ahead error = %v", err)
		}
	})

	t.Run("empty lists", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()

		input := validInput()
		input.ProductIDs = nil
		if _, err := svc.Create(input); !models.IsValidationError(err) {
			t.Errorf("Create() without products error = %v, want validation error", err)
		}

		input = validInput()
		input.GroupIDs = nil
		if _, err := svc.Create(input); !models.IsValidationError(err) {
			t.Errorf("Create() without groups error = %v, want validation error", err)
		}
	})

	t.Run("duplicate products", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()
		input := validInput()
		input.ProductIDs = []string{"p1", "p1"}
		if _, err := svc.Create(input); !models.IsValidationError(err) {
			t.Errorf("Create() error = %v, want validation error", err)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()
		input := validInput()
		input.ProductIDs = []string{"p1", "p99"}
		if _, err := svc.Create(input); !models.IsNotFoundError(err) {
			t.Errorf("Create() error = %v, want not found error", err)
		}
	})

	t.Run("inactive product named in error", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()
		input := validInput()
		input.ProductIDs = []string{"p1", "p3"}
		_, err := svc.Create(input)
		if !models.IsValidationError(err) {
			t.Fatalf("Create() error = %v, want validation error", err)
		}
		if !strings.Contains(err.Error(), "Produk Lama") {
			t.Errorf("error = %q, want the inactive product named", err)
		}
	})

	t.Run("inactive group named in error", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()
		input := validInput()
		input.GroupIDs = []string{"g1", "g3"}
		_, err := svc.Create(input)
		if !models.IsValidationError(err) {
			t.Fatalf("Create() error = %v, want validation error", err)
		}
		if !strings.Contains(err.Error(), "Grup Nonaktif") {
			t.Errorf("error = %q, want the inactive group named", err)
		}
	})
}

func TestUpdateDrop(t *testing.T) {
	t.Parallel()

	t.Run("rename", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()
		drop, err := svc.Create(validInput())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		name := "Drop Sabtu"
		updated, err := svc.Update(drop.ID, models.UpdateDropRequest{Name: &name})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Name != "Drop Sabtu" {
			t.Errorf("name = %s, want Drop Sabtu", updated.Name)
		}
	})

	t.Run("bad date format", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()
		drop, _ := svc.Create(validInput())

		bad := "2026-09-05 10:00"
		if _, err := svc.Update(drop.ID, models.UpdateDropRequest{ScheduledDate: &bad}); !models.IsValidationError(err) {
			t.Errorf("Update() error = %v, want validation error", err)
		}
	})

	t.Run("reschedule too soon", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()
		drop, _ := svc.Create(validInput())

		soon := time.Now().Add(10 * time.Minute).Format(time.RFC3339)
		if _, err := svc.Update(drop.ID, models.UpdateDropRequest{ScheduledDate: &soon}); !models.IsValidationError(err) {
			t.Errorf("Update() error = %v, want validation error", err)
		}
	})

	t.Run("cancelled drop rejects edits", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()
		drop, _ := svc.Create(validInput())
		if _, err := svc.Cancel(drop.ID); err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}

		name := "x"
		if _, err := svc.Update(drop.ID, models.UpdateDropRequest{Name: &name}); !models.IsValidationError(err) {
			t.Errorf("Update() error = %v, want validation error", err)
		}
	})

	t.Run("unknown drop", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestDropService()
		name := "x"
		if _, err := svc.Update("missing", models.UpdateDropRequest{Name: &name}); !models.IsNotFoundError(err) {
			t.Errorf("Update() error = %v, want not found error", err)
		}
	})
}

func TestDeleteDrop(t *testing.T) {
	t.Parallel()

	svc, store := newTestDropService()
	drop, err := svc.Create(validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.MarkAsSent(drop.ID, "wamid.1"); err != nil {
		t.Fatalf("MarkAsSent() error = %v", err)
	}
	if err := svc.Delete(drop.ID); !models.IsValidationError(err) {
		t.Errorf("Delete() of sent drop error = %v, want validation error", err)
	}

	other, _ := svc.Create(validInput())
	if err := svc.Delete(other.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if _, err := store.FindByID(other.ID); !models.IsNotFoundError(err) {
		t.Errorf("FindByID() after delete error = %v, want not found error", err)
	}
}

func TestDropLifecycle(t *testing.T) {
	t.Parallel()

	svc, _ := newTestDropService()
	drop, err := svc.Create(validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	scheduled, err := svc.Schedule(drop.ID)
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if scheduled.Status != models.DropStatusScheduled {
		t.Fatalf("status = %s, want SCHEDULED", scheduled.Status)
	}

	sent, err := svc.MarkAsSent(drop.ID, "wamid.XYZ")
	if err != nil {
		t.Fatalf("MarkAsSent() error = %v", err)
	}
	if sent.Status != models.DropStatusSent || sent.SentAt == nil {
		t.Fatalf("sent drop = %+v, want SENT with sent_at", sent)
	}

	if _, err := svc.Cancel(drop.ID); !models.IsValidationError(err) {
		t.Errorf("Cancel() after sent error = %v, want validation error", err)
	}
	if _, err := svc.Schedule(drop.ID); !models.IsValidationError(err) {
		t.Errorf("Schedule() after sent error = %v, want validation error", err)
	}
}

func TestListDrops(t *testing.T) {
	t.Parallel()

	svc, _ := newTestDropService()
	for i := 0; i < 5; i++ {
		input := validInput()
		input.ScheduledDate = time.Now().Add(time.Duration(i+2) * time.Hour)
		if _, err := svc.Create(input); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	drop, _ := svc.Create(validInput())
	if _, err := svc.Cancel(drop.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	resp, err := svc.List(models.DropFilters{Status: models.DropStatusDraft}, 1, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.Total != 5 {
		t.Errorf("total = %d, want 5", resp.Total)
	}
	if len(resp.Drops) != 3 {
		t.Errorf("page size = %d, want 3", len(resp.Drops))
	}
	if resp.TotalPages != 2 {
		t.Errorf("total pages = %d, want 2", resp.TotalPages)
	}

	// Out-of-range paging values fall back to defaults
	resp, err = svc.List(models.DropFilters{}, 0, 500)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.Page != 1 || resp.Limit != 20 {
		t.Errorf("page/limit = %d/%d, want 1/20", resp.Page, resp.Limit)
	}
}

func TestGetDropsForDate(t *testing.T) {
	t.Parallel()

	svc, store := newTestDropService()

	today := time.Now().Add(2 * time.Hour)
	input := validInput()
	input.ScheduledDate = today
	todayDrop, err := svc.Create(input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	input = validInput()
	input.ScheduledDate = today.Add(48 * time.Hour)
	if _, err := svc.Create(input); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	input = validInput()
	input.ScheduledDate = today.Add(time.Minute)
	cancelled, err := svc.Create(input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Cancel(cancelled.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	drops, err := svc.GetDropsForDate(today)
	if err != nil {
		t.Fatalf("GetDropsForDate() error = %v", err)
	}
	if len(drops) != 1 || drops[0].ID != todayDrop.ID {
		t.Errorf("GetDropsForDate() = %d drops, want only the active drop of that day", len(drops))
	}

	// Overdue detection only considers SCHEDULED drops
	overdueDrop := todayDrop
	overdueDrop.Status = models.DropStatusScheduled
	overdueDrop.ScheduledDate = time.Now().Add(-time.Hour)
	if err := store.Update(overdueDrop); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	overdue, err := svc.GetOverdueDrops()
	if err != nil {
		t.Fatalf("GetOverdueDrops() error = %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != todayDrop.ID {
		t.Errorf("GetOverdueDrops() = %+v, want the rescheduled drop", overdue)
	}
}

func TestGetAnalytics(t *testing.T) {
	t.Parallel()

	svc, store := newTestDropService()

	draft, _ := svc.Create(validInput())
	_ = draft

	scheduled, _ := svc.Create(validInput())
	if _, err := svc.Schedule(scheduled.ID); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	sent, _ := svc.Create(validInput())
	if _, err := svc.MarkAsSent(sent.ID, "wamid.1"); err != nil {
		t.Fatalf("MarkAsSent() error = %v", err)
	}

	overdue, _ := svc.Create(validInput())
	od, err := svc.Schedule(overdue.ID)
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	od.ScheduledDate = time.Now().Add(-2 * time.Hour)
	if err := store.Update(od); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	analytics, err := svc.GetAnalytics()
	if err != nil {
		t.Fatalf("GetAnalytics() error = %v", err)
	}
	if analytics.Total != 4 {
		t.Errorf("total = %d, want 4", analytics.Total)
	}
	if analytics.Draft != 1 || analytics.Scheduled != 2 || analytics.Sent != 1 {
		t.Errorf("counts = draft %d scheduled %d sent %d, want 1/2/1",
			analytics.Draft, analytics.Scheduled, analytics.Sent)
	}
	if analytics.Upcoming != 1 || analytics.Overdue != 1 {
		t.Errorf("upcoming/overdue = %d/%d, want 1/1", analytics.Upcoming, analytics.Overdue)
	}
}
