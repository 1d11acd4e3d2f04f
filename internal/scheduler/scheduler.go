package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/service"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/services"

	"github.com/robfig/cron/v3"
)

// DispatchPoller periodically looks for due drops and dispatches them.
// A drop whose fan-out partially failed stays SCHEDULED so an operator can
// retry the failed groups by hand.
type DispatchPoller struct {
	drops      *services.DropService
	dispatch   *services.DispatchService
	email      *service.MultiProviderEmailService
	adminEmail string
	cron       *cron.Cron
}

func NewDispatchPoller(drops *services.DropService, dispatch *services.DispatchService,
	email *service.MultiProviderEmailService, adminEmail string) *DispatchPoller {
	return &DispatchPoller{
		drops:      drops,
		dispatch:   dispatch,
		email:      email,
		adminEmail: adminEmail,
	}
}

// Start registers the tick on the given cron schedule and starts the cron.
func (p *DispatchPoller) Start(schedule string) error {
	p.cron = cron.New()
	if _, err := p.cron.AddFunc(schedule, p.tick); err != nil {
		return err
	}
	p.cron.Start()
	log.Printf("DispatchPoller: started with schedule %q", schedule)
	return nil
}

func (p *DispatchPoller) Stop() {
	if p.cron != nil {
		ctx := p.cron.Stop()
		<-ctx.Done()
		log.Println("DispatchPoller: stopped")
	}
}

func (p *DispatchPoller) tick() {
	now := time.Now()

	due := make(map[string]models.Drop)

	today, err := p.drops.GetDropsForDate(now)
	if err != nil {
		log.Printf("DispatchPoller: failed to load today's drops: %v", err)
	} else {
		for _, drop := range today {
			if drop.Status == models.DropStatusScheduled && !drop.ScheduledDate.After(now) {
				due[drop.ID] = drop
			}
		}
	}

	overdue, err := p.drops.GetOverdueDrops()
	if err != nil {
		log.Printf("DispatchPoller: failed to load overdue drops: %v", err)
	} else {
		for _, drop := range overdue {
			due[drop.ID] = drop
		}
	}

	for _, drop := range due {
		p.dispatchDrop(drop)
	}
}

func (p *DispatchPoller) dispatchDrop(drop models.Drop) {
	log.Printf("DispatchPoller: dispatching drop %s (%s)", drop.ID, drop.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := p.dispatch.SendDropToAllGroups(ctx, drop.ID)
	if err != nil {
		log.Printf("DispatchPoller: drop %s rejected: %v", drop.ID, err)
		return
	}

	if report.OverallSuccess {
		messageID := ""
		if len(report.Results) > 0 {
			messageID = report.Results[0].MessageID
		}
		if _, err := p.drops.MarkAsSent(drop.ID, messageID); err != nil {
			log.Printf("DispatchPoller: failed to mark drop %s as sent: %v", drop.ID, err)
		}
	} else {
		log.Printf("DispatchPoller: drop %s had failures, leaving it SCHEDULED for manual retry", drop.ID)
	}

	p.notifyAdmin(drop, report)
}

func (p *DispatchPoller) notifyAdmin(drop models.Drop, report models.DispatchReport) {
	if p.email == nil || p.adminEmail == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := drop.Name
	if name == "" {
		name = drop.ID
	}
	if err := p.email.SendDispatchReport(ctx, p.adminEmail, name, report); err != nil {
		log.Printf("DispatchPoller: failed to email dispatch report for drop %s: %v", drop.ID, err)
	}
}
