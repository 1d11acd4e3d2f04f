package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"

	"golang.org/x/time/rate"
)

// MessageGateway is the slice of the WhatsApp service the coordinator needs.
type MessageGateway interface {
	EnsureSessionReady(ctx context.Context) error
	SendText(ctx context.Context, chatID, text string) (string, error)
}

// DispatchService fans a drop out to its bound groups. It never transitions
// the drop itself: marking as sent is the caller's decision after inspecting
// OverallSuccess, so a partial failure can be retried per group.
type DispatchService struct {
	store     DropStore
	groups    GroupDirectory
	gateway   MessageGateway
	sendDelay time.Duration
}

func NewDispatchService(store DropStore, groups GroupDirectory, gateway MessageGateway, sendDelay time.Duration) *DispatchService {
	return &DispatchService{
		store:     store,
		groups:    groups,
		gateway:   gateway,
		sendDelay: sendDelay,
	}
}

// SendDropToGroup sends the drop message to a single bound group. Gateway
// failures are reported inside the result; the returned error is reserved
// for business-rule violations.
func (s *DispatchService) SendDropToGroup(ctx context.Context, dropID, groupID string) (models.DispatchResult, error) {
	drop, err := s.store.FindByID(dropID)
	if err != nil {
		return models.DispatchResult{}, err
	}
	if !drop.CanBeSent() {
		return models.DispatchResult{}, models.NewValidationError(fmt.Sprintf("drop cannot be sent in status %s", drop.Status))
	}
	if !drop.HasGroup(groupID) {
		return models.DispatchResult{}, models.NewValidationError(fmt.Sprintf("group is not part of this drop: %s", groupID))
	}

	message := RenderDropMessage(drop)
	return s.sendOne(ctx, drop.ID, groupID, message), nil
}

// SendDropToAllGroups sends the drop to every bound group sequentially, in
// binding order, with a pause between sends so the gateway's own rate
// limiting is never triggered. One failing group does not abort the rest.
func (s *DispatchService) SendDropToAllGroups(ctx context.Context, dropID string) (models.DispatchReport, error) {
	drop, err := s.store.FindByID(dropID)
	if err != nil {
		return models.DispatchReport{}, err
	}
	if !drop.CanBeSent() {
		return models.DispatchReport{}, models.NewValidationError(fmt.Sprintf("drop cannot be sent in status %s", drop.Status))
	}

	message := RenderDropMessage(drop)

	// Fresh limiter per fan-out: the first send goes immediately, every
	// following send waits out the configured delay.
	var limiter *rate.Limiter
	if len(drop.GroupIDs) > 1 && s.sendDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(s.sendDelay), 1)
	}

	report := models.DispatchReport{
		DropID:         drop.ID,
		OverallSuccess: true,
	}

	for _, groupID := range drop.GroupIDs {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				// Context gone: record the remaining groups as failed so the
				// caller still gets a complete result set.
				report.Results = append(report.Results, models.DispatchResult{
					DropID:  drop.ID,
					GroupID: groupID,
					Success: false,
					Error:   err.Error(),
				})
				report.OverallSuccess = false
				continue
			}
		}

		result := s.sendOne(ctx, drop.ID, groupID, message)
		report.Results = append(report.Results, result)
		if !result.Success {
			report.OverallSuccess = false
		}
	}

	log.Printf("DispatchService: drop %s fan-out done, %d groups, success=%t",
		drop.ID, len(report.Results), report.OverallSuccess)
	return report, nil
}

// sendOne resolves the group, checks the session and performs the send.
// All failures are folded into the result.
func (s *DispatchService) sendOne(ctx context.Context, dropID, groupID, message string) models.DispatchResult {
	result := models.DispatchResult{
		DropID:  dropID,
		GroupID: groupID,
	}

	group, err := s.groups.FindByID(groupID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if !group.IsActive {
		result.Error = fmt.Sprintf("group is not active: %s", group.Name)
		return result
	}

	if err := s.gateway.EnsureSessionReady(ctx); err != nil {
		result.Error = fmt.Sprintf("session not ready: %v", err)
		return result
	}

	messageID, err := s.gateway.SendText(ctx, group.ChatID, message)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.MessageID = messageID
	return result
}

// RenderDropMessage builds the outbound text: a header, one numbered block
// per product in sort order, and a call-to-action footer with the drop date.
func RenderDropMessage(drop models.Drop) string {
	var b strings.Builder

	name := drop.Name
	if name == "" {
		name = "Drop Spesial"
	}
	b.WriteString(fmt.Sprintf("🔥 *%s* 🔥\n\n", name))

	for i, item := range drop.Items {
		b.WriteString(fmt.Sprintf("%d. *%s*\n", i+1, item.ProductName))
		b.WriteString(fmt.Sprintf("   Harga: Rp %s\n", FormatPrice(item.ProductPrice)))
		if item.ProductDescription != "" {
			b.WriteString(fmt.Sprintf("   %s\n", item.ProductDescription))
		}
		b.WriteString("\n")
	}

	b.WriteString("Balas pesan ini untuk pesan sekarang! 🛒\n")
	b.WriteString(fmt.Sprintf("Drop: %s", drop.ScheduledDate.Format("02 Jan 2006 15:04")))
	return b.String()
}

// FormatPrice renders an amount with Indonesian thousand separators.
func FormatPrice(amount float64) string {
	digits := strconv.FormatInt(int64(amount), 10)

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune('.')
		}
		b.WriteRune(d)
	}
	return b.String()
}
