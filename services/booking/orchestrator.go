// File: services/booking/orchestrator.go
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"meetbridge/models"
	"meetbridge/services/notification"
	"meetbridge/services/platform"
	"meetbridge/utils"
)

// BookMeeting validates the request, invokes every connected adapter exactly
// once (concurrently, each under its own timeout), aggregates one artifact per
// attempted adapter and then triggers the summary notification exactly once.
// Adapter failures degrade the result; only validation failures are fatal.
func (s *DefaultBookingService) BookMeeting(ctx context.Context, orgID string, req models.BookingRequest) (*models.BookingResult, error) {
	logger := utils.GetLogger()

	if err := s.normalizeAndValidate(&req); err != nil {
		logger.Warn("booking request rejected", zap.String("org", orgID), zap.Error(err))
		return nil, err
	}

	adapters, err := s.Registry.Active(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve connected platforms: %w", err)
	}

	result := &models.BookingResult{Request: req}

	if len(adapters) == 0 {
		result.Message = "No meeting platforms are connected. Connect at least one integration (Zoom, Google Calendar, Calendly, or Zoho Bookings)."
		logger.Warn("booking attempted with no connected platforms", zap.String("org", orgID))
		return result, nil
	}

	logger.Info("booking meeting",
		zap.String("org", orgID),
		zap.String("customer", req.CustomerEmail),
		zap.String("date", req.BookingDate),
		zap.String("time", req.BookingTime),
		zap.Int("platforms", len(adapters)))

	// Adapters are independent network calls with no shared state; run them
	// all in parallel and join before aggregating.
	artifacts := make([]models.MeetingArtifact, len(adapters))
	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter platform.Adapter) {
			defer wg.Done()
			artifacts[i] = s.attempt(ctx, adapter, req)
		}(i, adapter)
	}
	wg.Wait()

	result.Artifacts = artifacts
	for _, artifact := range artifacts {
		if artifact.Succeeded() {
			result.PlatformsUsed = append(result.PlatformsUsed, artifact.Platform)
		}
	}

	s.notify(ctx, orgID, result)
	result.Message = buildMessage(result)

	logger.Info("booking completed",
		zap.String("org", orgID),
		zap.Strings("platformsUsed", result.PlatformsUsed),
		zap.Bool("emailSent", result.EmailSent))
	return result, nil
}

// attempt runs one adapter under its own deadline and always yields an
// artifact; failures are captured in FailureReason, never dropped.
func (s *DefaultBookingService) attempt(ctx context.Context, adapter platform.Adapter, req models.BookingRequest) models.MeetingArtifact {
	cctx, cancel := context.WithTimeout(ctx, s.AdapterTimeout)
	defer cancel()

	artifact, err := adapter.CreateMeeting(cctx, req)
	if err != nil {
		reason := platform.FailureReason(err)
		utils.GetLogger().Warn("platform adapter failed",
			zap.String("platform", adapter.Name()),
			zap.String("reason", reason),
			zap.Error(err))
		return models.MeetingArtifact{
			Platform:      adapter.Name(),
			Confirmation:  models.ConfirmationFailed,
			FailureReason: reason,
		}
	}
	return *artifact
}

// notify sends the summary email once; delivery failure degrades the result
// and never rolls back the created meetings.
func (s *DefaultBookingService) notify(ctx context.Context, orgID string, result *models.BookingResult) {
	if err := s.NotificationSvc.SendBookingSummary(ctx, orgID, result); err != nil {
		result.EmailSent = false
		if errors.Is(err, notification.ErrNotConfigured) {
			result.NotificationError = "email integration not connected"
		} else {
			result.NotificationError = err.Error()
		}
		utils.GetLogger().Warn("booking summary email not sent",
			zap.String("org", orgID), zap.Error(err))
		return
	}
	result.EmailSent = true
}

func buildMessage(result *models.BookingResult) string {
	if len(result.PlatformsUsed) == 0 {
		return "No platform could create the meeting; see artifacts for per-platform reasons."
	}
	msg := fmt.Sprintf("Meeting booked successfully via %s!", strings.Join(result.PlatformsUsed, ", "))
	if result.EmailSent {
		msg += fmt.Sprintf(" Confirmation email sent to %s.", result.Request.CustomerEmail)
	} else if result.NotificationError != "" {
		msg += " (Note: confirmation email not sent - " + result.NotificationError + ")"
	}
	return msg
}
