// File: services/notification/email.go
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"meetbridge/config"
	integrationRepo "meetbridge/database/repository/integration"
	"meetbridge/models"
	"meetbridge/utils"
)

// DefaultNotificationService sends the booking summary over SMTP using the
// organization's stored Gmail credentials.
type DefaultNotificationService struct {
	Repo integrationRepo.IntegrationRepository

	// send is swappable in tests; defaults to dialing the configured SMTP host.
	send func(from, password string, msg *gomail.Message) error
}

func NewDefaultNotificationService(repo integrationRepo.IntegrationRepository) *DefaultNotificationService {
	return &DefaultNotificationService{
		Repo: repo,
		send: func(from, password string, msg *gomail.Message) error {
			dialer := gomail.NewDialer(config.AppConfig.SMTPHost, config.AppConfig.SMTPPort, from, password)
			return dialer.DialAndSend(msg)
		},
	}
}

// SendBookingSummary composes one email covering every artifact and sends it
// to the customer. Missing Gmail credentials surface as ErrNotConfigured.
func (s *DefaultNotificationService) SendBookingSummary(ctx context.Context, orgID string, result *models.BookingResult) error {
	integ, err := s.Repo.GetByProvider(ctx, orgID, models.ProviderGmail)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotConfigured
		}
		return fmt.Errorf("failed to load gmail integration: %w", err)
	}
	if !integ.IsConnected || !integ.IsActive {
		return ErrNotConfigured
	}

	creds, err := utils.DecryptCredentials(integ.Config)
	if err != nil {
		return fmt.Errorf("failed to decrypt gmail credentials: %w", err)
	}
	from, password := creds["email"], creds["app_password"]
	if from == "" || password == "" {
		return ErrNotConfigured
	}

	req := result.Request
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", req.CustomerEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Meeting Confirmation - %s at %s", req.BookingDate, req.BookingTime))
	msg.SetBody("text/plain", ComposeSummary(result))

	if err := s.send(from, password, msg); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	utils.GetLogger().Info("booking confirmation email sent",
		zap.String("to", req.CustomerEmail), zap.String("org", orgID))
	return nil
}

// ComposeSummary renders the plain-text confirmation body, one section per
// artifact, labeled by platform and confirmation state.
func ComposeSummary(result *models.BookingResult) string {
	req := result.Request
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", req.CustomerName)
	b.WriteString("Your meeting has been scheduled!\n\n")
	b.WriteString("Meeting Details:\n")
	b.WriteString("================================\n")
	fmt.Fprintf(&b, "Date: %s\n", req.BookingDate)
	fmt.Fprintf(&b, "Time: %s (%s)\n", req.BookingTime, req.Timezone)
	fmt.Fprintf(&b, "Duration: %d minutes\n", req.DurationMinutes)

	for _, artifact := range result.Artifacts {
		if !artifact.Succeeded() {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", platformLabel(artifact.Platform))
		b.WriteString("================================\n")
		if artifact.Confirmation == models.ConfirmationPending {
			b.WriteString("Pick your slot using this one-time scheduling link:\n")
		}
		if artifact.URL != "" {
			fmt.Fprintf(&b, "Link: %s\n", artifact.URL)
		}
		if artifact.ExtraURL != "" {
			fmt.Fprintf(&b, "Google Meet: %s\n", artifact.ExtraURL)
		}
		if artifact.MeetingID != "" {
			fmt.Fprintf(&b, "Meeting ID: %s\n", artifact.MeetingID)
		}
		if artifact.Credential != "" {
			fmt.Fprintf(&b, "Password: %s\n", artifact.Credential)
		}
	}

	if req.Notes != "" {
		b.WriteString("\nAdditional Notes:\n")
		b.WriteString("================================\n")
		b.WriteString(req.Notes)
		b.WriteString("\n")
	}

	b.WriteString("\nIf you have any questions or need to reschedule, please contact us.\n\n")
	b.WriteString("Best regards,\nYour Team\n\n")
	b.WriteString("================================\n")
	b.WriteString("This is an automated confirmation email.\n")
	return b.String()
}

func platformLabel(provider string) string {
	switch provider {
	case models.ProviderZoom:
		return "Zoom Meeting"
	case models.ProviderGoogleCalendar:
		return "Google Calendar Event"
	case models.ProviderCalendly:
		return "Calendly Scheduling Link"
	case models.ProviderZohoBookings:
		return "Zoho Bookings Appointment"
	default:
		return provider
	}
}
