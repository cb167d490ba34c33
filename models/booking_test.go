package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartsAtAndEndsAt(t *testing.T) {
	req := BookingRequest{
		BookingDate:     "2030-06-15",
		BookingTime:     "14:00",
		DurationMinutes: 45,
		Timezone:        "America/New_York",
	}

	start, err := req.StartsAt()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", start.Location().String())
	assert.Equal(t, 14, start.Hour())

	end, err := req.EndsAt()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, end.Sub(start))
}

func TestStartsAtUnknownZone(t *testing.T) {
	req := BookingRequest{BookingDate: "2030-06-15", BookingTime: "14:00", Timezone: "Nowhere/Land"}
	_, err := req.StartsAt()
	assert.Error(t, err)
}

func TestArtifactSucceeded(t *testing.T) {
	assert.True(t, MeetingArtifact{Confirmation: ConfirmationConfirmed}.Succeeded())
	assert.True(t, MeetingArtifact{Confirmation: ConfirmationPending}.Succeeded())
	assert.False(t, MeetingArtifact{Confirmation: ConfirmationFailed}.Succeeded())
	assert.False(t, MeetingArtifact{}.Succeeded())
}

func TestSuccessfulArtifacts(t *testing.T) {
	result := BookingResult{Artifacts: []MeetingArtifact{
		{Platform: ProviderZoom, Confirmation: ConfirmationConfirmed},
		{Platform: ProviderZohoBookings, Confirmation: ConfirmationFailed},
		{Platform: ProviderCalendly, Confirmation: ConfirmationPending},
	}}

	successful := result.SuccessfulArtifacts()
	require.Len(t, successful, 2)
	assert.Equal(t, ProviderZoom, successful[0].Platform)
	assert.Equal(t, ProviderCalendly, successful[1].Platform)
}
