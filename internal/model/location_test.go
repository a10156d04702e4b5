package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Added")
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, s)

	s, err = ParseStatus(" removed ")
	require.NoError(t, err)
	assert.Equal(t, StatusClose, s)

	_, err = ParseStatus("Relocated")
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestEventTypeStatus(t *testing.T) {
	assert.Equal(t, StatusOpen, EventAdded.Status())
	assert.Equal(t, StatusClose, EventRemoved.Status())
}

func TestApplyStatus(t *testing.T) {
	jan := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	var loc Location
	loc.ApplyStatus(StatusOpen, jan)
	require.NotNil(t, loc.OpenedAt)
	assert.Equal(t, jan, *loc.OpenedAt)
	assert.Nil(t, loc.ClosedAt)

	loc.ApplyStatus(StatusClose, mar)
	assert.Equal(t, StatusClose, loc.Status)
	require.NotNil(t, loc.ClosedAt)
	assert.Equal(t, mar, *loc.ClosedAt)
	require.NotNil(t, loc.OpenedAt, "closing keeps the opened date")

	// Reopening clears the closed date.
	loc.ApplyStatus(StatusOpen, mar)
	assert.Nil(t, loc.ClosedAt)
	assert.Equal(t, mar, *loc.OpenedAt)
}

func TestAdvanceLastEventDate(t *testing.T) {
	jan := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	var loc Location
	assert.True(t, loc.AdvanceLastEventDate(mar))
	assert.False(t, loc.AdvanceLastEventDate(jan), "older window never moves the watermark back")
	assert.Equal(t, mar, *loc.LastEventDate)
	assert.False(t, loc.AdvanceLastEventDate(mar), "equal date is a no-op")
}
