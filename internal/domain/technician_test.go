package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTechnicianCalendar(t *testing.T) {
	tech := &Technician{ID: 1, Name: "Alex", Categories: []string{"brakes", "engine"}, Capacity: WeekdaysCapacity(8), Active: true}
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 8.0, tech.DailyCapacity(monday))
	assert.Zero(t, tech.DailyCapacity(saturday))
	assert.True(t, tech.WorksOn(monday))
	assert.False(t, tech.WorksOn(saturday))
	assert.True(t, tech.IsSchedulable())

	assert.True(t, tech.CanPerform(""))
	assert.True(t, tech.CanPerform("engine"))
	assert.False(t, tech.CanPerform("tires"))

	tech.Active = false
	assert.False(t, tech.WorksOn(monday))

	idle := &Technician{Active: true}
	assert.False(t, idle.IsSchedulable())
}

func TestTimeOffCovers(t *testing.T) {
	entry := &TimeOffEntry{
		TechnicianID: 3,
		StartDate:    time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, entry.IsFullDay())
	assert.True(t, entry.Covers(3, time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)))
	assert.False(t, entry.Covers(3, time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)))
	assert.False(t, entry.Covers(4, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)))
}
