package fixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bookshelf-qa/library-e2e/internal/config"
)

func TestWindowPlanner(t *testing.T) {
	t.Run("fixed dates", func(t *testing.T) {
		p := NewWindowPlanner(config.RentalConfig{StartDate: "2025-12-20", EndDate: "2025-12-27"})
		assert.Equal(t, RentalWindow{Start: "2025-12-20", End: "2025-12-27"}, p.Next())
	})

	t.Run("dynamic window starts on next business day", func(t *testing.T) {
		p := NewWindowPlanner(config.RentalConfig{Dynamic: true, LengthDays: 7})
		// Friday
		p.now = func() time.Time { return time.Date(2025, time.December, 19, 15, 0, 0, 0, time.UTC) }

		assert.Equal(t, RentalWindow{Start: "2025-12-22", End: "2025-12-29"}, p.Next())
	})

	t.Run("configured holidays are skipped", func(t *testing.T) {
		p := NewWindowPlanner(config.RentalConfig{
			Dynamic:    true,
			LengthDays: 3,
			Holidays:   []config.HolidayConfig{{Name: "Natal", Month: 12, Day: 25}},
		})
		p.now = func() time.Time { return time.Date(2025, time.December, 24, 9, 0, 0, 0, time.UTC) }

		assert.Equal(t, RentalWindow{Start: "2025-12-26", End: "2025-12-29"}, p.Next())
	})
}
