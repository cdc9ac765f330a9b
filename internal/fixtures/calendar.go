package fixtures

import (
	"time"

	"github.com/rickar/cal/v2"

	"github.com/bookshelf-qa/library-e2e/internal/config"
)

// RentalWindow is the dataInicio/dataFim pair sent with a rental request.
type RentalWindow struct {
	Start string
	End   string
}

// WindowPlanner decides rental dates: fixed ones from config, or a window
// starting on the next business day.
type WindowPlanner struct {
	calendar *cal.BusinessCalendar
	cfg      config.RentalConfig
	now      func() time.Time
}

// NewWindowPlanner builds a planner with the configured holidays.
func NewWindowPlanner(cfg config.RentalConfig) *WindowPlanner {
	c := cal.NewBusinessCalendar()
	for _, h := range cfg.Holidays {
		c.AddHoliday(&cal.Holiday{
			Name:  h.Name,
			Type:  cal.ObservancePublic,
			Month: time.Month(h.Month),
			Day:   h.Day,
			Func:  cal.CalcDayOfMonth,
		})
	}
	return &WindowPlanner{calendar: c, cfg: cfg, now: time.Now}
}

// Next returns the window for the next rental request.
func (p *WindowPlanner) Next() RentalWindow {
	if !p.cfg.Dynamic {
		return RentalWindow{Start: p.cfg.StartDate, End: p.cfg.EndDate}
	}
	start := p.NextBusinessDay(p.now())
	end := start.AddDate(0, 0, p.cfg.LengthDays)
	return RentalWindow{
		Start: start.Format(config.DateLayout),
		End:   end.Format(config.DateLayout),
	}
}

// NextBusinessDay returns the first workday strictly after from.
func (p *WindowPlanner) NextBusinessDay(from time.Time) time.Time {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for i := 0; i < 366; i++ {
		day = day.AddDate(0, 0, 1)
		if p.calendar.IsWorkday(day) {
			return day
		}
	}
	return day
}
