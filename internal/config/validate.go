package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var knownFormats = map[string]bool{"json": true, "yaml": true, "xlsx": true, "html": true, "md": true}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url cannot be empty"))
	} else if u, err := url.Parse(c.API.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("api.base_url is invalid: %w", err))
	} else if u.Host == "" {
		errs = append(errs, errors.New("api.base_url must include a host"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if c.Browser.Timeout <= 0 {
		errs = append(errs, errors.New("browser.timeout must be positive"))
	}
	if c.Browser.SlowMo < 0 {
		errs = append(errs, errors.New("browser.slow_mo cannot be negative"))
	}

	if c.Fixtures.RentalUserID <= 0 || c.Fixtures.FavoriteUserID <= 0 {
		errs = append(errs, errors.New("fixture user ids must be positive"))
	}
	if c.Fixtures.RentalRestock <= 0 || c.Fixtures.PurchaseRestock <= 0 {
		errs = append(errs, errors.New("restock levels must be positive"))
	}
	if c.Fixtures.PurchaseQuantity <= 0 {
		errs = append(errs, errors.New("fixtures.purchase_quantity must be positive"))
	}
	if c.Fixtures.ShortStockQuantity <= 0 {
		errs = append(errs, errors.New("fixtures.short_stock_quantity must be positive"))
	}
	if c.Fixtures.PurchaseRestock < c.Fixtures.PurchaseQuantity {
		errs = append(errs, fmt.Errorf("fixtures.purchase_restock (%d) must cover purchase_quantity (%d)",
			c.Fixtures.PurchaseRestock, c.Fixtures.PurchaseQuantity))
	}

	if !c.Rental.Dynamic {
		start, err1 := time.Parse(DateLayout, c.Rental.StartDate)
		end, err2 := time.Parse(DateLayout, c.Rental.EndDate)
		switch {
		case err1 != nil:
			errs = append(errs, fmt.Errorf("rental.start_date: %w", err1))
		case err2 != nil:
			errs = append(errs, fmt.Errorf("rental.end_date: %w", err2))
		case end.Before(start):
			errs = append(errs, errors.New("rental.end_date is before rental.start_date"))
		}
	} else if c.Rental.LengthDays <= 0 {
		errs = append(errs, errors.New("rental.length_days must be positive"))
	}
	for _, h := range c.Rental.Holidays {
		if h.Month < 1 || h.Month > 12 || h.Day < 1 || h.Day > 31 {
			errs = append(errs, fmt.Errorf("rental.holidays: invalid date %02d-%02d (%s)", h.Month, h.Day, h.Name))
		}
	}

	switch c.Identity.Suffix {
	case "random", "uuid":
	default:
		errs = append(errs, fmt.Errorf("identity.suffix must be random or uuid, got %q", c.Identity.Suffix))
	}
	if c.Identity.Domain == "" || strings.Contains(c.Identity.Domain, "@") {
		errs = append(errs, errors.New("identity.domain must be a bare domain"))
	}
	if c.Identity.Password == "" {
		errs = append(errs, errors.New("identity.password cannot be empty"))
	}

	if c.Runner.Parallel <= 0 {
		errs = append(errs, errors.New("runner.parallel must be positive"))
	}
	if c.Runner.CaseTimeout <= 0 {
		errs = append(errs, errors.New("runner.case_timeout must be positive"))
	}
	for _, f := range c.Report.Formats {
		if !knownFormats[strings.ToLower(f)] {
			errs = append(errs, fmt.Errorf("report.formats: unknown format %q", f))
		}
	}
	if c.History.FlakyWindow <= 0 {
		errs = append(errs, errors.New("history.flaky_window must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// DateLayout is the date format used by the rental endpoints.
const DateLayout = "2006-01-02"
