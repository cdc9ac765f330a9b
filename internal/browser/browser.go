// Package browser owns the playwright lifecycle for UI tests.
package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/bookshelf-qa/library-e2e/internal/config"
)

// Helper provides browser setup and teardown for tests
type Helper struct {
	Playwright *playwright.Playwright
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page

	baseURL string
	cfg     config.BrowserConfig
	t       testing.TB
}

// NewHelper creates a helper for one test. Nothing is started until Setup.
func NewHelper(t testing.TB, baseURL string, cfg config.BrowserConfig) *Helper {
	return &Helper{
		baseURL: strings.TrimRight(baseURL, "/"),
		cfg:     cfg,
		t:       t,
	}
}

// Setup starts playwright, launches Chromium and opens a page.
func (b *Helper) Setup() error {
	if !b.cfg.Preinstalled {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		// driver and image versions drift; one reinstall usually fixes it
		_ = playwright.Install()
		pw, err = playwright.Run()
		if err != nil {
			return fmt.Errorf("could not start playwright after retry: %w", err)
		}
	}
	b.Playwright = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.cfg.Headless),
		SlowMo:   playwright.Float(float64(b.cfg.SlowMo)),
	})
	if err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	b.Browser = browser

	opts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
	}
	if b.cfg.Videos {
		opts.RecordVideo = &playwright.RecordVideo{
			Dir: filepath.Join(b.cfg.ArtifactsDir, "videos"),
		}
	}
	ctx, err := browser.NewContext(opts)
	if err != nil {
		return fmt.Errorf("could not create context: %w", err)
	}
	b.Context = ctx

	page, err := ctx.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	b.Page = page

	page.SetDefaultTimeout(float64(b.cfg.Timeout.Milliseconds()))
	return nil
}

// TearDown closes everything Setup opened, taking a screenshot first when
// the test failed.
func (b *Helper) TearDown() {
	if b.t.Failed() && b.cfg.Screenshots && b.Page != nil {
		path := ScreenshotPath(b.cfg.ArtifactsDir, b.t.Name(), time.Now())
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if _, err := b.Page.Screenshot(playwright.PageScreenshotOptions{Path: playwright.String(path)}); err != nil {
				b.t.Logf("screenshot failed: %v", err)
			} else {
				b.t.Logf("screenshot saved to %s", path)
			}
		}
	}

	if b.Page != nil {
		_ = b.Page.Close()
	}
	if b.Context != nil {
		_ = b.Context.Close()
	}
	if b.Browser != nil {
		_ = b.Browser.Close()
	}
	if b.Playwright != nil {
		_ = b.Playwright.Stop()
	}
}

// URL joins path onto the application root.
func (b *Helper) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.baseURL + path
}

// NavigateTo navigates to a path relative to the base URL
func (b *Helper) NavigateTo(path string) error {
	url := b.URL(path)
	if _, err := b.Page.Goto(url); err != nil {
		if strings.Contains(err.Error(), "ERR_CONNECTION_REFUSED") {
			return fmt.Errorf("application not reachable at %s (check BASE_URL): %w", url, err)
		}
		return err
	}
	return nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ScreenshotPath is where a failed test's screenshot goes. Subtest slashes
// and spaces become underscores.
func ScreenshotPath(dir, testName string, at time.Time) string {
	name := unsafeName.ReplaceAllString(testName, "_")
	return filepath.Join(dir, "screenshots", fmt.Sprintf("%s_%d.png", name, at.Unix()))
}
