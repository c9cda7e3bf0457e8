// Package browser owns the rod browser handle used for discovery and
// extraction. One Session maps to one Chrome instance and one stealth page;
// sessions are never shared across concurrent workers.
package browser

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Options control how Chrome is launched and how navigation behaves.
type Options struct {
	Headless        bool
	BlockImages     bool
	PageLoadTimeout time.Duration
	NavRetries      int
	ScrollPause     time.Duration
}

func (o Options) withDefaults() Options {
	if o.PageLoadTimeout == 0 {
		o.PageLoadTimeout = 45 * time.Second
	}
	if o.NavRetries == 0 {
		o.NavRetries = 3
	}
	if o.ScrollPause == 0 {
		o.ScrollPause = 2500 * time.Millisecond
	}
	return o
}

// Session wraps a single browser with retried navigation, jittered pauses and
// the scroll/pagination primitives the discovery loop needs.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	opts    Options
}

// New launches the browser. A failure here is fatal for the whole run since
// no work can proceed without a session.
func New(opts Options) (*Session, error) {
	o := opts.withDefaults()

	path := os.Getenv("CHROME_BIN")
	if path == "" {
		path, _ = launcher.LookPath()
	}
	l := launcher.New().
		Bin(path).
		Headless(o.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Set("lang", "en-US,en")
	if o.BlockImages {
		l = l.Set("blink-settings", "imagesEnabled=false")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %v", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %v", err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		b.MustClose()
		return nil, fmt.Errorf("failed to open stealth page: %v", err)
	}

	return &Session{browser: b, page: page, opts: o}, nil
}

// Close shuts down the browser connection.
func (s *Session) Close() {
	if s.browser != nil {
		s.browser.MustClose()
		s.browser = nil
	}
}

// Navigate loads url with bounded retry and exponential backoff on transient
// failures. The final attempt's error propagates to the caller.
func (s *Session) Navigate(url string) error {
	backoff := 2 * time.Second
	var lastErr error

	for attempt := 1; attempt <= s.opts.NavRetries; attempt++ {
		if err := s.tryNavigate(url); err != nil {
			lastErr = err
			log.Printf("⚠️  Navigation attempt %d/%d failed for %s: %v", attempt, s.opts.NavRetries, url, err)
			if attempt < s.opts.NavRetries {
				time.Sleep(backoff)
				backoff *= 2
				if backoff > 12*time.Second {
					backoff = 12 * time.Second
				}
			}
			continue
		}
		JitterSleep(2500*time.Millisecond, time.Second)
		return nil
	}

	return fmt.Errorf("failed to navigate to %s: %v", url, lastErr)
}

func (s *Session) tryNavigate(url string) error {
	ctx := s.page.Timeout(s.opts.PageLoadTimeout)
	if err := ctx.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %v", err)
	}
	if err := ctx.WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %v", err)
	}
	return nil
}

// HTML returns the current rendered DOM.
func (s *Session) HTML() (string, error) {
	return s.page.HTML()
}

// WaitForListings blocks until candidate listing anchors appear or timeout
// elapses. A timeout is not fatal: lazy pages may still fill in while
// scrolling.
func (s *Session) WaitForListings(timeout time.Duration) {
	_, err := s.page.Timeout(timeout).Element("a[href*='used'], a[href*='demos'], a[href*='vehicle'], a[href*='.htm']")
	if err != nil {
		log.Println("⚠️  Timeout waiting for listing content")
		return
	}
	log.Println("✓ Listing content loaded")
}

// ScrollRoutine runs the aggressive scroll pattern that triggers lazy-loaded
// inventory: two passes of scroll-to-bottom then mid-page with jittered
// pauses, returning to the top between passes. A pass ends early once the
// document height stops growing.
func (s *Session) ScrollRoutine(maxScrolls int) {
	if maxScrolls <= 0 {
		maxScrolls = 15
	}

	err := rod.Try(func() {
		for pass := 0; pass < 2; pass++ {
			lastHeight := 0
			for i := 0; i < maxScrolls; i++ {
				h := s.page.MustEval(`() => document.body.scrollHeight`).Int()
				if h == lastHeight && i > 3 {
					break
				}
				lastHeight = h

				s.page.MustEval(`() => window.scrollTo(0, document.body.scrollHeight)`)
				JitterSleep(s.opts.ScrollPause, 800*time.Millisecond)

				s.page.MustEval(`() => window.scrollTo(0, document.body.scrollHeight / 2)`)
				JitterSleep(500*time.Millisecond, 200*time.Millisecond)
			}
			if pass == 0 {
				s.page.MustEval(`() => window.scrollTo(0, 0)`)
				JitterSleep(time.Second, 300*time.Millisecond)
			}
		}
	})
	if err != nil {
		log.Printf("⚠️  Scroll routine interrupted: %v", err)
	}
}

var nextControlXPaths = []string{
	`//a[contains(translate(., 'NEXT', 'next'), 'next')]`,
	`//button[contains(translate(., 'NEXT', 'next'), 'next')]`,
	`//a[contains(., '›') or contains(., '»')]`,
	`//button[contains(., '›') or contains(., '»')]`,
	`//a[contains(translate(., 'LOAD MORE', 'load more'), 'load more')]`,
	`//button[contains(translate(., 'LOAD MORE', 'load more'), 'load more')]`,
}

// ClickNextControl locates a next/load-more control and activates it.
// Returns false when no control could be found, which ends pagination.
func (s *Session) ClickNextControl() bool {
	for _, xp := range nextControlXPaths {
		err := rod.Try(func() {
			el := s.page.Timeout(3 * time.Second).MustElementX(xp)
			el.MustScrollIntoView()
			el.MustEval(`() => this.click()`)
		})
		if err == nil {
			JitterSleep(3*time.Second, time.Second)
			return true
		}
	}
	return false
}

// JitterSleep pauses for base ± jitter so exact request timing does not
// fingerprint as automation. Never sleeps less than 100ms.
func JitterSleep(base, jitter time.Duration) {
	d := base
	if jitter > 0 {
		d += time.Duration(rand.Int63n(int64(2*jitter))) - jitter
	}
	if d < 100*time.Millisecond {
		d = 100 * time.Millisecond
	}
	time.Sleep(d)
}
