package services

import (
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"easyapply/browser"
)

// RetryPolicy bounds element lookups.
type RetryPolicy struct {
	MaxAttempts int
	// Backoff returns the pause after the given failed attempt (1-based).
	Backoff func(attempt int) time.Duration
}

// DefaultRetryPolicy tries three times with a one second pause in between.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     func(int) time.Duration { return time.Second },
	}
}

// ElementHandler finds, clicks and types into elements, turning every
// failure into a logged negative result.
type ElementHandler struct {
	policy RetryPolicy
	human  *Humanizer
	log    *zap.SugaredLogger
}

func NewElementHandler(policy RetryPolicy, human *Humanizer, log *zap.SugaredLogger) *ElementHandler {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &ElementHandler{policy: policy, human: human, log: log}
}

// FindElement waits for loc, retrying per the policy.
func (h *ElementHandler) FindElement(page browser.Page, loc browser.Locator, timeout time.Duration) (browser.Element, bool) {
	for attempt := 1; attempt <= h.policy.MaxAttempts; attempt++ {
		el, err := page.WaitFor(loc.Selector(), timeout)
		if err == nil {
			return el, true
		}
		if !errors.Is(err, browser.ErrNotFound) {
			h.log.Errorf("Unexpected error finding element %s: %v", loc, err)
			return nil, false
		}
		if attempt == h.policy.MaxAttempts {
			h.log.Warnf("Element not found after %d attempts: %s", attempt, loc)
			return nil, false
		}
		h.log.Debugf("Element not found (attempt %d): %s", attempt, loc)
		if h.policy.Backoff != nil {
			h.human.Pause(h.policy.Backoff(attempt))
		}
	}
	return nil, false
}

// FindFirst returns the first locator in the list that resolves.
func (h *ElementHandler) FindFirst(page browser.Page, locs []browser.Locator, timeout time.Duration) (browser.Element, browser.Locator, bool) {
	for _, loc := range locs {
		if el, ok := h.FindElement(page, loc, timeout); ok {
			return el, loc, true
		}
	}
	return nil, browser.Locator{}, false
}

// Click tries a direct click, a script-dispatched click and a
// move-then-click, in that order.
func (h *ElementHandler) Click(page browser.Page, el browser.Element) bool {
	if el == nil {
		return false
	}

	strategies := []struct {
		name  string
		click func() error
	}{
		{"direct", el.Click},
		{"script", el.ScriptClick},
		{"move", el.MoveAndClick},
	}

	for i, s := range strategies {
		if i == 0 {
			h.human.RandomScroll(page)
			h.human.RandomMouseMovement(page)
		}

		err := s.click()
		if err == nil {
			h.human.Delay(500*time.Millisecond, 1500*time.Millisecond)
			return true
		}

		if errors.IsAny(err, browser.ErrClickIntercepted, browser.ErrStaleElement) {
			h.log.Debugf("Click strategy %d (%s) failed: %v", i+1, s.name, err)
			if i < len(strategies)-1 {
				h.human.Pause(500 * time.Millisecond)
			}
			continue
		}
		h.log.Warnf("Click strategy %d (%s) unexpected error: %v", i+1, s.name, err)
	}

	h.log.Error("All click strategies failed")
	return false
}

// TypeText scrolls the element into view and types with human cadence.
func (h *ElementHandler) TypeText(el browser.Element, text string) bool {
	if el == nil || text == "" {
		return false
	}
	if err := el.ScrollIntoView(); err != nil {
		h.log.Errorf("Failed to scroll field into view: %v", err)
		return false
	}
	h.human.Pause(500 * time.Millisecond)

	if err := h.human.TypeText(el, text); err != nil {
		h.log.Errorf("Failed to send keys %q: %v", text, err)
		return false
	}
	return true
}
