package services

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"easyapply/browser"
)

// DefaultMinActionGap is the shortest pause allowed between two humanized
// actions.
const DefaultMinActionGap = 500 * time.Millisecond

// Humanizer adds randomized pacing, scrolling and typing cadence so the
// session does not look scripted. Nothing it does affects form outcomes.
type Humanizer struct {
	rng   *rand.Rand
	gap   *rate.Limiter
	sleep func(time.Duration)
	now   func() time.Time
	log   *zap.SugaredLogger
}

// NewHumanizer spaces actions at least minGap apart. A zero gap disables
// the spacing.
func NewHumanizer(rng *rand.Rand, minGap time.Duration, log *zap.SugaredLogger) *Humanizer {
	limit := rate.Inf
	if minGap > 0 {
		limit = rate.Every(minGap)
	}
	return &Humanizer{
		rng:   rng,
		gap:   rate.NewLimiter(limit, 1),
		sleep: time.Sleep,
		now:   time.Now,
		log:   log,
	}
}

// WithSleep replaces time.Sleep, mostly for tests.
func (h *Humanizer) WithSleep(fn func(time.Duration)) *Humanizer {
	h.sleep = fn
	return h
}

// WithClock replaces time.Now, mostly for tests.
func (h *Humanizer) WithClock(fn func() time.Time) *Humanizer {
	h.now = fn
	return h
}

// Pause sleeps for exactly d.
func (h *Humanizer) Pause(d time.Duration) {
	if d > 0 {
		h.sleep(d)
	}
}

// Delay sleeps for a log-normally distributed duration clamped to [min, max].
// The minimum action gap counts from the end of the previous delay.
func (h *Humanizer) Delay(min, max time.Duration) time.Duration {
	if wait := h.gapRemaining(); wait > 0 {
		h.sleep(wait)
	}

	lo, hi := min.Seconds(), max.Seconds()
	mu := (lo + h.rng.Float64()*(hi-lo)) / 2
	secs := math.Exp(mu + 0.5*h.rng.NormFloat64())
	secs = math.Max(lo, math.Min(secs, hi))

	d := time.Duration(secs * float64(time.Second))
	h.sleep(d)
	h.gap.ReserveN(h.now(), 1)
	return d
}

func (h *Humanizer) gapRemaining() time.Duration {
	limit := h.gap.Limit()
	if limit == rate.Inf || limit <= 0 {
		return 0
	}
	missing := 1 - h.gap.TokensAt(h.now())
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(limit) * float64(time.Second))
}

func (h *Humanizer) uniform(min, max time.Duration) time.Duration {
	return min + time.Duration(h.rng.Int63n(int64(max-min)+1))
}

// TypeText replaces the element's value one character at a time and,
// occasionally, fumbles and retypes the last character.
func (h *Humanizer) TypeText(el browser.Element, text string) error {
	if err := el.Clear(); err != nil {
		return errors.Wrap(err, "clear field")
	}

	runes := []rune(text)
	for _, r := range runes {
		if err := el.Type(string(r)); err != nil {
			return errors.Wrap(err, "type character")
		}
		h.sleep(h.uniform(50*time.Millisecond, 150*time.Millisecond))
	}

	if len(runes) > 3 && h.rng.Float64() < 0.05 {
		if err := el.Press("Backspace"); err != nil {
			return errors.Wrap(err, "press backspace")
		}
		h.sleep(h.uniform(100*time.Millisecond, 300*time.Millisecond))
		if err := el.Type(string(runes[len(runes)-1])); err != nil {
			return errors.Wrap(err, "retype character")
		}
	}
	return nil
}

// RandomScroll scrolls a little up or down about a third of the time.
func (h *Humanizer) RandomScroll(page browser.Page) {
	if h.rng.Float64() >= 0.3 {
		return
	}
	amount := 100 + h.rng.Intn(201)
	if h.rng.Intn(2) == 0 {
		amount = -amount
	}
	if err := page.Execute(fmt.Sprintf("window.scrollBy(0, %d);", amount)); err != nil {
		h.log.Debugf("Random scroll failed: %v", err)
		return
	}
	h.sleep(h.uniform(500*time.Millisecond, 1500*time.Millisecond))
}

// RandomMouseMovement hovers one of the first few divs now and then.
func (h *Humanizer) RandomMouseMovement(page browser.Page) {
	if h.rng.Float64() >= 0.2 {
		return
	}
	divs, err := page.Query("div")
	if err != nil || len(divs) == 0 {
		return
	}
	if len(divs) > 10 {
		divs = divs[:10]
	}
	if err := divs[h.rng.Intn(len(divs))].Hover(); err != nil {
		h.log.Debugf("Random mouse movement failed: %v", err)
		return
	}
	h.sleep(h.uniform(100*time.Millisecond, 500*time.Millisecond))
}
