package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"easyapply/browser"
)

// AdvanceResult is what happened when trying to move the form forward.
type AdvanceResult int

const (
	AdvanceNone AdvanceResult = iota
	AdvanceContinued
	AdvanceSubmitted
)

func (r AdvanceResult) String() string {
	switch r {
	case AdvanceContinued:
		return "continued"
	case AdvanceSubmitted:
		return "submitted"
	default:
		return "none"
	}
}

var (
	alreadyAppliedMarkers = []string{
		".ia-HasApplied-bodyTop",
		"[data-testid='already-applied']",
		".already-applied",
	}
	alreadyAppliedPhrases = []string{"already applied", "application submitted"}

	submittedPhrases = []string{
		"application submitted",
		"application sent",
		"application complete",
		"thank you for applying",
		"your application has been sent",
	}

	// Highest priority first: submit, then continue/next, then generic.
	advanceButtons = []string{
		`button[data-testid="submit-application"]`,
		`button[data-testid="complete-application"]`,
		`button[aria-label*="Submit"]`,
		".css-njr1op",

		`button[data-testid="continue"]`,
		`button[data-testid="next"]`,
		`button[aria-label*="Continue"]`,
		`button[aria-label*="Next"]`,
		".css-1gljdq7",
		".css-10w34ze",

		`input[type="submit"]`,
		`button[type="submit"]`,
	}

	submitWords = []string{"submit", "complete", "finish"}
)

// SubmissionCheckerService recognizes terminal states of an application and
// pushes the form to its next step.
type SubmissionCheckerService struct {
	elements *ElementHandler
	human    *Humanizer
	log      *zap.SugaredLogger
}

func NewSubmissionCheckerService(elements *ElementHandler, human *Humanizer, log *zap.SugaredLogger) *SubmissionCheckerService {
	return &SubmissionCheckerService{elements: elements, human: human, log: log}
}

// CheckAlreadyApplied looks for the markers shown on jobs applied to before.
func (s *SubmissionCheckerService) CheckAlreadyApplied(page browser.Page) bool {
	for _, sel := range alreadyAppliedMarkers {
		if s.present(page, sel) {
			return true
		}
	}
	for _, phrase := range alreadyAppliedPhrases {
		xp := browser.ByXPath(fmt.Sprintf("//*[contains(text(), '%s')]", phrase))
		if s.present(page, xp.Selector()) {
			return true
		}
	}
	return false
}

func (s *SubmissionCheckerService) present(page browser.Page, selector string) bool {
	els, err := page.Query(selector)
	if err != nil {
		s.log.Debugf("Marker query %s failed: %v", selector, err)
		return false
	}
	return len(els) > 0
}

// CheckSubmitted reports whether the page text carries a confirmation phrase.
func (s *SubmissionCheckerService) CheckSubmitted(page browser.Page) bool {
	text, err := pageText(page)
	if err != nil {
		s.log.Debugf("Could not read page text: %v", err)
		return false
	}
	for _, phrase := range submittedPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func pageText(page browser.Page) (string, error) {
	html, err := page.Content()
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errors.Wrap(err, "parse page html")
	}
	return strings.ToLower(strings.Join(strings.Fields(doc.Text()), " ")), nil
}

// Advance clicks the highest-priority actionable button. A button whose text
// reads like submit/complete/finish yields AdvanceSubmitted.
func (s *SubmissionCheckerService) Advance(page browser.Page) AdvanceResult {
	for _, sel := range advanceButtons {
		buttons, err := page.Query(sel)
		if err != nil {
			s.log.Debugf("Error with selector %s: %v", sel, err)
			continue
		}
		for _, btn := range buttons {
			if !btn.Enabled() || !btn.Visible() || looksDisabled(btn) {
				continue
			}

			label := buttonLabel(btn)
			s.log.Infof("Clicking button: %s (%s)", label, sel)
			if !s.elements.Click(page, btn) {
				continue
			}
			s.human.Delay(time.Second, 3*time.Second)

			for _, w := range submitWords {
				if strings.Contains(label, w) {
					return AdvanceSubmitted
				}
			}
			return AdvanceContinued
		}
	}

	s.log.Warn("No actionable buttons found")
	return AdvanceNone
}

func looksDisabled(el browser.Element) bool {
	if v, _ := el.Attribute("disabled"); v != "" {
		return true
	}
	class, _ := el.Attribute("class")
	return strings.Contains(class, "disabled")
}

func buttonLabel(el browser.Element) string {
	text, _ := el.Text()
	if strings.TrimSpace(text) == "" {
		text, _ = el.Attribute("aria-label")
	}
	return strings.ToLower(strings.TrimSpace(text))
}
