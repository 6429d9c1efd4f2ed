package services

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"easyapply/browser"
	"easyapply/models"
)

const headingTimeout = 3 * time.Second

var headingLocators = []browser.Locator{
	browser.ByCSS(".ia-BasePage-heading"),
	browser.ByCSS("h1"),
	browser.ByCSS("h2"),
	browser.ByCSS(".ia-PageTitle"),
	browser.ByCSS("[data-testid='page-title']"),
}

// PageMatcher recognizes one page type. title is the case-folded heading,
// empty when no heading was found.
type PageMatcher interface {
	Match(page browser.Page, title string) (models.PageType, bool)
}

// KeywordMatcher matches when the heading contains any keyword.
type KeywordMatcher struct {
	Type     models.PageType
	Keywords []string
}

func (m KeywordMatcher) Match(_ browser.Page, title string) (models.PageType, bool) {
	for _, kw := range m.Keywords {
		if strings.Contains(title, kw) {
			return m.Type, true
		}
	}
	return "", false
}

// StructuralMatcher matches when the page contains an element for selector.
type StructuralMatcher struct {
	Type     models.PageType
	Selector string
}

func (m StructuralMatcher) Match(page browser.Page, _ string) (models.PageType, bool) {
	els, err := page.Query(m.Selector)
	if err != nil || len(els) == 0 {
		return "", false
	}
	return m.Type, true
}

// DefaultPageMatchers checks heading keywords in priority order, then falls
// back to probing the form's structure.
func DefaultPageMatchers() []PageMatcher {
	return []PageMatcher{
		KeywordMatcher{models.PageUpload, []string{"resume", "cv", "upload", "documents"}},
		KeywordMatcher{models.PageContact, []string{"contact", "information", "details"}},
		KeywordMatcher{models.PageQuestions, []string{"questions", "screening", "assessment"}},
		KeywordMatcher{models.PageReview, []string{"review", "summary", "confirm"}},
		StructuralMatcher{models.PageUpload, `input[type="file"]`},
		StructuralMatcher{models.PageQuestions, ".ia-Questions-item"},
		StructuralMatcher{models.PageContact, `input[name*="phone"], input[name*="email"]`},
	}
}

// PageClassifier guesses which application step is on screen.
type PageClassifier struct {
	elements *ElementHandler
	matchers []PageMatcher
	fold     cases.Caser
	log      *zap.SugaredLogger
}

func NewPageClassifier(elements *ElementHandler, matchers []PageMatcher, log *zap.SugaredLogger) *PageClassifier {
	return &PageClassifier{
		elements: elements,
		matchers: matchers,
		fold:     cases.Lower(language.Und),
		log:      log,
	}
}

// Classify reads the heading and runs the matchers; first match wins.
func (c *PageClassifier) Classify(page browser.Page) models.PageClassification {
	info := models.PageClassification{Type: models.PageUnknown}

	if el, _, ok := c.elements.FindFirst(page, headingLocators, headingTimeout); ok {
		if text, err := el.Text(); err == nil {
			info.Title = strings.TrimSpace(text)
		}
	}

	title := c.fold.String(info.Title)
	for _, m := range c.matchers {
		if t, ok := m.Match(page, title); ok {
			info.Type = t
			break
		}
	}
	return info
}
