package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"easyapply/browser"
	"easyapply/browser/browsertest"
	"easyapply/models"
)

func newTestClassifier(t *testing.T) *PageClassifier {
	h, _ := newTestElementHandler(t)
	return NewPageClassifier(h, DefaultPageMatchers(), zap.NewNop().Sugar())
}

func TestPageClassifier_HeadingKeywords(t *testing.T) {
	cases := []struct {
		heading string
		want    models.PageType
	}{
		{"Upload your resume", models.PageUpload},
		{"Add a CV for the employer", models.PageUpload},
		{"Add your contact information", models.PageContact},
		{"Answer these questions from the employer", models.PageQuestions},
		{"Please review your application", models.PageReview},
		{"Welcome", models.PageUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.heading, func(t *testing.T) {
			page := browsertest.NewPage(browsertest.NewScreen("").
				With(".ia-BasePage-heading", browsertest.NewElement("  "+tc.heading+"\n")))

			got := newTestClassifier(t).Classify(page)

			assert.Equal(t, tc.want, got.Type)
			assert.Equal(t, tc.heading, got.Title)
		})
	}
}

func TestPageClassifier_KeywordPriority(t *testing.T) {
	// "resume" and "review" both appear; upload is checked first
	page := browsertest.NewPage(browsertest.NewScreen("").
		With("h1", browsertest.NewElement("Review your resume")))

	assert.Equal(t, models.PageUpload, newTestClassifier(t).Classify(page).Type)
}

func TestPageClassifier_HeadingLocatorOrder(t *testing.T) {
	page := browsertest.NewPage(browsertest.NewScreen("").
		With("h2", browsertest.NewElement("Questions")).
		With("h1", browsertest.NewElement("Contact details")))

	got := newTestClassifier(t).Classify(page)

	assert.Equal(t, models.PageContact, got.Type)
	assert.Equal(t, "Contact details", got.Title)
}

func TestPageClassifier_StructuralFallback(t *testing.T) {
	cases := []struct {
		name     string
		selector string
		want     models.PageType
	}{
		{"file input", `input[type="file"]`, models.PageUpload},
		{"questions container", ".ia-Questions-item", models.PageQuestions},
		{"phone input", `input[name*="phone"], input[name*="email"]`, models.PageContact},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := browsertest.NewPage(browsertest.NewScreen("").
				With(tc.selector, browsertest.Input()))

			got := newTestClassifier(t).Classify(page)

			assert.Equal(t, tc.want, got.Type)
			assert.Empty(t, got.Title)
		})
	}
}

func TestPageClassifier_UnrecognizedHeadingUsesStructure(t *testing.T) {
	page := browsertest.NewPage(browsertest.NewScreen("").
		With("h1", browsertest.NewElement("Step 2 of 4")).
		With(`input[type="file"]`, browsertest.Input()))

	assert.Equal(t, models.PageUpload, newTestClassifier(t).Classify(page).Type)
}

type stubMatcher struct{ t models.PageType }

func (m stubMatcher) Match(browser.Page, string) (models.PageType, bool) { return m.t, true }

func TestPageClassifier_PluggableMatchers(t *testing.T) {
	h, _ := newTestElementHandler(t)
	c := NewPageClassifier(h, []PageMatcher{stubMatcher{models.PageReview}}, zap.NewNop().Sugar())

	assert.Equal(t, models.PageReview, c.Classify(browsertest.NewPage()).Type)
}
