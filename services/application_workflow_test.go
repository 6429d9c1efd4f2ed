package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"easyapply/browser/browsertest"
	"easyapply/models"
)

func newTestWorkflow(t *testing.T, dir string) (*ApplicationWorkflow, *ScreenshotService) {
	t.Helper()
	h, _ := newTestElementHandler(t)
	log := zap.NewNop().Sugar()
	shots := NewScreenshotService(dir, log)
	return NewApplicationWorkflow(
		NewPageClassifier(h, DefaultPageMatchers(), log),
		newTestHandlers(t, newTestProfile(t)),
		NewSubmissionCheckerService(h, h.human, log),
		h.human, shots, log), shots
}

func heading(text string) *browsertest.Element { return browsertest.NewElement(text) }

func TestApplicationWorkflow_UploadQuestionsReviewSubmits(t *testing.T) {
	var page *browsertest.Page
	advance := func() { page.Advance() }

	file := browsertest.Input()
	py := browsertest.Input()
	question := browsertest.NewElement("").
		With(questionLabel, browsertest.NewElement("Python experience")).
		With(textInputSelector, py)
	submit := browsertest.Button("Submit your application", advance)

	page = browsertest.NewPage(
		browsertest.NewScreen("").
			With(".ia-BasePage-heading", heading("Upload your resume")).
			With(`input[type="file"]`, file).
			With(`button[data-testid="continue"]`, browsertest.Button("Continue", advance)),
		browsertest.NewScreen("").
			With(".ia-BasePage-heading", heading("Answer these questions from the employer")).
			With(".ia-Questions-item", question).
			With(`button[data-testid="continue"]`, browsertest.Button("Continue", advance)),
		browsertest.NewScreen("").
			With(".ia-BasePage-heading", heading("Please review your application")).
			With(`button[data-testid="submit-application"]`, submit),
		browsertest.NewScreen("<html><body><h1>Your application has been sent</h1></body></html>"),
	)

	w, shots := newTestWorkflow(t, t.TempDir())
	got := w.Run(context.Background(), browsertest.NewSession(page), 1)

	assert.Equal(t, models.OutcomeSubmitted, got)
	assert.Equal(t, 3, page.Current)
	assert.Len(t, file.Files, 1)
	assert.Equal(t, "5", py.Input)
	assert.True(t, submit.Clicked())
	assert.Empty(t, shots.Taken())
}

func TestApplicationWorkflow_NonTerminatingFormIsAbandoned(t *testing.T) {
	clicks := 0
	// the submit button never leads to a confirmation page
	btn := browsertest.Button("Submit", func() { clicks++ })
	page := browsertest.NewPage(browsertest.NewScreen("").
		With(".ia-BasePage-heading", heading("Please review your application")).
		With(`button[data-testid="submit-application"]`, btn))

	w, shots := newTestWorkflow(t, t.TempDir())
	got := w.Run(context.Background(), browsertest.NewSession(page), 7)

	assert.Equal(t, models.OutcomeAbandoned, got)
	assert.Equal(t, MaxSteps, clicks)
	require.Len(t, shots.Taken(), 1)
	assert.FileExists(t, shots.Taken()[0])
	assert.Contains(t, shots.Taken()[0], "job_007_abandoned_")
}

func TestApplicationWorkflow_NoButtonFails(t *testing.T) {
	page := browsertest.NewPage(browsertest.NewScreen("").
		With(".ia-BasePage-heading", heading("Add your contact information")))

	w, _ := newTestWorkflow(t, t.TempDir())
	got := w.Run(context.Background(), browsertest.NewSession(page), 2)

	assert.Equal(t, models.OutcomeFailed, got)
	assert.Len(t, page.Screenshots, 1)
}

func TestApplicationWorkflow_AlreadyApplied(t *testing.T) {
	btn := browsertest.Button("Continue", nil)
	page := browsertest.NewPage(browsertest.NewScreen("").
		With(".ia-HasApplied-bodyTop", browsertest.NewElement("You applied")).
		With(`button[data-testid="continue"]`, btn))

	w, _ := newTestWorkflow(t, t.TempDir())
	got := w.Run(context.Background(), browsertest.NewSession(page), 3)

	assert.Equal(t, models.OutcomeAlreadyApplied, got)
	assert.False(t, btn.Clicked())
	assert.Empty(t, page.Screenshots)
}

func TestApplicationWorkflow_UsesNewestTab(t *testing.T) {
	main := browsertest.NewPage()
	popup := browsertest.NewPage(browsertest.NewScreen("").
		With("[data-testid='already-applied']", browsertest.NewElement("")))
	sess := browsertest.NewSession(main)
	sess.Open(popup)

	w, _ := newTestWorkflow(t, t.TempDir())
	got := w.Run(context.Background(), sess, 4)

	assert.Equal(t, models.OutcomeAlreadyApplied, got)
	assert.Equal(t, 1, popup.Focused)
	assert.Empty(t, main.Queries)
}

func TestApplicationWorkflow_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	page := browsertest.NewPage()

	w, shots := newTestWorkflow(t, t.TempDir())
	got := w.Run(ctx, browsertest.NewSession(page), 5)

	assert.Equal(t, models.OutcomeFailed, got)
	assert.Empty(t, page.Screenshots)
	assert.Empty(t, shots.Taken())
}

func TestApplicationWorkflow_CancelledMidFormTakesNoScreenshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	page := browsertest.NewPage(browsertest.NewScreen("").
		With(".ia-BasePage-heading", heading("Please review your application")).
		With(`button[data-testid="continue"]`, browsertest.Button("Continue", cancel)))

	w, shots := newTestWorkflow(t, t.TempDir())
	got := w.Run(ctx, browsertest.NewSession(page), 6)

	assert.Equal(t, models.OutcomeFailed, got)
	assert.Empty(t, page.Screenshots)
	assert.Empty(t, shots.Taken())
}
