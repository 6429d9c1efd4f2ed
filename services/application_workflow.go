package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"easyapply/browser"
	"easyapply/models"
)

// MaxSteps bounds how many form pages one application may take.
const MaxSteps = 12

// ApplicationWorkflow walks a single Easy Apply form to a terminal outcome.
type ApplicationWorkflow struct {
	classifier *PageClassifier
	handlers   *PageHandlers
	checker    *SubmissionCheckerService
	human      *Humanizer
	shots      *ScreenshotService
	log        *zap.SugaredLogger
}

func NewApplicationWorkflow(classifier *PageClassifier, handlers *PageHandlers, checker *SubmissionCheckerService, human *Humanizer, shots *ScreenshotService, log *zap.SugaredLogger) *ApplicationWorkflow {
	return &ApplicationWorkflow{
		classifier: classifier,
		handlers:   handlers,
		checker:    checker,
		human:      human,
		shots:      shots,
		log:        log,
	}
}

// Run drives the form on the newest tab until it is submitted, was already
// applied to, cannot advance, or runs out of steps. An interrupted run
// reports failed without capturing a screenshot.
func (w *ApplicationWorkflow) Run(ctx context.Context, sess browser.Session, job int) models.Outcome {
	page := browser.Latest(sess)
	if page == nil {
		w.log.Error("Critical error in application workflow: no open tab")
		return models.OutcomeFailed
	}
	if len(sess.Pages()) > 1 {
		if err := page.Focus(); err != nil {
			w.log.Debugf("Could not focus application tab: %v", err)
		}
	}

	outcome := w.steps(ctx, page, job)
	if ctx.Err() != nil {
		return outcome
	}
	if outcome == models.OutcomeFailed || outcome == models.OutcomeAbandoned {
		w.capture(page, job, outcome)
	}
	return outcome
}

func (w *ApplicationWorkflow) steps(ctx context.Context, page browser.Page, job int) models.Outcome {
	for step := 1; step <= MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			w.log.Warnf("Workflow for job %d interrupted at step %d", job, step)
			return models.OutcomeFailed
		}

		if w.checker.CheckAlreadyApplied(page) {
			w.log.Infof("Already applied to job %d", job)
			return models.OutcomeAlreadyApplied
		}

		info := w.classifier.Classify(page)
		w.log.Debugf("Step %d: %s page - %s", step, info.Type, info.Title)
		w.handlers.Handle(page, info)

		if w.checker.Advance(page) == AdvanceNone {
			w.log.Warnf("Could not proceed from step %d", step)
			return models.OutcomeFailed
		}

		w.human.Delay(time.Second, 2*time.Second)
		if w.checker.CheckSubmitted(page) {
			w.log.Infof("Application submitted successfully for job %d", job)
			return models.OutcomeSubmitted
		}
	}

	w.log.Warnf("Workflow completed but application status unclear for job %d", job)
	return models.OutcomeAbandoned
}

func (w *ApplicationWorkflow) capture(page browser.Page, job int, outcome models.Outcome) {
	if _, err := w.shots.Capture(page, fmt.Sprintf("job_%03d_%s", job, outcome)); err != nil {
		w.log.Warnf("Could not save screenshot for job %d: %v", job, err)
	}
}
