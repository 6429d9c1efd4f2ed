package services

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"easyapply/browser"
	"easyapply/config"
	"easyapply/models"
)

var (
	uploadSelectors = []string{
		`input[data-testid="FileUpload-input"]`,
		`input[data-testid="resume-upload"]`,
		`input[type="file"]`,
		`.ia-FileUpload input[type="file"]`,
	}

	questionContainers         = browser.ByClass("ia-Questions-item").Selector()
	questionContainersFallback = `[data-testid*="question"], .ia-Question`
	questionLabel              = ".css-kyg8or, label, .question-text"
)

// PageHandlers performs the form work for each kind of application page.
// Every handler reports whether it did anything; none of them fail the
// workflow on their own.
type PageHandlers struct {
	profile  *config.ApplicantProfile
	forms    *FormFillerService
	answerer *QuestionAnswerer
	human    *Humanizer
	log      *zap.SugaredLogger
}

func NewPageHandlers(profile *config.ApplicantProfile, forms *FormFillerService, answerer *QuestionAnswerer, human *Humanizer, log *zap.SugaredLogger) *PageHandlers {
	return &PageHandlers{profile: profile, forms: forms, answerer: answerer, human: human, log: log}
}

// Handle dispatches on the page type. Unknown pages get the upload handler
// in case a file input is present.
func (h *PageHandlers) Handle(page browser.Page, info models.PageClassification) bool {
	switch info.Type {
	case models.PageContact:
		return h.Contact(page)
	case models.PageQuestions:
		return h.Questions(page)
	case models.PageReview:
		return h.Review(page)
	default:
		return h.Upload(page)
	}
}

// Upload attaches the resume to the first enabled file input.
func (h *PageHandlers) Upload(page browser.Page) bool {
	if _, err := os.Stat(h.profile.ResumePath); err != nil {
		h.log.Warnf("Resume file not found: %s", h.profile.ResumePath)
		return false
	}

	for _, sel := range uploadSelectors {
		inputs, err := page.Query(sel)
		if err != nil {
			h.log.Debugf("Upload attempt failed for %s: %v", sel, err)
			continue
		}
		for _, in := range inputs {
			if !in.Enabled() {
				continue
			}
			if err := in.SetFile(h.profile.ResumePath); err != nil {
				h.log.Debugf("Upload attempt failed for %s: %v", sel, err)
				continue
			}
			h.log.Infof("Uploaded resume: %s", filepath.Base(h.profile.ResumePath))
			h.human.Pause(2 * time.Second)
			return true
		}
	}
	return false
}

func (h *PageHandlers) Contact(page browser.Page) bool {
	return h.forms.FillContactFields(page) > 0
}

// Questions answers every screening question it can find a label for.
func (h *PageHandlers) Questions(page browser.Page) bool {
	questions, err := page.Query(questionContainers)
	if err != nil {
		h.log.Debugf("Question lookup failed for %s: %v", questionContainers, err)
	}
	if len(questions) == 0 {
		if questions, err = page.Query(questionContainersFallback); err != nil {
			h.log.Debugf("Question lookup failed for %s: %v", questionContainersFallback, err)
		}
	}

	answered := 0
	for _, q := range questions {
		labels, err := q.Query(questionLabel)
		if err != nil || len(labels) == 0 {
			h.log.Debug("Error processing question: no label")
			continue
		}
		text, err := labels[0].Text()
		if err != nil {
			h.log.Debugf("Error processing question: %v", err)
			continue
		}
		if h.answerer.Answer(page, q, text) {
			answered++
		}
	}
	return answered > 0
}

// Review uploads the resume if the form still asks for it.
func (h *PageHandlers) Review(page browser.Page) bool {
	return h.Upload(page)
}
