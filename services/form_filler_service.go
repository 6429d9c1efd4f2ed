package services

import (
	"go.uber.org/zap"

	"easyapply/browser"
	"easyapply/config"
)

type contactField struct {
	selector string
	value    func(p *config.ApplicantProfile) string
}

var contactFields = []contactField{
	{`input[name*="phone"]`, func(p *config.ApplicantProfile) string { return p.Phone }},
	{`input[name*="address"]`, func(p *config.ApplicantProfile) string { return p.Address }},
	{`input[name*="city"]`, func(p *config.ApplicantProfile) string { return p.City }},
	{`input[name*="state"]`, func(p *config.ApplicantProfile) string { return p.State }},
	{`input[name*="zip"]`, func(p *config.ApplicantProfile) string { return p.Postal }},
	{`input[name*="postal"]`, func(p *config.ApplicantProfile) string { return p.Postal }},
}

// FormFillerService fills the contact step of the application form.
type FormFillerService struct {
	profile  *config.ApplicantProfile
	elements *ElementHandler
	log      *zap.SugaredLogger
}

func NewFormFillerService(profile *config.ApplicantProfile, elements *ElementHandler, log *zap.SugaredLogger) *FormFillerService {
	return &FormFillerService{profile: profile, elements: elements, log: log}
}

// FillContactFields types profile values into enabled contact inputs that
// are still empty and returns how many were filled. Prefilled values are
// left alone.
func (s *FormFillerService) FillContactFields(page browser.Page) int {
	filled := 0
	for _, f := range contactFields {
		value := f.value(s.profile)
		if value == "" {
			continue
		}
		if s.tryFillField(page, f.selector, value) {
			filled++
			s.log.Infof("Filled contact field: %s", f.selector)
		}
	}
	return filled
}

func (s *FormFillerService) tryFillField(page browser.Page, selector, value string) bool {
	fields, err := page.Query(selector)
	if err != nil {
		s.log.Debugf("Error filling %s: %v", selector, err)
		return false
	}
	if len(fields) == 0 {
		return false
	}

	field := fields[0]
	if !field.Enabled() {
		return false
	}
	if current, _ := field.Value(); current != "" {
		return false
	}
	return s.elements.TypeText(field, value)
}
