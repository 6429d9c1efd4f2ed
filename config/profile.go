package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"easyapply/utils"
)

// ApplicantProfile is the static applicant data used to fill forms.
type ApplicantProfile struct {
	ResumePath string
	Phone      string
	Address    string
	City       string
	Postal     string
	State      string
	GitHub     string
	LinkedIn   string
	University string

	// Years of experience, kept as the text typed into forms.
	PythonExp      string
	JavaScriptExp  string
	JavaExp        string
	AWSExp         string
	DjangoExp      string
	AnalysisExp    string
	TeachingExp    string
	ProgrammingExp string
	DefaultExp     string

	Salary                string
	WorkAuthorized        string
	Education             string
	SponsorshipNeeded     string
	CommuteWilling        string
	CommuteWillingAlt     string
	PreferredShift        string
	DisabilityStatus      string
	DBSCheck              string
	CriminalRecord        string
	ValidCertificate      string
	Gender                string
	AvailableHours        string
	InterviewAvailability string
	DefaultUnknownAnswer  string
}

var (
	resumeExtensions = map[string]bool{".pdf": true, ".doc": true, ".docx": true, ".txt": true}
	unsafeChars      = []string{"<", ">", `"`, "'", "&", ";", "(", ")", "|", "`"}
)

// Validate enforces the startup invariants. Problems that only look odd are
// logged as warnings; everything else is returned as an error.
func (p *ApplicantProfile) Validate(log *zap.SugaredLogger) error {
	if err := p.validateRequired(); err != nil {
		return err
	}
	if err := p.validateResume(log); err != nil {
		return err
	}
	if err := p.validateExperience(log); err != nil {
		return err
	}
	p.sanitize(log)
	return nil
}

func (p *ApplicantProfile) validateRequired() error {
	required := []struct {
		name  string
		value string
	}{
		{"phone", p.Phone},
		{"address", p.Address},
		{"city", p.City},
		{"postal", p.Postal},
		{"state", p.State},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return errors.WithHint(
			errors.Newf("missing required configuration fields: %s", strings.Join(missing, ", ")),
			"set PHONE_NUMBER, ADDRESS, CITY, POSTAL_CODE and STATE in the environment or .env",
		)
	}
	return nil
}

func (p *ApplicantProfile) validateResume(log *zap.SugaredLogger) error {
	info, err := os.Stat(p.ResumePath)
	if err != nil {
		return errors.Wrapf(err, "resume file not found: %s", p.ResumePath)
	}
	if !info.Mode().IsRegular() {
		return errors.Newf("resume path is not a file: %s", p.ResumePath)
	}

	ext := strings.ToLower(filepath.Ext(p.ResumePath))
	if !resumeExtensions[ext] {
		log.Warnf("Resume file extension %q may not be supported by the job site", ext)
	}
	if ext == ".docx" {
		text, err := utils.ReadWordText(p.ResumePath)
		switch {
		case err != nil:
			log.Warnf("Resume %s does not look like a valid Word document: %v", p.ResumePath, err)
		case strings.TrimSpace(text) == "":
			log.Warnf("Resume %s has no text", p.ResumePath)
		}
	}
	return nil
}

func (p *ApplicantProfile) experienceFields() []struct {
	name  string
	value string
} {
	return []struct {
		name  string
		value string
	}{
		{"PYTHON_EXPERIENCE", p.PythonExp},
		{"JAVASCRIPT_EXPERIENCE", p.JavaScriptExp},
		{"JAVA_EXPERIENCE", p.JavaExp},
		{"AWS_EXPERIENCE", p.AWSExp},
		{"DJANGO_EXPERIENCE", p.DjangoExp},
		{"ANALYSIS_EXPERIENCE", p.AnalysisExp},
		{"TEACHING_EXPERIENCE", p.TeachingExp},
		{"PROGRAMMING_EXPERIENCE", p.ProgrammingExp},
		{"DEFAULT_EXPERIENCE", p.DefaultExp},
	}
}

func (p *ApplicantProfile) validateExperience(log *zap.SugaredLogger) error {
	for _, f := range p.experienceFields() {
		years, err := strconv.Atoi(strings.TrimSpace(f.value))
		if err != nil {
			return errors.Newf("experience field %s must be numeric, got: %q", f.name, f.value)
		}
		if years < 0 || years > 50 {
			log.Warnf("Experience value %s=%d seems unrealistic", f.name, years)
		}
	}
	return nil
}

// sanitize strips characters that have no business in a form answer. The
// resume path is left alone since it is never typed into the page.
func (p *ApplicantProfile) sanitize(log *zap.SugaredLogger) {
	fields := map[string]*string{
		"phone": &p.Phone, "address": &p.Address, "city": &p.City, "postal": &p.Postal,
		"state": &p.State, "github": &p.GitHub, "linkedin": &p.LinkedIn, "university": &p.University,
		"salary": &p.Salary, "work_authorized": &p.WorkAuthorized, "education": &p.Education,
		"sponsorship_needed": &p.SponsorshipNeeded, "commute_willing": &p.CommuteWilling,
		"commute_willing_alt": &p.CommuteWillingAlt, "preferred_shift": &p.PreferredShift,
		"disability_status": &p.DisabilityStatus, "dbs_check": &p.DBSCheck,
		"criminal_record": &p.CriminalRecord, "valid_cert": &p.ValidCertificate, "gender": &p.Gender,
		"available_hours": &p.AvailableHours, "interview_availability": &p.InterviewAvailability,
		"default_unknown_answer": &p.DefaultUnknownAnswer,
	}
	for name, value := range fields {
		for _, c := range unsafeChars {
			if strings.Contains(*value, c) {
				log.Warnf("Removed unsafe character %q from %s", c, name)
				*value = strings.ReplaceAll(*value, c, "")
			}
		}
	}
}
