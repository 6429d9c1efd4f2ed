package config

import (
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// S3Config holds optional artifact upload settings.
type S3Config struct {
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
}

// Enabled reports whether every setting needed for uploads is present.
func (c S3Config) Enabled() bool {
	return c.AccessKey != "" && c.SecretKey != "" && c.Region != "" && c.Bucket != ""
}

// AppConfig is everything the bot reads from the environment.
type AppConfig struct {
	Profile ApplicantProfile

	LoadDelay         time.Duration
	LoginURL          string
	Headless          bool
	LogDir            string
	MaxResultPages    int
	RateLimitMax      int
	RateLimitWindow   time.Duration
	QuestionRulesFile string
	S3                S3Config
}

var defaults = map[string]any{
	"load_delay":        2.0,
	"resume_path":       "resume.pdf",
	"login_url":         "https://www.indeed.com/account/login",
	"headless":          false,
	"log_dir":           "logs",
	"max_result_pages":  5,
	"rate_limit_max":    30,
	"rate_limit_window": "1h",

	"python_experience":      "0",
	"javascript_experience":  "0",
	"java_experience":        "0",
	"aws_experience":         "0",
	"django_experience":      "0",
	"analysis_experience":    "0",
	"teaching_experience":    "0",
	"programming_experience": "0",
	"default_experience":     "0",

	"work_authorized":        "Yes",
	"education_level":        "Bachelor",
	"sponsorship_needed":     "No",
	"commute_willing":        "Yes",
	"commute_willing_alt":    "Yes",
	"preferred_shift":        "Day shift",
	"disability_status":      "Decline to answer",
	"dbs_check":              "Yes",
	"criminal_record":        "No",
	"valid_certificate":      "Yes",
	"gender":                 "Decline to answer",
	"available_hours":        "Yes",
	"interview_availability": "Flexible",
	"default_unknown_answer": "Yes",
}

// LoadEnvFile loads KEY=value pairs from path into the process environment.
// Callers may treat the error as informational since variables can also
// come from the shell.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "load env file %s", path)
	}
	return nil
}

// NewViper returns a viper instance reading the environment with defaults.
func NewViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

// Load reads and validates the configuration. Any error is fatal for the run.
func Load(v *viper.Viper, log *zap.SugaredLogger) (*AppConfig, error) {
	resume, err := filepath.Abs(v.GetString("resume_path"))
	if err != nil {
		return nil, errors.Wrap(err, "resolve resume path")
	}

	window, err := time.ParseDuration(v.GetString("rate_limit_window"))
	if err != nil {
		return nil, errors.Wrap(err, "RATE_LIMIT_WINDOW")
	}

	cfg := &AppConfig{
		Profile: ApplicantProfile{
			ResumePath: resume,
			Phone:      v.GetString("phone_number"),
			Address:    v.GetString("address"),
			City:       v.GetString("city"),
			Postal:     v.GetString("postal_code"),
			State:      v.GetString("state"),
			GitHub:     v.GetString("github_url"),
			LinkedIn:   v.GetString("linkedin_url"),
			University: v.GetString("university"),

			PythonExp:      v.GetString("python_experience"),
			JavaScriptExp:  v.GetString("javascript_experience"),
			JavaExp:        v.GetString("java_experience"),
			AWSExp:         v.GetString("aws_experience"),
			DjangoExp:      v.GetString("django_experience"),
			AnalysisExp:    v.GetString("analysis_experience"),
			TeachingExp:    v.GetString("teaching_experience"),
			ProgrammingExp: v.GetString("programming_experience"),
			DefaultExp:     v.GetString("default_experience"),

			Salary:                v.GetString("salary_expectation"),
			WorkAuthorized:        v.GetString("work_authorized"),
			Education:             v.GetString("education_level"),
			SponsorshipNeeded:     v.GetString("sponsorship_needed"),
			CommuteWilling:        v.GetString("commute_willing"),
			CommuteWillingAlt:     v.GetString("commute_willing_alt"),
			PreferredShift:        v.GetString("preferred_shift"),
			DisabilityStatus:      v.GetString("disability_status"),
			DBSCheck:              v.GetString("dbs_check"),
			CriminalRecord:        v.GetString("criminal_record"),
			ValidCertificate:      v.GetString("valid_certificate"),
			Gender:                v.GetString("gender"),
			AvailableHours:        v.GetString("available_hours"),
			InterviewAvailability: v.GetString("interview_availability"),
			DefaultUnknownAnswer:  v.GetString("default_unknown_answer"),
		},
		LoadDelay:         time.Duration(v.GetFloat64("load_delay") * float64(time.Second)),
		LoginURL:          v.GetString("login_url"),
		Headless:          v.GetBool("headless"),
		LogDir:            v.GetString("log_dir"),
		MaxResultPages:    v.GetInt("max_result_pages"),
		RateLimitMax:      v.GetInt("rate_limit_max"),
		RateLimitWindow:   window,
		QuestionRulesFile: v.GetString("question_rules_file"),
		S3: S3Config{
			AccessKey: v.GetString("aws_access_key_id"),
			SecretKey: v.GetString("aws_secret_access_key"),
			Region:    v.GetString("aws_region"),
			Bucket:    v.GetString("aws_s3_bucket"),
		},
	}

	if cfg.RateLimitMax <= 0 {
		return nil, errors.Newf("RATE_LIMIT_MAX must be positive, got %d", cfg.RateLimitMax)
	}
	if cfg.MaxResultPages <= 0 {
		return nil, errors.Newf("MAX_RESULT_PAGES must be positive, got %d", cfg.MaxResultPages)
	}
	if err := cfg.Profile.Validate(log); err != nil {
		return nil, err
	}

	log.Info("Configuration loaded and validated successfully")
	return cfg, nil
}
