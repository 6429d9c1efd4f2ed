package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeResume(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("resume"), 0o644))
	return path
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("RESUME_PATH", writeResume(t, "resume.pdf"))
	t.Setenv("PHONE_NUMBER", "555-123-4567")
	t.Setenv("ADDRESS", "1 Main St")
	t.Setenv("CITY", "Springfield")
	t.Setenv("POSTAL_CODE", "12345")
	t.Setenv("STATE", "IL")
}

func observed() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	log, _ := observed()

	cfg, err := Load(NewViper(), log)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.LoadDelay)
	assert.Equal(t, 30, cfg.RateLimitMax)
	assert.Equal(t, time.Hour, cfg.RateLimitWindow)
	assert.Equal(t, 5, cfg.MaxResultPages)
	assert.Equal(t, "Yes", cfg.Profile.WorkAuthorized)
	assert.Equal(t, "Bachelor", cfg.Profile.Education)
	assert.Equal(t, "0", cfg.Profile.PythonExp)
	assert.False(t, cfg.S3.Enabled())
	assert.True(t, filepath.IsAbs(cfg.Profile.ResumePath))
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	for _, key := range []string{"PHONE_NUMBER", "ADDRESS", "CITY", "POSTAL_CODE", "STATE"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")
			log, _ := observed()

			cfg, err := Load(NewViper(), log)
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "missing required configuration fields")
		})
	}
}

func TestLoad_NonNumericExperience(t *testing.T) {
	setRequired(t)
	t.Setenv("JAVA_EXPERIENCE", "three")
	log, _ := observed()

	_, err := Load(NewViper(), log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JAVA_EXPERIENCE")
	assert.Contains(t, err.Error(), "three")
}

func TestLoad_UnrealisticExperienceIsWarning(t *testing.T) {
	setRequired(t)
	t.Setenv("PYTHON_EXPERIENCE", "75")
	log, logs := observed()

	cfg, err := Load(NewViper(), log)
	require.NoError(t, err)
	assert.Equal(t, "75", cfg.Profile.PythonExp)
	assert.Equal(t, 1, logs.FilterMessageSnippet("PYTHON_EXPERIENCE=75").Len())
}

func TestLoad_MissingResume(t *testing.T) {
	setRequired(t)
	t.Setenv("RESUME_PATH", filepath.Join(t.TempDir(), "nope.pdf"))
	log, _ := observed()

	_, err := Load(NewViper(), log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resume file not found")
}

func TestLoad_ResumeIsDirectory(t *testing.T) {
	setRequired(t)
	t.Setenv("RESUME_PATH", t.TempDir())
	log, _ := observed()

	_, err := Load(NewViper(), log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a file")
}

func TestLoad_UnsupportedExtensionIsWarning(t *testing.T) {
	setRequired(t)
	t.Setenv("RESUME_PATH", writeResume(t, "resume.odt"))
	log, logs := observed()

	_, err := Load(NewViper(), log)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessageSnippet("may not be supported").Len())
}

func TestLoad_InvalidDocxIsWarning(t *testing.T) {
	setRequired(t)
	t.Setenv("RESUME_PATH", writeResume(t, "resume.docx"))
	log, logs := observed()

	_, err := Load(NewViper(), log)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessageSnippet("valid Word document").Len())
}

func TestLoad_SanitizesAnswers(t *testing.T) {
	setRequired(t)
	t.Setenv("CITY", "Spring<field>")
	t.Setenv("SALARY_EXPECTATION", "$90k (negotiable)")
	log, logs := observed()

	cfg, err := Load(NewViper(), log)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", cfg.Profile.City)
	assert.Equal(t, "$90k negotiable", cfg.Profile.Salary)
	assert.GreaterOrEqual(t, logs.FilterMessageSnippet("Removed unsafe character").Len(), 4)
}

func TestLoad_RuntimeSettings(t *testing.T) {
	setRequired(t)
	t.Setenv("LOAD_DELAY", "0.5")
	t.Setenv("RATE_LIMIT_MAX", "2")
	t.Setenv("RATE_LIMIT_WINDOW", "10s")
	t.Setenv("HEADLESS", "true")
	t.Setenv("AWS_ACCESS_KEY_ID", "key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_S3_BUCKET", "bucket")
	log, _ := observed()

	cfg, err := Load(NewViper(), log)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.LoadDelay)
	assert.Equal(t, 2, cfg.RateLimitMax)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	assert.True(t, cfg.Headless)
	assert.True(t, cfg.S3.Enabled())
}

func TestLoad_BadRateWindow(t *testing.T) {
	setRequired(t)
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	log, _ := observed()

	_, err := Load(NewViper(), log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_WINDOW")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("EASYAPPLY_TEST_VALUE=from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("EASYAPPLY_TEST_VALUE") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("EASYAPPLY_TEST_VALUE"))

	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
