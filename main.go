package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"easyapply/browser"
	"easyapply/config"
	"easyapply/services"
	"easyapply/utils"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "easyapply",
	Short: "Semi-automated Easy Apply job application bot",
	Long: `easyapply opens a browser on the job board login page, waits for you to
log in and run a search, then walks each result's Easy Apply form using the
applicant profile from the environment.

Configuration is read from the environment, optionally seeded from a .env file.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "env file to load before reading configuration")
	rootCmd.Flags().Bool("headless", false, "run the browser without a window")
	rootCmd.Flags().String("log-dir", "", "directory for log files and screenshots (default: LOG_DIR or logs)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	runID := uuid.NewString()

	envErr := config.LoadEnvFile(envFile)

	v := config.NewViper()
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	logDir := v.GetString("log_dir")

	lock, err := acquireLock(logDir)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	logger, err := utils.NewLogger(logDir, runID, start)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	defer logger.Close()
	log := logger.SugaredLogger

	if envErr != nil {
		log.Debugf("No env file loaded: %v", envErr)
	}
	log.Infof("Logging to %s", logger.Path())

	cfg, err := config.Load(v, log)
	if err != nil {
		log.Errorf("Failed to start application: %v", err)
		return err
	}
	extra, err := config.LoadQuestionRules(cfg.QuestionRulesFile)
	if err != nil {
		log.Errorf("Failed to start application: %v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rng := rand.New(rand.NewSource(start.UnixNano()))
	sess, err := browser.Launch(browser.LaunchOptions{Headless: cfg.Headless, Rand: rng}, log)
	if err != nil {
		log.Errorf("Failed to start application: %v", err)
		return err
	}
	defer func() {
		log.Info("Closing browser...")
		if err := sess.Close(); err != nil {
			log.Debugf("Browser close: %v", err)
		}
	}()

	log.Info("Starting job application bot")
	shots := services.NewScreenshotService(cfg.LogDir, log)
	applyJobs(ctx, cfg, extra, sess, shots, rng, log)

	uploadArtifacts(cfg.S3, runID, append([]string{logger.Path()}, shots.Taken()...), log)
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlag("headless", cmd.Flags().Lookup("headless")); err != nil {
		return errors.Wrap(err, "bind --headless")
	}
	if cmd.Flags().Changed("log-dir") {
		if err := v.BindPFlag("log_dir", cmd.Flags().Lookup("log-dir")); err != nil {
			return errors.Wrap(err, "bind --log-dir")
		}
	}
	return nil
}

func acquireLock(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create log directory %s", dir)
	}
	lock := flock.New(filepath.Join(dir, "easyapply.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "acquire run lock")
	}
	if !ok {
		return nil, errors.WithHint(
			errors.New("another easyapply run is already active"),
			"wait for it to finish or use a different --log-dir",
		)
	}
	return lock, nil
}

func applyJobs(ctx context.Context, cfg *config.AppConfig, extra []config.QuestionRule, sess browser.Session, shots *services.ScreenshotService, rng *rand.Rand, log *zap.SugaredLogger) {
	human := services.NewHumanizer(rng, services.DefaultMinActionGap, log)
	elements := services.NewElementHandler(services.DefaultRetryPolicy(), human, log)

	profile := &cfg.Profile
	handlers := services.NewPageHandlers(profile,
		services.NewFormFillerService(profile, elements, log),
		services.NewQuestionAnswerer(services.BuildAnswerRules(profile, extra), elements, log),
		human, log)
	workflow := services.NewApplicationWorkflow(
		services.NewPageClassifier(elements, services.DefaultPageMatchers(), log),
		handlers,
		services.NewSubmissionCheckerService(elements, human, log),
		human, shots, log)

	runner := services.NewJobSearchRunner(services.RunnerOptions{
		LoginURL:       cfg.LoginURL,
		LoadDelay:      cfg.LoadDelay,
		MaxResultPages: cfg.MaxResultPages,
		Prompt:         os.Stdin,
		Out:            os.Stdout,
	}, sess, elements, human, workflow, services.NewRateWindow(cfg.RateLimitMax, cfg.RateLimitWindow, log), log)

	runner.Run(ctx)
}

func uploadArtifacts(s3cfg config.S3Config, runID string, paths []string, log *zap.SugaredLogger) {
	if !s3cfg.Enabled() {
		log.Debug("S3 not configured, artifacts stay local")
		return
	}
	uploader, err := services.NewArtifactUploader(s3cfg, runID, log)
	if err != nil {
		log.Warnf("S3 uploader not initialized: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	n := uploader.UploadAll(ctx, paths)
	log.Infof("Uploaded %d of %d artifacts", n, len(paths))
}
