package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"easyapply/browser"
	"easyapply/models"
)

const (
	jobsPerPage       = 15
	defaultTotalJobs  = 100
	progressEveryJobs = 5
)

var (
	jobCountLocators = []browser.Locator{
		browser.ByClass("jobsearch-JobCountAndSortPane-jobCount"),
		browser.ByCSS("span[data-testid='searchResultsCountText']"),
		browser.ByCSS(".np-SearchResultsHeaderContainer span"),
		browser.ByCSS("[data-testid='job-count']"),
	}

	jobCardSelectors = []string{
		".mosaic-provider-jobcards .tapItem",
		"[data-testid='job-card']",
		".job_seen_beacon",
		".slider_container .slider_item",
	}

	applyLocators = []browser.Locator{
		browser.ByCSS(".ia-IndeedApplyButton"),
		browser.ByCSS("[data-testid='apply-button']"),
		browser.ByCSS("button[aria-label*='Apply']"),
		browser.ByCSS(".indeed-apply-button"),
		browser.ByCSS("a[href*='apply']"),
	}

	nextPageLocators = []browser.Locator{
		browser.ByXPath("//a[@data-testid='pagination-page-next']"),
		browser.ByXPath("//a[@aria-label='Next Page']"),
		browser.ByXPath("//a[contains(@href, 'start=')]"),
		browser.ByXPath("//span[text()='Next']/.."),
	}

	numberPattern = regexp.MustCompile(`\d+`)
)

// RunnerOptions are the runtime knobs of the outer loop.
type RunnerOptions struct {
	LoginURL       string
	LoadDelay      time.Duration
	MaxResultPages int
	// Prompt is read for the Enter press that ends the manual login.
	Prompt io.Reader
	// Out receives the login banner and the final statistics table.
	Out io.Writer
}

// JobSearchRunner pages through search results and applies to each job.
type JobSearchRunner struct {
	opts     RunnerOptions
	sess     browser.Session
	elements *ElementHandler
	human    *Humanizer
	workflow *ApplicationWorkflow
	window   *RateWindow
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewJobSearchRunner(opts RunnerOptions, sess browser.Session, elements *ElementHandler, human *Humanizer, workflow *ApplicationWorkflow, window *RateWindow, log *zap.SugaredLogger) *JobSearchRunner {
	return &JobSearchRunner{
		opts:     opts,
		sess:     sess,
		elements: elements,
		human:    human,
		workflow: workflow,
		window:   window,
		log:      log,
		now:      time.Now,
	}
}

// Run processes result pages until they run out, pagination fails or ctx is
// cancelled. Statistics are always reported before returning.
func (r *JobSearchRunner) Run(ctx context.Context) *models.RunStats {
	stats := models.NewRunStats(r.now())
	defer r.report(stats)

	if err := r.run(ctx, stats); err != nil {
		if errors.Is(err, context.Canceled) {
			r.log.Info("Process interrupted by user")
		} else {
			r.log.Errorf("Critical error in main loop: %v", err)
		}
	}
	return stats
}

func (r *JobSearchRunner) run(ctx context.Context, stats *models.RunStats) error {
	page := browser.Main(r.sess)
	if page == nil {
		return errors.New("no open browser tab")
	}

	r.log.Info("Navigating to login page...")
	if err := page.Navigate(r.opts.LoginURL); err != nil {
		return errors.Wrap(err, "open login page")
	}
	r.human.Pause(r.opts.LoadDelay)

	if err := r.waitForLogin(ctx); err != nil {
		return err
	}

	if url := page.URL(); !strings.Contains(url, "indeed.com") || !strings.Contains(url, "jobs") {
		r.log.Warn("Current page doesn't appear to be job results. Continuing anyway...")
	}

	total := r.jobCount(page)
	r.log.Infof("Found approximately %d jobs to process", total)
	pages := min(total/jobsPerPage, r.opts.MaxResultPages)
	r.log.Infof("Will process up to %d pages (%d jobs)", pages, pages*jobsPerPage)

	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.PagesProcessed++
		r.log.Infof("Processing page %d of %d", n, pages)

		if err := r.window.Wait(ctx); err != nil {
			return err
		}

		if err := r.processPage(ctx, page, n, stats); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			r.log.Errorf("Error processing page %d: %v", n, err)
			r.log.Info("Attempting page recovery...")
			if err := page.Reload(); err != nil {
				r.log.Error("Page recovery failed, stopping execution")
				return nil
			}
			r.human.Delay(3*time.Second, 5*time.Second)
			continue
		}

		if n < pages && !r.nextPage(page, n) {
			r.log.Warn("Could not navigate to next page, ending pagination")
			break
		}
	}
	return nil
}

func (r *JobSearchRunner) waitForLogin(ctx context.Context) error {
	header := pterm.DefaultHeader.WithFullWidth().Sprint("MANUAL LOGIN REQUIRED")
	steps, _ := pterm.DefaultBulletList.WithItems([]pterm.BulletListItem{
		{Level: 0, Text: "Complete login to your account"},
		{Level: 0, Text: "Navigate to job search and enter your criteria"},
		{Level: 0, Text: "Close any popup dialogs (cookies, notifications, etc.)"},
		{Level: 0, Text: "Return here and press Enter to continue"},
	}).Srender()
	fmt.Fprintln(r.opts.Out, header)
	fmt.Fprint(r.opts.Out, steps)
	fmt.Fprint(r.opts.Out, "\nPress Enter when ready to start automation: ")

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(r.opts.Prompt).ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil && !errors.Is(err, io.EOF) {
			return errors.Wrap(err, "read login confirmation")
		}
		return nil
	}
}

func (r *JobSearchRunner) jobCount(page browser.Page) int {
	el, _, ok := r.elements.FindFirst(page, jobCountLocators, 10*time.Second)
	if !ok {
		r.log.Error("Could not find job count element. Page may have changed or no jobs found.")
		r.log.Info("Attempting to continue with estimated job count...")
		return defaultTotalJobs
	}
	text, err := el.Text()
	if err != nil {
		r.log.Warnf("Could not read job count: %v", err)
		return defaultTotalJobs
	}
	return ParseJobCount(text)
}

// ParseJobCount takes the first number in texts like "1,234 jobs".
func ParseJobCount(text string) int {
	m := numberPattern.FindString(strings.ReplaceAll(text, ",", ""))
	n, err := strconv.Atoi(m)
	if err != nil {
		return defaultTotalJobs
	}
	return n
}

func (r *JobSearchRunner) processPage(ctx context.Context, page browser.Page, n int, stats *models.RunStats) error {
	var cards []browser.Element
	for _, sel := range jobCardSelectors {
		found, err := page.Query(sel)
		if err != nil {
			return errors.Wrapf(err, "query job cards %s", sel)
		}
		if len(found) > 0 {
			r.log.Debugf("Found %d jobs using selector: %s", len(found), sel)
			cards = found
			break
		}
	}
	if len(cards) == 0 {
		r.log.Warnf("No job results found on page %d", n)
		return nil
	}

	for i, card := range cards {
		if err := ctx.Err(); err != nil {
			return err
		}
		job := i + 1
		r.log.Infof("Processing job %d/%d on page %d", job, len(cards), n)
		stats.Attempted++

		outcome, err := r.applyToJob(ctx, page, card, job)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch {
		case err != nil:
			stats.Record(models.OutcomeFailed)
			r.log.Errorf("Error processing job %d: %v", job, err)
		case outcome != "":
			stats.Record(outcome)
			if outcome.Succeeded() {
				r.log.Infof("Successfully applied to job %d (%s)", job, outcome)
			} else {
				r.log.Warnf("Failed to complete application for job %d (%s)", job, outcome)
			}
		}

		if len(r.sess.Pages()) > 1 {
			if err := browser.CloseSecondary(r.sess); err != nil {
				r.log.Errorf("Could not return to main tab: %v", err)
			}
		}

		if stats.Attempted%progressEveryJobs == 0 {
			r.log.Infof("Progress: %d attempted, %d successful, elapsed: %s",
				stats.Attempted, stats.Successful, stats.Elapsed(r.now()))
		}
	}
	return nil
}

// applyToJob returns an empty outcome when the job was skipped.
func (r *JobSearchRunner) applyToJob(ctx context.Context, page browser.Page, card browser.Element, job int) (models.Outcome, error) {
	r.human.RandomScroll(page)
	r.human.RandomMouseMovement(page)

	if !r.elements.Click(page, card) {
		r.log.Warnf("Could not click job %d, skipping", job)
		return "", nil
	}
	r.human.Delay(time.Second, 3*time.Second)

	apply := r.findApplyButton(page)
	if apply == nil {
		r.log.Infof("No Easy Apply button found for job %d, skipping", job)
		return "", nil
	}
	r.log.Infof("Found Easy Apply button for job %d", job)

	if !r.elements.Click(page, apply) {
		r.log.Warnf("Could not click apply button for job %d", job)
		return "", nil
	}
	r.human.Delay(2*time.Second, 4*time.Second)

	if len(r.sess.Pages()) == 0 {
		return "", errors.New("browser has no open tabs")
	}
	return r.workflow.Run(ctx, r.sess, job), nil
}

func (r *JobSearchRunner) findApplyButton(page browser.Page) browser.Element {
	for _, loc := range applyLocators {
		el, ok := r.elements.FindElement(page, loc, 3*time.Second)
		if !ok {
			continue
		}
		if strings.Contains(buttonLabel(el), "apply") {
			return el
		}
	}
	return nil
}

func (r *JobSearchRunner) nextPage(page browser.Page, n int) bool {
	for _, loc := range nextPageLocators {
		el, ok := r.elements.FindElement(page, loc, 5*time.Second)
		if !ok || !el.Enabled() {
			continue
		}
		r.log.Infof("Navigating to page %d", n+1)
		if r.elements.Click(page, el) {
			r.human.Delay(3*time.Second, 6*time.Second)
			r.human.Pause(r.opts.LoadDelay)
			return true
		}
	}
	r.log.Warn("No next page button found or clickable")
	return false
}

func (r *JobSearchRunner) report(stats *models.RunStats) {
	elapsed := stats.Elapsed(r.now())
	r.log.Info("FINAL STATISTICS")
	r.log.Infof("Total runtime: %s", elapsed)
	r.log.Infof("Pages processed: %d", stats.PagesProcessed)
	r.log.Infof("Applications attempted: %d", stats.Attempted)
	r.log.Infof("Applications successful: %d", stats.Successful)
	r.log.Infof("Applications failed: %d", stats.Failed)
	if stats.Attempted > 0 {
		r.log.Infof("Success rate: %.1f%%", stats.SuccessRate())
	}

	data := pterm.TableData{
		{"Metric", "Value"},
		{"Total runtime", elapsed.String()},
		{"Pages processed", strconv.Itoa(stats.PagesProcessed)},
		{"Applications attempted", strconv.Itoa(stats.Attempted)},
		{"Applications successful", strconv.Itoa(stats.Successful)},
		{"Applications failed", strconv.Itoa(stats.Failed)},
	}
	if stats.Attempted > 0 {
		data = append(data, []string{"Success rate", fmt.Sprintf("%.1f%%", stats.SuccessRate())})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		r.log.Debugf("Could not render statistics table: %v", err)
		return
	}
	fmt.Fprintln(r.opts.Out, table)
}
