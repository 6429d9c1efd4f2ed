package browser

import (
	"math/rand"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

const clickTimeout = 5 * time.Second

// LaunchOptions configures the Chromium process.
type LaunchOptions struct {
	Headless bool
	Rand     *rand.Rand
}

type pwSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	log     *zap.SugaredLogger
}

// Launch starts Playwright, launches Chromium with a randomized fingerprint
// and opens the main tab.
func Launch(opts LaunchOptions, log *zap.SugaredLogger) (Session, error) {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	fp := RandomFingerprint(rng)
	log.Infof("Using user agent: %s", fp.UserAgent)

	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.Wrap(err, "failed to start playwright")
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless:          playwright.Bool(opts.Headless),
		Args:              fp.LaunchArgs(),
		IgnoreDefaultArgs: []string{"--enable-automation"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, errors.WithHint(
			errors.Wrap(err, "failed to launch browser"),
			"install the browsers with: go run github.com/playwright-community/playwright-go/cmd/playwright install chromium",
		)
	}

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:        playwright.String(fp.UserAgent),
		Viewport:         &playwright.Size{Width: fp.Width, Height: fp.Height},
		ExtraHttpHeaders: map[string]string{"Accept-Language": fp.AcceptLanguage},
	})
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, errors.Wrap(err, "failed to create browser context")
	}

	for _, script := range stealthScripts {
		if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(script)}); err != nil {
			log.Warnf("Could not install init script: %v", err)
		}
	}

	if _, err := bctx.NewPage(); err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, errors.Wrap(err, "failed to open main tab")
	}

	log.Infof("Browser setup completed (%dx%d)", fp.Width, fp.Height)
	return &pwSession{pw: pw, browser: b, context: bctx, log: log}, nil
}

func (s *pwSession) Pages() []Page {
	raw := s.context.Pages()
	pages := make([]Page, 0, len(raw))
	for _, p := range raw {
		pages = append(pages, &pwPage{page: p})
	}
	return pages
}

func (s *pwSession) ClosePage(p Page) error {
	pp, ok := p.(*pwPage)
	if !ok {
		return errors.Newf("unexpected page type %T", p)
	}
	return pp.page.Close()
}

func (s *pwSession) Close() error {
	var errs error
	if s.browser != nil {
		errs = errors.CombineErrors(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = errors.CombineErrors(errs, s.pw.Stop())
	}
	return errs
}

type pwPage struct {
	page playwright.Page
}

func (p *pwPage) Query(selector string) ([]Element, error) {
	return queryAll(p.page.Locator(selector))
}

func (p *pwPage) WaitFor(selector string, timeout time.Duration) (Element, error) {
	loc := p.page.Locator(selector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, classify(err)
	}
	return &pwElement{loc: loc}, nil
}

func (p *pwPage) URL() string { return p.page.URL() }

func (p *pwPage) Content() (string, error) { return p.page.Content() }

func (p *pwPage) Execute(script string) error {
	_, err := p.page.Evaluate(script)
	return err
}

func (p *pwPage) Navigate(url string) error {
	_, err := p.page.Goto(url)
	return err
}

func (p *pwPage) Reload() error {
	_, err := p.page.Reload()
	return err
}

func (p *pwPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (p *pwPage) Focus() error { return p.page.BringToFront() }

type pwElement struct {
	loc playwright.Locator
}

func queryAll(loc playwright.Locator) ([]Element, error) {
	all, err := loc.All()
	if err != nil {
		return nil, classify(err)
	}
	els := make([]Element, 0, len(all))
	for _, l := range all {
		els = append(els, &pwElement{loc: l})
	}
	return els, nil
}

func (e *pwElement) Click() error {
	return classifyClick(e.loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(clickTimeout.Milliseconds())),
	}))
}

func (e *pwElement) ScriptClick() error {
	_, err := e.loc.Evaluate("el => el.click()", nil)
	return classifyClick(err)
}

func (e *pwElement) MoveAndClick() error {
	if err := e.loc.Hover(); err != nil {
		return classifyClick(err)
	}
	return classifyClick(e.loc.Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(true),
		Timeout: playwright.Float(float64(clickTimeout.Milliseconds())),
	}))
}

func (e *pwElement) Text() (string, error) {
	text, err := e.loc.InnerText()
	return text, classify(err)
}

func (e *pwElement) Attribute(name string) (string, error) {
	v, err := e.loc.GetAttribute(name)
	return v, classify(err)
}

func (e *pwElement) Value() (string, error) {
	v, err := e.loc.InputValue()
	return v, classify(err)
}

func (e *pwElement) Enabled() bool {
	ok, err := e.loc.IsEnabled()
	return err == nil && ok
}

func (e *pwElement) Visible() bool {
	ok, err := e.loc.IsVisible()
	return err == nil && ok
}

func (e *pwElement) Hover() error { return classify(e.loc.Hover()) }
func (e *pwElement) Clear() error { return classify(e.loc.Clear()) }
func (e *pwElement) Type(text string) error { return classify(e.loc.PressSequentially(text)) }
func (e *pwElement) Press(key string) error { return classify(e.loc.Press(key)) }
func (e *pwElement) ScrollIntoView() error { return classify(e.loc.ScrollIntoViewIfNeeded()) }
func (e *pwElement) SetFile(path string) error { return classify(e.loc.SetInputFiles(path)) }
func (e *pwElement) Query(sel string) ([]Element, error) { return queryAll(e.loc.Locator(sel)) }

// classify maps driver errors onto the package sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not attached to the DOM"), strings.Contains(msg, "detached"):
		return errors.Mark(err, ErrStaleElement)
	case errors.Is(err, playwright.ErrTimeout):
		return errors.Mark(err, ErrNotFound)
	}
	return err
}

// classifyClick treats an actionability timeout as an intercepted click.
func classifyClick(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "intercepts pointer events") || errors.Is(err, playwright.ErrTimeout) {
		return errors.Mark(err, ErrClickIntercepted)
	}
	return classify(err)
}
