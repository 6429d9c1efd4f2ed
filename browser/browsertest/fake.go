// Package browsertest provides scripted in-memory pages for tests.
//
// A Page is a sequence of Screens. Each Screen maps driver selector strings
// to the elements a query for that selector returns, so tests describe a
// synthetic page as exactly the lookups the code under test performs.
package browsertest

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"easyapply/browser"
)

// Element is a fake DOM node.
type Element struct {
	Label    string
	Attrs    map[string]string
	Input    string
	Disabled bool
	Hidden   bool
	Children map[string][]*Element

	// Per-strategy click failures. A nil error means the strategy succeeds.
	ClickErr       error
	ScriptClickErr error
	MoveClickErr   error
	OnClick        func()

	ClickAttempts []string
	Typed         string
	Keys          []string
	Files         []string
	Scrolled      int
	Hovered       int
}

var _ browser.Element = (*Element)(nil)

// NewElement returns an element with the given visible text.
func NewElement(label string) *Element {
	return &Element{Label: label, Attrs: map[string]string{}, Children: map[string][]*Element{}}
}

// Input returns an empty, enabled text input.
func Input() *Element { return NewElement("") }

// Button returns a clickable element that runs onClick when clicked.
func Button(label string, onClick func()) *Element {
	el := NewElement(label)
	el.OnClick = onClick
	return el
}

// With adds children reachable through Query(selector).
func (e *Element) With(selector string, children ...*Element) *Element {
	e.Children[selector] = append(e.Children[selector], children...)
	return e
}

// Clicked reports whether any click strategy succeeded.
func (e *Element) Clicked() bool {
	for _, a := range e.ClickAttempts {
		if a == "ok" {
			return true
		}
	}
	return false
}

func (e *Element) click(strategy string, err error) error {
	if err != nil {
		e.ClickAttempts = append(e.ClickAttempts, strategy)
		return err
	}
	e.ClickAttempts = append(e.ClickAttempts, "ok")
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *Element) Click() error { return e.click("direct", e.ClickErr) }
func (e *Element) ScriptClick() error { return e.click("script", e.ScriptClickErr) }
func (e *Element) MoveAndClick() error { return e.click("move", e.MoveClickErr) }

func (e *Element) Hover() error {
	e.Hovered++
	return nil
}

func (e *Element) Text() (string, error) { return e.Label, nil }

func (e *Element) Attribute(name string) (string, error) { return e.Attrs[name], nil }

func (e *Element) Value() (string, error) { return e.Input, nil }

func (e *Element) Enabled() bool { return !e.Disabled }
func (e *Element) Visible() bool { return !e.Hidden }

func (e *Element) Clear() error {
	e.Input = ""
	return nil
}

func (e *Element) Type(text string) error {
	e.Input += text
	e.Typed += text
	return nil
}

func (e *Element) Press(key string) error {
	e.Keys = append(e.Keys, key)
	if key == "Backspace" && e.Input != "" {
		r := []rune(e.Input)
		e.Input = string(r[:len(r)-1])
	}
	return nil
}

func (e *Element) ScrollIntoView() error {
	e.Scrolled++
	return nil
}

func (e *Element) SetFile(path string) error {
	if e.Disabled {
		return errors.New("input is disabled")
	}
	e.Files = append(e.Files, path)
	return nil
}

func (e *Element) Query(selector string) ([]browser.Element, error) {
	return toElements(e.Children[selector]), nil
}

// Screen is one state of a page.
type Screen struct {
	URL      string
	HTML     string
	Elements map[string][]*Element
}

// NewScreen returns an empty screen with the given HTML body.
func NewScreen(html string) *Screen {
	return &Screen{HTML: html, Elements: map[string][]*Element{}}
}

// With registers elements returned by a query for selector.
func (s *Screen) With(selector string, els ...*Element) *Screen {
	s.Elements[selector] = append(s.Elements[selector], els...)
	return s
}

// Page is a fake tab stepping through screens.
type Page struct {
	Screens []*Screen
	Current int

	ContentErr error
	ReloadErr  error
	// QueryErrs fails Query for the listed selectors.
	QueryErrs map[string]error

	Navigated   []string
	Reloads     int
	Scripts     []string
	Screenshots []string
	Focused     int
	Queries     []string
}

var _ browser.Page = (*Page)(nil)

// NewPage returns a page that starts on the first screen.
func NewPage(screens ...*Screen) *Page {
	if len(screens) == 0 {
		screens = []*Screen{NewScreen("")}
	}
	return &Page{Screens: screens}
}

// Screen returns the current screen.
func (p *Page) Screen() *Screen { return p.Screens[p.Current] }

// Advance moves to the next screen, staying on the last one.
func (p *Page) Advance() {
	if p.Current < len(p.Screens)-1 {
		p.Current++
	}
}

func (p *Page) Query(selector string) ([]browser.Element, error) {
	p.Queries = append(p.Queries, selector)
	if err := p.QueryErrs[selector]; err != nil {
		return nil, err
	}
	return toElements(p.Screen().Elements[selector]), nil
}

func (p *Page) WaitFor(selector string, _ time.Duration) (browser.Element, error) {
	p.Queries = append(p.Queries, selector)
	els := p.Screen().Elements[selector]
	if len(els) == 0 {
		return nil, errors.Mark(errors.Newf("waiting for %q", selector), browser.ErrNotFound)
	}
	return els[0], nil
}

func (p *Page) URL() string { return p.Screen().URL }

func (p *Page) Content() (string, error) {
	if p.ContentErr != nil {
		return "", p.ContentErr
	}
	return p.Screen().HTML, nil
}

func (p *Page) Execute(script string) error {
	p.Scripts = append(p.Scripts, script)
	return nil
}

func (p *Page) Navigate(url string) error {
	p.Navigated = append(p.Navigated, url)
	return nil
}

func (p *Page) Reload() error {
	p.Reloads++
	return p.ReloadErr
}

func (p *Page) Screenshot(path string) error {
	p.Screenshots = append(p.Screenshots, path)
	return os.WriteFile(path, []byte("png"), 0o644)
}

func (p *Page) Focus() error {
	p.Focused++
	return nil
}

// Session is a fake browser holding an ordered list of tabs.
type Session struct {
	Tabs   []*Page
	Closed bool
}

var _ browser.Session = (*Session)(nil)

// NewSession returns a session whose main tab is main.
func NewSession(main *Page) *Session {
	return &Session{Tabs: []*Page{main}}
}

// Open appends a tab, as a site opening a popup would.
func (s *Session) Open(p *Page) { s.Tabs = append(s.Tabs, p) }

func (s *Session) Pages() []browser.Page {
	pages := make([]browser.Page, 0, len(s.Tabs))
	for _, t := range s.Tabs {
		pages = append(pages, t)
	}
	return pages
}

func (s *Session) ClosePage(p browser.Page) error {
	for i, t := range s.Tabs {
		if browser.Page(t) == p {
			s.Tabs = append(s.Tabs[:i], s.Tabs[i+1:]...)
			return nil
		}
	}
	return errors.New("page not open")
}

func (s *Session) Close() error {
	s.Closed = true
	return nil
}

func toElements(els []*Element) []browser.Element {
	out := make([]browser.Element, 0, len(els))
	for _, e := range els {
		out = append(out, e)
	}
	return out
}
