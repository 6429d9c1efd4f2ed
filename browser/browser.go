// Package browser is the boundary between the bot and the browser driver.
//
// Everything above this package talks to Session, Page and Element only, so
// the application flow can be exercised against scripted pages in tests and
// against a live Chromium through the playwright adapter at runtime.
package browser

import (
	"time"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound is returned when no element matched before the timeout.
	ErrNotFound = errors.New("element not found")
	// ErrClickIntercepted means another element would receive the click.
	ErrClickIntercepted = errors.New("click intercepted")
	// ErrStaleElement means the element is no longer attached to the DOM.
	ErrStaleElement = errors.New("stale element reference")
)

// By is a locator strategy.
type By string

const (
	CSS       By = "css"
	XPath     By = "xpath"
	ClassName By = "class"
	Text      By = "text"
)

// Locator pairs a strategy with its value.
type Locator struct {
	By    By
	Value string
}

func ByCSS(value string) Locator   { return Locator{By: CSS, Value: value} }
func ByXPath(value string) Locator { return Locator{By: XPath, Value: value} }
func ByClass(value string) Locator { return Locator{By: ClassName, Value: value} }
func ByText(value string) Locator  { return Locator{By: Text, Value: value} }

// Selector renders the locator in the driver's selector syntax.
func (l Locator) Selector() string {
	switch l.By {
	case XPath:
		return "xpath=" + l.Value
	case ClassName:
		return "." + l.Value
	case Text:
		return "text=" + l.Value
	default:
		return l.Value
	}
}

func (l Locator) String() string {
	return string(l.By) + "=" + l.Value
}

// Element is a handle to a single DOM node.
type Element interface {
	Click() error
	// ScriptClick dispatches the click from page script, bypassing overlays.
	ScriptClick() error
	// MoveAndClick hovers the element first, then clicks it.
	MoveAndClick() error
	Hover() error

	Text() (string, error)
	Attribute(name string) (string, error)
	Value() (string, error)
	Enabled() bool
	Visible() bool

	Clear() error
	// Type sends text as individual key presses.
	Type(text string) error
	// Press sends a named key such as "Backspace".
	Press(key string) error
	ScrollIntoView() error
	SetFile(path string) error

	// Query finds descendants matching a selector.
	Query(selector string) ([]Element, error)
}

// Page is a single tab.
type Page interface {
	Query(selector string) ([]Element, error)
	// WaitFor blocks until an element matching selector is attached, or
	// returns ErrNotFound once timeout elapses.
	WaitFor(selector string, timeout time.Duration) (Element, error)

	URL() string
	Content() (string, error)
	Execute(script string) error
	Navigate(url string) error
	Reload() error
	Screenshot(path string) error
	Focus() error
}

// Session owns the browser process and its tabs.
type Session interface {
	// Pages lists open tabs, oldest first. The first one is the main tab.
	Pages() []Page
	ClosePage(p Page) error
	Close() error
}

// Main returns the first tab of the session, or nil if none is open.
func Main(s Session) Page {
	pages := s.Pages()
	if len(pages) == 0 {
		return nil
	}
	return pages[0]
}

// Latest returns the most recently opened tab, or nil if none is open.
func Latest(s Session) Page {
	pages := s.Pages()
	if len(pages) == 0 {
		return nil
	}
	return pages[len(pages)-1]
}

// CloseSecondary closes every tab except the main one and focuses it.
func CloseSecondary(s Session) error {
	pages := s.Pages()
	if len(pages) == 0 {
		return errors.New("no open pages")
	}
	for _, p := range pages[1:] {
		if err := s.ClosePage(p); err != nil {
			return errors.Wrap(err, "close secondary tab")
		}
	}
	return pages[0].Focus()
}
