package browser

import (
	"fmt"
	"math/rand"
)

var (
	chromeVersions = []string{"129.0.0.0", "130.0.0.0", "131.0.0.0"}
	webkitVersions = []string{"537.36", "537.37"}
	acceptLangs    = []string{"en-US,en;q=0.9", "en-GB,en;q=0.9", "en-CA,en;q=0.9"}
)

// stealthArgs are Chromium switches that hide the usual automation tells.
var stealthArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-features=VizDisplayCompositor",
	"--disable-ipc-flooding-protection",
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--disable-extensions",
	"--disable-plugins-discovery",
}

// stealthScripts run before any page script in every tab.
var stealthScripts = []string{
	"Object.defineProperty(navigator, 'webdriver', {get: () => undefined})",
	"Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3, 4, 5]})",
	"Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en']})",
}

// Fingerprint is the randomized identity presented by one browser run.
type Fingerprint struct {
	UserAgent      string
	Width          int
	Height         int
	AcceptLanguage string
}

// RandomFingerprint picks a realistic desktop Chrome identity.
func RandomFingerprint(rng *rand.Rand) Fingerprint {
	chrome := chromeVersions[rng.Intn(len(chromeVersions))]
	webkit := webkitVersions[rng.Intn(len(webkitVersions))]

	return Fingerprint{
		UserAgent: fmt.Sprintf(
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/%s (KHTML, like Gecko) Chrome/%s Safari/%s",
			webkit, chrome, webkit,
		),
		Width:          1200 + rng.Intn(1920-1200+1),
		Height:         800 + rng.Intn(1080-800+1),
		AcceptLanguage: acceptLangs[rng.Intn(len(acceptLangs))],
	}
}

// LaunchArgs returns the Chromium switches for this fingerprint.
func (f Fingerprint) LaunchArgs() []string {
	args := make([]string, 0, len(stealthArgs)+2)
	args = append(args, stealthArgs...)
	args = append(args,
		fmt.Sprintf("--window-size=%d,%d", f.Width, f.Height),
		"--accept-lang="+f.AcceptLanguage,
	)
	return args
}
