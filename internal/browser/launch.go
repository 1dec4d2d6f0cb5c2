package browser

import (
	"fmt"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Viewport is the browser window size the Executor renders at (default
// 1280x720).
type Viewport struct {
	Width  int
	Height int
}

// DefaultViewport is the configuration default used when none is set.
func DefaultViewport() Viewport { return Viewport{Width: 1280, Height: 720} }

// Launch starts a Chromium browser over CDP (go-rod) and returns a ready
// page at the given viewport. headless mirrors the config's `headless`
// option (`auto` resolved by the caller before this is invoked).
func Launch(headless bool, vp Viewport) (*rod.Browser, *rod.Page, error) {
	l := launcher.New().
		Headless(headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage")

	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		return nil, nil, fmt.Errorf("open page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		browser.Close()
		return nil, nil, fmt.Errorf("set viewport: %w", err)
	}

	return browser, page, nil
}
