package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
)

// Navigate loads url in page and waits for it to finish loading, both
// bounded by timeout. A timed-out navigation or load wait is reported as
// ErrNavigationTimeout rather than rod's raw context-deadline error, so
// callers can distinguish it from every other navigation failure per the
// BrowserExecutor failure taxonomy.
func Navigate(page *rod.Page, url string, timeout time.Duration) error {
	p := page.Timeout(timeout)
	if err := p.Navigate(url); err != nil {
		return classifyNavErr(err)
	}
	if err := p.WaitLoad(); err != nil {
		return classifyNavErr(err)
	}
	return nil
}

func classifyNavErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "context deadline exceeded") {
		return fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}
	return err
}
