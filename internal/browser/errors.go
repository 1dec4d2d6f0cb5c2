package browser

import "errors"

// Failure taxonomy propagated in ActionResult.Err. Callers
// use errors.Is against these sentinels rather than matching strings.
var (
	ErrElementNotFound   = errors.New("element not found")
	ErrLocatorAmbiguous  = errors.New("locator ambiguous")
	ErrNavigationTimeout = errors.New("navigation timeout")
	ErrAssertionFailed   = errors.New("assertion failed")
)
