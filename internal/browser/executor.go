// Package browser implements the BrowserExecutor: executing a single
// Action against a live page and reporting an ActionResult. Grounded on
// pkg/scout/headless.go's go-rod page control, CDP event dispatch, JS-eval
// idiom, and timeout-via-goroutine pattern, plus click_strategy.go's click
// dispatch selection, generalized from game/canvas testing to generic
// web-app testing.
package browser

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/zentest-dev/zentest/internal/model"
)

// Executor drives a single rod.Page. Exactly one Executor (equivalently,
// one live page) exists per suite at a time: the browser page is
// exclusively owned by whichever driver/replayer currently holds it.
type Executor struct {
	Page *rod.Page
}

// New wraps an already-launched page.
func New(page *rod.Page) *Executor {
	return &Executor{Page: page}
}

// Execute runs action and returns its result. It never returns an error
// itself for expected action failures; those are reported via
// ActionResult.Err. A non-nil return error means an invariant was
// violated — an action reached Execute with a type no case here handles,
// which should be unreachable given that callers only construct Actions via
// the parser in internal/agent.
func (e *Executor) Execute(action model.Action) (model.ActionResult, error) {
	info, actErr, unreachable := e.Perform(action)
	if unreachable != nil {
		return model.ActionResult{}, unreachable
	}

	e.settle(action)
	e.bestEffortNetworkIdle(action)

	shot, shotErr := e.screenshot()
	if shotErr != nil && actErr == nil {
		actErr = shotErr
	}

	return model.ActionResult{
		Action:        action,
		ScreenshotB64: shot,
		ElementInfo:   info,
		Err:           actErr,
		Timestamp:     time.Now(),
	}, nil
}

// Perform runs the primitive for action without the post-action settle
// wait, network-idle wait, or screenshot Execute adds — the piece
// internal/replay reuses so it can apply its own, faster timing instead of
// the agentic run's 300-1000ms jitter. The third return value is non-nil
// only for the unreachable "unknown action type" case.
func (e *Executor) Perform(action model.Action) (info *model.ElementInfo, actErr, unreachable error) {
	switch action.Type {
	case model.ActionClick, model.ActionDoubleClick:
		info, actErr = e.doClick(action)
	case model.ActionMouseMove:
		actErr = e.doMouseMove(action)
	case model.ActionDrag:
		actErr = e.doDrag(action)
	case model.ActionClickButton:
		info, actErr = e.doClickButton(action)
	case model.ActionClickText:
		info, actErr = e.doClickText(action)
	case model.ActionSelectInput:
		info, actErr = e.doSelectInput(action)
	case model.ActionTyping:
		actErr = e.doType(action)
	case model.ActionKey:
		actErr = e.doKey(action)
	case model.ActionScroll:
		actErr = e.doScroll(action)
	case model.ActionWait:
		time.Sleep(time.Duration(action.Ms) * time.Millisecond)
	case model.ActionAssertText:
		actErr = e.doAssertText(action.Text, true)
	case model.ActionAssertNotText:
		actErr = e.doAssertText(action.Text, false)
	case model.ActionAssertVisible:
		info, actErr = e.doAssertVisible(action)
	case model.ActionDone:
		// nothing to execute; the driver handles termination.
	default:
		unreachable = fmt.Errorf("unknown action type: %s", action.Type)
	}
	return info, actErr, unreachable
}

// PerformAtSelector re-executes a coordinate-addressed action (click,
// double-click, assert-visible) against the element matched by selector
// instead of re-deriving it from a raw (x,y) via magnet-snap. Used by
// internal/replay when a step's recorded ElementInfo carries a selector,
// so replay targets exactly the element the Builder would locate for that
// ElementInfo rather than whatever the live page now has at the old
// coordinate.
func (e *Executor) PerformAtSelector(action model.Action, selector string) (info *model.ElementInfo, actErr, unreachable error) {
	el, err := e.Page.Timeout(5 * time.Second).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: selector %q: %v", ErrElementNotFound, selector, err), nil
	}

	switch action.Type {
	case model.ActionClick, model.ActionDoubleClick:
		if cerr := el.Click(proto.InputMouseButtonLeft, 1); cerr != nil {
			return elementInfo(el), fmt.Errorf("%w: %v", ErrElementNotFound, cerr), nil
		}
		if action.Type == model.ActionDoubleClick {
			time.Sleep(80 * time.Millisecond)
			if cerr := el.Click(proto.InputMouseButtonLeft, 1); cerr != nil {
				return elementInfo(el), fmt.Errorf("%w: %v", ErrElementNotFound, cerr), nil
			}
		}
		return elementInfo(el), nil, nil

	case model.ActionAssertVisible:
		visible, verr := el.Visible()
		if verr != nil || !visible {
			return elementInfo(el), fmt.Errorf("%w: element %q not visible", ErrAssertionFailed, selector), nil
		}
		return elementInfo(el), nil, nil

	default:
		return nil, nil, fmt.Errorf("PerformAtSelector: unsupported action type %s", action.Type)
	}
}

// settle waits 300-1000ms jitter after every action.
func (e *Executor) settle(action model.Action) {
	jitter := 300 + rand.Intn(701)
	time.Sleep(time.Duration(jitter) * time.Millisecond)
}

// bestEffortNetworkIdle waits up to 5s for network idle after actions that
// plausibly cause navigation. Timeout is not an error.
func (e *Executor) bestEffortNetworkIdle(action model.Action) {
	switch action.Type {
	case model.ActionClick, model.ActionClickButton, model.ActionClickText, model.ActionKey:
		e.Page.Timeout(5 * time.Second).WaitIdle(time.Second)
	}
}

// Screenshot captures the current page as a base64-encoded PNG. Exposed so
// internal/agent can get an initial screenshot before any action has run.
func (e *Executor) Screenshot() (string, error) {
	return e.screenshot()
}

func (e *Executor) screenshot() (string, error) {
	data, err := e.Page.Timeout(30 * time.Second).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return encodeB64(data), nil
}

func (e *Executor) doClick(a model.Action) (*model.ElementInfo, error) {
	x, y, info, found := magnetSnap(e.Page, a.X, a.Y)
	strategy := selectClickStrategy(e.Page, x, y)
	if !found {
		x, y = a.X, a.Y
	}
	if err := strategy.click(e.Page, x, y); err != nil {
		return info, fmt.Errorf("%w: %v", ErrElementNotFound, err)
	}
	if a.Type == model.ActionDoubleClick {
		time.Sleep(80 * time.Millisecond)
		if err := strategy.click(e.Page, x, y); err != nil {
			return info, fmt.Errorf("%w: %v", ErrElementNotFound, err)
		}
	}
	return info, nil
}

func (e *Executor) doMouseMove(a model.Action) error {
	return (proto.InputDispatchMouseEvent{
		Type: proto.InputDispatchMouseEventTypeMouseMoved,
		X:    float64(a.X),
		Y:    float64(a.Y),
	}).Call(e.Page)
}

func (e *Executor) doDrag(a model.Action) error {
	if err := (proto.InputDispatchMouseEvent{
		Type: proto.InputDispatchMouseEventTypeMouseMoved, X: float64(a.SX), Y: float64(a.SY),
	}).Call(e.Page); err != nil {
		return err
	}
	if err := (proto.InputDispatchMouseEvent{
		Type: proto.InputDispatchMouseEventTypeMousePressed, X: float64(a.SX), Y: float64(a.SY),
		Button: proto.InputMouseButtonLeft, ClickCount: 1,
	}).Call(e.Page); err != nil {
		return err
	}
	if err := (proto.InputDispatchMouseEvent{
		Type: proto.InputDispatchMouseEventTypeMouseMoved, X: float64(a.EX), Y: float64(a.EY),
	}).Call(e.Page); err != nil {
		return err
	}
	return (proto.InputDispatchMouseEvent{
		Type: proto.InputDispatchMouseEventTypeMouseReleased, X: float64(a.EX), Y: float64(a.EY),
		Button: proto.InputMouseButtonLeft, ClickCount: 1,
	}).Call(e.Page)
}

// doClickButton uses a role-based locator: role=button name=name. The name
// match is exact only when the action sets exact; an action that omits it
// matches by substring.
func (e *Executor) doClickButton(a model.Action) (*model.ElementInfo, error) {
	el, err := findByRole(e.Page, "button", a.Name, a.Exact)
	if err != nil {
		return nil, err
	}
	return e.clickElement(el)
}

func (e *Executor) doClickText(a model.Action) (*model.ElementInfo, error) {
	el, err := findByText(e.Page, a.Text, a.Exact)
	if err != nil {
		return nil, err
	}
	return e.clickElement(el)
}

// doSelectInput tries, in order, label=field, placeholder=field,
// role=textbox name=field; fills the first locator with exactly one match.
// A locator with several matches is ambiguous and is skipped like one with
// none.
func (e *Executor) doSelectInput(a model.Action) (*model.ElementInfo, error) {
	el, err := findByLabel(e.Page, a.Field)
	if err != nil {
		el, err = findByPlaceholder(e.Page, a.Field)
	}
	if err != nil {
		el, err = findByRole(e.Page, "textbox", a.Field, false)
	}
	if err != nil {
		return nil, err
	}
	if err := el.Input(a.Value); err != nil {
		return nil, fmt.Errorf("%w: fill %q: %v", ErrElementNotFound, a.Field, err)
	}
	return elementInfo(el), nil
}

func (e *Executor) doType(a model.Action) error {
	return e.Page.Keyboard.Type(runesOf(a.Text)...)
}

func (e *Executor) doKey(a model.Action) error {
	combo := model.NormalizeCombo(a.Combo)
	keys, err := comboToKeys(combo)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := e.Page.Keyboard.Press(k); err != nil {
			return fmt.Errorf("press key %v: %w", k, err)
		}
	}
	return nil
}

func (e *Executor) doScroll(a model.Action) error {
	dx, dy := 0, a.Amount
	if a.Direction == model.ScrollUp {
		dy = -a.Amount
	}
	return e.Page.Mouse.Scroll(float64(dx), float64(dy), 3)
}

// doAssertText succeeds iff at least one DOM node contains text (wantFound
// true) or zero nodes do (wantFound false).
func (e *Executor) doAssertText(text string, wantFound bool) error {
	res, err := e.Page.Eval(`(t) => document.body.innerText.includes(t)`, text)
	found := err == nil && res != nil && res.Value.Bool()
	if found != wantFound {
		return fmt.Errorf("%w: text %q present=%v want=%v", ErrAssertionFailed, text, found, wantFound)
	}
	return nil
}

func (e *Executor) doAssertVisible(a model.Action) (*model.ElementInfo, error) {
	x, y, info, found := magnetSnap(e.Page, a.X, a.Y)
	if !found {
		return nil, fmt.Errorf("%w: no element at (%d,%d)", ErrAssertionFailed, a.X, a.Y)
	}
	res, err := e.Page.Eval(`(x, y) => {
		const el = document.elementFromPoint(x, y);
		if (!el) return false;
		const r = el.getBoundingClientRect();
		return r.width > 0 && r.height > 0;
	}`, x, y)
	if err != nil || res == nil || !res.Value.Bool() {
		return info, fmt.Errorf("%w: element at (%d,%d) not visible", ErrAssertionFailed, x, y)
	}
	return info, nil
}

func (e *Executor) clickElement(el *rod.Element) (*model.ElementInfo, error) {
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrElementNotFound, err)
	}
	return elementInfo(el), nil
}

func runesOf(s string) []input.Key {
	keys := make([]input.Key, 0, len(s))
	for _, r := range s {
		keys = append(keys, input.Key(r))
	}
	return keys
}

func comboToKeys(combo string) ([]input.Key, error) {
	parts := strings.Split(combo, "+")
	keys := make([]input.Key, 0, len(parts))
	for _, p := range parts {
		k, ok := keyByName[p]
		if !ok {
			if len(p) == 1 {
				keys = append(keys, input.Key(p[0]))
				continue
			}
			return nil, fmt.Errorf("unrecognized key %q", p)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

var keyByName = map[string]input.Key{
	"Meta":    input.Meta,
	"Control": input.ControlLeft,
	"Alt":     input.AltLeft,
	"Shift":   input.ShiftLeft,
	"Escape":  input.Escape,
	"Enter":   input.Enter,
	"Tab":     input.Tab,
	"Backspace": input.Backspace,
}
