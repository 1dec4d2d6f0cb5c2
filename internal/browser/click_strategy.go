package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// clickStrategy dispatches a click at page coordinates. Generalized from
// ClickStrategy (pkg/scout/click_strategy.go): that version
// chose between CDP-mouse, CDP-touch and JS-dispatch based on device
// category and game-framework detection, none of which apply to generic
// web-app testing (spec's domain has no touch devices and no canvas
// games). What remains is the part that still generalizes: a canvas at the
// click site needs a trusted CDP event, because canvas-rendered UI (charts,
// editors, maps) ignores untrusted synthetic events the same way games do;
// everything else gets the more precise JS element-targeted dispatch.
type clickStrategy interface {
	click(page *rod.Page, x, y int) error
}

// cdpMouseStrategy dispatches trusted mouse events via Chrome DevTools
// Protocol, producing isTrusted=true events.
type cdpMouseStrategy struct{}

func (cdpMouseStrategy) click(page *rod.Page, x, y int) error {
	fx, fy := float64(x), float64(y)

	_ = (proto.InputDispatchMouseEvent{
		Type: proto.InputDispatchMouseEventTypeMouseMoved,
		X:    fx,
		Y:    fy,
	}).Call(page)

	if err := (proto.InputDispatchMouseEvent{
		Type:       proto.InputDispatchMouseEventTypeMousePressed,
		X:          fx,
		Y:          fy,
		Button:     proto.InputMouseButtonLeft,
		ClickCount: 1,
	}).Call(page); err != nil {
		return fmt.Errorf("cdp mouse press at (%d,%d): %w", x, y, err)
	}
	if err := (proto.InputDispatchMouseEvent{
		Type:       proto.InputDispatchMouseEventTypeMouseReleased,
		X:          fx,
		Y:          fy,
		Button:     proto.InputMouseButtonLeft,
		ClickCount: 1,
	}).Call(page); err != nil {
		return fmt.Errorf("cdp mouse release at (%d,%d): %w", x, y, err)
	}
	return nil
}

// jsDispatchStrategy targets the exact DOM element at (x,y) via
// elementFromPoint and dispatches a full pointer/mouse event sequence.
type jsDispatchStrategy struct{}

func (jsDispatchStrategy) click(page *rod.Page, x, y int) error {
	result, err := page.Eval(`(x, y) => {
		x = Math.max(0, Math.min(x, window.innerWidth - 1));
		y = Math.max(0, Math.min(y, window.innerHeight - 1));
		let el = document.elementFromPoint(x, y);
		if (!el) return 'no_element';
		const shared = { clientX: x, clientY: y, bubbles: true, cancelable: true, view: window };
		const ptrOpts = { ...shared, pointerId: 1, pointerType: 'mouse', isPrimary: true };
		el.dispatchEvent(new PointerEvent('pointermove', { ...ptrOpts, button: 0, buttons: 0 }));
		el.dispatchEvent(new MouseEvent('mousemove', { ...shared, button: 0, buttons: 0 }));
		el.dispatchEvent(new PointerEvent('pointerdown', { ...ptrOpts, button: 0, buttons: 1 }));
		el.dispatchEvent(new MouseEvent('mousedown', { ...shared, button: 0, buttons: 1 }));
		el.dispatchEvent(new PointerEvent('pointerup', { ...ptrOpts, button: 0, buttons: 0 }));
		el.dispatchEvent(new MouseEvent('mouseup', { ...shared, button: 0, buttons: 0 }));
		el.dispatchEvent(new MouseEvent('click', { ...shared, button: 0 }));
		return 'ok';
	}`, x, y)
	if err != nil {
		return fmt.Errorf("click at (%d,%d): %w", x, y, err)
	}
	if result == nil || result.Value.Str() == "no_element" {
		return fmt.Errorf("%w: click at (%d,%d)", ErrElementNotFound, x, y)
	}
	return nil
}

// selectClickStrategy picks cdpMouseStrategy when a canvas sits at (x,y),
// jsDispatchStrategy otherwise.
func selectClickStrategy(page *rod.Page, x, y int) clickStrategy {
	res, err := page.Eval(`(x, y) => {
		const el = document.elementFromPoint(x, y);
		return !!(el && el.tagName && el.tagName.toLowerCase() === 'canvas');
	}`, x, y)
	if err == nil && res != nil && res.Value.Bool() {
		return cdpMouseStrategy{}
	}
	return jsDispatchStrategy{}
}
