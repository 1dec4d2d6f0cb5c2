package browser

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/go-rod/rod"

	"github.com/zentest-dev/zentest/internal/model"
)

func encodeB64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// markAndLocate runs a JS finder expression that returns the matching
// elements, tags the first with a throwaway marker attribute, grabs a
// rod.Element handle via that attribute, then strips the marker. This is
// how role/label/placeholder/text locators are implemented without a
// built-in ARIA query engine: go-rod's Eval gives back JSON values, not
// live element handles, so the marker round-trip is how JS-side element
// identification and Go-side element control are bridged — the same
// mark-then-query idiom pkg/scout/click_strategy.go uses to clear
// click-blocking overlays (its `el.style.pointerEvents = 'none'` pass).
// markAndLocate's finder templates each return an ARRAY of every DOM node
// matching the query (not just the first) so ambiguity — more than one
// equally-valid match for the same locator — can be detected and reported
// as ErrLocatorAmbiguous instead of silently acting on whichever the
// template happened to find first.
func markAndLocate(page *rod.Page, finderJS string, args ...interface{}) (*rod.Element, error) {
	marker := fmt.Sprintf("zt-%d", rand.Int63())
	wrapped := fmt.Sprintf(`(...args) => {
		const find = %s;
		const matches = find(...args);
		if (!matches || matches.length === 0) return 0;
		matches[0].setAttribute('data-zt-mark', %q);
		return matches.length;
	}`, finderJS, marker)

	res, err := page.Eval(wrapped, args...)
	if err != nil || res == nil {
		return nil, fmt.Errorf("%w", ErrElementNotFound)
	}
	count := int(res.Value.Num())
	if count == 0 {
		return nil, fmt.Errorf("%w", ErrElementNotFound)
	}

	el, elErr := page.Element(`[data-zt-mark="` + marker + `"]`)
	_, _ = page.Eval(`(m) => { const el = document.querySelector('[data-zt-mark="' + m + '"]'); if (el) el.removeAttribute('data-zt-mark'); }`, marker)
	if elErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrElementNotFound, elErr)
	}
	if count > 1 {
		return nil, fmt.Errorf("%w: %d matches", ErrLocatorAmbiguous, count)
	}
	return el, nil
}

const roleFinderTmpl = `(role, name, exact) => {
	function defaultTagsForRole(r) {
		if (r === 'button') return 'button, input[type=button], input[type=submit]';
		if (r === 'textbox') return 'input, textarea';
		return '';
	}
	const candidates = Array.from(document.querySelectorAll('[role="' + role + '"], ' + defaultTagsForRole(role)));
	return candidates.filter(el => {
		const label = (el.getAttribute('aria-label') || el.textContent || el.value || '').trim();
		return exact ? label === name : label.includes(name);
	});
}`

func findByRole(page *rod.Page, role, name string, exact bool) (*rod.Element, error) {
	return markAndLocate(page, roleFinderTmpl, role, name, exact)
}

const textFinderTmpl = `(text, exact) => {
	const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_ELEMENT);
	const matches = [];
	let node;
	while ((node = walker.nextNode())) {
		const own = Array.from(node.childNodes).filter(n => n.nodeType === 3).map(n => n.textContent).join('').trim();
		if (!own) continue;
		if (exact ? own === text : own.includes(text)) matches.push(node);
	}
	return matches;
}`

func findByText(page *rod.Page, text string, exact bool) (*rod.Element, error) {
	return markAndLocate(page, textFinderTmpl, text, exact)
}

const labelFinderTmpl = `(field) => {
	const labels = Array.from(document.querySelectorAll('label'));
	const matches = [];
	for (const l of labels) {
		if (!l.textContent || !l.textContent.trim().includes(field)) continue;
		if (l.control) { matches.push(l.control); continue; }
		const forId = l.getAttribute('for');
		if (forId) {
			const el = document.getElementById(forId);
			if (el) matches.push(el);
		}
	}
	return matches;
}`

func findByLabel(page *rod.Page, field string) (*rod.Element, error) {
	return markAndLocate(page, labelFinderTmpl, field)
}

const placeholderFinderTmpl = `(field) => {
	const els = Array.from(document.querySelectorAll('[placeholder]'));
	return els.filter(el => el.getAttribute('placeholder').includes(field));
}`

func findByPlaceholder(page *rod.Page, field string) (*rod.Element, error) {
	return markAndLocate(page, placeholderFinderTmpl, field)
}

// elementInfo reads back ElementInfo fields for an already-located element.
func elementInfo(el *rod.Element) *model.ElementInfo {
	res, err := el.Eval(`() => {
		const el = this;
		const label = el.getAttribute('aria-label') || '';
		let accessibleName = label;
		if (!accessibleName) accessibleName = (el.textContent || '').trim().slice(0, 80);
		return JSON.stringify({
			tag: el.tagName.toLowerCase(),
			text: (el.textContent || '').trim().slice(0, 200),
			role: el.getAttribute('role') || '',
			accessibleName,
			id: el.id || '',
			class: (typeof el.className === 'string') ? el.className.slice(0, 120) : '',
			href: el.getAttribute('href') || '',
			placeholder: el.getAttribute('placeholder') || '',
			ariaLabel: label,
			testId: el.getAttribute('data-testid') || '',
		});
	}`)
	if err != nil || res == nil {
		return nil
	}
	var mr magnetResult
	if err := json.Unmarshal([]byte(res.Value.Str()), &mr); err != nil {
		return nil
	}
	info := &model.ElementInfo{
		Tag: mr.Tag, Text: mr.Text, Role: mr.Role, AccessibleName: mr.AccessibleName,
		ID: mr.ID, Class: mr.Class, Href: mr.Href, Placeholder: mr.Placeholder,
		AriaLabel: mr.AriaLabel, TestID: mr.TestID,
	}
	info.Selector = model.DeriveSelector(info)
	return info
}
