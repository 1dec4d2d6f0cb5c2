package browser

import (
	"encoding/json"

	"github.com/go-rod/rod"

	"github.com/zentest-dev/zentest/internal/model"
)

// magnetResult mirrors the JSON shape magnetSnapScript returns.
type magnetResult struct {
	Found          bool   `json:"found"`
	X              int    `json:"x"`
	Y              int    `json:"y"`
	Tag            string `json:"tag"`
	Text           string `json:"text"`
	Role           string `json:"role"`
	AccessibleName string `json:"accessibleName"`
	ID             string `json:"id"`
	Class          string `json:"class"`
	Href           string `json:"href"`
	Placeholder    string `json:"placeholder"`
	AriaLabel      string `json:"ariaLabel"`
	TestID         string `json:"testId"`
}

// magnetSnapScript runs entirely inside the page: it walks a 6px grid over
// a 40px radius around (x,y), collects every distinct element hit, keeps
// the ones that look interactive, and returns the closest one's centroid
// plus the ElementInfo fields. Doing the whole search in one page.Eval call
// (rather than one round-trip per grid point) keeps magnet snap a single
// CDP round trip, matching the "a query, not a mutation" design note
// without paying per-point latency.
const magnetSnapScript = `(cx, cy) => {
	const radius = 40, step = 6;
	const interactiveTags = new Set(['button','a','input','textarea','select','label']);
	const seen = new Set();
	let best = null, bestDist = Infinity;

	function isInteractive(el) {
		const tag = el.tagName.toLowerCase();
		if (interactiveTags.has(tag)) return true;
		if (el.getAttribute('role')) return true;
		if (el.hasAttribute('tabindex')) return true;
		if (el.onclick) return true;
		const style = window.getComputedStyle(el);
		if (style && style.cursor === 'pointer') return true;
		return false;
	}

	for (let dx = -radius; dx <= radius; dx += step) {
		for (let dy = -radius; dy <= radius; dy += step) {
			const dist = Math.sqrt(dx * dx + dy * dy);
			if (dist > radius) continue;
			const x = cx + dx, y = cy + dy;
			if (x < 0 || y < 0 || x >= window.innerWidth || y >= window.innerHeight) continue;
			const el = document.elementFromPoint(x, y);
			if (!el || seen.has(el)) continue;
			seen.add(el);
			if (!isInteractive(el)) continue;
			const rect = el.getBoundingClientRect();
			const centroidX = rect.left + rect.width / 2;
			const centroidY = rect.top + rect.height / 2;
			const centroidDist = Math.sqrt(Math.pow(centroidX - cx, 2) + Math.pow(centroidY - cy, 2));
			if (centroidDist < bestDist) {
				bestDist = centroidDist;
				best = { el, x: Math.round(centroidX), y: Math.round(centroidY) };
			}
		}
	}

	if (!best) return JSON.stringify({ found: false });

	const el = best.el;
	const label = el.getAttribute('aria-label') || '';
	let accessibleName = label;
	if (!accessibleName && el.id) {
		const labelEl = document.querySelector('label[for="' + el.id + '"]');
		if (labelEl) accessibleName = labelEl.textContent.trim();
	}
	if (!accessibleName) accessibleName = (el.textContent || '').trim().slice(0, 80);

	return JSON.stringify({
		found: true,
		x: best.x,
		y: best.y,
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
}`

// magnetSnap searches a 40px radius around (x,y) in a 6px grid for the
// nearest interactive element. It returns the corrected
// coordinate and ElementInfo, or found=false if nothing interactive sits
// within the radius (the raw coordinate should be clicked in that case).
func magnetSnap(page *rod.Page, x, y int) (snapX, snapY int, info *model.ElementInfo, found bool) {
	res, err := page.Eval(magnetSnapScript, x, y)
	if err != nil || res == nil {
		return x, y, nil, false
	}

	var mr magnetResult
	if err := json.Unmarshal([]byte(res.Value.Str()), &mr); err != nil || !mr.Found {
		return x, y, nil, false
	}

	info = &model.ElementInfo{
		Tag:            mr.Tag,
		Text:           mr.Text,
		Role:           mr.Role,
		AccessibleName: mr.AccessibleName,
		ID:             mr.ID,
		Class:          mr.Class,
		Href:           mr.Href,
		Placeholder:    mr.Placeholder,
		AriaLabel:      mr.AriaLabel,
		TestID:         mr.TestID,
	}
	info.Selector = model.DeriveSelector(info)
	return mr.X, mr.Y, info, true
}
