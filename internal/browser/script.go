package browser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The scripts in this file execute inside the page, across a process boundary.
// They are shipped as source text and must stay self-contained: no references
// to host-side state, with a JSON-serializable return value as the only
// channel back.

// snapshotScript walks the live DOM from document.body and returns a
// role/name/state tree annotated with CSS locators for every node eligible
// for a ref (interactive elements, headings, images). Invisible elements are
// pruned; nameless generic wrappers with a single child collapse into that
// child. Returns null when the body is absent or renders nothing.
const snapshotScript = `(() => {
  const MAX_DEPTH = 20;

  const INTERACTIVE = new Set([
    'link', 'button', 'textbox', 'searchbox', 'checkbox', 'radio',
    'combobox', 'listbox', 'option', 'slider', 'switch', 'tab', 'menuitem',
  ]);

  const TAG_ROLES = {
    button: 'button', select: 'combobox', textarea: 'textbox', img: 'img',
    nav: 'navigation', main: 'main', form: 'form', dialog: 'dialog',
    ul: 'list', ol: 'list', li: 'listitem', option: 'option',
    table: 'table', article: 'article',
    h1: 'heading', h2: 'heading', h3: 'heading',
    h4: 'heading', h5: 'heading', h6: 'heading',
  };

  const INPUT_ROLES = {
    text: 'textbox', search: 'searchbox', email: 'textbox',
    password: 'textbox', tel: 'textbox', url: 'textbox', number: 'textbox',
    date: 'textbox', time: 'textbox', 'datetime-local': 'textbox',
    month: 'textbox', week: 'textbox',
    checkbox: 'checkbox', radio: 'radio', range: 'slider',
    submit: 'button', reset: 'button', button: 'button',
    image: 'button', file: 'button', color: 'button',
  };

  function computeRole(el) {
    const explicit = el.getAttribute('role');
    if (explicit) return explicit;
    const tag = el.tagName.toLowerCase();
    if (tag === 'a') return el.hasAttribute('href') ? 'link' : 'generic';
    if (tag === 'input') {
      const type = (el.getAttribute('type') || 'text').toLowerCase();
      return INPUT_ROLES[type] || 'textbox';
    }
    if (tag === 'header' || tag === 'footer') {
      // A header/footer nested in sectioning content is not a landmark;
      // demote it so one page does not render a banner per card.
      if (el.parentElement && el.parentElement.closest('article, aside, main, nav, section')) {
        return 'generic';
      }
      return tag === 'header' ? 'banner' : 'contentinfo';
    }
    return TAG_ROLES[tag] || 'generic';
  }

  function isFormControl(el) {
    const tag = el.tagName.toLowerCase();
    return tag === 'input' || tag === 'textarea' || tag === 'select';
  }

  function associatedLabelText(el) {
    if (el.id) {
      const lab = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
      if (lab) return lab.textContent.trim();
    }
    const wrap = el.closest('label');
    if (wrap) return wrap.textContent.trim();
    return '';
  }

  function computeName(el, role) {
    const aria = el.getAttribute('aria-label');
    if (aria && aria.trim()) return aria.trim();
    const labelledBy = el.getAttribute('aria-labelledby');
    if (labelledBy) {
      const parts = [];
      for (const id of labelledBy.split(/\s+/)) {
        const target = document.getElementById(id);
        if (target) parts.push(target.textContent.trim());
      }
      if (parts.length) return parts.join(' ');
    }
    if (isFormControl(el)) {
      const lab = associatedLabelText(el);
      if (lab) return lab;
    }
    const placeholder = el.getAttribute('placeholder');
    if (placeholder) return placeholder;
    if (role === 'img') {
      const alt = el.getAttribute('alt');
      if (alt) return alt;
    }
    if (role === 'button' || role === 'link' || role === 'heading' ||
        role === 'option' || role === 'menuitem' || role === 'tab') {
      const text = el.textContent.trim().replace(/\s+/g, ' ');
      if (text) return text.slice(0, 200);
    }
    const title = el.getAttribute('title');
    if (title) return title;
    return '';
  }

  function isVisible(el) {
    const rect = el.getBoundingClientRect();
    if (rect.width <= 0 || rect.height <= 0) return false;
    const style = window.getComputedStyle(el);
    if (style.display === 'none' || style.visibility === 'hidden') return false;
    if (parseFloat(style.opacity) === 0) return false;
    return true;
  }

  function buildLocator(el) {
    if (el.id) return '#' + CSS.escape(el.id);
    const testId = el.getAttribute('data-testid');
    if (testId) return '[data-testid=' + JSON.stringify(testId) + ']';
    const tag = el.tagName.toLowerCase();
    if (isFormControl(el) && el.getAttribute('name')) {
      return tag + '[name=' + JSON.stringify(el.getAttribute('name')) + ']';
    }
    const parent = el.parentElement;
    if (!parent || parent === document.documentElement) return tag;
    const sameTag = Array.from(parent.children).filter(c => c.tagName === el.tagName);
    const base = buildLocator(parent) + ' > ' + tag;
    if (sameTag.length === 1) return base;
    return base + ':nth-of-type(' + (sameTag.indexOf(el) + 1) + ')';
  }

  function controlValue(el) {
    const tag = el.tagName.toLowerCase();
    if (tag === 'select') {
      const opt = el.selectedOptions && el.selectedOptions[0];
      return opt ? opt.textContent.trim() : '';
    }
    if (tag === 'textarea') return el.value;
    if (tag === 'input') {
      const type = (el.getAttribute('type') || 'text').toLowerCase();
      if (type === 'checkbox' || type === 'radio' || type === 'password') return '';
      return el.value;
    }
    return '';
  }

  function build(el, depth) {
    if (depth > MAX_DEPTH) return null;
    if (el !== document.body && !isVisible(el)) return null;

    const role = computeRole(el);
    const name = computeName(el, role);

    const node = { role: role };
    if (name) node.name = name;

    if (role === 'heading') {
      const m = el.tagName.match(/^H([1-6])$/i);
      if (m) node.level = parseInt(m[1], 10);
      const ariaLevel = parseInt(el.getAttribute('aria-level'), 10);
      if (ariaLevel) node.level = ariaLevel;
    }

    const value = controlValue(el);
    if (value) node.value = value;

    if (el.disabled || el.getAttribute('aria-disabled') === 'true') node.disabled = true;
    if (el.checked || el.getAttribute('aria-checked') === 'true') node.checked = true;
    const expanded = el.getAttribute('aria-expanded');
    if (expanded === 'true') node.expanded = true;
    if (expanded === 'false') node.collapsed = true;
    if (el.required || el.getAttribute('aria-required') === 'true') node.required = true;
    if (document.activeElement === el) node.focused = true;

    if (INTERACTIVE.has(role) || role === 'heading' || role === 'img') {
      node.locator = buildLocator(el);
      const rect = el.getBoundingClientRect();
      node.bounds = [rect.x, rect.y, rect.width, rect.height];
    }

    const children = [];
    for (const child of el.children) {
      const built = build(child, depth + 1);
      if (built) children.push(built);
    }

    // Compact the outline: a nameless generic wrapper with one child
    // collapses into that child; a nameless childless generic disappears.
    if (role === 'generic' && !name) {
      if (children.length === 1) return children[0];
      if (children.length === 0) return null;
    }

    if (children.length) node.children = children;
    return node;
  }

  if (!document.body) return null;
  return build(document.body, 0);
})()`

// readyStateScript is the remote readiness predicate polled after navigation.
const readyStateScript = `document.readyState === "complete"`

// selectOptionScript selects the option under the given control whose trimmed
// text equals value. Multi-select is modeled as repeated single clicks.
const selectOptionScript = `(el, value) => {
  if (!el) return false;
  for (const opt of el.querySelectorAll('option')) {
    if (opt.textContent.trim() === value) {
      opt.selected = true;
      opt.click();
      el.dispatchEvent(new Event('input', { bubbles: true }));
      el.dispatchEvent(new Event('change', { bubbles: true }));
      return true;
    }
  }
  return false;
}`

// jsString encodes s as a JS string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// bindElementCall builds an expression invoking fn (a JS function expression)
// with the element resolved from locator at evaluation time, followed by any
// extra JSON-encoded arguments.
func bindElementCall(fn, locator string, args ...any) string {
	parts := []string{fmt.Sprintf("document.querySelector(%s)", jsString(locator))}
	for _, a := range args {
		b, _ := json.Marshal(a)
		parts = append(parts, string(b))
	}
	return fmt.Sprintf("(%s)(%s)", fn, strings.Join(parts, ", "))
}

// callExpr builds an expression invoking fn with no arguments.
func callExpr(fn string) string {
	return fmt.Sprintf("(%s)()", fn)
}

// coerceNull wraps expr so an undefined result serializes as null instead of
// failing the evaluation round-trip. The wrapper awaits, so a promise settles
// before the undefined check; callers must resolve the returned promise.
func coerceNull(expr string) string {
	return fmt.Sprintf("(async () => { const __r = await %s; return __r === undefined ? null : __r; })()", expr)
}
