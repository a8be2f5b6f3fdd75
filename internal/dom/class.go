// internal/dom/class.go
//
// Class-list helpers shared by the orchestrator and every widget.
//
// Context
// -------
// All region mutation funnels through these helpers so the rest of the
// code never edits the `class` attribute by hand.  Every helper is
// idempotent: adding a class twice leaves one copy, removing a missing
// class is a no-op.  Helpers accept a *goquery.Selection and apply to every
// node in it; an empty selection is a no-op.
//
// Marker classes
// --------------
//   - `loaded`       – region finished its first load cycle.
//   - `loader`       – spinner placeholder, cleared when the region loads.
//   - `widget-error` – region rendered a failure message.
//   - `wid-<key>`    – unique-instance marker used for parameter lookup.
//
// Notes
// -----
// • goquery is not safe for concurrent use; callers run on the event loop.
// • Oxford commas, two spaces after periods.
package dom

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	ClassWidget  = "widget"
	ClassLoaded  = "loaded"
	ClassLoader  = "loader"
	ClassError   = "widget-error"
	ClassHidden  = "hidden"
	TypePrefix   = "widget-"
	UniquePrefix = "wid-"
)

// AddClass adds cls to every node in sel unless already present.
func AddClass(sel *goquery.Selection, cls string) {
	if sel == nil || cls == "" {
		return
	}
	sel.AddClass(cls)
}

// RemoveClass removes every occurrence of cls from every node in sel.
func RemoveClass(sel *goquery.Selection, cls string) {
	if sel == nil || cls == "" {
		return
	}
	sel.RemoveClass(cls)
}

// HasClass reports whether any node in sel carries cls.
func HasClass(sel *goquery.Selection, cls string) bool {
	if sel == nil {
		return false
	}
	return sel.HasClass(cls)
}

// AddRemoveClass swaps removeCls for addCls.
func AddRemoveClass(sel *goquery.Selection, addCls, removeCls string) {
	RemoveClass(sel, removeCls)
	AddClass(sel, addCls)
}

// ToggleClass flips cls on each node independently.
func ToggleClass(sel *goquery.Selection, cls string) {
	if sel == nil || cls == "" {
		return
	}
	sel.ToggleClass(cls)
}

// Classes returns the class list of the first node in sel.
func Classes(sel *goquery.Selection) []string {
	if sel == nil {
		return nil
	}
	return strings.Fields(sel.AttrOr("class", ""))
}

// WID returns the first `wid-` class of sel, or "" when the node has none.
func WID(sel *goquery.Selection) string {
	for _, c := range Classes(sel) {
		if strings.HasPrefix(c, UniquePrefix) {
			return c
		}
	}
	return ""
}

// ClearLoaders strips the spinner marker from every descendant of region.
func ClearLoaders(region *goquery.Selection) {
	if region == nil {
		return
	}
	RemoveClass(region.Find("."+ClassLoader), ClassLoader)
}

// MarkLoaded is the single "finished" point for a region.
func MarkLoaded(region *goquery.Selection) {
	AddClass(region, ClassLoaded)
	ClearLoaders(region)
}

// RenderError flags region as failed and replaces its content with msg.
// The message is escaped; servers are not trusted to send markup here.
func RenderError(region *goquery.Selection, msg string) {
	if region == nil {
		return
	}
	AddClass(region, ClassError)
	region.SetHtml("<div>" + html.EscapeString(msg) + "</div>")
}

// SetText replaces the text content of sel.
func SetText(sel *goquery.Selection, text string) {
	if sel == nil {
		return
	}
	sel.SetText(text)
}

// SetHTML replaces the inner markup of sel.
func SetHTML(sel *goquery.Selection, markup string) {
	if sel == nil {
		return
	}
	sel.SetHtml(markup)
}

// Show and Hide toggle the `hidden` marker.
func Show(sel *goquery.Selection) { RemoveClass(sel, ClassHidden) }
func Hide(sel *goquery.Selection) { AddClass(sel, ClassHidden) }
