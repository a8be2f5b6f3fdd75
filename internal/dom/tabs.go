// internal/dom/tabs.go
//
// Tab groups.
//
// A `.widget-tabs` element holds tab links and `.tab-container` panes.  On
// page init the first pane of each group is shown and the rest hidden.
// SelectTab activates one link and shows the pane with the matching id,
// touching only panes whose nearest tab group is the link's group so nested
// groups keep their own selection.
package dom

import (
	"errors"

	"github.com/PuerkitoBio/goquery"
)

const (
	ClassTabs         = "widget-tabs"
	ClassTabContainer = "tab-container"
	ClassTabVisible   = "tab-content-visible"
	ClassTabHidden    = "tab-content-hidden"
	ClassTabActive    = "tab-active"
	ClassTabInactive  = "tab-inactive"
)

// ErrTabNotFound is returned when no pane carries the requested id.
var ErrTabNotFound = errors.New("tab not found")

// InitTabs shows the first pane of every tab group and hides the rest.
func InitTabs(doc *goquery.Document) {
	doc.Find("." + ClassTabs).Each(func(_ int, group *goquery.Selection) {
		group.Find("." + ClassTabContainer).Each(func(j int, pane *goquery.Selection) {
			if j == 0 {
				AddRemoveClass(pane, ClassTabVisible, ClassTabHidden)
				return
			}
			AddRemoveClass(pane, ClassTabHidden, ClassTabVisible)
		})
	})
}

// SelectTab activates tabID.  The link is the element whose data-tab
// attribute equals tabID; when no such link exists only the panes change.
func SelectTab(doc *goquery.Document, tabID string) error {
	pane := doc.Find("." + ClassTabContainer + `[id="` + tabID + `"]`).First()
	if pane.Length() == 0 {
		return ErrTabNotFound
	}

	link := doc.Find(`[data-tab="` + tabID + `"]`).First()
	if link.Length() > 0 {
		link.Parent().Children().Each(func(_ int, tab *goquery.Selection) {
			if tab.IsSelection(link) {
				AddRemoveClass(tab, ClassTabActive, ClassTabInactive)
				return
			}
			AddRemoveClass(tab, ClassTabInactive, ClassTabActive)
		})
	}

	group := pane.Closest("." + ClassTabs)
	group.Find("." + ClassTabContainer).Each(func(_ int, c *goquery.Selection) {
		if !c.Closest("." + ClassTabs).IsSelection(group) {
			return
		}
		if id, _ := c.Attr("id"); id == tabID {
			AddRemoveClass(c, ClassTabVisible, ClassTabHidden)
			return
		}
		AddRemoveClass(c, ClassTabHidden, ClassTabVisible)
	})
	return nil
}
