package informer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yanizio/informer/internal/theme"
	"github.com/yanizio/informer/internal/widget"
)

// BootstrapID is the id of the JSON script element the page injects.
const BootstrapID = "informer-bootstrap"

// Bootstrap is the page-injected configuration:
//
//	<script type="application/json" id="informer-bootstrap">
//	  {"widgets": {"wid-1": {"fetch": true}}, "theme_name": "dark",
//	   "theme": {"accent_color": "#fc0"}}
//	</script>
type Bootstrap struct {
	Widgets   map[string]map[string]any `json:"widgets"`
	ThemeName string                    `json:"theme_name"`
	Theme     map[string]string         `json:"theme"`
}

// ParseBootstrap reads the bootstrap element.  A page without one yields
// an empty table and theme.
func ParseBootstrap(doc *goquery.Document) (ParamTable, *theme.Theme, error) {
	table := ParamTable{}
	el := doc.Find(`script[id="` + BootstrapID + `"]`).First()
	if el.Length() == 0 {
		return table, theme.New("", nil), nil
	}

	var b Bootstrap
	dec := json.NewDecoder(strings.NewReader(el.Text()))
	if err := dec.Decode(&b); err != nil {
		return nil, nil, fmt.Errorf("bootstrap: %w", err)
	}
	for wid, p := range b.Widgets {
		table[wid] = widget.Params(p)
	}
	return table, theme.New(b.ThemeName, b.Theme), nil
}

// Apply installs the table and theme on i.
func (i *Informer) Apply(table ParamTable, th *theme.Theme) {
	i.SetWidgetParams(table)
	i.SetTheme(th)
}
