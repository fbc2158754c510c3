package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lotas/tabsave/internal/types"
)

const bannerWidth = 15

// Text renders the projection as plain text: a banner line per group
// followed by one "title<TAB>url" line per tab.
func Text(p *types.Projection) string {
	var b strings.Builder
	for _, g := range p.Groups {
		fmt.Fprintf(&b, "\n====== %s ======\n", center(g.Label, bannerWidth))
		for _, tab := range g.Tabs {
			fmt.Fprintf(&b, "%s\t%s\n", tab.Title, tab.URL)
		}
	}
	return b.String()
}

// center pads s with spaces to width runes, the extra space going right.
// Longer strings are returned unchanged.
func center(s string, width int) string {
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
