package export

import (
	"fmt"
	"strings"

	"github.com/lotas/tabsave/internal/types"
)

// Markdown formats the projection as a markdown document with one section
// per group.
func Markdown(p *types.Projection, profile string) string {
	var b strings.Builder

	if profile != "" {
		fmt.Fprintf(&b, "# Firefox Tabs — %s\n", profile)
	} else {
		b.WriteString("# Firefox Tabs\n")
	}

	for _, g := range p.Groups {
		n := len(g.Tabs)
		noun := "tabs"
		if n == 1 {
			noun = "tab"
		}
		fmt.Fprintf(&b, "\n## %s (%d %s)\n\n", g.Label, n, noun)

		for _, tab := range g.Tabs {
			title := tab.Title
			if title == "" || title == types.DefaultTitle {
				title = tab.URL
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", escapeLinkText(title), tab.URL)
		}
	}

	return b.String()
}

var linkTextEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`)

func escapeLinkText(s string) string {
	return linkTextEscaper.Replace(s)
}
