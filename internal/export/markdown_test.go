package export

import (
	"strings"
	"testing"

	"github.com/lotas/tabsave/internal/types"
)

func TestMarkdown(t *testing.T) {
	result := Markdown(sampleProjection(), "default")

	for _, want := range []string{
		"# Firefox Tabs — default",
		"## no group tabs (1 tab)",
		"## Research (2 tabs)",
		"- [A](http://a)",
		"- [http://b](http://b)",
		`- [Go \[docs\]](https://go.dev/doc?x=1&y=<2>)`,
	} {
		if !strings.Contains(result, want) {
			t.Errorf("missing %q, got:\n%s", want, result)
		}
	}

	if strings.Index(result, "no group tabs") > strings.Index(result, "Research") {
		t.Error("group order not preserved")
	}
}

func TestMarkdownWithoutProfile(t *testing.T) {
	result := Markdown(&types.Projection{}, "")
	if result != "# Firefox Tabs\n" {
		t.Errorf("got %q", result)
	}
}
