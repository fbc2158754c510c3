package export

import (
	"testing"

	"github.com/lotas/tabsave/internal/types"
)

func sampleProjection() *types.Projection {
	return &types.Projection{Groups: []types.Group{
		{Label: types.UngroupedLabel, Tabs: []types.TabEntry{
			{URL: "http://a", Title: "A"},
		}},
		{Label: "Research", Tabs: []types.TabEntry{
			{URL: "http://b", Title: types.DefaultTitle},
			{URL: "https://go.dev/doc?x=1&y=<2>", Title: "Go [docs]"},
		}},
	}}
}

func TestText(t *testing.T) {
	got := Text(sampleProjection())
	want := "\n======  no group tabs  ======\n" +
		"A\thttp://a\n" +
		"\n======    Research     ======\n" +
		"no_title\thttp://b\n" +
		"Go [docs]\thttps://go.dev/doc?x=1&y=<2>\n"
	if got != want {
		t.Errorf("Text mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestTextEmpty(t *testing.T) {
	if got := Text(&types.Projection{}); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestCenter(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "               "},
		{"ab", "      ab       "},
		{"abc", "      abc      "},
		{"exactly fifteen", "exactly fifteen"},
		{"a much longer group label", "a much longer group label"},
		{"Ünïcödé", "    Ünïcödé    "},
	}
	for _, tt := range tests {
		if got := center(tt.in, bannerWidth); got != tt.want {
			t.Errorf("center(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
