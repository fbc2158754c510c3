package types

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProjectionJSONKeepsOrder(t *testing.T) {
	p := Projection{Groups: []Group{
		{Label: "zeta", Tabs: []TabEntry{{URL: "https://z.example/?a=1&b=2", Title: "Z <1>"}}},
		{Label: UngroupedLabel, Tabs: []TabEntry{{URL: "https://a.example", Title: DefaultTitle}}},
		{Label: "alpha", Tabs: []TabEntry{
			{URL: "https://b.example", Title: "B"},
			{URL: "https://b.example", Title: "B"},
		}},
	}}

	data, err := p.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	want := `{"zeta":[{"url":"https://z.example/?a=1&b=2","title":"Z <1>"}],` +
		`"no group tabs":[{"url":"https://a.example","title":"no_title"}],` +
		`"alpha":[{"url":"https://b.example","title":"B"},{"url":"https://b.example","title":"B"}]}`
	if string(data) != want {
		t.Errorf("marshal mismatch\n got: %s\nwant: %s", data, want)
	}

	var back Projection
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if diff := cmp.Diff(p, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectionEmptyGroupMarshalsAsArray(t *testing.T) {
	data, err := json.Marshal(Projection{Groups: []Group{{Label: "x"}}})
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if string(data) != `{"x":[]}` {
		t.Errorf("got %s", data)
	}

	data, err = json.Marshal(Projection{})
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if string(data) != `{}` {
		t.Errorf("got %s", data)
	}
}

func TestProjectionUnmarshalRejectsArray(t *testing.T) {
	var p Projection
	if err := json.Unmarshal([]byte(`[1,2]`), &p); err == nil {
		t.Fatal("expected error for non-object input")
	}
}

func TestProjectionLookupAndEqual(t *testing.T) {
	p := &Projection{Groups: []Group{
		{Label: "Work", Tabs: []TabEntry{{URL: "u1", Title: "t1"}}},
		{Label: "Home", Tabs: []TabEntry{{URL: "u2", Title: "t2"}, {URL: "u3", Title: "t3"}}},
	}}

	tabs, ok := p.Lookup("Home")
	if !ok || len(tabs) != 2 {
		t.Fatalf("Lookup(Home) = %v, %v", tabs, ok)
	}
	if _, ok := p.Lookup("missing"); ok {
		t.Error("Lookup(missing) should not be found")
	}
	if p.TabCount() != 3 {
		t.Errorf("TabCount = %d, want 3", p.TabCount())
	}
	if diff := cmp.Diff([]string{"Work", "Home"}, p.Labels()); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}

	same := &Projection{Groups: []Group{
		{Label: "Work", Tabs: []TabEntry{{URL: "u1", Title: "t1"}}},
		{Label: "Home", Tabs: []TabEntry{{URL: "u2", Title: "t2"}, {URL: "u3", Title: "t3"}}},
	}}
	if !p.Equal(same) {
		t.Error("expected equal projections")
	}

	reordered := &Projection{Groups: []Group{same.Groups[1], same.Groups[0]}}
	if p.Equal(reordered) {
		t.Error("group order must matter")
	}
	if p.Equal(nil) {
		t.Error("projection must not equal nil")
	}
}

func TestGroupKeyString(t *testing.T) {
	if got := Ungrouped.String(); got != UngroupedLabel {
		t.Errorf("Ungrouped.String() = %q", got)
	}
	if got := GroupID("7").String(); got != "7" {
		t.Errorf("GroupID(7).String() = %q", got)
	}
	if GroupID(UngroupedLabel) == Ungrouped {
		t.Error("a raw id equal to the sentinel label must stay distinct from the sentinel")
	}
}
