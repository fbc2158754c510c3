package firefox

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecompressMozLz4(t *testing.T) {
	t.Run("valid mozlz4 payload", func(t *testing.T) {
		original := []byte(`{"windows":[{"tabs":[]}]}`)

		payload, err := CompressMozLz4(original)
		if err != nil {
			t.Fatalf("CompressMozLz4 failed: %v", err)
		}
		if !IsMozLz4(payload) {
			t.Fatal("compressed payload lacks mozlz4 magic")
		}

		result, err := DecompressMozLz4(payload)
		if err != nil {
			t.Fatalf("DecompressMozLz4 returned error: %v", err)
		}
		if string(result) != string(original) {
			t.Errorf("expected %q, got %q", string(original), string(result))
		}
	})

	t.Run("invalid header returns error", func(t *testing.T) {
		bad := []byte("BADMAGIC\x00\x00\x00\x00some data here")
		if _, err := DecompressMozLz4(bad); err == nil {
			t.Fatal("expected error for invalid header, got nil")
		}
	})

	t.Run("too short data returns error", func(t *testing.T) {
		if _, err := DecompressMozLz4([]byte("mozLz40")); err == nil {
			t.Fatal("expected error for too-short data, got nil")
		}
	})
}

// tabviewGroups encodes group titles the way Panorama stores them: a JSON
// document embedded as a string value.
func tabviewGroups(t *testing.T, raw string) string {
	t.Helper()
	b, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	return string(b)
}

func TestParseDocument(t *testing.T) {
	data := []byte(`{
		"windows": [
			{
				"tabs": [
					{
						"entries": [{"url": "https://old.com", "title": "Old"}, {"url": "https://cur.com"}],
						"index": 2,
						"extData": {"tabview-tab": "{\"groupID\":5}"}
					},
					{"entries": [], "userTypedValue": "http://typed"},
					{"entries": [{"url": "https://native.com", "title": "Native"}], "index": 1, "groupId": "g-1"}
				],
				"extData": {"tabview-group": ` + tabviewGroups(t, `{"9":{"title":"Later"},"5":{"title":"Research","id":5},"2":{}}`) + `},
				"groups": [{"id": "g-1", "name": "Work", "color": "blue", "collapsed": false}]
			},
			{"tabs": [{"entries": [{"url": "https://second-window.com"}], "index": 1}]}
		]
	}`)

	doc, err := ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if doc.WindowCount() != 2 {
		t.Errorf("WindowCount = %d, want 2", doc.WindowCount())
	}

	tabs := doc.Tabs()
	if len(tabs) != 3 {
		t.Fatalf("expected 3 tabs from the first window, got %d", len(tabs))
	}

	first := tabs[0]
	if first.Index == nil || *first.Index != 2 {
		t.Errorf("tab0 index = %v, want 2", first.Index)
	}
	if first.Entries[1].Title != nil {
		t.Errorf("tab0 entry1 title should be absent, got %q", *first.Entries[1].Title)
	}
	meta, ok := first.TabviewMetadata()
	if !ok || meta != `{"groupID":5}` {
		t.Errorf("tab0 TabviewMetadata = %q, %v", meta, ok)
	}

	second := tabs[1]
	if second.Index != nil {
		t.Errorf("tab1 index should be absent, got %d", *second.Index)
	}
	if second.UserTypedValue == nil || *second.UserTypedValue != "http://typed" {
		t.Errorf("tab1 userTypedValue = %v", second.UserTypedValue)
	}
	if _, ok := second.TabviewMetadata(); ok {
		t.Error("tab1 should have no tabview metadata")
	}

	if id, ok := tabs[2].NativeGroupID(); !ok || id != "g-1" {
		t.Errorf("tab2 NativeGroupID = %q, %v, want g-1", id, ok)
	}

	want := []GroupDefinition{
		{ID: "9", Title: "Later", Source: SourceTabview},
		{ID: "5", Title: "Research", Source: SourceTabview},
		{ID: "2", Title: "", Source: SourceTabview},
		{ID: "g-1", Title: "Work", Color: "blue", Source: SourceNative},
	}
	if diff := cmp.Diff(want, doc.GroupDefinitions()); diff != "" {
		t.Errorf("GroupDefinitions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDocumentWithoutGroupMetadata(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"windows":[{"tabs":[]}]}`))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if defs := doc.GroupDefinitions(); len(defs) != 0 {
		t.Errorf("expected no group definitions, got %v", defs)
	}
}

func TestParseDocumentMalformedTabviewGroup(t *testing.T) {
	data := []byte(`{"windows":[{"tabs":[],
		"extData":{"tabview-group":"{not json"},
		"groups":[{"id":"n1","name":"Native"}]}]}`)

	doc, err := ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	want := []GroupDefinition{{ID: "n1", Title: "Native", Source: SourceNative}}
	if diff := cmp.Diff(want, doc.GroupDefinitions()); diff != "" {
		t.Errorf("GroupDefinitions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDocumentSkipsBadTabviewMember(t *testing.T) {
	data := []byte(`{"windows":[{"tabs":[],
		"extData":{"tabview-group":"{\"1\":{\"title\":\"Keep\"},\"2\":{\"title\":7},\"3\":{\"title\":\"Also\"}}"}}]}`)

	doc, err := ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	want := []GroupDefinition{
		{ID: "1", Title: "Keep", Source: SourceTabview},
		{ID: "3", Title: "Also", Source: SourceTabview},
	}
	if diff := cmp.Diff(want, doc.GroupDefinitions()); diff != "" {
		t.Errorf("GroupDefinitions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDocumentToleratesOddGroupMetadata(t *testing.T) {
	data := []byte(`{"windows":[{
		"tabs":[
			{"index":1,"entries":[{"url":"u"}],"extData":"junk"},
			{"index":1,"entries":[{"url":"v"}],"extData":[1,2],"groupId":42},
			{"index":1,"entries":[{"url":"w"}],"extData":null,"groupId":null}
		],
		"extData":"junk",
		"groups":[{"id":"n1","name":"Native"},"junk",{"id":"n2","name":5}]
	}]}`)

	doc, err := ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	for i, tab := range doc.Tabs() {
		if meta, ok := tab.TabviewMetadata(); ok && meta != "" {
			t.Errorf("tab %d: unexpected tabview metadata %q", i, meta)
		}
		if id, ok := tab.NativeGroupID(); ok {
			t.Errorf("tab %d: unexpected native group %q", i, id)
		}
	}

	want := []GroupDefinition{{ID: "n1", Title: "Native", Source: SourceNative}}
	if diff := cmp.Diff(want, doc.GroupDefinitions()); diff != "" {
		t.Errorf("GroupDefinitions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `windows`},
		{"no windows key", `{"version":["sessionrestore",1]}`},
		{"empty windows", `{"windows":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.data))
			if !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}
