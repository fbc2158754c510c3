package firefox

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lotas/tabsave/internal/applog"
)

// extData keys written by the Panorama tab-groups feature.
const (
	extTabviewTab   = "tabview-tab"
	extTabviewGroup = "tabview-group"
)

// Entry is one page in a tab's navigation history.
// Pointer fields are nil when the key is absent from the document.
type Entry struct {
	URL   *string `json:"url"`
	Title *string `json:"title"`
}

// Tab is a tab record as stored in the session document. Group metadata is
// kept raw and decoded on access, so a tab with unexpected metadata still
// parses and simply reads as ungrouped.
type Tab struct {
	Entries        []Entry         `json:"entries"`
	Index          *int            `json:"index"` // 1-based into Entries
	UserTypedValue *string         `json:"userTypedValue"`
	ExtData        json.RawMessage `json:"extData"`
	GroupID        json.RawMessage `json:"groupId"` // native tab groups
}

// TabviewMetadata returns the JSON sub-document stored under
// extData["tabview-tab"], if the tab has one.
func (t *Tab) TabviewMetadata() (string, bool) {
	raw, ok := lookupExtData(t.ExtData, extTabviewTab)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// NativeGroupID returns the tab's native group id. Anything but a non-empty
// string reads as no group.
func (t *Tab) NativeGroupID() (string, bool) {
	if len(t.GroupID) == 0 {
		return "", false
	}
	var id string
	if err := json.Unmarshal(t.GroupID, &id); err != nil {
		return "", false
	}
	return id, id != ""
}

// lookupExtData returns extData[key]. An extData that is not an object has
// no keys.
func lookupExtData(extData json.RawMessage, key string) (json.RawMessage, bool) {
	if len(extData) == 0 {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(extData, &m); err != nil {
		return nil, false
	}
	raw, ok := m[key]
	return raw, ok
}

// GroupSource tells which part of the document a group definition came from.
type GroupSource int

const (
	SourceTabview GroupSource = iota // windows[0].extData["tabview-group"]
	SourceNative                     // windows[0].groups
)

// GroupDefinition is a raw group record naming a group id.
type GroupDefinition struct {
	ID     string
	Title  string
	Color  string
	Source GroupSource
}

type rawGroup struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Collapsed bool   `json:"collapsed"`
}

type rawWindow struct {
	Tabs    []Tab           `json:"tabs"`
	ExtData json.RawMessage `json:"extData"`
	Groups  json.RawMessage `json:"groups"`
}

type rawSession struct {
	Windows []rawWindow `json:"windows"`
}

// Document gives access to the first window of a parsed session document.
// Other windows are counted but never read.
type Document struct {
	window      rawWindow
	windowCount int
}

// ParseDocument parses raw session JSON.
func ParseDocument(data []byte) (*Document, error) {
	var raw rawSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse session JSON: %v", ErrMalformedDocument, err)
	}
	if len(raw.Windows) == 0 {
		return nil, fmt.Errorf("%w: no windows", ErrMalformedDocument)
	}
	return &Document{window: raw.Windows[0], windowCount: len(raw.Windows)}, nil
}

// WindowCount returns the number of windows in the document.
func (d *Document) WindowCount() int {
	return d.windowCount
}

// Tabs returns the tab records of the first window in document order.
func (d *Document) Tabs() []Tab {
	return d.window.Tabs
}

// GroupDefinitions returns the group records of the first window: the
// tabview-group entries in document key order, followed by native groups.
// Records that cannot be decoded are logged and skipped.
func (d *Document) GroupDefinitions() []GroupDefinition {
	defs := d.tabviewGroups()
	return append(defs, d.nativeGroups()...)
}

func (d *Document) tabviewGroups() []GroupDefinition {
	raw, ok := lookupExtData(d.window.ExtData, extTabviewGroup)
	if !ok {
		return nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		applog.Error("session.groups.malformed", fmt.Errorf("%s is not a string: %w", extTabviewGroup, err),
			"source", extTabviewGroup)
		return nil
	}

	members, err := decodeObject([]byte(encoded))
	if err != nil {
		applog.Error("session.groups.malformed", err, "source", extTabviewGroup)
		return nil
	}

	defs := make([]GroupDefinition, 0, len(members))
	for _, m := range members {
		var v struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(m.Value, &v); err != nil {
			applog.Error("session.groups.malformed", err, "source", extTabviewGroup, "group", m.Key)
			continue
		}
		defs = append(defs, GroupDefinition{ID: m.Key, Title: v.Title, Source: SourceTabview})
	}
	return defs
}

func (d *Document) nativeGroups() []GroupDefinition {
	if len(d.window.Groups) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(d.window.Groups, &items); err != nil {
		applog.Error("session.groups.malformed", err, "source", "groups")
		return nil
	}

	var defs []GroupDefinition
	for i, item := range items {
		var g rawGroup
		if err := json.Unmarshal(item, &g); err != nil {
			applog.Error("session.groups.malformed", err, "source", "groups", "index", i)
			continue
		}
		defs = append(defs, GroupDefinition{
			ID:     g.ID,
			Title:  g.Name,
			Color:  g.Color,
			Source: SourceNative,
		})
	}
	return defs
}

type member struct {
	Key   string
	Value json.RawMessage
}

// decodeObject decodes a JSON object into its members, keeping key order.
func decodeObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		members = append(members, member{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}
