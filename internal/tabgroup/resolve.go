package tabgroup

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/lotas/tabsave/internal/firefox"
	"github.com/lotas/tabsave/internal/types"
)

// ErrUnresolvableTab means a tab has neither a current history entry nor a
// typed URL.
var ErrUnresolvableTab = errors.New("tab has no current entry and no typed URL")

// Resolve returns the raw group key of a tab and the page it is showing.
func Resolve(tab *firefox.Tab) (types.GroupKey, types.TabEntry, error) {
	key := resolveGroup(tab)

	if entry, ok := currentEntry(tab); ok {
		title := types.DefaultTitle
		if entry.Title != nil {
			title = *entry.Title
		}
		return key, types.TabEntry{URL: *entry.URL, Title: title}, nil
	}

	// Tabs opened with a URL typed but never submitted have no entries.
	if tab.UserTypedValue != nil {
		return key, types.TabEntry{URL: *tab.UserTypedValue, Title: types.DefaultTitle}, nil
	}
	return key, types.TabEntry{}, ErrUnresolvableTab
}

// currentEntry returns entries[index-1] when it exists and carries a URL.
func currentEntry(tab *firefox.Tab) (firefox.Entry, bool) {
	if tab.Entries == nil || tab.Index == nil {
		return firefox.Entry{}, false
	}
	pos := *tab.Index - 1
	if pos < 0 || pos >= len(tab.Entries) {
		return firefox.Entry{}, false
	}
	entry := tab.Entries[pos]
	if entry.URL == nil {
		return firefox.Entry{}, false
	}
	return entry, true
}

// resolveGroup reads groupID from the tabview-tab metadata, then the native
// groupId. Metadata that is absent or cannot be decoded leaves the tab
// ungrouped.
func resolveGroup(tab *firefox.Tab) types.GroupKey {
	if meta, ok := tab.TabviewMetadata(); ok {
		if id, ok := tabviewGroupID(meta); ok {
			return types.GroupID(id)
		}
	}
	if id, ok := tab.NativeGroupID(); ok {
		return types.GroupID(id)
	}
	return types.Ungrouped
}

// tabviewGroupID decodes {"groupID": <number|string>, ...}. Numbers keep
// their literal form so 5 and "5" name the same group.
func tabviewGroupID(meta string) (string, bool) {
	var v struct {
		GroupID json.RawMessage `json:"groupID"`
	}
	if err := json.Unmarshal([]byte(meta), &v); err != nil {
		return "", false
	}
	raw := bytes.TrimSpace(v.GroupID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return normalizeNumber(n), true
	}
	return "", false
}

// normalizeNumber drops a zero fraction, so 5.0 and 5 share a key.
func normalizeNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return n.String()
}
