package tabgroup

import (
	"fmt"

	"github.com/lotas/tabsave/internal/types"
)

// Registry collects tabs and group names keyed by raw group key. Tabs and
// names arrive from unrelated parts of the session document, so either may
// be missing for a key.
type Registry struct {
	order []types.GroupKey
	tabs  map[types.GroupKey][]types.TabEntry
	names map[types.GroupKey]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tabs:  make(map[types.GroupKey][]types.TabEntry),
		names: make(map[types.GroupKey]string),
	}
}

// AddTab appends entry to the tabs of key. Duplicates are kept.
func (r *Registry) AddTab(key types.GroupKey, entry types.TabEntry) {
	if _, ok := r.tabs[key]; !ok {
		r.order = append(r.order, key)
	}
	r.tabs[key] = append(r.tabs[key], entry)
}

// AddGroupName records the display name of key. An empty name means the
// group is named after its key. The last name recorded for a key wins.
func (r *Registry) AddGroupName(key types.GroupKey, name string) {
	r.names[key] = name
}

// Reconcile replaces group keys with display names.
//
// A display name carried by more than one group becomes "<key> <name>" for
// every named group carrying it, repeated until composites stop colliding.
// A composite that still equals an unnamed key gets a " (n)" suffix in
// group order. Named groups without tabs are dropped; groups without a name keep
// their key's label. Groups stay in the order of their first tab. The
// registry is not modified, so repeated calls return equal projections.
func (r *Registry) Reconcile() *types.Projection {
	labels := make([]string, len(r.order))
	named := make([]bool, len(r.order)) // named and not yet composite
	for i, key := range r.order {
		labels[i] = key.String()
		if name, ok := r.names[key]; ok {
			if name != "" {
				labels[i] = name
			}
			named[i] = true
		}
	}

	for changed := true; changed; {
		changed = false
		count := make(map[string]int, len(labels))
		for _, l := range labels {
			count[l]++
		}
		for i, key := range r.order {
			if named[i] && count[labels[i]] > 1 {
				labels[i] = key.String() + " " + labels[i]
				named[i] = false
				changed = true
			}
		}
	}

	taken := make(map[string]bool, len(labels))
	for _, l := range labels {
		taken[l] = true
	}
	used := make(map[string]bool, len(labels))

	p := &types.Projection{Groups: make([]types.Group, 0, len(r.order))}
	for i, key := range r.order {
		label := labels[i]
		if used[label] {
			for n := 2; ; n++ {
				label = fmt.Sprintf("%s (%d)", labels[i], n)
				if !taken[label] && !used[label] {
					break
				}
			}
		}
		used[label] = true

		tabs := make([]types.TabEntry, len(r.tabs[key]))
		copy(tabs, r.tabs[key])
		p.Groups = append(p.Groups, types.Group{Label: label, Tabs: tabs})
	}
	return p
}
