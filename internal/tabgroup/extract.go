package tabgroup

import (
	"fmt"

	"github.com/lotas/tabsave/internal/applog"
	"github.com/lotas/tabsave/internal/firefox"
	"github.com/lotas/tabsave/internal/types"
)

// UnresolvableTabError locates a tab that could not be resolved.
type UnresolvableTabError struct {
	Window int
	Tab    int
	Err    error
}

func (e *UnresolvableTabError) Error() string {
	return fmt.Sprintf("window %d, tab %d: %v", e.Window, e.Tab, e.Err)
}

func (e *UnresolvableTabError) Unwrap() error { return e.Err }

// Build folds the tabs and group definitions of a document into a registry.
func Build(doc *firefox.Document) (*Registry, error) {
	reg := NewRegistry()

	tabs := doc.Tabs()
	for i := range tabs {
		key, entry, err := Resolve(&tabs[i])
		if err != nil {
			return nil, &UnresolvableTabError{Window: 0, Tab: i, Err: err}
		}
		reg.AddTab(key, entry)
	}

	for _, def := range doc.GroupDefinitions() {
		if def.ID == "" {
			continue
		}
		reg.AddGroupName(types.GroupID(def.ID), def.Title)
	}
	return reg, nil
}

// Extract resolves every tab of the document's first window and returns the
// reconciled grouping.
func Extract(doc *firefox.Document) (*types.Projection, error) {
	reg, err := Build(doc)
	if err != nil {
		applog.Error("extract.failed", err)
		return nil, err
	}

	p := reg.Reconcile()
	applog.Info("extract.done", "groups", len(p.Groups), "tabs", p.TabCount())
	return p, nil
}
