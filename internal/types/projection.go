package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Group is one labelled group of a projection.
type Group struct {
	Label string
	Tabs  []TabEntry
}

// Projection is the reconciled mapping from group label to tabs. Groups keep
// the order in which the registry first saw them; it marshals to a JSON object
// whose keys follow that order.
type Projection struct {
	Groups []Group
}

// Labels returns the group labels in order.
func (p *Projection) Labels() []string {
	labels := make([]string, 0, len(p.Groups))
	for _, g := range p.Groups {
		labels = append(labels, g.Label)
	}
	return labels
}

// Lookup returns the tabs of the group with the given label.
func (p *Projection) Lookup(label string) ([]TabEntry, bool) {
	for _, g := range p.Groups {
		if g.Label == label {
			return g.Tabs, true
		}
	}
	return nil, false
}

// TabCount returns the number of tabs across all groups.
func (p *Projection) TabCount() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Tabs)
	}
	return n
}

// Equal reports whether both projections have the same labels in the same
// order and the same tabs in each group.
func (p *Projection) Equal(o *Projection) bool {
	if p == nil || o == nil {
		return p == o
	}
	if len(p.Groups) != len(o.Groups) {
		return false
	}
	for i, g := range p.Groups {
		og := o.Groups[i]
		if g.Label != og.Label || len(g.Tabs) != len(og.Tabs) {
			return false
		}
		for j := range g.Tabs {
			if g.Tabs[j] != og.Tabs[j] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON renders the projection as an object of label to tab arrays.
func (p Projection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, g := range p.Groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(g.Label); err != nil {
			return nil, err
		}
		trimNewline(&buf)
		buf.WriteByte(':')

		tabs := g.Tabs
		if tabs == nil {
			tabs = []TabEntry{}
		}
		if err := enc.Encode(tabs); err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Label, err)
		}
		trimNewline(&buf)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of label to tab arrays, keeping key order.
func (p *Projection) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("projection: expected object, got %v", tok)
	}

	p.Groups = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("projection: expected string key, got %v", tok)
		}
		var tabs []TabEntry
		if err := dec.Decode(&tabs); err != nil {
			return fmt.Errorf("group %q: %w", label, err)
		}
		p.Groups = append(p.Groups, Group{Label: label, Tabs: tabs})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func trimNewline(buf *bytes.Buffer) {
	if n := buf.Len(); n > 0 && buf.Bytes()[n-1] == '\n' {
		buf.Truncate(n - 1)
	}
}
