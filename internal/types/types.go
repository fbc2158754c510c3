package types

const (
	// DefaultTitle is used for tabs whose current page has no title field.
	DefaultTitle = "no_title"

	// UngroupedLabel names the group of tabs that belong to no group.
	UngroupedLabel = "no group tabs"
)

// TabEntry is the displayable (url, title) pair of a tab's current page.
type TabEntry struct {
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title" yaml:"title"`
}

// GroupKey identifies a group before names are resolved: either a raw
// group id taken from tab metadata or the ungrouped sentinel.
type GroupKey struct {
	ID        string
	Ungrouped bool
}

// Ungrouped is the key shared by all tabs without a group.
var Ungrouped = GroupKey{Ungrouped: true}

// GroupID returns the key for a raw group id.
func GroupID(id string) GroupKey {
	return GroupKey{ID: id}
}

// String returns the label the key carries when no name replaces it.
func (k GroupKey) String() string {
	if k.Ungrouped {
		return UngroupedLabel
	}
	return k.ID
}

// Profile represents a Firefox profile.
type Profile struct {
	Name        string
	Path        string // absolute path to profile directory
	IsDefault   bool
	IsRelative  bool
	SessionFile string // absolute path of the session file to read
}

// Stats holds aggregate statistics over a projection.
type Stats struct {
	TotalTabs     int
	TotalGroups   int
	UntitledTabs  int
	DuplicateTabs int
}
