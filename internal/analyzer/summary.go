package analyzer

import "github.com/lotas/tabsave/internal/types"

func ComputeStats(p *types.Projection) types.Stats {
	stats := types.Stats{
		TotalTabs:   p.TabCount(),
		TotalGroups: len(p.Groups),
	}
	for _, g := range p.Groups {
		for _, tab := range g.Tabs {
			if tab.Title == types.DefaultTitle {
				stats.UntitledTabs++
			}
		}
	}
	for _, n := range FindDuplicates(p) {
		stats.DuplicateTabs += n
	}
	return stats
}
