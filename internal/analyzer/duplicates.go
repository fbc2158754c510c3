package analyzer

import (
	"net/url"
	"sort"
	"strings"

	"github.com/lotas/tabsave/internal/types"
)

// NormalizeURL strips the fragment, sorts query parameters and drops a
// trailing slash so equivalent URLs compare equal.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	params := u.Query()
	for k := range params {
		sort.Strings(params[k])
	}
	u.RawQuery = params.Encode()
	result := u.String()
	if strings.HasSuffix(result, "/") && result != u.Scheme+"://"+u.Host+"/" {
		result = strings.TrimRight(result, "/")
	}
	return result
}

// FindDuplicates returns the normalized URLs open in more than one tab
// across the projection, mapped to the number of tabs showing them.
func FindDuplicates(p *types.Projection) map[string]int {
	counts := make(map[string]int)
	for _, g := range p.Groups {
		for _, tab := range g.Tabs {
			counts[NormalizeURL(tab.URL)]++
		}
	}
	for u, n := range counts {
		if n < 2 {
			delete(counts, u)
		}
	}
	return counts
}
