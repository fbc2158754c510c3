package export

import (
	"bytes"
	"encoding/json"

	"github.com/lotas/tabsave/internal/types"
)

// JSON renders the projection as a single JSON document mapping each group
// label to its tabs.
func JSON(p *types.Projection) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
