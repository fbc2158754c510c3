package export

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/lotas/tabsave/internal/types"
)

// YAML renders the projection as a YAML mapping of group label to tabs.
// The mapping is built node by node so group order survives.
func YAML(p *types.Projection) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, g := range p.Groups {
		tabs := &yaml.Node{Kind: yaml.SequenceNode}
		for _, tab := range g.Tabs {
			tabs.Content = append(tabs.Content, &yaml.Node{
				Kind: yaml.MappingNode,
				Content: []*yaml.Node{
					scalar("url"), scalar(tab.URL),
					scalar("title"), scalar(tab.Title),
				},
			})
		}
		root.Content = append(root.Content, scalar(g.Label), tabs)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseYAML reads a document written by YAML back into a projection.
func ParseYAML(data []byte) (*types.Projection, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	p := &types.Projection{}
	if len(doc.Content) == 0 {
		return p, nil
	}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		var tabs []types.TabEntry
		if err := root.Content[i+1].Decode(&tabs); err != nil {
			return nil, err
		}
		if tabs == nil {
			tabs = []types.TabEntry{}
		}
		p.Groups = append(p.Groups, types.Group{Label: root.Content[i].Value, Tabs: tabs})
	}
	return p, nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
