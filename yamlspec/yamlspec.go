// Package yamlspec declares a state chart from a YAML document: a flat
// list of nodes with parent pointers, the same shape the struct-tag
// reflection DSL uses, but authored as data instead of a compiled Go
// struct. Grounded on aretw0-trellis's pkg/adapters/process/config.go
// (yaml.v3 into a tagged struct) and pkg/adapters/loam/loader.go
// (mapstructure.Decode from a loosely-typed map) — this package uses
// both: yaml.v3 unmarshals the document into a generic map so the file
// can carry extension fields a future version ignores, then
// mapstructure decodes that map into the typed Chart.
package yamlspec

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/gostatechart/statechart"
	"github.com/gostatechart/statechart/internal/ir"
)

// NodeDoc is one node entry in a YAML chart document.
type NodeDoc struct {
	ID      string   `yaml:"id" mapstructure:"id"`
	Kind    string   `yaml:"kind" mapstructure:"kind"` // simple|composite|parallel|joint
	Parent  string   `yaml:"parent,omitempty" mapstructure:"parent"`
	Initial string   `yaml:"initial,omitempty" mapstructure:"initial"`
	Guards  []string `yaml:"guards,omitempty" mapstructure:"guards"`
	Joints  []string `yaml:"joints,omitempty" mapstructure:"joints"`

	Enter  []HandlerDoc `yaml:"enter,omitempty" mapstructure:"enter"`
	Exit   []HandlerDoc `yaml:"exit,omitempty" mapstructure:"exit"`
	Handle []HandlerDoc `yaml:"handle,omitempty" mapstructure:"handle"`
}

// HandlerDoc names a registered handler, optionally scoped to one
// event type. An empty Event means a generic enter/exit handler.
type HandlerDoc struct {
	Event string `yaml:"event,omitempty" mapstructure:"event"`
	Name  string `yaml:"name" mapstructure:"name"`
}

// Chart is the top-level YAML document shape: `top` names the root
// node's id, `nodes` lists every node in declaration order.
type Chart struct {
	Top   string    `yaml:"top" mapstructure:"top"`
	Nodes []NodeDoc `yaml:"nodes" mapstructure:"nodes"`
}

// Load reads and decodes a chart document at path.
func Load(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yamlspec: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a chart document from raw YAML bytes.
func Parse(data []byte) (*Chart, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("yamlspec: parse yaml: %w", err)
	}

	var chart Chart
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &chart,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("yamlspec: build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("yamlspec: decode: %w", err)
	}
	return &chart, nil
}

// Build resolves a Chart against registry into a validated *ir.Tree,
// the YAML-DSL counterpart of the root package's FromStruct.
func (c *Chart) Build(registry *statechart.HandlerRegistry) (*ir.Tree, error) {
	if c.Top == "" {
		return nil, fmt.Errorf("yamlspec: chart has no top id")
	}

	byID := make(map[string]*NodeDoc, len(c.Nodes))
	for i := range c.Nodes {
		byID[c.Nodes[i].ID] = &c.Nodes[i]
	}
	children := make(map[string][]string)
	for _, n := range c.Nodes {
		if n.ID != c.Top && n.Parent != "" {
			children[n.Parent] = append(children[n.Parent], n.ID)
		}
	}

	tree := ir.NewTree(ir.NodeID(c.Top))
	for _, n := range c.Nodes {
		kind, err := parseKind(n.Kind)
		if err != nil {
			return nil, fmt.Errorf("yamlspec: node %q: %w", n.ID, err)
		}
		handlers, err := resolveHandlers(n, registry)
		if err != nil {
			return nil, fmt.Errorf("yamlspec: node %q: %w", n.ID, err)
		}

		node := &ir.Node{ID: ir.NodeID(n.ID), Kind: kind, Handlers: handlers}
		if n.ID != c.Top {
			node.Parent = ir.NodeID(n.Parent)
		}

		switch kind {
		case ir.KindComposite:
			for _, c := range children[n.ID] {
				node.Children = append(node.Children, ir.NodeID(c))
			}
			if n.Initial != "" {
				node.Initial = ir.NodeID(n.Initial)
			} else if len(node.Children) > 0 {
				node.Initial = node.Children[0]
			}
		case ir.KindParallel:
			for _, c := range children[n.ID] {
				node.Children = append(node.Children, ir.NodeID(c))
			}
			for _, j := range n.Joints {
				node.Joints = append(node.Joints, ir.NodeID(j))
			}
		case ir.KindJoint:
			for _, g := range n.Guards {
				node.Guards = append(node.Guards, ir.NodeID(g))
			}
		}

		tree.AddNode(node)
	}

	tree.Finalize()
	if cfgErr := ir.Validate(tree); cfgErr != nil {
		return nil, cfgErr
	}
	return tree, nil
}

func parseKind(s string) (ir.NodeKind, error) {
	switch s {
	case "simple":
		return ir.KindSimple, nil
	case "composite":
		return ir.KindComposite, nil
	case "parallel":
		return ir.KindParallel, nil
	case "joint":
		return ir.KindJoint, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", s)
	}
}

func resolveHandlers(n NodeDoc, registry *statechart.HandlerRegistry) (*ir.HandlerTable, error) {
	if registry == nil {
		registry = statechart.NewHandlerRegistry()
	}
	ht := &ir.HandlerTable{
		EnterTyped:  make(map[ir.EventType][]ir.TypedHandler),
		ExitTyped:   make(map[ir.EventType][]ir.TypedHandler),
		HandleTyped: make(map[ir.EventType][]ir.TypedHandler),
	}
	for _, ref := range n.Enter {
		if ref.Event == "" {
			h, err := registry.Generic(ref.Name)
			if err != nil {
				return nil, err
			}
			ht.EnterGeneric = append(ht.EnterGeneric, h)
			continue
		}
		h, err := registry.Typed(ref.Name)
		if err != nil {
			return nil, err
		}
		ht.EnterTyped[ir.EventType(ref.Event)] = append(ht.EnterTyped[ir.EventType(ref.Event)], h)
	}
	for _, ref := range n.Exit {
		if ref.Event == "" {
			h, err := registry.Generic(ref.Name)
			if err != nil {
				return nil, err
			}
			ht.ExitGeneric = append(ht.ExitGeneric, h)
			continue
		}
		h, err := registry.Typed(ref.Name)
		if err != nil {
			return nil, err
		}
		ht.ExitTyped[ir.EventType(ref.Event)] = append(ht.ExitTyped[ir.EventType(ref.Event)], h)
	}
	for _, ref := range n.Handle {
		if ref.Event == "" {
			return nil, fmt.Errorf("handle entry %q has no event", ref.Name)
		}
		h, err := registry.Typed(ref.Name)
		if err != nil {
			return nil, err
		}
		ht.HandleTyped[ir.EventType(ref.Event)] = append(ht.HandleTyped[ir.EventType(ref.Event)], h)
	}
	return ht, nil
}
