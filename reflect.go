package statechart

import (
	"fmt"
	"reflect"

	"github.com/gostatechart/statechart/internal/ir"
	"github.com/gostatechart/statechart/internal/parser"
)

// SimpleNode, CompositeNode, ParallelNode and JointNode are marker
// types for the struct-tag reflection DSL (generalizing
// felixgeelhaar-statekit's StateNode/CompoundNode/FinalNode markers to
// this package's four node kinds). Give each node field of a struct
// passed to FromStruct one of these types; see that function's doc
// comment for the tag grammar.
type (
	SimpleNode    struct{}
	CompositeNode struct{}
	ParallelNode  struct{}
	JointNode     struct{}
)

// HandlerRegistry holds named handler implementations referenced by
// enter/exit/handle tags, the reflection-DSL analogue of
// felixgeelhaar-statekit's ActionRegistry.
type HandlerRegistry struct {
	typed   map[string]ir.TypedHandler
	generic map[string]ir.GenericHandler
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{typed: make(map[string]ir.TypedHandler), generic: make(map[string]ir.GenericHandler)}
}

// WithTyped registers a typed handler (valid for enter, exit, and
// handle tag entries) under name.
func (r *HandlerRegistry) WithTyped(name string, h ir.TypedHandler) *HandlerRegistry {
	r.typed[name] = h
	return r
}

// WithGeneric registers a generic handler (valid for enter/exit tag
// entries with no `EVENT=` prefix) under name.
func (r *HandlerRegistry) WithGeneric(name string, h ir.GenericHandler) *HandlerRegistry {
	r.generic[name] = h
	return r
}

// Typed looks up a registered typed handler by name, for use by other
// declaration surfaces (e.g. yamlspec) that resolve handler references
// against the same registry.
func (r *HandlerRegistry) Typed(name string) (ir.TypedHandler, error) {
	h, ok := r.typed[name]
	if !ok {
		return nil, fmt.Errorf("no typed handler registered for %q", name)
	}
	return h, nil
}

// Generic looks up a registered generic handler by name.
func (r *HandlerRegistry) Generic(name string) (ir.GenericHandler, error) {
	h, ok := r.generic[name]
	if !ok {
		return nil, fmt.Errorf("no generic handler registered for %q", name)
	}
	return h, nil
}

// FromStruct builds a validated *ir.Tree from M's fields and tags.
//
// M must have exactly one field tagged `top:"true"`. Every exported
// field whose type is SimpleNode, CompositeNode, ParallelNode, or
// JointNode becomes one tree node, identified by its field name (or by
// an `id:"..."` tag override). Structural tags:
//
//	parent:"FieldName"   parent node's field name ("" for top and joints)
//	initial:"FieldName"  composite only: the default-entry child
//	guards:"A,B"         joint only: guard node field names
//	joints:"J1,J2"        parallel only: joint-child field names
//
// Handler tags (comma-separated; `EVENT=name` for a typed handler, a
// bare `name` for a generic one — handle has no generic variant):
//
//	enter:"Ready=onReadyEnter,logEntry"
//	exit:"onExit"
//	handle:"START=onStart,STOP=onStop"
//
// Every referenced handler name must be registered in registry.
func FromStruct[M any](registry *HandlerRegistry) (*ir.Tree, error) {
	var m M
	t := reflect.TypeOf(m)
	schema, err := parser.ParseStruct(t)
	if err != nil {
		return nil, err
	}
	return buildFromSchema(schema, registry)
}

func buildFromSchema(schema *parser.Schema, registry *HandlerRegistry) (*ir.Tree, error) {
	byField := make(map[string]*parser.NodeSchema, len(schema.Nodes))
	for _, ns := range schema.Nodes {
		byField[ns.Field] = ns
	}

	tree := ir.NewTree(ir.NodeID(byField[schema.Top].ID))

	children := make(map[string][]string)
	for _, ns := range schema.Nodes {
		if ns.Field != schema.Top {
			children[ns.Parent] = append(children[ns.Parent], ns.Field)
		}
	}

	for _, ns := range schema.Nodes {
		kind, err := irKind(ns.Kind)
		if err != nil {
			return nil, fmt.Errorf("reflect: field %s: %w", ns.Field, err)
		}
		handlers, err := resolveHandlers(ns, registry)
		if err != nil {
			return nil, fmt.Errorf("reflect: field %s: %w", ns.Field, err)
		}

		node := &ir.Node{ID: ir.NodeID(ns.ID), Kind: kind, Handlers: handlers}
		if ns.Field != schema.Top && ns.Parent != "" {
			pn, ok := byField[ns.Parent]
			if !ok {
				return nil, fmt.Errorf("reflect: field %s: unknown parent field %q", ns.Field, ns.Parent)
			}
			node.Parent = ir.NodeID(pn.ID)
		}

		switch kind {
		case ir.KindComposite:
			for _, childField := range children[ns.Field] {
				node.Children = append(node.Children, ir.NodeID(byField[childField].ID))
			}
			if ns.Initial != "" {
				node.Initial = ir.NodeID(byField[ns.Initial].ID)
			} else if len(node.Children) > 0 {
				node.Initial = node.Children[0]
			}
		case ir.KindParallel:
			for _, childField := range children[ns.Field] {
				node.Children = append(node.Children, ir.NodeID(byField[childField].ID))
			}
			for _, jointField := range ns.Joints {
				jn, ok := byField[jointField]
				if !ok {
					return nil, fmt.Errorf("reflect: field %s: unknown joint field %q", ns.Field, jointField)
				}
				node.Joints = append(node.Joints, ir.NodeID(jn.ID))
			}
		case ir.KindJoint:
			for _, guardField := range ns.Guards {
				gn, ok := byField[guardField]
				if !ok {
					return nil, fmt.Errorf("reflect: field %s: unknown guard field %q", ns.Field, guardField)
				}
				node.Guards = append(node.Guards, ir.NodeID(gn.ID))
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

func irKind(k parser.NodeKind) (ir.NodeKind, error) {
	switch k {
	case parser.KindSimple:
		return ir.KindSimple, nil
	case parser.KindComposite:
		return ir.KindComposite, nil
	case parser.KindParallel:
		return ir.KindParallel, nil
	case parser.KindJoint:
		return ir.KindJoint, nil
	default:
		return 0, fmt.Errorf("unknown parser node kind %d", k)
	}
}

func resolveHandlers(ns *parser.NodeSchema, registry *HandlerRegistry) (*ir.HandlerTable, error) {
	ht := &ir.HandlerTable{
		EnterTyped:  make(map[ir.EventType][]ir.TypedHandler),
		ExitTyped:   make(map[ir.EventType][]ir.TypedHandler),
		HandleTyped: make(map[ir.EventType][]ir.TypedHandler),
	}
	for _, ref := range ns.Enter {
		if ref.Event == "" {
			h, err := lookupGeneric(registry, ref.Name)
			if err != nil {
				return nil, err
			}
			ht.EnterGeneric = append(ht.EnterGeneric, h)
			continue
		}
		h, err := lookupTyped(registry, ref.Name)
		if err != nil {
			return nil, err
		}
		ht.EnterTyped[ir.EventType(ref.Event)] = append(ht.EnterTyped[ir.EventType(ref.Event)], h)
	}
	for _, ref := range ns.Exit {
		if ref.Event == "" {
			h, err := lookupGeneric(registry, ref.Name)
			if err != nil {
				return nil, err
			}
			ht.ExitGeneric = append(ht.ExitGeneric, h)
			continue
		}
		h, err := lookupTyped(registry, ref.Name)
		if err != nil {
			return nil, err
		}
		ht.ExitTyped[ir.EventType(ref.Event)] = append(ht.ExitTyped[ir.EventType(ref.Event)], h)
	}
	for _, ref := range ns.Handle {
		h, err := lookupTyped(registry, ref.Name)
		if err != nil {
			return nil, err
		}
		ht.HandleTyped[ir.EventType(ref.Event)] = append(ht.HandleTyped[ir.EventType(ref.Event)], h)
	}
	return ht, nil
}

func lookupTyped(registry *HandlerRegistry, name string) (ir.TypedHandler, error) {
	if registry == nil {
		return nil, fmt.Errorf("reflect: handler %q referenced but no registry given", name)
	}
	return registry.Typed(name)
}

func lookupGeneric(registry *HandlerRegistry, name string) (ir.GenericHandler, error) {
	if registry == nil {
		return nil, fmt.Errorf("reflect: handler %q referenced but no registry given", name)
	}
	return registry.Generic(name)
}
