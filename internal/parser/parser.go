// Package parser extracts a flat node schema from a struct's fields
// and tags, generalizing felixgeelhaar-statekit/internal/parser's
// nested-struct schema walk into a flat, parent-pointer model: every
// exported marker-typed field of the defining struct is one state-tree
// node, and a
// `parent:"FieldName"` tag (empty for the top node) links it into the
// tree, rather than mirroring the tree shape in Go struct nesting.
package parser

import (
	"fmt"
	"reflect"
	"strings"
)

// NodeKind mirrors the four node kinds without importing internal/ir,
// keeping this package free of a dependency on the engine.
type NodeKind int

const (
	KindSimple NodeKind = iota
	KindComposite
	KindParallel
	KindJoint
)

// HandlerRef is one parsed `enter`/`exit`/`handle` tag entry: a bare
// name is a generic handler (enter/exit only); an `EVENT=name` entry
// is a typed handler keyed to EVENT.
type HandlerRef struct {
	Event string // empty for a generic entry
	Name  string
}

// NodeSchema is one field's parsed declaration.
type NodeSchema struct {
	Field   string
	ID      string
	Kind    NodeKind
	Parent  string // field name of the parent, "" for the top node
	Initial string // composite only: field name of the initial child
	Guards  []string // joint only: field names of guard nodes
	Joints  []string // parallel only: field names of joint children

	Enter  []HandlerRef
	Exit   []HandlerRef
	Handle []HandlerRef
}

// Schema is the full parsed struct: every node in struct field order,
// which doubles as declaration order.
type Schema struct {
	Top   string
	Nodes []*NodeSchema
}

// markerKinds maps the marker type names the parser recognizes by exact
// type name, matching felixgeelhaar-statekit's StateNode/CompoundNode/
// FinalNode marker convention (see the root package's reflect.go for the
// exported marker types: SimpleNode, CompositeNode, ParallelNode,
// JointNode).
var markerKinds = map[string]NodeKind{
	"SimpleNode":    KindSimple,
	"CompositeNode": KindComposite,
	"ParallelNode":  KindParallel,
	"JointNode":     KindJoint,
}

// ParseStruct walks t's fields and builds a Schema. t must be a struct
// type (not a pointer). Every exported field whose type is one of the
// marker types becomes a node; a `top:"true"` tag on exactly one field
// marks the top node, and it is an error if no field or more than one
// field carries it.
func ParseStruct(t reflect.Type) (*Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("parser: %s is not a struct", t)
	}

	schema := &Schema{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		kind, ok := markerKinds[f.Type.Name()]
		if !ok {
			continue
		}

		ns := &NodeSchema{Field: f.Name, Kind: kind, Parent: f.Tag.Get("parent")}
		ns.ID = f.Tag.Get("id")
		if ns.ID == "" {
			ns.ID = f.Name
		}
		ns.Initial = f.Tag.Get("initial")
		ns.Guards = splitNonEmpty(f.Tag.Get("guards"))
		ns.Joints = splitNonEmpty(f.Tag.Get("joints"))

		var err error
		if ns.Enter, err = parseHandlerTag(f.Tag.Get("enter")); err != nil {
			return nil, fmt.Errorf("parser: field %s: enter: %w", f.Name, err)
		}
		if ns.Exit, err = parseHandlerTag(f.Tag.Get("exit")); err != nil {
			return nil, fmt.Errorf("parser: field %s: exit: %w", f.Name, err)
		}
		if ns.Handle, err = parseHandlerTag(f.Tag.Get("handle")); err != nil {
			return nil, fmt.Errorf("parser: field %s: handle: %w", f.Name, err)
		}
		for _, h := range ns.Handle {
			if h.Event == "" {
				return nil, fmt.Errorf("parser: field %s: handle entry %q has no event (handle has no generic variant)", f.Name, h.Name)
			}
		}

		if f.Tag.Get("top") == "true" {
			if schema.Top != "" {
				return nil, fmt.Errorf("parser: both %s and %s are tagged top:\"true\"", schema.Top, f.Name)
			}
			schema.Top = f.Name
		}

		schema.Nodes = append(schema.Nodes, ns)
	}

	if schema.Top == "" {
		return nil, fmt.Errorf("parser: no top node found (tag one field `top:\"true\"`)")
	}
	return schema, nil
}

// parseHandlerTag parses a comma-separated list of `name` or
// `EVENT=name` entries.
func parseHandlerTag(tag string) ([]HandlerRef, error) {
	if tag == "" {
		return nil, nil
	}
	var out []HandlerRef
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, "="); idx >= 0 {
			out = append(out, HandlerRef{Event: part[:idx], Name: part[idx+1:]})
		} else {
			out = append(out, HandlerRef{Name: part})
		}
	}
	return out, nil
}

func splitNonEmpty(tag string) []string {
	if tag == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
