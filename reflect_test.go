package statechart

import (
	"testing"

	"github.com/gostatechart/statechart/internal/ir"
)

type reflectMachine struct {
	Top CompositeNode `top:"true" initial:"A"`
	A   SimpleNode    `parent:"Top" enter:"Ready=onReady" handle:"Go=onGo"`
	B   SimpleNode    `parent:"Top"`
}

func TestFromStructBuildsTree(t *testing.T) {
	var entered, handled bool
	registry := NewHandlerRegistry().
		WithTyped("onReady", func(ctx ir.DispatchContext, event ir.Event) bool { entered = true; return true }).
		WithTyped("onGo", func(ctx ir.DispatchContext, event ir.Event) bool { handled = true; return true })

	tree, err := FromStruct[reflectMachine](registry)
	if err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
	if tree.Top != "Top" {
		t.Errorf("Top = %s, want Top", tree.Top)
	}
	top := tree.Node("Top")
	if top.Initial != "A" {
		t.Errorf("Initial = %s, want A", top.Initial)
	}

	a := tree.Node("A")
	ctx := &fakeCtx{event: ir.Event{Type: "Ready"}}
	for _, h := range a.Handlers.EnterTyped["Ready"] {
		h(ctx, ctx.event)
	}
	if !entered {
		t.Error("onReady handler was not wired to A's enter-typed table")
	}

	ctx2 := &fakeCtx{event: ir.Event{Type: "Go"}}
	for _, h := range a.Handlers.HandleTyped["Go"] {
		h(ctx2, ctx2.event)
	}
	if !handled {
		t.Error("onGo handler was not wired to A's handle-typed table")
	}
}

func TestFromStructErrorsOnUnregisteredHandler(t *testing.T) {
	registry := NewHandlerRegistry()
	_, err := FromStruct[reflectMachine](registry)
	if err == nil {
		t.Fatal("expected an error: no handlers registered for onReady/onGo")
	}
}

type reflectJointMachine struct {
	Top ParallelNode `top:"true" joints:"J"`
	R1  SimpleNode   `parent:"Top"`
	R2  SimpleNode   `parent:"Top"`
	J   JointNode    `guards:"R1,R2"`
}

func TestFromStructBuildsJoints(t *testing.T) {
	registry := NewHandlerRegistry()
	tree, err := FromStruct[reflectJointMachine](registry)
	if err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
	top := tree.Node("Top")
	if len(top.Joints) != 1 || top.Joints[0] != "J" {
		t.Errorf("Joints = %v, want [J]", top.Joints)
	}
	j := tree.Node("J")
	if j.Kind != ir.KindJoint {
		t.Fatalf("J should be a joint node")
	}
	if want := []ir.NodeID{"R1", "R2"}; !equalIDs(j.Guards, want) {
		t.Errorf("Guards = %v, want %v", j.Guards, want)
	}
}

type reflectInvalidMachine struct {
	Top CompositeNode `top:"true"`
}

func TestFromStructPropagatesConfigError(t *testing.T) {
	registry := NewHandlerRegistry()
	_, err := FromStruct[reflectInvalidMachine](registry)
	if err == nil {
		t.Fatal("expected a *ir.ConfigError: composite with no children")
	}
}
