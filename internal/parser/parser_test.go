package parser

import (
	"reflect"
	"testing"
)

type simpleMachine struct {
	Top CompositeNode `top:"true"`
	A   SimpleNode    `parent:"Top"`
	B   SimpleNode    `parent:"Top" id:"b-state"`
}

type SimpleNode struct{}
type CompositeNode struct{}
type ParallelNode struct{}
type JointNode struct{}

func TestParseStructFindsTopAndChildren(t *testing.T) {
	schema, err := ParseStruct(reflect.TypeOf(simpleMachine{}))
	if err != nil {
		t.Fatalf("ParseStruct: %v", err)
	}
	if schema.Top != "Top" {
		t.Errorf("Top = %s, want Top", schema.Top)
	}
	if len(schema.Nodes) != 3 {
		t.Fatalf("Nodes = %v, want 3", schema.Nodes)
	}
}

func TestParseStructUsesIDTagOverride(t *testing.T) {
	schema, err := ParseStruct(reflect.TypeOf(simpleMachine{}))
	if err != nil {
		t.Fatalf("ParseStruct: %v", err)
	}
	var b *NodeSchema
	for _, ns := range schema.Nodes {
		if ns.Field == "B" {
			b = ns
		}
	}
	if b == nil {
		t.Fatal("field B not found")
	}
	if b.ID != "b-state" {
		t.Errorf("ID = %s, want b-state", b.ID)
	}
}

func TestParseStructDefaultsIDToFieldName(t *testing.T) {
	schema, err := ParseStruct(reflect.TypeOf(simpleMachine{}))
	if err != nil {
		t.Fatalf("ParseStruct: %v", err)
	}
	for _, ns := range schema.Nodes {
		if ns.Field == "A" && ns.ID != "A" {
			t.Errorf("ID = %s, want A", ns.ID)
		}
	}
}

type noTopMachine struct {
	A SimpleNode
}

func TestParseStructRejectsMissingTop(t *testing.T) {
	_, err := ParseStruct(reflect.TypeOf(noTopMachine{}))
	if err == nil {
		t.Fatal("expected an error with no top:\"true\" field")
	}
}

type doubleTopMachine struct {
	A SimpleNode `top:"true"`
	B SimpleNode `top:"true"`
}

func TestParseStructRejectsDoubleTop(t *testing.T) {
	_, err := ParseStruct(reflect.TypeOf(doubleTopMachine{}))
	if err == nil {
		t.Fatal("expected an error with two top:\"true\" fields")
	}
}

func TestParseHandlerTagParsesTypedAndGeneric(t *testing.T) {
	refs, err := parseHandlerTag("Ready=onReadyEnter,logEntry")
	if err != nil {
		t.Fatalf("parseHandlerTag: %v", err)
	}
	want := []HandlerRef{{Event: "Ready", Name: "onReadyEnter"}, {Event: "", Name: "logEntry"}}
	if len(refs) != len(want) {
		t.Fatalf("refs = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("refs[%d] = %+v, want %+v", i, refs[i], want[i])
		}
	}
}

type handleMachine struct {
	Top SimpleNode `top:"true" handle:"onStart"`
}

func TestParseStructRejectsGenericHandleEntry(t *testing.T) {
	_, err := ParseStruct(reflect.TypeOf(handleMachine{}))
	if err == nil {
		t.Fatal("expected an error: handle has no generic variant")
	}
}

type jointMachine struct {
	Top ParallelNode `top:"true" joints:"J"`
	R1  SimpleNode   `parent:"Top"`
	R2  SimpleNode   `parent:"Top"`
	J   JointNode    `guards:"R1,R2"`
}

func TestParseStructParsesGuardsAndJoints(t *testing.T) {
	schema, err := ParseStruct(reflect.TypeOf(jointMachine{}))
	if err != nil {
		t.Fatalf("ParseStruct: %v", err)
	}
	var top, j *NodeSchema
	for _, ns := range schema.Nodes {
		switch ns.Field {
		case "Top":
			top = ns
		case "J":
			j = ns
		}
	}
	if len(top.Joints) != 1 || top.Joints[0] != "J" {
		t.Errorf("Top.Joints = %v, want [J]", top.Joints)
	}
	if len(j.Guards) != 2 || j.Guards[0] != "R1" || j.Guards[1] != "R2" {
		t.Errorf("J.Guards = %v, want [R1 R2]", j.Guards)
	}
}

func TestParseStructRejectsNonStruct(t *testing.T) {
	_, err := ParseStruct(reflect.TypeOf(42))
	if err == nil {
		t.Fatal("expected an error for a non-struct type")
	}
}
