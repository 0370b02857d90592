package symbols

import (
	"testing"

	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/lexer"
	"uscript/internal/names"
	"uscript/internal/parser"
	"uscript/internal/source"
)

func buildDoc(t *testing.T, reg *Registry, path, src string) (*Document, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(path, []byte(src))
	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}
	tokens := lexer.Scan(fs.Get(fileID), reporter)
	builder := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(tokens, builder, parser.Options{Reporter: reporter})
	doc := NewDocument(path, fileID, builder, tokens, res.File, reporter)
	doc.Build()
	if reg != nil {
		reg.Add(doc)
	}
	return doc, bag
}

func TestBuildClassTree(t *testing.T) {
	doc, bag := buildDoc(t, nil, "Pawn.uc", `
class Pawn extends Actor;

// Hit points remaining.
var int Health;
const MaxInventory = 16;

function TakeDamage(int Amount);
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if !doc.Class.IsValid() {
		t.Fatalf("class symbol missing")
	}
	if doc.ClassName() != names.ToName("pawn") {
		t.Fatalf("class name = %q", doc.ClassName().String())
	}
	kids := doc.Children(doc.Class)
	if len(kids) != 3 {
		t.Fatalf("members = %d, want 3", len(kids))
	}
	health := doc.Symbol(kids[0])
	if health.Kind != KindProperty || health.Name != names.ToName("health") {
		t.Fatalf("first member: %v %q", health.Kind, health.Name.String())
	}
	if health.Doc != "Hit points remaining." {
		t.Fatalf("doc comment = %q", health.Doc)
	}
	method := doc.Symbol(kids[2])
	if method.Kind != KindMethod || len(doc.Children(kids[2])) != 1 {
		t.Fatalf("method shape wrong")
	}
}

func TestTrailingDocComment(t *testing.T) {
	doc, bag := buildDoc(t, nil, "A.uc", `
class A extends Object;
var int Health; // hit points
var int Armor;
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	kids := doc.Children(doc.Class)
	if len(kids) != 2 {
		t.Fatalf("members = %d, want 2", len(kids))
	}
	if got := doc.Symbol(kids[0]).Doc; got != "hit points" {
		t.Fatalf("Health doc = %q, want trailing comment", got)
	}
	if got := doc.Symbol(kids[1]).Doc; got != "" {
		t.Fatalf("Armor doc = %q, want none", got)
	}
}

func TestEnumOrdinalsAndSentinel(t *testing.T) {
	doc, bag := buildDoc(t, nil, "A.uc", `
class A extends Object;
enum EColor
{
	EC_Red,
	EC_Green,
	EC_Blue,
};
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	enumID := doc.findChildKind(doc.Class, names.ToName("ecolor"), KindEnum)
	if !enumID.IsValid() {
		t.Fatalf("enum not found")
	}
	members := doc.Children(enumID)
	if len(members) != 4 {
		t.Fatalf("enum members = %d, want 3 + sentinel", len(members))
	}
	for i := 0; i < 3; i++ {
		if got := doc.Symbol(members[i]).Ordinal; got != uint16(i) {
			t.Fatalf("ordinal %d = %d", i, got)
		}
	}
	max := doc.Symbol(members[3])
	if max.Name != names.ToName("EColor_MAX") || max.Ordinal != 3 || !max.Synthetic {
		t.Fatalf("sentinel: %q ordinal=%d synthetic=%v",
			max.Name.String(), max.Ordinal, max.Synthetic)
	}
}

func TestDuplicateClassDiscarded(t *testing.T) {
	doc, bag := buildDoc(t, nil, "A.uc", `
class A extends Object;
var int X;
class B extends Object;
var int Y;
`)
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SynDuplicateClass {
			found = true
		}
	}
	if !found {
		t.Fatalf("duplicate class not reported")
	}
	if doc.ClassName() != names.ToName("a") {
		t.Fatalf("kept class = %q", doc.ClassName().String())
	}
	// Y belonged to the discarded declaration.
	if len(doc.Children(doc.Class)) != 1 {
		t.Fatalf("members = %d, want 1", len(doc.Children(doc.Class)))
	}
}

func TestSuperResolutionAcrossDocuments(t *testing.T) {
	reg := NewRegistry()
	base, _ := buildDoc(t, reg, "Actor.uc", `
class Actor extends Object;
var vector Location;
function Destroy();
`)
	derived, _ := buildDoc(t, reg, "Pawn.uc", `
class Pawn extends Actor;
var int Health;
`)
	derived.Index()

	super := derived.Symbol(derived.Class).Super
	if !super.Valid() || super.Doc != base || super.Sym != base.Class {
		t.Fatalf("super not resolved to Actor")
	}

	// Inherited member lookup climbs into the base document.
	ref := lookupMemberIn(MakeRef(derived, derived.Class), names.ToName("location"))
	if !ref.Valid() || ref.Doc != base {
		t.Fatalf("inherited member not found")
	}
}

func TestQualifiedName(t *testing.T) {
	doc, _ := buildDoc(t, nil, "A.uc", `
class A extends Object;
struct Inner
{
	var int Field;
};
`)
	structID := doc.findChildKind(doc.Class, names.ToName("inner"), KindStruct)
	fieldID := doc.FindChild(structID, names.ToName("field"))
	if got := doc.QualifiedName(fieldID); got != "A.Inner.Field" {
		t.Fatalf("qualified name = %q", got)
	}
}

func TestRebuildInvalidatesRefs(t *testing.T) {
	reg := NewRegistry()
	first, _ := buildDoc(t, reg, "A.uc", `class A extends Object;`)
	ref := reg.Class(names.ToName("a"))
	if !ref.Valid() || ref.Doc != first {
		t.Fatalf("initial ref invalid")
	}

	second, _ := buildDoc(t, reg, "A.uc", `class A extends Object; var int X;`)
	if ref.Valid() {
		t.Fatalf("stale ref still resolves after rebuild")
	}
	if ref.Deref() != nil {
		t.Fatalf("stale ref dereferenced")
	}
	fresh := reg.Class(names.ToName("a"))
	if !fresh.Valid() || fresh.Doc != second {
		t.Fatalf("fresh ref does not point at replacement")
	}
}

func TestEnumMemberGlobalLookup(t *testing.T) {
	reg := NewRegistry()
	buildDoc(t, reg, "A.uc", `
class A extends Object;
enum ETeam { TEAM_Red, TEAM_Blue };
`)
	other, _ := buildDoc(t, reg, "B.uc", `
class B extends Object;
function F()
{
	local int T;
	T = TEAM_Blue;
}
`)
	other.Index()

	ref := reg.EnumMember(names.ToName("team_blue"))
	if !ref.Valid() {
		t.Fatalf("enum member not registered globally")
	}
	if sym := ref.Deref(); sym == nil || sym.Ordinal != 1 {
		t.Fatalf("wrong enum member resolved")
	}
}

func TestIndexResolvesPropertyType(t *testing.T) {
	reg := NewRegistry()
	buildDoc(t, reg, "Weapon.uc", `class Weapon extends Object;`)
	doc, _ := buildDoc(t, reg, "Pawn.uc", `
class Pawn extends Object;
var Weapon CurrentWeapon;
`)
	doc.Index()

	propID := doc.FindChild(doc.Class, names.ToName("currentweapon"))
	prop := doc.Symbol(propID)
	if !prop.TypeRef.Valid() {
		t.Fatalf("property type unresolved")
	}
	if prop.TypeRef.Deref().Name != names.ToName("weapon") {
		t.Fatalf("property type = %q", prop.TypeRef.Deref().Name.String())
	}
}

func TestMemberAccessResolution(t *testing.T) {
	reg := NewRegistry()
	buildDoc(t, reg, "Weapon.uc", `
class Weapon extends Object;
var int Ammo;
`)
	doc, _ := buildDoc(t, reg, "Pawn.uc", `
class Pawn extends Object;
var Weapon CurrentWeapon;
function F()
{
	CurrentWeapon.Ammo = 5;
}
`)
	doc.Index()

	var found bool
	for exprID, ref := range doc.ExprRefs {
		expr := doc.Ast.Exprs.Get(exprID)
		if expr.Kind == ast.ExprMember && ref.Valid() &&
			ref.Deref().Name == names.ToName("ammo") {
			found = true
			if _, isTarget := doc.AssignTargets[exprID]; !isTarget {
				t.Fatalf("member write not marked as assignment target")
			}
		}
	}
	if !found {
		t.Fatalf("member access did not resolve")
	}
}

func TestDefaultsObjectLabeling(t *testing.T) {
	reg := NewRegistry()
	buildDoc(t, reg, "PointLight.uc", `
class PointLight extends Object;
var float Brightness;
`)
	doc, _ := buildDoc(t, reg, "Lamp.uc", `
class Lamp extends Object;
defaultproperties
{
	Begin Object Class=PointLight Name=Bulb
		Brightness=2.0
	End Object
}
`)
	doc.Index()

	defaultsID := doc.findChildKind(doc.Class, names.None, KindDefaults)
	objID := doc.findChildKind(defaultsID, names.ToName("bulb"), KindObject)
	if !objID.IsValid() {
		t.Fatalf("sub-object not labeled")
	}
	obj := doc.Symbol(objID)
	if obj.ClassName != names.ToName("pointlight") {
		t.Fatalf("object class = %q", obj.ClassName.String())
	}
	if !obj.TypeRef.Valid() {
		t.Fatalf("object class unresolved")
	}
	if reg.SubObject(names.ToName("bulb")) != MakeRef(doc, objID) {
		t.Fatalf("sub-object not in global table")
	}
}

func TestCrossDocumentStructEnumTypes(t *testing.T) {
	reg := NewRegistry()
	buildDoc(t, reg, "A.uc", `
class A extends Object;
struct Inner
{
	var int Field;
};
enum EGlobal { EG_One, EG_Two };
`)
	doc, _ := buildDoc(t, reg, "B.uc", `
class B extends Object;
var Inner X;
var EGlobal Y;
`)
	doc.Index()

	x := doc.Symbol(doc.FindChild(doc.Class, names.ToName("x")))
	if !x.TypeRef.Valid() || x.TypeRef.Deref().Kind != KindStruct {
		t.Fatalf("struct type from other document unresolved: %+v", x.TypeRef)
	}
	y := doc.Symbol(doc.FindChild(doc.Class, names.ToName("y")))
	if !y.TypeRef.Valid() || y.TypeRef.Deref().Kind != KindEnum {
		t.Fatalf("enum type from other document unresolved: %+v", y.TypeRef)
	}

	if ref := reg.Object(names.ToName("inner")); !ref.Valid() {
		t.Fatalf("struct missing from global table")
	}
	if ref := reg.Object(names.ToName("eglobal")); !ref.Valid() {
		t.Fatalf("enum missing from global table")
	}
}

func TestStructCastCallee(t *testing.T) {
	reg := NewRegistry()
	buildDoc(t, reg, "A.uc", `
class A extends Object;
struct Vector
{
	var float X;
};
`)
	doc, _ := buildDoc(t, reg, "B.uc", `
class B extends Object;
function F()
{
	local int V;
	Vector(V);
}
`)
	doc.Index()

	var found bool
	for exprID, ref := range doc.ExprRefs {
		expr := doc.Ast.Exprs.Get(exprID)
		if expr.Kind == ast.ExprIdent && ref.Valid() &&
			ref.Deref().Kind == KindStruct &&
			ref.Deref().Name == names.ToName("vector") {
			found = true
		}
	}
	if !found {
		t.Fatalf("struct cast callee did not resolve to the struct")
	}
}

func TestSymbolAtPosition(t *testing.T) {
	src := `class A extends Object;
var int Health;
function F()
{
	local int X;
}
`
	doc, _ := buildDoc(t, nil, "A.uc", src)
	// Offset inside "Health".
	off := uint32(len("class A extends Object;\nvar int H"))
	id := doc.SymbolAt(off)
	if sym := doc.Symbol(id); sym == nil || sym.Name != names.ToName("health") {
		t.Fatalf("symbol at offset: %+v", doc.Symbol(id))
	}
}
