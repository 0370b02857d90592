package sema

import (
	"testing"

	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/lexer"
	"uscript/internal/parser"
	"uscript/internal/source"
	"uscript/internal/symbols"
)

type fixture struct {
	reg *symbols.Registry
}

func newFixture() *fixture {
	return &fixture{reg: symbols.NewRegistry()}
}

func (f *fixture) add(t *testing.T, path, src string) *symbols.Document {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(path, []byte(src))
	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}
	tokens := lexer.Scan(fs.Get(fileID), reporter)
	builder := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(tokens, builder, parser.Options{Reporter: reporter})
	doc := symbols.NewDocument(path, fileID, builder, tokens, res.File, reporter)
	doc.Build()
	f.reg.Add(doc)
	return doc
}

func analyzeDoc(doc *symbols.Document, opts Options) *diag.Bag {
	doc.Index()
	bag := diag.NewBag(0)
	Analyze(doc, diag.BagReporter{Bag: bag}, opts)
	return bag
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestClassNameMustMatchFile(t *testing.T) {
	f := newFixture()
	doc := f.add(t, "Pawn.uc", `class Soldier extends Object;`)
	bag := analyzeDoc(doc, Options{})
	if !hasCode(bag, diag.SemaClassNameMismatch) {
		t.Fatalf("mismatch not reported: %v", bag.Items())
	}

	ok := f.add(t, "Soldier.uc", `class Soldier extends Object;`)
	if bag := analyzeDoc(ok, Options{}); hasCode(bag, diag.SemaClassNameMismatch) {
		t.Fatalf("false positive on matching name")
	}
}

func TestUnresolvedTypeGatedByCheckTypes(t *testing.T) {
	f := newFixture()
	doc := f.add(t, "A.uc", `
class A extends Object;
var MissingType Field;
`)
	if bag := analyzeDoc(doc, Options{}); hasCode(bag, diag.SemaTypeNotFound) {
		t.Fatalf("type errors reported with CheckTypes off")
	}
	if bag := analyzeDoc(doc, Options{CheckTypes: true}); !hasCode(bag, diag.SemaTypeNotFound) {
		t.Fatalf("unresolved type not reported with CheckTypes on")
	}
}

func TestConstWithoutValue(t *testing.T) {
	f := newFixture()
	doc := f.add(t, "A.uc", `
class A extends Object;
const Broken;
const Fine = 3;
`)
	bag := analyzeDoc(doc, Options{})
	count := 0
	for _, d := range bag.Items() {
		if d.Code == diag.SemaConstMissingValue {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("const reports = %d, want 1", count)
	}
}

func TestFixedArrayBounds(t *testing.T) {
	f := newFixture()
	doc := f.add(t, "A.uc", `
class A extends Object;
const Size = 8;
var int Good[Size];
var int AlsoGood[2048];
var int Empty[0];
var int TooSmall[1];
var int TooBig[4096];
var bool Flags[4];
`)
	bag := analyzeDoc(doc, Options{})
	sizeErrs := 0
	for _, d := range bag.Items() {
		if d.Code == diag.SemaArrayBadSize {
			sizeErrs++
		}
	}
	if sizeErrs != 3 {
		t.Fatalf("size reports = %d, want 3 (got %v)", sizeErrs, bag.Items())
	}
	if !hasCode(bag, diag.SemaArrayBadElement) {
		t.Fatalf("bool element not reported")
	}
}

func TestOptionalParamOrdering(t *testing.T) {
	f := newFixture()
	doc := f.add(t, "A.uc", `
class A extends Object;
function F(int A, optional int B, int C, int D);
`)
	bag := analyzeDoc(doc, Options{})
	count := 0
	for _, d := range bag.Items() {
		if d.Code == diag.SemaOptionalParamOrder {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("ordering reports = %d, want only the first violation", count)
	}

	var method *symbols.Symbol
	for _, id := range doc.Children(doc.Class) {
		if s := doc.Symbol(id); s.Kind == symbols.KindMethod {
			method = s
		}
	}
	if method.RequiredParams != 1 {
		t.Fatalf("required params = %d, want 1", method.RequiredParams)
	}
}

func TestOperatorRules(t *testing.T) {
	f := newFixture()
	doc := f.add(t, "A.uc", `
class A extends Object;
static operator(300) int +(int x, int y);
static final operator(10) int -(int x);
static final preoperator bool !(bool x, bool y);
`)
	bag := analyzeDoc(doc, Options{})
	if !hasCode(bag, diag.SemaOperatorNotFinal) {
		t.Fatalf("non-final operator not reported")
	}
	if !hasCode(bag, diag.SemaOperatorPrecedence) {
		t.Fatalf("precedence 300 not reported")
	}
	arity := 0
	for _, d := range bag.Items() {
		if d.Code == diag.SemaOperatorArity {
			arity++
		}
	}
	// Binary with 1 param and unary with 2 params.
	if arity != 2 {
		t.Fatalf("arity reports = %d, want 2: %v", arity, bag.Items())
	}
}

func TestParamDefaultNeedsOptionalAndGen3(t *testing.T) {
	f := newFixture()
	doc := f.add(t, "A.uc", `
class A extends Object;
function F(int A = 1, optional int B = 2);
`)
	bag := analyzeDoc(doc, Options{Generation: Gen3})
	count := 0
	for _, d := range bag.Items() {
		if d.Code == diag.SemaParamDefaultValue {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("gen3 reports = %d, want 1 (non-optional only)", count)
	}

	bag = analyzeDoc(doc, Options{Generation: Gen2})
	count = 0
	for _, d := range bag.Items() {
		if d.Code == diag.SemaParamDefaultValue {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("gen2 reports = %d, want 2 (defaults not supported)", count)
	}
}

func TestStateRules(t *testing.T) {
	f := newFixture()
	doc := f.add(t, "A.uc", `
class A extends Object;
final function Locked();
function Open();
var int NotAFunction;

state Idle
{
	ignores Open, Locked, NotAFunction;
}
state Busy extends Idle
{
}
`)
	bag := analyzeDoc(doc, Options{CheckTypes: true})
	if !hasCode(bag, diag.SemaIgnoresFinalMethod) {
		t.Fatalf("final ignore not reported")
	}
	if !hasCode(bag, diag.SemaStateIgnoresNonMethod) {
		t.Fatalf("non-method ignore not reported")
	}
	if hasCode(bag, diag.SemaStateExtendsNonState) {
		t.Fatalf("state extends state flagged: %v", bag.Items())
	}
}

func TestReplicationRules(t *testing.T) {
	f := newFixture()
	f.add(t, "Base.uc", `
class Base extends Object;
var int Inherited;
`)
	doc := f.add(t, "A.uc", `
class A extends Base;
var int Own;
enum EKind { K_One };

replication
{
	reliable if (true)
		Own, Inherited, EKind, Ghost;
}
`)
	bag := analyzeDoc(doc, Options{CheckTypes: true})
	if !hasCode(bag, diag.SemaReplicationInherited) {
		t.Fatalf("inherited replication not reported")
	}
	if !hasCode(bag, diag.SemaReplicationNotMember) {
		t.Fatalf("non-member replication not reported")
	}
	if !hasCode(bag, diag.SemaReplicationUnknown) {
		t.Fatalf("unknown replication name not reported")
	}
}

func TestAssignmentTargets(t *testing.T) {
	f := newFixture()
	doc := f.add(t, "A.uc", `
class A extends Object;
const Limit = 10;
var int Fixed[4];
var int Plain;
function F()
{
	Limit = 5;
	Fixed = 1;
	Fixed[0] = 1;
	Plain = 2;
	F = 3;
}
`)
	bag := analyzeDoc(doc, Options{})
	if !hasCode(bag, diag.SemaAssignToConst) {
		t.Fatalf("const assignment not reported")
	}
	if !hasCode(bag, diag.SemaAssignToFixedArray) {
		t.Fatalf("fixed array assignment not reported")
	}
	if !hasCode(bag, diag.SemaAssignToNonVariable) {
		t.Fatalf("function assignment not reported")
	}
	fixedArrayErrs := 0
	for _, d := range bag.Items() {
		if d.Code == diag.SemaAssignToFixedArray {
			fixedArrayErrs++
		}
	}
	// Fixed[0] = 1 is a legal element write.
	if fixedArrayErrs != 1 {
		t.Fatalf("fixed array reports = %d, want 1", fixedArrayErrs)
	}
}

func TestDefaultsAssignmentTargets(t *testing.T) {
	f := newFixture()
	doc := f.add(t, "A.uc", `
class A extends Object;
const Limit = 10;
var int Plain;
defaultproperties
{
	Plain=1
	Limit=5
}
`)
	bag := analyzeDoc(doc, Options{})
	if !hasCode(bag, diag.SemaAssignToConst) {
		t.Fatalf("defaults write to const not reported: %v", bag.Items())
	}
	// Plain=1 is a legal defaults write.
	if hasCode(bag, diag.SemaAssignToNonVariable) {
		t.Fatalf("legal defaults write flagged: %v", bag.Items())
	}
}
