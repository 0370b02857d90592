package lsp

import (
	"strings"
	"testing"
)

const actorSrc = `class Actor extends Object;

// Remaining hit points.
var int Health;

function Destroy();
`

const weaponSrc = `class Weapon extends Object;

var int Ammo;
`

const pawnSrc = `class Pawn extends Actor;

var Weapon CurrentWeapon;

function Tick()
{
	local int H;
	H = Health;
	CurrentWeapon.Ammo = 0;
}
`

func openWorkspace(t *testing.T, s *Server) (pawnURI, weaponURI string) {
	t.Helper()
	dir := t.TempDir()
	openDoc(t, s, dir, "Actor.uc", actorSrc)
	weaponURI = openDoc(t, s, dir, "Weapon.uc", weaponSrc)
	pawnURI = openDoc(t, s, dir, "Pawn.uc", pawnSrc)
	return pawnURI, weaponURI
}

func TestHoverInheritedProperty(t *testing.T) {
	server, _ := newTestServer(t)
	pawnURI, _ := openWorkspace(t, server)

	entry := server.entryFor(pawnURI)
	if entry == nil {
		t.Fatalf("no entry for pawn")
	}
	pos := positionAt(t, pawnSrc, "Health;", 1)
	result := buildHover(server.fs, entry, pos)
	if result == nil {
		t.Fatalf("no hover for inherited property")
	}
	value := result.Contents.Value
	if !strings.Contains(value, "var int Health") {
		t.Fatalf("hover missing signature: %q", value)
	}
	if !strings.Contains(value, "Member of `Actor`") {
		t.Fatalf("hover missing container: %q", value)
	}
	if !strings.Contains(value, "Remaining hit points.") {
		t.Fatalf("hover missing doc comment: %q", value)
	}
	if result.Range == nil {
		t.Fatalf("hover range missing")
	}
}

func TestHoverMethodSignature(t *testing.T) {
	server, _ := newTestServer(t)
	pawnURI, _ := openWorkspace(t, server)

	entry := server.entryFor(pawnURI)
	pos := positionAt(t, pawnSrc, "Tick", 1)
	result := buildHover(server.fs, entry, pos)
	if result == nil {
		t.Fatalf("no hover on method declaration")
	}
	if !strings.Contains(result.Contents.Value, "function Tick()") {
		t.Fatalf("method hover = %q", result.Contents.Value)
	}
}

func TestDefinitionCrossDocument(t *testing.T) {
	server, _ := newTestServer(t)
	pawnURI, weaponURI := openWorkspace(t, server)

	entry := server.entryFor(pawnURI)
	pos := positionAt(t, pawnSrc, ".Ammo", 2)
	locs := buildDefinition(server.fs, entry, pos)
	if len(locs) != 1 {
		t.Fatalf("definition count = %d", len(locs))
	}
	if locs[0].URI != weaponURI {
		t.Fatalf("definition uri = %q, want %q", locs[0].URI, weaponURI)
	}
	wantLine := positionAt(t, weaponSrc, "Ammo", 0).Line
	if locs[0].Range.Start.Line != wantLine {
		t.Fatalf("definition line = %d, want %d", locs[0].Range.Start.Line, wantLine)
	}
}

func TestDefinitionOfLocal(t *testing.T) {
	server, _ := newTestServer(t)
	pawnURI, _ := openWorkspace(t, server)

	entry := server.entryFor(pawnURI)
	pos := positionAt(t, pawnSrc, "H = Health", 0)
	locs := buildDefinition(server.fs, entry, pos)
	if len(locs) != 1 {
		t.Fatalf("definition count = %d", len(locs))
	}
	if locs[0].URI != pawnURI {
		t.Fatalf("local definition left the document: %q", locs[0].URI)
	}
	wantLine := positionAt(t, pawnSrc, "local int H;", 0).Line
	if locs[0].Range.Start.Line != wantLine {
		t.Fatalf("local definition line = %d, want %d", locs[0].Range.Start.Line, wantLine)
	}
}
