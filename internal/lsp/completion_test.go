package lsp

import "testing"

func labels(items []completionItem) map[string]completionItem {
	out := make(map[string]completionItem, len(items))
	for _, item := range items {
		out[item.Label] = item
	}
	return out
}

func TestCompletionAfterDot(t *testing.T) {
	server, _ := newTestServer(t)
	pawnURI, _ := openWorkspace(t, server)

	entry := server.entryFor(pawnURI)
	pos := positionAt(t, pawnSrc, ".Ammo", 1)
	list := buildCompletion(server.fs, entry, pos)
	byLabel := labels(list.Items)

	ammo, ok := byLabel["Ammo"]
	if !ok {
		t.Fatalf("member completion missing Ammo: %+v", list.Items)
	}
	if ammo.Kind != completionItemKindField {
		t.Fatalf("Ammo kind = %d", ammo.Kind)
	}
	if _, ok := byLabel["Health"]; ok {
		t.Fatalf("Pawn members leaked into Weapon completion")
	}
}

func TestCompletionGeneralScope(t *testing.T) {
	server, _ := newTestServer(t)
	pawnURI, _ := openWorkspace(t, server)

	entry := server.entryFor(pawnURI)
	pos := positionAt(t, pawnSrc, "Health;", 0)
	list := buildCompletion(server.fs, entry, pos)
	byLabel := labels(list.Items)

	if _, ok := byLabel["H"]; !ok {
		t.Fatalf("local missing from scope completion")
	}
	if _, ok := byLabel["CurrentWeapon"]; !ok {
		t.Fatalf("class member missing from scope completion")
	}
	if item, ok := byLabel["Destroy"]; !ok || item.Kind != completionItemKindMethod {
		t.Fatalf("inherited method missing or wrong kind: %+v", item)
	}
	if item, ok := byLabel["Weapon"]; !ok || item.Kind != completionItemKindClass {
		t.Fatalf("workspace class missing or wrong kind: %+v", item)
	}
	if item, ok := byLabel["return"]; !ok || item.Kind != completionItemKindKeyword {
		t.Fatalf("keyword missing or wrong kind: %+v", item)
	}
}

func TestCompletionSortedAndDeduplicated(t *testing.T) {
	server, _ := newTestServer(t)
	pawnURI, _ := openWorkspace(t, server)

	entry := server.entryFor(pawnURI)
	pos := positionAt(t, pawnSrc, "Health;", 0)
	list := buildCompletion(server.fs, entry, pos)

	seen := make(map[string]bool)
	for i, item := range list.Items {
		if item.Kind != completionItemKindKeyword && seen[item.Label] {
			t.Fatalf("duplicate completion %q", item.Label)
		}
		seen[item.Label] = true
		if i > 0 && list.Items[i-1].Label > item.Label {
			t.Fatalf("items not sorted at %d: %q > %q", i, list.Items[i-1].Label, item.Label)
		}
	}
}
