package names

import "testing"

func TestToNameCaseInsensitive(t *testing.T) {
	table := NewTable()
	a := table.ToName("Pawn")
	b := table.ToName("PAWN")
	c := table.ToName("pawn")

	if !a.IsValid() {
		t.Fatalf("expected valid name")
	}
	if a != b || b != c {
		t.Fatalf("expected one handle for all spellings, got %v %v %v", a, b, c)
	}
	if table.Text(a) != "Pawn" {
		t.Fatalf("expected first spelling to win, got %q", table.Text(a))
	}
	if table.Hash(a) == 0 {
		t.Fatalf("expected non-zero hash")
	}
}

func TestToNameDistinct(t *testing.T) {
	table := NewTable()
	a := table.ToName("Health")
	b := table.ToName("Armor")
	if a == b {
		t.Fatalf("distinct names share a handle")
	}
	if table.Hash(a) == table.Hash(b) {
		t.Fatalf("suspicious hash collision between %q and %q", "Health", "Armor")
	}
}

func TestEmptyName(t *testing.T) {
	table := NewTable()
	if table.ToName("") != None {
		t.Fatalf("empty text must intern to None")
	}
	if None.IsValid() {
		t.Fatalf("None must not be valid")
	}
}

func TestDefaultTable(t *testing.T) {
	a := ToName("simulated")
	b := ToName("Simulated")
	if a != b {
		t.Fatalf("default table is not case-insensitive")
	}
	if a.String() == "" {
		t.Fatalf("expected a spelling for interned name")
	}
}
