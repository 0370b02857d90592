// Package names interns identifiers into case-insensitive name handles.
// Two spellings that fold to the same text always intern to the same Name,
// which makes name comparison a single integer compare everywhere else.
package names

import (
	"hash/fnv"
	"sync"

	"golang.org/x/text/cases"
)

// Name is a handle into the name table. The zero value is None.
type Name uint32

// None marks the absence of a name.
const None Name = 0

// IsValid reports whether the name refers to an interned entry.
func (n Name) IsValid() bool { return n != None }

type entry struct {
	text   string // first spelling seen
	folded string
	hash   uint32
}

// Table interns case-insensitive names. Append-only; safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	folder  cases.Caser
	entries []entry         // entries[0] reserved for None
	index   map[string]Name // folded text -> name
}

// NewTable creates an empty name table.
func NewTable() *Table {
	return &Table{
		folder:  cases.Fold(),
		entries: make([]entry, 1, 256),
		index:   make(map[string]Name),
	}
}

// ToName interns text and returns its handle. The first spelling seen for a
// folded form becomes the canonical display text.
func (t *Table) ToName(text string) Name {
	if text == "" {
		return None
	}
	folded := t.folder.String(text)

	t.mu.RLock()
	id, ok := t.index[folded]
	t.mu.RUnlock()
	if ok {
		return id
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.index[folded]; ok {
		return id
	}
	h := fnv.New32a()
	h.Write([]byte(folded))
	id = Name(len(t.entries))
	t.entries = append(t.entries, entry{
		text:   string([]byte(text)), // own copy, detached from caller's buffer
		folded: folded,
		hash:   h.Sum32(),
	})
	t.index[folded] = id
	return id
}

// Text returns the canonical spelling for the name.
func (t *Table) Text(n Name) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(n) >= len(t.entries) {
		return ""
	}
	return t.entries[n].text
}

// Hash returns the stable hash of the folded spelling.
func (t *Table) Hash(n Name) uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(n) >= len(t.entries) {
		return 0
	}
	return t.entries[n].hash
}

// Len reports the number of interned names, counting the None sentinel.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Default is the process-wide name table. It lives for the whole process;
// a workspace reload does not reset it (names are pure values).
var Default = NewTable()

// ToName interns text into the process-wide table.
func ToName(text string) Name { return Default.ToName(text) }

// String returns the canonical spelling from the process-wide table.
func (n Name) String() string { return Default.Text(n) }

// Hash returns the stable hash from the process-wide table.
func (n Name) Hash() uint32 { return Default.Hash(n) }
