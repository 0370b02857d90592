package symbols

import (
	"sync"

	"uscript/internal/names"
)

// Registry is the cross-document symbol index. Class, struct, enum, and
// enum-member names are global in the language; documents register into
// these tables after building and resolve through them while indexing.
// On a name collision the last writer wins: the collision is a user
// error the analyzer reports, the table just stays usable.
type Registry struct {
	mu sync.RWMutex

	docs        map[names.Name]*Document // by class name
	classes     map[names.Name]Ref
	objects     map[names.Name]Ref // structs and enums
	enumMembers map[names.Name]Ref
	subObjects  map[names.Name]Ref // defaults Begin Object names
}

func NewRegistry() *Registry {
	return &Registry{
		docs:        make(map[names.Name]*Document),
		classes:     make(map[names.Name]Ref),
		objects:     make(map[names.Name]Ref),
		enumMembers: make(map[names.Name]Ref),
		subObjects:  make(map[names.Name]Ref),
	}
}

// Add registers a built document and its global names. A previous document
// for the same class is invalidated and replaced.
func (r *Registry) Add(doc *Document) {
	if doc == nil || !doc.Class.IsValid() {
		return
	}
	name := doc.ClassName()

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.docs[name]; ok && prev != doc {
		prev.Invalidate()
	}
	r.docs[name] = doc
	doc.registry = r
	r.classes[name] = MakeRef(doc, doc.Class)

	doc.Walk(doc.Class, func(id SymbolID, sym *Symbol) bool {
		switch sym.Kind {
		case KindStruct, KindEnum:
			if sym.Name != names.None {
				r.objects[sym.Name] = MakeRef(doc, id)
			}
		case KindEnumMember:
			r.enumMembers[sym.Name] = MakeRef(doc, id)
		case KindObject:
			if sym.Name != names.None {
				r.subObjects[sym.Name] = MakeRef(doc, id)
			}
		}
		return true
	})
}

// Remove drops the document registered under the class name, invalidating
// outstanding references into it.
func (r *Registry) Remove(name names.Name) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[name]
	if !ok {
		return
	}
	doc.Invalidate()
	delete(r.docs, name)
	delete(r.classes, name)
	for n, ref := range r.enumMembers {
		if ref.Doc == doc {
			delete(r.enumMembers, n)
		}
	}
	for n, ref := range r.objects {
		if ref.Doc == doc {
			delete(r.objects, n)
		}
	}
	for n, ref := range r.subObjects {
		if ref.Doc == doc {
			delete(r.subObjects, n)
		}
	}
}

// Document returns the live document for a class name.
func (r *Registry) Document(name names.Name) *Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.docs[name]
}

// Documents snapshots the registered documents.
func (r *Registry) Documents() []*Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Document, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	return out
}

// Class resolves a global class name.
func (r *Registry) Class(name names.Name) Ref {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes[name]
}

// Object resolves a global struct or enum name.
func (r *Registry) Object(name names.Name) Ref {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.objects[name]
}

// SubObject resolves a named defaults sub-object.
func (r *Registry) SubObject(name names.Name) Ref {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subObjects[name]
}

// EnumMember resolves a bare enum member name; members are globally
// visible in the language.
func (r *Registry) EnumMember(name names.Name) Ref {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enumMembers[name]
}
