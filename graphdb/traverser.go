package graphdb

// pathNode is a cons cell of a persistent path; children share their parent's prefix
type pathNode struct {
	id     ObjectID
	kind   ObjectKind
	parent *pathNode
	length int
}

// bindingNode is a cons cell of persistent label bindings; newer cells shadow older ones
type bindingNode struct {
	label  string
	id     ObjectID
	kind   ObjectKind
	value  interface{}
	parent *bindingNode
}

// Traverser is one thread of a traversal: the current object, its label
// bindings and the path of visited objects. Traversers are values; extending
// one never changes the original.
type Traverser struct {
	id       ObjectID
	kind     ObjectKind
	value    interface{}
	path     *pathNode
	bindings *bindingNode
}

// NewTraverser starts a traverser at a graph object
func NewTraverser(id ObjectID, kind ObjectKind) Traverser {
	return Traverser{
		id:   id,
		kind: kind,
		path: &pathNode{id: id, kind: kind, length: 1},
	}
}

// NewDataTraverser creates a traverser that carries a computed value
func NewDataTraverser(value interface{}) Traverser {
	return Traverser{id: DataID, kind: KindData, value: value}
}

// ID returns the current object id, DataID for data traversers
func (t Traverser) ID() ObjectID { return t.id }

// Kind returns the kind of the current object
func (t Traverser) Kind() ObjectKind { return t.kind }

// IsData reports whether the traverser carries a value instead of an object
func (t Traverser) IsData() bool { return t.id == DataID }

// Value returns the carried value of a data traverser
func (t Traverser) Value() interface{} { return t.value }

// Step moves the traverser to another object, extending its path
func (t Traverser) Step(id ObjectID, kind ObjectKind) Traverser {
	next := t
	next.id = id
	next.kind = kind
	next.value = nil
	length := 1
	if t.path != nil {
		length = t.path.length + 1
	}
	next.path = &pathNode{id: id, kind: kind, parent: t.path, length: length}
	return next
}

// WithValue derives a data traverser that keeps the label bindings and path
func (t Traverser) WithValue(value interface{}) Traverser {
	next := t
	next.id = DataID
	next.kind = KindData
	next.value = value
	return next
}

// Bind returns a copy with label bound to the current object, or to the
// carried value of a data traverser
func (t Traverser) Bind(label string) Traverser {
	next := t
	next.bindings = &bindingNode{label: label, id: t.id, kind: t.kind, value: t.value, parent: t.bindings}
	return next
}

// Binding returns the most recent object bound to label
func (t Traverser) Binding(label string) (ObjectID, ObjectKind, bool) {
	for b := t.bindings; b != nil; b = b.parent {
		if b.label == label {
			return b.id, b.kind, true
		}
	}
	return 0, KindData, false
}

// BoundValue returns the value bound to label when it was bound on a data traverser
func (t Traverser) BoundValue(label string) (interface{}, bool) {
	for b := t.bindings; b != nil; b = b.parent {
		if b.label == label {
			return b.value, b.kind == KindData
		}
	}
	return nil, false
}

// Bindings returns the effective label bindings
func (t Traverser) Bindings() map[string]ObjectID {
	bindings := make(map[string]ObjectID)
	for b := t.bindings; b != nil; b = b.parent {
		if _, shadowed := bindings[b.label]; !shadowed {
			bindings[b.label] = b.id
		}
	}
	return bindings
}

// PathRef is one visited object of a traverser path
type PathRef struct {
	ID   ObjectID
	Kind ObjectKind
}

// Path returns the visited objects, oldest first, including the current one
func (t Traverser) Path() []PathRef {
	if t.path == nil {
		return []PathRef{}
	}
	refs := make([]PathRef, t.path.length)
	i := t.path.length - 1
	for p := t.path; p != nil; p = p.parent {
		refs[i] = PathRef{ID: p.id, Kind: p.kind}
		i--
	}
	return refs
}
