package graphdb

import (
	"fmt"
	"sort"
)

// ObjectID identifies a vertex or an edge. Vertices and edges share one id space.
type ObjectID int64

// DataID tags traversers that carry a computed value instead of a graph object
const DataID ObjectID = -1

// ObjectKind distinguishes vertices from edges
type ObjectKind int

const (
	KindVertex ObjectKind = iota
	KindEdge
	KindData
)

// String returns the kind name
func (k ObjectKind) String() string {
	switch k {
	case KindVertex:
		return "VERTEX"
	case KindEdge:
		return "EDGE"
	case KindData:
		return "DATA"
	default:
		return "UNKNOWN"
	}
}

// GraphObject is implemented by Vertex and Edge
type GraphObject interface {
	ID() ObjectID
	Kind() ObjectKind
	Labels() []string
	HasAnyLabel(labels ...string) bool
	Properties() map[string]interface{}
	Property(name string) (interface{}, bool)
	SetProperty(name string, value interface{})
}

// object holds the state shared by vertices and edges
type object struct {
	id       ObjectID
	assigned bool
	props    map[string]interface{}
}

func newObject(props map[string]interface{}) object {
	copied := make(map[string]interface{}, len(props))
	for k, v := range props {
		copied[k] = v
	}
	return object{props: copied}
}

// ID returns the object identity, zero before insertion
func (o *object) ID() ObjectID { return o.id }

func (o *object) setID(id ObjectID) error {
	if o.assigned {
		return fmt.Errorf("object already has id %d: %w", o.id, ErrInvalidID)
	}
	o.id = id
	o.assigned = true
	return nil
}

// Properties returns a copy of the property map
func (o *object) Properties() map[string]interface{} {
	props := make(map[string]interface{}, len(o.props))
	for k, v := range o.props {
		props[k] = v
	}
	return props
}

// Property returns a single property value
func (o *object) Property(name string) (interface{}, bool) {
	v, ok := o.props[name]
	return v, ok
}

// SetProperty sets or replaces a property value
func (o *object) SetProperty(name string, value interface{}) {
	o.props[name] = value
}

// Vertex represents a graph vertex
type Vertex struct {
	object
	labels   map[string]struct{}
	outgoing map[ObjectID]struct{}
	incoming map[ObjectID]struct{}
}

// NewVertex creates a vertex that is not yet part of a graph
func NewVertex(labels []string, props map[string]interface{}) *Vertex {
	v := &Vertex{
		object:   newObject(props),
		labels:   make(map[string]struct{}, len(labels)),
		outgoing: make(map[ObjectID]struct{}),
		incoming: make(map[ObjectID]struct{}),
	}
	for _, label := range labels {
		v.labels[label] = struct{}{}
	}
	return v
}

// Kind returns KindVertex
func (v *Vertex) Kind() ObjectKind { return KindVertex }

// Labels returns the vertex labels sorted
func (v *Vertex) Labels() []string {
	labels := make([]string, 0, len(v.labels))
	for label := range v.labels {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// HasAnyLabel reports whether the label sets intersect
func (v *Vertex) HasAnyLabel(labels ...string) bool {
	for _, label := range labels {
		if _, ok := v.labels[label]; ok {
			return true
		}
	}
	return false
}

// OutgoingEdges returns the ids of edges leaving this vertex
func (v *Vertex) OutgoingEdges() []ObjectID { return sortedIDs(v.outgoing) }

// IncomingEdges returns the ids of edges entering this vertex
func (v *Vertex) IncomingEdges() []ObjectID { return sortedIDs(v.incoming) }

// OutDegree returns the number of outgoing edges
func (v *Vertex) OutDegree() int { return len(v.outgoing) }

// InDegree returns the number of incoming edges
func (v *Vertex) InDegree() int { return len(v.incoming) }

// String renders the vertex the way traversal output does
func (v *Vertex) String() string { return fmt.Sprintf("v[%d]", v.id) }

// Edge represents a directed, labeled graph edge
type Edge struct {
	object
	from  ObjectID
	to    ObjectID
	label string
}

// NewEdge creates an edge that is not yet part of a graph
func NewEdge(from, to ObjectID, label string, props map[string]interface{}) *Edge {
	return &Edge{
		object: newObject(props),
		from:   from,
		to:     to,
		label:  label,
	}
}

// Kind returns KindEdge
func (e *Edge) Kind() ObjectKind { return KindEdge }

// From returns the source vertex id
func (e *Edge) From() ObjectID { return e.from }

// To returns the target vertex id
func (e *Edge) To() ObjectID { return e.to }

// Label returns the edge label
func (e *Edge) Label() string { return e.label }

// SetLabel assigns the label; an edge label can only be set once
func (e *Edge) SetLabel(label string) error {
	if e.label != "" {
		return fmt.Errorf("edge %d has label %q: %w", e.id, e.label, ErrLabelAlreadySet)
	}
	e.label = label
	return nil
}

// Labels returns the edge label as a slice, empty when unset
func (e *Edge) Labels() []string {
	if e.label == "" {
		return []string{}
	}
	return []string{e.label}
}

// HasAnyLabel reports whether the edge label is among labels
func (e *Edge) HasAnyLabel(labels ...string) bool {
	for _, label := range labels {
		if e.label != "" && label == e.label {
			return true
		}
	}
	return false
}

// String renders the edge the way traversal output does
func (e *Edge) String() string {
	return fmt.Sprintf("e[%d][%d-%d->%s]", e.id, e.from, e.to, e.label)
}

func sortedIDs(set map[ObjectID]struct{}) []ObjectID {
	ids := make([]ObjectID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ASTNodeType defines types for step tree nodes
type ASTNodeType int

const (
	NodeIdentifier ASTNodeType = iota
	NodeAssignment
	NodeFunction
	NodeLiteral
)

// String returns the node type name
func (t ASTNodeType) String() string {
	switch t {
	case NodeIdentifier:
		return "IDENTIFIER"
	case NodeAssignment:
		return "ASSIGN"
	case NodeFunction:
		return "FUNCTION"
	case NodeLiteral:
		return "LITERAL"
	default:
		return "UNKNOWN"
	}
}

// ASTNode is a node of the step tree. Functions keep the step name in Value
// and their arguments in Children; literals keep the typed value in Literal.
type ASTNode struct {
	Type     ASTNodeType
	Value    string
	Literal  interface{}
	Children []ASTNode
}

// String renders the node in query syntax
func (n ASTNode) String() string {
	switch n.Type {
	case NodeIdentifier:
		return n.Value
	case NodeAssignment:
		return "="
	case NodeLiteral:
		if s, ok := n.Literal.(string); ok {
			return fmt.Sprintf("'%s'", s)
		}
		return n.Value
	case NodeFunction:
		args := ""
		for i, child := range n.Children {
			if i > 0 {
				args += ", "
			}
			args += child.String()
		}
		return fmt.Sprintf("%s(%s)", n.Value, args)
	default:
		return "?"
	}
}
