package graphdb

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Graph is the in-memory property graph store. It is not safe for concurrent
// use; callers serialize access to a Graph.
type Graph struct {
	vertices  map[ObjectID]*Vertex
	edges     map[ObjectID]*Edge
	allocated map[ObjectID]struct{} // every id ever handed out
	nextID    ObjectID
	index     *LabelIndex
}

// NewGraph initializes an empty Graph
func NewGraph() *Graph {
	log := logrus.WithField("component", "Graph")
	log.Info("Initializing Graph")
	return &Graph{
		vertices:  make(map[ObjectID]*Vertex),
		edges:     make(map[ObjectID]*Edge),
		allocated: make(map[ObjectID]struct{}),
		nextID:    1,
		index:     NewLabelIndex(),
	}
}

// AddVertex inserts a vertex with an automatically allocated id
func (g *Graph) AddVertex(labels []string, props map[string]interface{}) (ObjectID, error) {
	return g.insertVertex(NewVertex(labels, props), g.allocateID())
}

// AddVertexWithID inserts a vertex with an explicit id
func (g *Graph) AddVertexWithID(id ObjectID, labels []string, props map[string]interface{}) (ObjectID, error) {
	if err := g.claimID(id); err != nil {
		return 0, err
	}
	return g.insertVertex(NewVertex(labels, props), id)
}

func (g *Graph) insertVertex(vertex *Vertex, id ObjectID) (ObjectID, error) {
	if err := vertex.setID(id); err != nil {
		return 0, err
	}
	g.vertices[id] = vertex
	for label := range vertex.labels {
		g.index.Insert(label, id)
	}

	logrus.WithFields(logrus.Fields{
		"component": "Graph",
		"vertex_id": id,
		"labels":    vertex.Labels(),
	}).Debug("Vertex added")
	return id, nil
}

// AddEdge inserts an edge with an automatically allocated id. Both endpoints must exist.
func (g *Graph) AddEdge(from, to ObjectID, label string, props map[string]interface{}) (ObjectID, error) {
	if err := g.checkEndpoints(from, to); err != nil {
		return 0, err
	}
	return g.insertEdge(NewEdge(from, to, label, props), g.allocateID())
}

// AddEdgeWithID inserts an edge with an explicit id. Both endpoints must exist.
func (g *Graph) AddEdgeWithID(id, from, to ObjectID, label string, props map[string]interface{}) (ObjectID, error) {
	if err := g.checkEndpoints(from, to); err != nil {
		return 0, err
	}
	if err := g.claimID(id); err != nil {
		return 0, err
	}
	return g.insertEdge(NewEdge(from, to, label, props), id)
}

func (g *Graph) checkEndpoints(from, to ObjectID) error {
	if _, ok := g.vertices[from]; !ok {
		return fmt.Errorf("edge source vertex %d: %w", from, ErrObjectNotFound)
	}
	if _, ok := g.vertices[to]; !ok {
		return fmt.Errorf("edge target vertex %d: %w", to, ErrObjectNotFound)
	}
	return nil
}

func (g *Graph) insertEdge(edge *Edge, id ObjectID) (ObjectID, error) {
	if err := edge.setID(id); err != nil {
		return 0, err
	}
	g.vertices[edge.from].outgoing[id] = struct{}{}
	g.vertices[edge.to].incoming[id] = struct{}{}
	g.edges[id] = edge

	logrus.WithFields(logrus.Fields{
		"component": "Graph",
		"edge_id":   id,
		"label":     edge.label,
		"from":      edge.from,
		"to":        edge.to,
	}).Debug("Edge added")
	return id, nil
}

// GetObject returns the vertex or edge with the given id
func (g *Graph) GetObject(id ObjectID) (GraphObject, error) {
	if v, ok := g.vertices[id]; ok {
		return v, nil
	}
	if e, ok := g.edges[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("object with id %d not present: %w", id, ErrObjectNotFound)
}

// GetVertex returns the vertex with the given id
func (g *Graph) GetVertex(id ObjectID) (*Vertex, error) {
	v, ok := g.vertices[id]
	if !ok {
		return nil, fmt.Errorf("vertex with id %d not present: %w", id, ErrObjectNotFound)
	}
	return v, nil
}

// GetEdge returns the edge with the given id
func (g *Graph) GetEdge(id ObjectID) (*Edge, error) {
	e, ok := g.edges[id]
	if !ok {
		return nil, fmt.Errorf("edge with id %d not present: %w", id, ErrObjectNotFound)
	}
	return e, nil
}

// AddVertexLabel adds a label to an existing vertex and indexes it
func (g *Graph) AddVertexLabel(id ObjectID, label string) error {
	v, err := g.GetVertex(id)
	if err != nil {
		return err
	}
	v.labels[label] = struct{}{}
	g.index.Insert(label, id)
	return nil
}

// DeleteVertex removes a vertex that has no incident edges
func (g *Graph) DeleteVertex(id ObjectID) error {
	log := logrus.WithFields(logrus.Fields{
		"component": "Graph",
		"vertex_id": id,
	})
	v, ok := g.vertices[id]
	if !ok {
		return fmt.Errorf("object with id %d not present: %w", id, ErrObjectNotFound)
	}
	if v.InDegree() > 0 || v.OutDegree() > 0 {
		log.WithFields(logrus.Fields{
			"in_degree":  v.InDegree(),
			"out_degree": v.OutDegree(),
		}).Warn("Refusing to delete vertex with incident edges")
		return fmt.Errorf("object with id %d cannot be deleted while in use (in=%d out=%d): %w",
			id, v.InDegree(), v.OutDegree(), ErrVertexInUse)
	}

	g.index.Remove(id, v.Labels())
	delete(g.vertices, id)
	log.Debug("Vertex deleted")
	return nil
}

// DetachAndDeleteVertex removes every incident edge and then the vertex
func (g *Graph) DetachAndDeleteVertex(id ObjectID) error {
	v, ok := g.vertices[id]
	if !ok {
		return fmt.Errorf("object with id %d not present: %w", id, ErrObjectNotFound)
	}

	incident := make(map[ObjectID]struct{}, v.InDegree()+v.OutDegree())
	for edgeID := range v.incoming {
		incident[edgeID] = struct{}{}
	}
	for edgeID := range v.outgoing {
		incident[edgeID] = struct{}{}
	}
	for _, edgeID := range sortedIDs(incident) {
		if err := g.DeleteEdge(edgeID); err != nil {
			return err
		}
	}
	return g.DeleteVertex(id)
}

// DeleteEdge unlinks an edge from its endpoints and removes it
func (g *Graph) DeleteEdge(id ObjectID) error {
	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("object with id %d not present: %w", id, ErrObjectNotFound)
	}
	delete(g.vertices[e.from].outgoing, id)
	delete(g.vertices[e.to].incoming, id)
	delete(g.edges, id)

	logrus.WithFields(logrus.Fields{
		"component": "Graph",
		"edge_id":   id,
	}).Debug("Edge deleted")
	return nil
}

// VertexIDs returns the live vertex ids in ascending order
func (g *Graph) VertexIDs() []ObjectID {
	ids := make(map[ObjectID]struct{}, len(g.vertices))
	for id := range g.vertices {
		ids[id] = struct{}{}
	}
	return sortedIDs(ids)
}

// EdgeIDs returns the live edge ids in ascending order
func (g *Graph) EdgeIDs() []ObjectID {
	ids := make(map[ObjectID]struct{}, len(g.edges))
	for id := range g.edges {
		ids[id] = struct{}{}
	}
	return sortedIDs(ids)
}

// VertexIDsWithLabel returns the ids of vertices carrying label
func (g *Graph) VertexIDsWithLabel(label string) []ObjectID {
	return g.index.Lookup(label)
}

// Labels returns every vertex label present in the graph
func (g *Graph) Labels() []string {
	return g.index.Labels()
}

// VertexCount returns the number of vertices
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int { return len(g.edges) }

// String summarizes the graph
func (g *Graph) String() string {
	return fmt.Sprintf("graph vertices: %d edges: %d", len(g.vertices), len(g.edges))
}

// claimID reserves an explicit id
func (g *Graph) claimID(id ObjectID) error {
	if id < 0 {
		return fmt.Errorf("id %d is reserved: %w", id, ErrInvalidID)
	}
	if _, used := g.allocated[id]; used {
		return fmt.Errorf("id %d already allocated: %w", id, ErrDuplicateID)
	}
	g.allocated[id] = struct{}{}
	return nil
}

// allocateID hands out the next unused id, skipping ids claimed explicitly
func (g *Graph) allocateID() ObjectID {
	for {
		id := g.nextID
		g.nextID++
		if _, used := g.allocated[id]; !used {
			g.allocated[id] = struct{}{}
			return id
		}
	}
}
