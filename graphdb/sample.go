package graphdb

// LoadModernGraph populates g with the TinkerPop "modern" toy graph:
// vertices 1-6 (person, software) and edges 7-12 (knows, created).
func LoadModernGraph(g *Graph) error {
	vertices := []struct {
		id    ObjectID
		label string
		props map[string]interface{}
	}{
		{1, "person", map[string]interface{}{"name": "marko", "age": 29}},
		{2, "person", map[string]interface{}{"name": "vadas", "age": 27}},
		{3, "software", map[string]interface{}{"name": "lop", "lang": "java"}},
		{4, "person", map[string]interface{}{"name": "josh", "age": 32}},
		{5, "software", map[string]interface{}{"name": "ripple", "lang": "java"}},
		{6, "person", map[string]interface{}{"name": "peter", "age": 35}},
	}
	for _, v := range vertices {
		if _, err := g.AddVertexWithID(v.id, []string{v.label}, v.props); err != nil {
			return err
		}
	}

	edges := []struct {
		id       ObjectID
		from, to ObjectID
		label    string
		weight   float64
	}{
		{7, 1, 2, "knows", 0.5},
		{8, 1, 4, "knows", 1.0},
		{9, 1, 3, "created", 0.4},
		{10, 4, 5, "created", 1.0},
		{11, 4, 3, "created", 0.4},
		{12, 6, 3, "created", 0.2},
	}
	for _, e := range edges {
		if _, err := g.AddEdgeWithID(e.id, e.from, e.to, e.label, map[string]interface{}{"weight": e.weight}); err != nil {
			return err
		}
	}
	return nil
}
