package graphdb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// CSVOptions controls LoadCSV
type CSVOptions struct {
	// SkipAfterHeader drops the line following the node header (the
	// air-routes files carry a version row there)
	SkipAfterHeader bool
}

// LoadStats reports what LoadCSV inserted
type LoadStats struct {
	Vertices int
	Edges    int
}

// LoadCSV populates g from a node file (~id,~label,prop...) and an edge
// file (~id,~from,~to,~label,prop...). Integer file ids are kept as store ids
// when they are still free; other ids are allocated and mapped.
func LoadCSV(g *Graph, nodes, edges io.Reader, opts CSVOptions) (*LoadStats, error) {
	log := logrus.WithField("component", "Loader")
	stats := &LoadStats{}
	idMap := make(map[string]ObjectID)

	nodeReader := newCSVReader(nodes)
	header, err := nodeReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read node header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("node header needs ~id and ~label columns, got %v", header)
	}
	propNames := header[2:]
	if opts.SkipAfterHeader {
		if _, err := nodeReader.Read(); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to skip node line after header: %w", err)
		}
	}

	for {
		record, err := nodeReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read node record: %w", err)
		}
		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		props := recordProperties(propNames, record[2:])
		var labels []string
		if record[1] != "" {
			labels = []string{record[1]}
		}
		id, err := insertWithFileID(record[0],
			func(id ObjectID) (ObjectID, error) { return g.AddVertexWithID(id, labels, props) },
			func() (ObjectID, error) { return g.AddVertex(labels, props) })
		if err != nil {
			return nil, fmt.Errorf("failed to add vertex %s: %w", record[0], err)
		}
		idMap[record[0]] = id
		stats.Vertices++
	}

	if edges == nil {
		log.WithField("vertices", stats.Vertices).Info("Loaded nodes")
		return stats, nil
	}

	edgeReader := newCSVReader(edges)
	header, err = edgeReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read edge header: %w", err)
	}
	if len(header) < 4 {
		return nil, fmt.Errorf("edge header needs ~id, ~from, ~to and ~label columns, got %v", header)
	}
	edgePropNames := header[4:]

	for {
		record, err := edgeReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read edge record: %w", err)
		}
		if len(record) < 4 {
			continue
		}
		from, ok := idMap[record[1]]
		if !ok {
			return nil, fmt.Errorf("edge %s references unknown vertex %s: %w", record[0], record[1], ErrObjectNotFound)
		}
		to, ok := idMap[record[2]]
		if !ok {
			return nil, fmt.Errorf("edge %s references unknown vertex %s: %w", record[0], record[2], ErrObjectNotFound)
		}
		props := recordProperties(edgePropNames, record[4:])
		label := record[3]
		if _, err := insertWithFileID(record[0],
			func(id ObjectID) (ObjectID, error) { return g.AddEdgeWithID(id, from, to, label, props) },
			func() (ObjectID, error) { return g.AddEdge(from, to, label, props) }); err != nil {
			return nil, fmt.Errorf("failed to add edge %s: %w", record[0], err)
		}
		stats.Edges++
	}

	log.WithFields(logrus.Fields{
		"vertices": stats.Vertices,
		"edges":    stats.Edges,
	}).Info("Loaded graph from CSV")
	return stats, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

// insertWithFileID keeps an integer file id when it is free, otherwise allocates one
func insertWithFileID(fileID string, explicit func(ObjectID) (ObjectID, error), auto func() (ObjectID, error)) (ObjectID, error) {
	if n, err := strconv.ParseInt(strings.TrimSpace(fileID), 10, 64); err == nil && n >= 0 {
		id, err := explicit(ObjectID(n))
		if err == nil || !errors.Is(err, ErrDuplicateID) {
			return id, err
		}
	}
	return auto()
}

// recordProperties types the non-empty values of a record
func recordProperties(names, values []string) map[string]interface{} {
	props := make(map[string]interface{})
	for i, name := range names {
		if i >= len(values) || values[i] == "" {
			continue
		}
		props[name] = parseCSVValue(values[i])
	}
	return props
}

func parseCSVValue(s string) interface{} {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if !strings.ContainsAny(s, "0123456789") {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
