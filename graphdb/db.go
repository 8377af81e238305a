package graphdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// GraphDB is the main entry point: a graph plus the engine that queries it
type GraphDB struct {
	graph    *Graph
	executor *Executor
	config   *Config
	metrics  *Metrics
	log      *logrus.Entry
}

// NewGraphDB initializes a GraphDB over an empty graph. A nil config uses
// DefaultConfig; a nil registerer disables metrics.
func NewGraphDB(cfg *Config, reg prometheus.Registerer) (*GraphDB, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	db := &GraphDB{
		config:  cfg,
		metrics: metrics,
		log:     logrus.WithField("component", "GraphDB"),
	}
	db.UseGraph(NewGraph())

	if cfg.LoadSample {
		if err := LoadModernGraph(db.graph); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Graph returns the graph queries run against
func (db *GraphDB) Graph() *Graph { return db.graph }

// UseGraph points the engine at another graph
func (db *GraphDB) UseGraph(g *Graph) {
	db.graph = g
	db.executor = NewExecutor(g, DefaultRegistry())
	db.executor.SetMetrics(db.metrics)
	db.executor.SetMaxLoopIterations(db.config.MaxLoopIterations)
	db.log.WithField("graph", g.String()).Info("Using graph")
}

// Run parses and executes a query
func (db *GraphDB) Run(query string) (*Result, error) {
	queryID := uuid.New().String()
	log := db.log.WithFields(logrus.Fields{
		"query_id": queryID,
		"query":    query,
	})
	start := time.Now()

	ast, err := ParseQuery(query)
	if err != nil {
		db.metrics.recordQuery("parse_error", time.Since(start))
		log.WithError(err).Error("Failed to parse query")
		return nil, err
	}

	result, err := db.executor.Execute(ast, log)
	if err != nil {
		db.metrics.recordQuery("error", time.Since(start))
		return nil, err
	}
	result.QueryID = queryID

	elapsed := time.Since(start)
	db.metrics.recordQuery("ok", elapsed)
	log.WithFields(logrus.Fields{
		"result_count": len(result.Lines),
		"duration_ms":  elapsed.Milliseconds(),
	}).Info("Query executed")
	return result, nil
}

// Execute runs a query and returns its rendered result lines
func (db *GraphDB) Execute(query string) ([]string, error) {
	result, err := db.Run(query)
	if err != nil {
		return nil, err
	}
	return result.Lines, nil
}

// Execute runs a query against g with the default step catalog
func Execute(query string, g *Graph) ([]string, error) {
	ast, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	result, err := NewExecutor(g, nil).Execute(ast, nil)
	if err != nil {
		return nil, err
	}
	return result.Lines, nil
}
