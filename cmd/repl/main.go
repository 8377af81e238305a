package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gremlingraph/graphdb"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// replState holds the state of the REPL
type replState struct {
	db        *graphdb.GraphDB
	config    *graphdb.Config
	registry  *prometheus.Registry
	logger    *logrus.Logger
	out       io.Writer
	queryNum  int
	isRunning bool
}

// newReplState initializes the REPL state
func newReplState(cfg *graphdb.Config, out io.Writer) (*replState, error) {
	logger := logrus.StandardLogger()
	if err := cfg.ConfigureLogger(logger); err != nil {
		return nil, err
	}

	var registry *prometheus.Registry
	var reg prometheus.Registerer
	if cfg.Metrics {
		registry = prometheus.NewRegistry()
		reg = registry
	}
	db, err := graphdb.NewGraphDB(cfg, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize graph: %w", err)
	}
	return &replState{
		db:        db,
		config:    cfg,
		registry:  registry,
		logger:    logger,
		out:       out,
		isRunning: true,
	}, nil
}

// loadCSV populates the current graph from node and edge files
func (rs *replState) loadCSV(nodesPath, edgesPath string) error {
	nodes, err := os.Open(nodesPath)
	if err != nil {
		return fmt.Errorf("failed to open nodes file: %w", err)
	}
	defer nodes.Close()

	var edges io.Reader
	if edgesPath != "" {
		f, err := os.Open(edgesPath)
		if err != nil {
			return fmt.Errorf("failed to open edges file: %w", err)
		}
		defer f.Close()
		edges = f
	}

	stats, err := graphdb.LoadCSV(rs.db.Graph(), nodes, edges, graphdb.CSVOptions{SkipAfterHeader: true})
	if err != nil {
		return err
	}
	fmt.Fprintf(rs.out, "Loaded %d vertices and %d edges\n", stats.Vertices, stats.Edges)
	return nil
}

// loadSample replaces the current graph with the modern toy graph
func (rs *replState) loadSample() error {
	g := graphdb.NewGraph()
	if err := graphdb.LoadModernGraph(g); err != nil {
		return err
	}
	rs.db.UseGraph(g)
	fmt.Fprintln(rs.out, "Loaded modern graph")
	return nil
}

// clearGraph replaces the current graph with an empty one
func (rs *replState) clearGraph() {
	rs.db.UseGraph(graphdb.NewGraph())
	fmt.Fprintln(rs.out, "Graph cleared")
}

// showStats prints graph counts
func (rs *replState) showStats() {
	g := rs.db.Graph()
	fmt.Fprintf(rs.out, "Vertices: %d\n", g.VertexCount())
	fmt.Fprintf(rs.out, "Edges: %d\n", g.EdgeCount())
	fmt.Fprintf(rs.out, "Labels: %d\n", len(g.Labels()))
	fmt.Fprintf(rs.out, "Queries: %d\n", rs.queryNum)
}

// showLabels prints every vertex label with its vertex count
func (rs *replState) showLabels() {
	g := rs.db.Graph()
	labels := g.Labels()
	if len(labels) == 0 {
		fmt.Fprintln(rs.out, "No labels")
		return
	}
	for _, label := range labels {
		fmt.Fprintf(rs.out, "  %s: %d\n", label, len(g.VertexIDsWithLabel(label)))
	}
}

// showMetrics prints the engine counters
func (rs *replState) showMetrics() error {
	if rs.registry == nil {
		return fmt.Errorf("metrics are disabled; set metrics: true in the config")
	}
	families, err := rs.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(rs.out, "  %s{%s} %v\n", family.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(rs.out, "  %s count=%d sum=%.6f\n", family.GetName(), m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}
	return nil
}

// executeQuery executes a Gremlin query
func (rs *replState) executeQuery(query string) error {
	rs.queryNum++
	log := rs.logger.WithFields(logrus.Fields{
		"component": "Main",
		"query_num": rs.queryNum,
	})
	result, err := rs.db.Run(query)
	if err != nil {
		log.WithError(err).Debug("Query failed")
		return err
	}
	for _, diagnostic := range result.Diagnostics {
		fmt.Fprintf(rs.out, "Warning: %s\n", diagnostic)
	}
	for _, line := range result.Lines {
		fmt.Fprintf(rs.out, "==>%s\n", line)
	}
	return nil
}

// printHelp displays the help message
func (rs *replState) printHelp() {
	fmt.Fprintln(rs.out, "Gremlin console commands:")
	fmt.Fprintln(rs.out, "  .help                  Show this help message")
	fmt.Fprintln(rs.out, "  .exit                  Exit the console")
	fmt.Fprintln(rs.out, "  .load                  Replace the graph with the modern toy graph")
	fmt.Fprintln(rs.out, "  .csv <nodes> [edges]   Load vertices and edges from CSV files")
	fmt.Fprintln(rs.out, "  .clear                 Replace the graph with an empty one")
	fmt.Fprintln(rs.out, "  .stats                 Show vertex and edge counts")
	fmt.Fprintln(rs.out, "  .labels                List vertex labels")
	fmt.Fprintln(rs.out, "  .metrics               Show engine metrics")
	fmt.Fprintln(rs.out, "Queries:")
	fmt.Fprintln(rs.out, "  g.V().has('name','marko').out('knows').values('name')")
	fmt.Fprintln(rs.out, "  g.V(1).out('created').count()")
	fmt.Fprintln(rs.out, "  g.V(1).repeat(out()).times(2).values('name')")
	fmt.Fprintln(rs.out, "Type '.exit' or 'quit' to exit.")
}

// processCommand processes a console command or query
func (rs *replState) processCommand(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	lower := strings.ToLower(input)
	if lower == "quit" || lower == "exit" {
		rs.isRunning = false
		return nil
	}
	if strings.HasPrefix(input, ".") {
		fields := strings.Fields(input)
		switch strings.ToLower(fields[0]) {
		case ".help":
			rs.printHelp()
			return nil
		case ".exit", ".quit":
			rs.isRunning = false
			return nil
		case ".load":
			return rs.loadSample()
		case ".csv":
			if len(fields) < 2 {
				return fmt.Errorf("usage: .csv <nodes> [edges]")
			}
			edges := ""
			if len(fields) > 2 {
				edges = fields[2]
			}
			return rs.loadCSV(fields[1], edges)
		case ".clear":
			rs.clearGraph()
			return nil
		case ".stats":
			rs.showStats()
			return nil
		case ".labels":
			rs.showLabels()
			return nil
		case ".metrics":
			return rs.showMetrics()
		default:
			return fmt.Errorf("unknown command: %s; type '.help' for assistance", input)
		}
	}

	return rs.executeQuery(input)
}

// runREPL runs the REPL loop
func (rs *replState) runREPL(in io.Reader) {
	rs.logger.WithField("component", "Main").Info("Starting gremlin console")
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(rs.out, "Gremlin console. Type '.help' for commands or 'quit' to exit.")

	for rs.isRunning {
		fmt.Fprint(rs.out, rs.config.Prompt)
		if !scanner.Scan() {
			break
		}
		if err := rs.processCommand(scanner.Text()); err != nil {
			fmt.Fprintf(rs.out, "Error: %v\n", err)
		}
	}
	fmt.Fprintln(rs.out, "Goodbye!")
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		sample     bool
		nodesPath  string
		edgesPath  string
	)

	rootCmd := &cobra.Command{
		Use:           "repl",
		Short:         "Interactive Gremlin console over an in-memory property graph",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := graphdb.DefaultConfig()
			if configPath != "" {
				loaded, err := graphdb.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if err := cfg.ApplyEnv(); err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if sample {
				cfg.LoadSample = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			rs, err := newReplState(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if nodesPath != "" {
				if err := rs.loadCSV(nodesPath, edgesPath); err != nil {
					return err
				}
			}
			rs.runREPL(cmd.InOrStdin())
			return nil
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&sample, "sample", false, "Load the modern toy graph on startup")
	rootCmd.Flags().StringVar(&nodesPath, "nodes", "", "CSV file of vertices to load on startup")
	rootCmd.Flags().StringVar(&edgesPath, "edges", "", "CSV file of edges to load on startup")
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
