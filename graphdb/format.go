package graphdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Selection is the value produced by select() over several labels
type Selection []SelectedBinding

// SelectedBinding is one label of a Selection. Value holds the bound value
// when Ref is a data reference.
type SelectedBinding struct {
	Label string
	Ref   PathRef
	Value interface{}
}

// RenderTraverser formats a traverser for display: v[id], e[id][from-to->label] or a value
func RenderTraverser(g *Graph, t Traverser) string {
	if t.IsData() {
		return renderValue(g, t.Value())
	}
	return renderRef(g, PathRef{ID: t.ID(), Kind: t.Kind()})
}

func renderRef(g *Graph, ref PathRef) string {
	switch ref.Kind {
	case KindVertex:
		return fmt.Sprintf("v[%d]", ref.ID)
	case KindEdge:
		if e, err := g.GetEdge(ref.ID); err == nil {
			return e.String()
		}
		return fmt.Sprintf("e[%d]", ref.ID)
	default:
		return strconv.FormatInt(int64(ref.ID), 10)
	}
}

func renderValue(g *Graph, v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = renderValue(g, item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []PathRef:
		parts := make([]string, len(val))
		for i, ref := range val {
			parts[i] = renderRef(g, ref)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Selection:
		parts := make([]string, len(val))
		for i, b := range val {
			if b.Ref.Kind == KindData {
				parts[i] = b.Label + ":" + renderValue(g, b.Value)
				continue
			}
			parts[i] = b.Label + ":" + renderRef(g, b.Ref)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatFloat always keeps a fractional part so 1.0 does not read as an integer
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
