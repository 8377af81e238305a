package graphdb

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// LabelIndex maps vertex labels to the ids of the vertices carrying them
type LabelIndex struct {
	labels map[string]map[ObjectID]struct{}
}

// NewLabelIndex initializes an empty LabelIndex
func NewLabelIndex() *LabelIndex {
	log := logrus.WithField("component", "LabelIndex")
	log.Debug("Initializing LabelIndex")
	return &LabelIndex{
		labels: make(map[string]map[ObjectID]struct{}),
	}
}

// Insert records that vertex id carries label
func (li *LabelIndex) Insert(label string, id ObjectID) {
	ids, ok := li.labels[label]
	if !ok {
		ids = make(map[ObjectID]struct{})
		li.labels[label] = ids
	}
	ids[id] = struct{}{}
	logrus.WithFields(logrus.Fields{
		"label":     label,
		"vertex_id": id,
	}).Debug("Label indexed")
}

// Remove drops id from every label it is indexed under. Empty labels are removed.
func (li *LabelIndex) Remove(id ObjectID, labels []string) {
	for _, label := range labels {
		ids, ok := li.labels[label]
		if !ok {
			continue
		}
		delete(ids, id)
		if len(ids) == 0 {
			delete(li.labels, label)
		}
	}
}

// Lookup returns the ids indexed under label in ascending order
func (li *LabelIndex) Lookup(label string) []ObjectID {
	ids, ok := li.labels[label]
	if !ok {
		return []ObjectID{}
	}
	return sortedIDs(ids)
}

// Labels returns every indexed label in sorted order
func (li *LabelIndex) Labels() []string {
	labels := make([]string, 0, len(li.labels))
	for label := range li.labels {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
