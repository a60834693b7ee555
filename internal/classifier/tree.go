package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

// Feature names used by the material risk model. Categorical inputs are one-hot
// encoded as "<column>=<value>".
const (
	FeatureStock     = "stok_tersedia"
	FeatureLeadTime  = "lead_time"
	FeatureSection   = "seksi_tujuan"
	FeatureComponent = "nama_komponen"
)

// Node is a decision tree node. Leaves carry a label; split nodes send
// value <= Threshold to Left and everything else to Right.
type Node struct {
	Feature   string  `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Label     string  `json:"label,omitempty"`
}

func (n Node) isLeaf() bool {
	return n.Feature == ""
}

// Tree is a decision tree exported from the training notebook. Node 0 is the root.
type Tree struct {
	Name   string   `json:"name"`
	Labels []string `json:"labels,omitempty"`
	Nodes  []Node   `json:"nodes"`
}

// LoadTree reads a tree artifact from disk.
func LoadTree(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact %s: %w", path, err)
	}
	defer f.Close()

	tree, err := ReadTree(f)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return tree, nil
}

// ReadTree decodes and validates a tree artifact.
func ReadTree(r io.Reader) (*Tree, error) {
	var tree Tree
	if err := json.NewDecoder(r).Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	if err := tree.validate(); err != nil {
		return nil, err
	}
	return &tree, nil
}

func (t *Tree) validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree %q has no nodes", t.Name)
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			if n.Label == "" {
				return fmt.Errorf("tree %q: leaf %d has no label", t.Name, i)
			}
			continue
		}
		for _, child := range []int{n.Left, n.Right} {
			// children always come after their parent, which also rules out cycles
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("tree %q: node %d has invalid child %d", t.Name, i, child)
			}
		}
	}
	return nil
}

// PredictFeatures walks the tree. Absent features read as zero, matching the
// one-hot encoding of unseen categories.
func (t *Tree) PredictFeatures(features map[string]float64) string {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.isLeaf() {
			return n.Label
		}
		if features[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}

// Predict implements risk.Classifier.
func (t *Tree) Predict(ctx context.Context, obs domain.MaterialObservation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return t.PredictFeatures(ObservationFeatures(obs)), nil
}

// ObservationFeatures builds the model input for an observation. The model
// sees section, component, stock and lead time; consumption is not a feature.
func ObservationFeatures(obs domain.MaterialObservation) map[string]float64 {
	return map[string]float64{
		FeatureStock:                           obs.AvailableStock,
		FeatureLeadTime:                        obs.LeadTime,
		FeatureSection + "=" + obs.Section:     1,
		FeatureComponent + "=" + obs.Component: 1,
	}
}
