// Package dataset reads and writes the YAML files the CLI takes as input:
//
//	title: Speed vs load
//	description: |
//	  Bench run on the lab machine.
//	groups:
//	  - name: run1
//	    sets:
//	      - name: median
//	        kind: xydy
//	        points: [[1, 2.5, 0.1], [2, 3.1, 0.2]]
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"agrsync/internal/agr"
	"agrsync/internal/model"
)

// Dataset is one input file: the plot title, an optional description and
// the group tree.
type Dataset struct {
	Title       string        `yaml:"title,omitempty"`
	Description string        `yaml:"description,omitempty"`
	Groups      []model.Group `yaml:"groups"`
}

// Load reads and parses the dataset at path.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes a dataset. A set without a kind is xy; other kinds are
// normalized and checked by model.Build. Unknown keys are errors so that a
// misspelt "points" does not silently produce empty sets. An empty document
// is an empty dataset.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	for gi := range ds.Groups {
		for si := range ds.Groups[gi].Sets {
			s := &ds.Groups[gi].Sets[si]
			if s.Kind == "" {
				s.Kind = model.KindXY
			}
		}
	}
	return &ds, nil
}

// FromBlocks turns data blocks read back from a project file into a
// dataset, one group per graph in file order. Set names are the XMGrace
// addresses (G0.S1) since project files carry no set names outside legends.
func FromBlocks(blocks []agr.Block) *Dataset {
	ds := &Dataset{}
	byGraph := map[int]int{}
	for _, b := range blocks {
		gi, ok := byGraph[b.Graph]
		if !ok {
			gi = len(ds.Groups)
			byGraph[b.Graph] = gi
			ds.Groups = append(ds.Groups, model.Group{Name: fmt.Sprintf("G%d", b.Graph)})
		}
		kind := model.KindXY
		if b.Kind != "" {
			kind, _ = model.ParseKind(b.Kind)
		}
		points := make([]model.Point, len(b.Rows))
		for i, r := range b.Rows {
			points[i] = model.Point(r)
		}
		ds.Groups[gi].Sets = append(ds.Groups[gi].Sets, model.Set{
			Name:   fmt.Sprintf("G%d.S%d", b.Graph, b.Set),
			Kind:   kind,
			Points: points,
		})
	}
	return ds
}

// Marshal encodes ds as YAML with point rows in flow style.
func Marshal(ds *Dataset) ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(ds); err != nil {
		return nil, fmt.Errorf("dataset: encode: %w", err)
	}
	flowRows(&node)
	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("dataset: marshal: %w", err)
	}
	return out, nil
}

// flowRows switches every sequence of scalars to flow style so each point
// prints on one line.
func flowRows(n *yaml.Node) {
	if n.Kind == yaml.SequenceNode && len(n.Content) > 0 && n.Content[0].Kind == yaml.ScalarNode {
		n.Style = yaml.FlowStyle
		return
	}
	for _, c := range n.Content {
		flowRows(c)
	}
}
