package report

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// Setting names used in spits.
const (
	SettingCPU        = "cpu"
	SettingMemory     = "memory"
	SettingDisk       = "disk"
	SettingMonitoring = "monitoring"
	SettingGlue       = "glueing"
)

// Spit records one change applied to a node.
type Spit struct {
	Setting string
	Value   string
}

func (s Spit) String() string {
	return s.Setting + ": " + s.Value
}

// Report maps node names to the spits collected for them.
// It is safe for concurrent use.
type Report struct {
	mu      sync.Mutex
	order   []string
	entries map[string][]Spit
}

// New returns an empty report.
func New() *Report {
	return &Report{entries: make(map[string][]Spit)}
}

// Append adds spits to the node's trace. The node is recorded even when no
// spits are given, so a polished node with nothing to change still shows up.
func (r *Report) Append(node string, spits ...Spit) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string][]Spit)
	}
	if _, ok := r.entries[node]; !ok {
		r.order = append(r.order, node)
		r.entries[node] = []Spit{}
	}
	r.entries[node] = append(r.entries[node], spits...)
}

// Nodes returns node names in insertion order.
func (r *Report) Nodes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Spits returns a copy of the node's trace.
func (r *Report) Spits(node string) []Spit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Spit(nil), r.entries[node]...)
}

// Len returns the number of nodes in the report.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// MarshalYAML renders the report as an ordered mapping of node to a list of
// single-key mappings.
func (r *Report) MarshalYAML() (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, node := range r.order {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, s := range r.entries[node] {
			seq.Content = append(seq.Content, &yaml.Node{
				Kind: yaml.MappingNode,
				Content: []*yaml.Node{
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: s.Setting},
					valueNode(s.Value),
				},
			})
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: node},
			seq,
		)
	}
	return root, nil
}

// valueNode keeps integers unquoted and forces everything else to a string,
// so a network called "yes" or "null" reads back unchanged.
func valueNode(v string) *yaml.Node {
	if _, err := strconv.Atoi(v); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// Marshal serializes the report. The same report always yields the same bytes.
func (r *Report) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}
