package config

// DefaultReapFile is where the report lands when the plan does not set reap.
const DefaultReapFile = "spit.yaml"

// Plan is the parsed fittings plan.
type Plan struct {
	// Reap is the report destination: a file path or an s3://bucket/key URL.
	Reap       string     `yaml:"reap,omitempty"`
	Facilities []Facility `yaml:"facilities"`
	Terraform  *Terraform `yaml:"terraform,omitempty"`
}

// Facility groups the nodes living behind one control-plane endpoint.
type Facility struct {
	Name     string     `yaml:"name"`
	Location string     `yaml:"location,omitempty"`
	Nodes    []NodePlan `yaml:"nodes"`
}

// NodePlan names one live node and its declared settings.
type NodePlan struct {
	Name         string `yaml:"name"`
	NodeSettings `yaml:",inline"`
}

// NodeSettings is the raw, unvalidated form of a node's declared attributes.
// Scalars are kept as strings so a malformed value reaches ValidateSettings
// instead of failing the whole plan.
type NodeSettings struct {
	CPU        string   `yaml:"cpu,omitempty"`
	Memory     string   `yaml:"memory,omitempty"`
	Disks      []string `yaml:"disks,omitempty"`
	Monitoring string   `yaml:"monitoring,omitempty"`
	Glue       string   `yaml:"glue,omitempty"`
}

// Terraform holds the optional infrastructure-as-code step of the plan.
type Terraform struct {
	// Path is the directory holding the terraform configuration. Defaults to the plan's directory.
	Path       string            `yaml:"tf_path,omitempty"`
	Parameters map[string]string `yaml:"parameters,omitempty"`
}

// ReapTarget returns the report destination, falling back to DefaultReapFile.
func (p *Plan) ReapTarget() string {
	if p == nil || p.Reap == "" {
		return DefaultReapFile
	}
	return p.Reap
}

// SettingsByNode flattens every facility into a node name to settings map.
func (f *Facility) SettingsByNode() map[string]NodeSettings {
	out := make(map[string]NodeSettings, len(f.Nodes))
	for _, n := range f.Nodes {
		out[n.Name] = n.NodeSettings
	}
	return out
}

// NodeNames returns the facility's node names in declaration order.
func (f *Facility) NodeNames() []string {
	names := make([]string, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		names = append(names, n.Name)
	}
	return names
}
