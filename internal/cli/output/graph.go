package output

// GraphNode is one quantity in the JSON form of the dependency graph.
type GraphNode struct {
	Kind      string   `json:"kind"`
	Rules     []string `json:"rules,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
	UsedBy    []string `json:"used_by,omitempty"`
}

// GraphLevel groups the quantities of one derivation depth.
type GraphLevel struct {
	Level int         `json:"level"`
	Kinds []GraphNode `json:"kinds"`
}

// GraphOutput is the JSON form of the dependency graph.
type GraphOutput struct {
	Levels     []GraphLevel `json:"levels"`
	TotalKinds int          `json:"total_kinds"`
	TotalEdges int          `json:"total_edges"`

	// Inputs have no rule deriving them; Outputs feed no other rule.
	Inputs  []string `json:"inputs,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
}
