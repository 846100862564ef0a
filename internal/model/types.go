package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// MembershipDef is the serialized form of a membership function: a
// shape kind plus its parameter list.
type MembershipDef struct {
	Kind   string    `json:"kind"`
	Params []float64 `json:"params"`
}

type TermDef struct {
	Label string        `json:"label"`
	MF    MembershipDef `json:"mf"`
}

type VariableDef struct {
	Name  string     `json:"name"`
	Range [2]float64 `json:"range"`
	Terms []TermDef  `json:"terms"`
}

type AntecedentDef struct {
	Variable string `json:"variable"`
	Label    string `json:"label"`
}

type RuleDef struct {
	Name string          `json:"name"`
	Op   string          `json:"op"`
	When []AntecedentDef `json:"when"`
	Then AntecedentDef   `json:"then"`
}

// SystemDef describes one fuzzy inference system. Rule order is
// significant: first-wins tie-breaking follows the slice order.
type SystemDef struct {
	Name        string        `json:"name"`
	And         string        `json:"and"`
	Or          string        `json:"or"`
	Implication string        `json:"implication"`
	Aggregation string        `json:"aggregation"`
	Inputs      []VariableDef `json:"inputs"`
	Outputs     []VariableDef `json:"outputs"`
	Rules       []RuleDef     `json:"rules"`
}

// BoundDef is one row of the out-of-range extrapolation table: the
// valid interval of a variable, a probe point beyond each edge, and the
// precomputed pipeline response at each probe.
type BoundDef struct {
	Variable      string  `json:"variable"`
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`
	ProbeBelow    float64 `json:"probe_below"`
	ProbeAbove    float64 `json:"probe_above"`
	ResponseBelow float64 `json:"response_below"`
	ResponseAbove float64 `json:"response_above"`
}

// PipelineDef is the persisted form of a hierarchical pipeline: the sub
// stages in evaluation order, the main stage, and the extrapolation
// table.
type PipelineDef struct {
	VersionedRecord
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Subs   []SystemDef `json:"subs"`
	Main   SystemDef   `json:"main"`
	Bounds []BoundDef  `json:"bounds"`
}

// EvaluationRecord captures one pipeline evaluation for later review.
type EvaluationRecord struct {
	VersionedRecord
	ID           string             `json:"id"`
	PipelineID   string             `json:"pipeline_id"`
	Inputs       map[string]float64 `json:"inputs"`
	Value        float64            `json:"value"`
	Rule         string             `json:"rule"`
	Variable     string             `json:"variable"`
	Label        string             `json:"label"`
	CreatedAtUTC string             `json:"created_at_utc"`
}
