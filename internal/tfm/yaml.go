package tfm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/tfmguard/internal/solverapi"
)

// yamlDoc is the on-disk shape cmd/tfmguard loads. Constraints are
// restricted to the small expression vocabulary a YAML document can
// describe plainly; richer constraint trees are expected to arrive from
// an external parser building solverapi.Expr directly — this is a
// convenience loader for the demo CLI, not a feature-model source
// parser.
type yamlDoc struct {
	Features          []string             `yaml:"features"`
	FeaturesAsBoolean bool                 `yaml:"features_as_boolean"`
	TimeContext       string               `yaml:"time_context"`
	Attributes        map[string]yamlBound `yaml:"attributes"`
	Contexts          map[string]yamlBound `yaml:"contexts"`
	OptionalFeatures  map[string][]yamlRange `yaml:"optional_features"`
	Constraints       []yamlConstraint     `yaml:"constraints"`
}

type yamlBound struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type yamlRange struct {
	Lo int `yaml:"lo"`
	Hi int `yaml:"hi"`
}

// yamlConstraint is one atomic comparison `var op value`, conjoined with
// every other listed constraint. It covers the common case; anything
// needing disjunction or nested structure should be built as
// solverapi.Expr directly and appended to Document.Constraints.
type yamlConstraint struct {
	Var   string `yaml:"var"`
	Op    string `yaml:"op"`
	Value int    `yaml:"value"`
	Not   bool   `yaml:"not"`
}

func (c yamlConstraint) toExpr() (solverapi.Expr, error) {
	var op solverapi.CmpOp
	switch c.Op {
	case "eq", "==":
		op = solverapi.Eq
	case "ne", "!=":
		op = solverapi.Ne
	case "lt", "<":
		op = solverapi.Lt
	case "le", "<=":
		op = solverapi.Le
	case "gt", ">":
		op = solverapi.Gt
	case "ge", ">=":
		op = solverapi.Ge
	default:
		return nil, fmt.Errorf("tfm: unknown constraint operator %q", c.Op)
	}
	cmp := solverapi.Cmp{Op: op, L: solverapi.IntVar(c.Var), R: solverapi.IntLit{Value: c.Value}}
	if c.Not {
		return solverapi.Not{X: cmp}, nil
	}
	return cmp, nil
}

// Document is the parsed, ready-to-assemble form of a YAML TFM
// description.
type Document struct {
	Features          []string
	FeaturesAsBoolean bool
	TimeContext       string
	Attributes        map[string]Bound
	Contexts          map[string]Bound
	OptionalFeatures  map[string][]TimeRange
	Constraints       []solverapi.Expr
}

// LoadYAML reads a Document from a YAML file at path.
func LoadYAML(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("tfm: read %s: %w", path, err)
	}

	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("tfm: parse %s: %w", path, err)
	}

	out := Document{
		Features:          doc.Features,
		FeaturesAsBoolean: doc.FeaturesAsBoolean,
		TimeContext:       doc.TimeContext,
		Attributes:        make(map[string]Bound, len(doc.Attributes)),
		Contexts:          make(map[string]Bound, len(doc.Contexts)),
		OptionalFeatures:  make(map[string][]TimeRange, len(doc.OptionalFeatures)),
	}
	for name, b := range doc.Attributes {
		out.Attributes[name] = Bound{Min: b.Min, Max: b.Max}
	}
	for name, b := range doc.Contexts {
		out.Contexts[name] = Bound{Min: b.Min, Max: b.Max}
	}
	for feature, ranges := range doc.OptionalFeatures {
		converted := make([]TimeRange, len(ranges))
		for i, r := range ranges {
			converted[i] = TimeRange{Lo: r.Lo, Hi: r.Hi}
		}
		out.OptionalFeatures[feature] = converted
	}
	for _, c := range doc.Constraints {
		expr, err := c.toExpr()
		if err != nil {
			return Document{}, err
		}
		out.Constraints = append(out.Constraints, expr)
	}

	return out, nil
}
