package flowfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is wrapped by every decoding failure.
var ErrInvalidDocument = errors.New("invalid flow document")

type document struct {
	Nodes []nodeDoc `mapstructure:"nodes" validate:"dive"`
	Edges []edgeDoc `mapstructure:"edges" validate:"dive"`
}

type nodeDoc struct {
	ID       string          `mapstructure:"id" validate:"required"`
	Type     string          `mapstructure:"type" validate:"required,oneof=textNode imageNode"`
	Data     domain.NodeData `mapstructure:"data"`
	Position domain.Position `mapstructure:"position"`
}

type edgeDoc struct {
	ID     string `mapstructure:"id"`
	Source string `mapstructure:"source" validate:"required"`
	Target string `mapstructure:"target" validate:"required"`
}

var validate = validator.New()

// Decode parses a YAML or JSON flow document. JSON is accepted as YAML.
func Decode(data []byte) (domain.Graph, error) {
	var raw map[string]any
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return domain.Graph{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}
	return FromMap(raw)
}

// FromMap decodes an already parsed document, e.g. MCP tool arguments.
func FromMap(raw map[string]any) (domain.Graph, error) {
	var doc document
	// Unknown keys are ignored so canvas exports with extra node fields load.
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &doc,
	})
	if err != nil {
		return domain.Graph{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return domain.Graph{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := validate.Struct(doc); err != nil {
		return domain.Graph{}, fmt.Errorf("%w: %s", ErrInvalidDocument, describe(err))
	}

	g := domain.NewGraph()
	seen := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if seen[n.ID] {
			return domain.Graph{}, fmt.Errorf("%w: duplicate node id %q", ErrInvalidDocument, n.ID)
		}
		seen[n.ID] = true
		g.Nodes = append(g.Nodes, domain.Node{
			ID:       n.ID,
			Type:     domain.NodeType(n.Type),
			Data:     n.Data,
			Position: n.Position,
		})
	}
	for _, e := range doc.Edges {
		id := e.ID
		if id == "" {
			id = domain.UniqueEdgeID(domain.EdgeID(e.Source, e.Target), g.Edges)
		}
		g.Edges = append(g.Edges, domain.Edge{ID: id, Source: e.Source, Target: e.Target})
	}
	return g, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// Format selects the encoding used by Encode.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file name; anything but .json is YAML.
func FormatFor(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Encode writes g as a flow document.
func Encode(g domain.Graph, format Format) ([]byte, error) {
	if g.Nodes == nil || g.Edges == nil {
		g = g.Clone()
	}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(g, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
