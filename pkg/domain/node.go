package domain

// NodeType selects which NodeData field a node carries.
type NodeType string

// Node types use the canvas wire names so documents round-trip unchanged.
const (
	// NodeTypeText is a messaging step that sends a text message.
	NodeTypeText NodeType = "textNode"
	// NodeTypeImage is a messaging step that sends an image.
	NodeTypeImage NodeType = "imageNode"
)

// DefaultTextLabel is the label a freshly dropped text node starts with.
const DefaultTextLabel = "text message"

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	return t == NodeTypeText || t == NodeTypeImage
}

// Position is the canvas location of a node. It is presentation-only and
// plays no part in validation.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// NodeData is the payload of a node. The node Type decides which field is
// meaningful: Label for text nodes, ImageURL for image nodes.
type NodeData struct {
	Label    string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	ImageURL string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty" mapstructure:"imageUrl"`
}

// Node represents one messaging step in the flow.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Type     NodeType `json:"type" yaml:"type"`
	Data     NodeData `json:"data" yaml:"data"`
	Position Position `json:"position" yaml:"position"`
}

// NewNode builds a node of the given type with the default payload a canvas
// drop produces.
func NewNode(id string, t NodeType, pos Position) Node {
	n := Node{ID: id, Type: t, Position: pos}
	if t == NodeTypeText {
		n.Data.Label = DefaultTextLabel
	}
	return n
}

// Text returns the label of a text node. The boolean is false for image nodes.
func (n Node) Text() (string, bool) {
	if n.Type != NodeTypeText {
		return "", false
	}
	return n.Data.Label, true
}
