package prosemirror

import "errors"

// Node represents any node in a ProseMirror document tree.
// A node is either a leaf (Text set, no Content) or a container
// (Content set, no Text). The root is always type "doc".
type Node struct {
	Type    string                   `json:"type"`
	Attrs   map[string]interface{}   `json:"attrs,omitempty"`
	Text    string                   `json:"text,omitempty"`
	Marks   []map[string]interface{} `json:"marks,omitempty"`
	Content []*Node                  `json:"content,omitempty"`
}

// Common node types
const (
	TypeDoc        = "doc"
	TypeHeading    = "heading"
	TypeParagraph  = "paragraph"
	TypeText       = "text"
	TypeBulletList = "bulletList"
	TypeListItem   = "listItem"
	TypeTaskList   = "taskList"
	TypeTaskItem   = "taskItem"
	TypeCodeBlock  = "codeBlock"
)

var (
	// ErrInvalidDocument indicates the tree root is not a valid "doc" node.
	ErrInvalidDocument = errors.New("content must be a valid ProseMirror document with type 'doc'")

	// ErrInvalidArgument indicates a malformed operation argument
	// (e.g. an empty search or replace target).
	ErrInvalidArgument = errors.New("invalid argument")
)

// EmptyDocument returns a fresh document root with no children.
func EmptyDocument() *Node {
	return &Node{Type: TypeDoc, Content: []*Node{}}
}
