package prosemirror

// Builder helpers for well-formed ProseMirror fragments.

// Position selects where a fragment is inserted relative to the root's
// existing children.
type Position string

const (
	PositionStart Position = "start"
	PositionEnd   Position = "end"
)

// TaskItem is one entry of a task list.
type TaskItem struct {
	Text    string
	Checked bool
}

func textNode(text string) *Node {
	return &Node{Type: TypeText, Text: text}
}

// Heading builds a heading node. Out-of-range levels are clamped to
// [1,6] rather than rejected.
func Heading(text string, level int) *Node {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return &Node{
		Type:    TypeHeading,
		Attrs:   map[string]interface{}{"level": level},
		Content: []*Node{textNode(text)},
	}
}

// Paragraph builds a paragraph node wrapping a single text leaf.
func Paragraph(text string) *Node {
	return &Node{
		Type:    TypeParagraph,
		Content: []*Node{textNode(text)},
	}
}

// BulletList builds a bullet list. An empty items slice yields an
// empty list container, not an error.
func BulletList(items []string) *Node {
	listItems := make([]*Node, 0, len(items))
	for _, item := range items {
		listItems = append(listItems, &Node{
			Type:    TypeListItem,
			Content: []*Node{Paragraph(item)},
		})
	}
	return &Node{Type: TypeBulletList, Content: listItems}
}

// TaskList builds a task list with checkbox items.
func TaskList(items []TaskItem) *Node {
	taskItems := make([]*Node, 0, len(items))
	for _, item := range items {
		taskItems = append(taskItems, &Node{
			Type:    TypeTaskItem,
			Attrs:   map[string]interface{}{"checked": item.Checked},
			Content: []*Node{Paragraph(item.Text)},
		})
	}
	return &Node{Type: TypeTaskList, Content: taskItems}
}

// CodeBlock builds a code block; language is optional.
func CodeBlock(code, language string) *Node {
	node := &Node{
		Type:    TypeCodeBlock,
		Content: []*Node{textNode(code)},
	}
	if language != "" {
		node.Attrs = map[string]interface{}{"language": language}
	}
	return node
}

// InsertFragment prepends or appends nodes to the document root's
// children. Adjacent same-type containers are not merged.
func InsertFragment(doc *Node, nodes []*Node, position Position) {
	if position == PositionStart {
		doc.Content = append(append([]*Node{}, nodes...), doc.Content...)
	} else {
		doc.Content = append(doc.Content, nodes...)
	}
}
