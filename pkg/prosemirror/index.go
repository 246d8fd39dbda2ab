package prosemirror

import (
	"fmt"
	"strings"
	"unicode"
)

// Entry is the flat, path-addressed view of one node captured at
// index-construction time. Paths are invalidated by any structural
// mutation; rebuild the index after inserting or removing siblings.
type Entry struct {
	Path  string
	Type  string
	Attrs map[string]interface{}
	Text  string
	Marks []map[string]interface{}
	Node  *Node
}

// HeadingInfo describes one heading in document order.
type HeadingInfo struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Path  string `json:"path"`
}

// Index is a flat pre-order view over a document tree. It keeps
// references into the original tree, so text replacements through the
// index mutate the document in place.
type Index struct {
	root    *Node
	entries []*Entry
}

// NewIndex walks the tree depth-first, pre-order, assigning each node a
// dot-separated path (root = "0", child i of path P = "P.i").
func NewIndex(root *Node) (*Index, error) {
	if root == nil || root.Type != TypeDoc {
		return nil, ErrInvalidDocument
	}
	ix := &Index{root: root}
	ix.walk(root, "0")
	return ix, nil
}

func (ix *Index) walk(node *Node, path string) {
	ix.entries = append(ix.entries, &Entry{
		Path:  path,
		Type:  node.Type,
		Attrs: node.Attrs,
		Text:  node.Text,
		Marks: node.Marks,
		Node:  node,
	})
	for i, child := range node.Content {
		ix.walk(child, fmt.Sprintf("%s.%d", path, i))
	}
}

// Root returns the indexed document root.
func (ix *Index) Root() *Node {
	return ix.root
}

// Entries returns every indexed node in pre-order.
func (ix *Index) Entries() []*Entry {
	return ix.entries
}

// ExtractText concatenates all leaf text in pre-order, space-joined.
// An empty document yields an empty string.
func (ix *Index) ExtractText() string {
	var texts []string
	for _, e := range ix.entries {
		if e.Text != "" {
			texts = append(texts, e.Text)
		}
	}
	return strings.Join(texts, " ")
}

// Structure returns all headings with their level, text and path.
func (ix *Index) Structure() []HeadingInfo {
	var structure []HeadingInfo
	for _, e := range ix.entries {
		if e.Type != TypeHeading {
			continue
		}
		level := 1
		if l, ok := e.Attrs["level"].(float64); ok {
			level = int(l)
		} else if l, ok := e.Attrs["level"].(int); ok {
			level = l
		}
		structure = append(structure, HeadingInfo{
			Level: level,
			Text:  nodeText(e.Node),
			Path:  e.Path,
		})
	}
	return structure
}

// nodeText collects all text under a node, unjoined.
func nodeText(node *Node) string {
	if node.Text != "" {
		return node.Text
	}
	var sb strings.Builder
	for _, child := range node.Content {
		sb.WriteString(nodeText(child))
	}
	return sb.String()
}

// FindText returns every leaf whose text contains the query as a
// substring, in pre-order. Zero matches is not an error; an empty
// query is.
func (ix *Index) FindText(query string, caseSensitive bool) ([]*Entry, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query must not be empty", ErrInvalidArgument)
	}

	pattern := query
	if !caseSensitive {
		pattern = strings.ToLower(pattern)
	}

	var results []*Entry
	for _, e := range ix.entries {
		if e.Text == "" {
			continue
		}
		text := e.Text
		if !caseSensitive {
			text = strings.ToLower(text)
		}
		if strings.Contains(text, pattern) {
			results = append(results, e)
		}
	}
	return results, nil
}

// ReplaceText replaces every occurrence of old inside each matching
// leaf with new, mutating the leaves in place. The returned count is
// the number of leaves touched, not the number of substring
// occurrences. Case-insensitive replacement is literal and preserves
// the casing of non-matched characters.
func (ix *Index) ReplaceText(old, new string, caseSensitive bool) (int, error) {
	if old == "" {
		return 0, fmt.Errorf("%w: replacement target must not be empty", ErrInvalidArgument)
	}

	matches, err := ix.FindText(old, caseSensitive)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, match := range matches {
		if caseSensitive {
			match.Node.Text = strings.ReplaceAll(match.Node.Text, old, new)
		} else {
			match.Node.Text = replaceAllFold(match.Node.Text, old, new)
		}
		match.Text = match.Node.Text
		count++
	}
	return count, nil
}

// replaceAllFold performs literal case-insensitive substitution.
func replaceAllFold(s, old, new string) string {
	runes := []rune(s)
	target := []rune(strings.ToLower(old))

	var sb strings.Builder
	for i := 0; i < len(runes); {
		if matchesFoldAt(runes, i, target) {
			sb.WriteString(new)
			i += len(target)
		} else {
			sb.WriteRune(runes[i])
			i++
		}
	}
	return sb.String()
}

func matchesFoldAt(runes []rune, at int, target []rune) bool {
	if at+len(target) > len(runes) {
		return false
	}
	for j, r := range target {
		if unicode.ToLower(runes[at+j]) != r {
			return false
		}
	}
	return true
}
