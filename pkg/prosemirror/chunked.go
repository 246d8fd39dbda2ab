package prosemirror

// Large-document policy: when the root's direct child count exceeds
// LargeDocThreshold, replacement runs over sequential fixed-size slices
// of the top-level children. Each slice is wrapped in a temporary doc,
// re-indexed and mutated independently, which bounds peak working-set
// size. Slicing never descends into nested containers.
const (
	LargeDocThreshold = 500
	ChunkSize         = 100
)

// ReplaceTextChunked replaces text across the document in top-level
// chunks of ChunkSize children. Per-slice leaf counts are summed.
// Because the slices share node pointers with the original tree, the
// mutations apply directly to it.
func ReplaceTextChunked(root *Node, old, new string, caseSensitive bool) (int, error) {
	if root == nil || root.Type != TypeDoc {
		return 0, ErrInvalidDocument
	}
	if old == "" {
		return 0, ErrInvalidArgument
	}

	total := 0
	children := root.Content
	for start := 0; start < len(children); start += ChunkSize {
		end := start + ChunkSize
		if end > len(children) {
			end = len(children)
		}

		chunk := &Node{Type: TypeDoc, Content: children[start:end]}
		ix, err := NewIndex(chunk)
		if err != nil {
			return total, err
		}
		count, err := ix.ReplaceText(old, new, caseSensitive)
		if err != nil {
			return total, err
		}
		total += count
	}
	return total, nil
}

// ReplaceInDocument routes replacement through the chunked policy when
// the document is large enough, and through a single index otherwise.
func ReplaceInDocument(root *Node, old, new string, caseSensitive bool) (int, error) {
	if root != nil && len(root.Content) > LargeDocThreshold {
		return ReplaceTextChunked(root, old, new, caseSensitive)
	}
	ix, err := NewIndex(root)
	if err != nil {
		return 0, err
	}
	return ix.ReplaceText(old, new, caseSensitive)
}
