package prosemirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadingClampsLevel(t *testing.T) {
	assert.Equal(t, 1, Heading("x", 0).Attrs["level"])
	assert.Equal(t, 1, Heading("x", -3).Attrs["level"])
	assert.Equal(t, 3, Heading("x", 3).Attrs["level"])
	assert.Equal(t, 6, Heading("x", 9).Attrs["level"])
}

func TestParagraph(t *testing.T) {
	p := Paragraph("hello")
	assert.Equal(t, TypeParagraph, p.Type)
	require.Len(t, p.Content, 1)
	assert.Equal(t, TypeText, p.Content[0].Type)
	assert.Equal(t, "hello", p.Content[0].Text)
}

func TestBulletList(t *testing.T) {
	list := BulletList([]string{"a", "b"})
	assert.Equal(t, TypeBulletList, list.Type)
	require.Len(t, list.Content, 2)
	for i, want := range []string{"a", "b"} {
		item := list.Content[i]
		assert.Equal(t, TypeListItem, item.Type)
		assert.Equal(t, want, item.Content[0].Content[0].Text)
	}
}

func TestBulletListEmpty(t *testing.T) {
	list := BulletList(nil)
	assert.Equal(t, TypeBulletList, list.Type)
	assert.Empty(t, list.Content)
}

func TestTaskList(t *testing.T) {
	list := TaskList([]TaskItem{
		{Text: "open", Checked: false},
		{Text: "done", Checked: true},
	})
	assert.Equal(t, TypeTaskList, list.Type)
	require.Len(t, list.Content, 2)
	assert.Equal(t, false, list.Content[0].Attrs["checked"])
	assert.Equal(t, true, list.Content[1].Attrs["checked"])
	assert.Equal(t, "open", list.Content[0].Content[0].Content[0].Text)
}

func TestCodeBlock(t *testing.T) {
	block := CodeBlock("print(1)", "python")
	assert.Equal(t, TypeCodeBlock, block.Type)
	assert.Equal(t, "python", block.Attrs["language"])
	assert.Equal(t, "print(1)", block.Content[0].Text)
}

func TestCodeBlockWithoutLanguage(t *testing.T) {
	block := CodeBlock("plain", "")
	assert.Nil(t, block.Attrs)
}

func TestInsertFragmentEnd(t *testing.T) {
	doc := &Node{Type: TypeDoc, Content: []*Node{Paragraph("first")}}
	InsertFragment(doc, []*Node{Paragraph("second")}, PositionEnd)

	require.Len(t, doc.Content, 2)
	assert.Equal(t, "second", doc.Content[1].Content[0].Text)
}

func TestInsertFragmentStart(t *testing.T) {
	doc := &Node{Type: TypeDoc, Content: []*Node{Paragraph("first")}}
	InsertFragment(doc, []*Node{Heading("intro", 1), Paragraph("lead")}, PositionStart)

	require.Len(t, doc.Content, 3)
	assert.Equal(t, TypeHeading, doc.Content[0].Type)
	assert.Equal(t, "lead", doc.Content[1].Content[0].Text)
	assert.Equal(t, "first", doc.Content[2].Content[0].Text)
}

func TestInsertFragmentIntoEmptyDocument(t *testing.T) {
	doc := EmptyDocument()
	InsertFragment(doc, []*Node{Paragraph("only")}, PositionStart)
	require.Len(t, doc.Content, 1)
}
