package utils

import (
	"os"
	"path/filepath"
	"testing"

	"baliance.com/gooxml/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWordFile(t *testing.T, paragraphs ...string) string {
	t.Helper()
	doc := document.New()
	for _, p := range paragraphs {
		doc.AddParagraph().AddRun().AddText(p)
	}
	path := filepath.Join(t.TempDir(), "resume.docx")
	require.NoError(t, doc.SaveToFile(path))
	return path
}

func TestReadWordText(t *testing.T) {
	path := writeWordFile(t, "Jane Doe", "Software Engineer")

	text, err := ReadWordText(path)

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSoftware Engineer\n", text)
}

func TestReadWordTextNotADocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := ReadWordText(path)

	assert.Error(t, err)
}
