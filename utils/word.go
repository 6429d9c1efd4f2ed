package utils

import (
	"strings"

	"baliance.com/gooxml/document"
	"github.com/cockroachdb/errors"
)

// ReadWordText returns the paragraph text of a .docx file, one line per
// paragraph.
func ReadWordText(path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open word document %s", path)
	}

	var b strings.Builder
	for _, p := range doc.Paragraphs() {
		for _, r := range p.Runs() {
			b.WriteString(r.Text())
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
