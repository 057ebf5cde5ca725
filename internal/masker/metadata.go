package masker

import "strings"

// Field names a header line recognised in the metadata region.
type Field string

const (
	FieldTitle         Field = "Title"
	FieldStatus        Field = "Status"
	FieldAuthors       Field = "Authors"
	FieldAuthor        Field = "Author"
	FieldReviewManager Field = "Review Manager"
)

// Fields lists the recognised header fields in scan order.
var Fields = []Field{FieldTitle, FieldStatus, FieldAuthors, FieldAuthor, FieldReviewManager}

// Metadata holds the header fields extracted from a document.
// Unset fields are empty.
type Metadata struct {
	Title         string `json:"title"`
	Status        string `json:"status"`
	Authors       string `json:"authors"`
	Author        string `json:"author"`
	ReviewManager string `json:"review_manager"`
}

// Get returns the value of f.
func (m *Metadata) Get(f Field) string {
	switch f {
	case FieldTitle:
		return m.Title
	case FieldStatus:
		return m.Status
	case FieldAuthors:
		return m.Authors
	case FieldAuthor:
		return m.Author
	case FieldReviewManager:
		return m.ReviewManager
	}
	return ""
}

// Set assigns v to f. Unknown fields are ignored.
func (m *Metadata) Set(f Field, v string) {
	switch f {
	case FieldTitle:
		m.Title = v
	case FieldStatus:
		m.Status = v
	case FieldAuthors:
		m.Authors = v
	case FieldAuthor:
		m.Author = v
	case FieldReviewManager:
		m.ReviewManager = v
	}
}

// AuthorList returns Authors, falling back to Author. Source documents
// use both spellings.
func (m *Metadata) AuthorList() string {
	if m.Authors != "" {
		return m.Authors
	}
	return m.Author
}

// ExtractMetadata scans text for header fields without masking anything.
func ExtractMetadata(text string) Metadata {
	var doc documentState
	doc.reset()
	for _, line := range strings.Split(text, "\n") {
		doc.consumeStructural(line)
	}
	return doc.meta
}

func isKnownField(name string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// parseHeading records the title of a "# " line. The first heading wins.
func (d *documentState) parseHeading(line string) {
	if d.titleFromHeading {
		return
	}
	d.meta.Title = strings.TrimSpace(line[2:])
	d.titleFromHeading = true
}

// parseField reports whether line is a "- Field: value" header line and
// records the value. Lines are consumed even when the value is empty or the
// derived name is not a known field.
func (d *documentState) parseField(line string) bool {
	if len(line) < 2 {
		return false
	}
	rest := line[2:]
	matched := false
	for _, f := range Fields {
		if strings.HasPrefix(rest, string(f)) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	name, _, _ := strings.Cut(rest, ":")
	prefix := len(name) + 2 + 1
	if prefix >= len(line) {
		return true
	}
	f, ok := isKnownField(name)
	if !ok {
		return true
	}
	if d.meta.Get(f) != "" || (f == FieldTitle && d.titleFromHeading) {
		return true
	}
	d.meta.Set(f, strings.TrimSpace(line[prefix:]))
	return true
}
