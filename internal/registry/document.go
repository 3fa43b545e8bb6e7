package registry

import (
	"fmt"
	"regexp"
	"strings"
)

var importLine = regexp.MustCompile(`^import \{ ([A-Za-z_$][\w$]*) \} from "([^"]+)";?\s*$`)

// Import binds one identifier to a module specifier.
type Import struct {
	Name string
	From string
}

func (i Import) String() string {
	return fmt.Sprintf("import { %s } from \"%s\";", i.Name, i.From)
}

// Document is the structured view of a registry file: the text above the
// tracked collection literal (kept verbatim as Head), the imports found in
// it, the literal's entries, and whatever follows the literal.
type Document struct {
	Imports    []Import
	Head       string
	Collection string
	Entries    []string
	Trailer    string
}

// NewDocument returns an empty registry for collection.
func NewDocument(collection string) *Document {
	return &Document{Collection: collection, Trailer: "\n"}
}

// Parse reads a registry file. Only import lines of the generated shape and
// the `export const <collection> = [...]` declaration are understood; the
// text above the declaration is kept byte for byte and everything after it
// as the trailer.
func Parse(text, collection string) (*Document, error) {
	decl := declarationPattern(collection)
	loc := decl.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, &InvalidRegistryFormatError{Collection: collection}
	}

	doc := &Document{
		Head:       text[:loc[0]],
		Collection: collection,
		Trailer:    text[loc[1]:],
	}

	for _, line := range strings.Split(doc.Head, "\n") {
		if m := importLine.FindStringSubmatch(strings.TrimRight(line, "\r")); m != nil {
			doc.Imports = append(doc.Imports, Import{Name: m[1], From: m[2]})
		}
	}

	for _, entry := range strings.Split(text[loc[2]:loc[3]], ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			doc.Entries = append(doc.Entries, entry)
		}
	}

	return doc, nil
}

func declarationPattern(collection string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)export const ` + regexp.QuoteMeta(collection) + `\s*=\s*\[(.*?)\](?:\s*;)?`)
}

// Has reports whether name is already imported or listed.
func (d *Document) Has(name string) bool {
	for _, imp := range d.Imports {
		if imp.Name == name {
			return true
		}
	}
	for _, entry := range d.Entries {
		if entry == name {
			return true
		}
	}
	return false
}

// Add appends an import and a collection entry for imp. It returns false and
// leaves the document untouched when the identifier is already present.
//
// The import line goes right after the last existing import, or just above
// the declaration when there is none. Other head text is not moved.
func (d *Document) Add(imp Import) bool {
	if d.Has(imp.Name) {
		return false
	}
	d.Head = insertImport(d.Head, imp.String())
	d.Imports = append(d.Imports, imp)
	d.Entries = append(d.Entries, imp.Name)
	return true
}

func insertImport(head, line string) string {
	end, offset := -1, 0
	for _, l := range strings.SplitAfter(head, "\n") {
		offset += len(l)
		if importLine.MatchString(strings.TrimRight(l, "\r\n")) {
			end = offset
		}
	}

	if end < 0 {
		body := strings.TrimRight(head, "\r\n")
		if body == "" {
			return line + "\n\n"
		}
		return body + "\n" + line + "\n\n"
	}

	before, after := head[:end], head[end:]
	if !strings.HasSuffix(before, "\n") {
		before += "\n"
	}
	return before + line + "\n" + after
}

// ImportFor returns the import bound to name, if any.
func (d *Document) ImportFor(name string) (Import, bool) {
	for _, imp := range d.Imports {
		if imp.Name == name {
			return imp, true
		}
	}
	return Import{}, false
}

// Render serializes the document. The head and trailer come back unchanged;
// the collection literal is written one entry per line.
func (d *Document) Render() string {
	var b strings.Builder
	b.WriteString(d.Head)

	if len(d.Entries) == 0 {
		fmt.Fprintf(&b, "export const %s = [];", d.Collection)
	} else {
		fmt.Fprintf(&b, "export const %s = [\n", d.Collection)
		for _, entry := range d.Entries {
			fmt.Fprintf(&b, "  %s,\n", entry)
		}
		b.WriteString("];")
	}

	b.WriteString(d.Trailer)
	return b.String()
}
