// Package codec reads and writes item document dumps, used for
// importing and exporting whole collections.
package codec

import "io"

// Document is one exported item: its collection, its name, and its raw
// attribute mapping.
type Document struct {
	Collection string
	Name       string
	Attrs      map[string]any
}

// Importer parses a dump from a stream into item documents.
type Importer interface {
	Parse(r io.Reader) ([]Document, error)
	Format() string
}

// Exporter writes item documents as a dump to a stream.
type Exporter interface {
	Export(docs []Document, w io.Writer) error
	Format() string
}

// dump is the wire shape shared by the codecs: collection name to item
// name to attribute mapping.
type dump = map[string]map[string]map[string]any

func toDump(docs []Document) dump {
	out := dump{}
	for _, d := range docs {
		col := out[d.Collection]
		if col == nil {
			col = map[string]map[string]any{}
			out[d.Collection] = col
		}
		col[d.Name] = d.Attrs
	}
	return out
}

func fromDump(d dump) []Document {
	var out []Document
	for collection, items := range d {
		for name, attrs := range items {
			out = append(out, Document{
				Collection: collection,
				Name:       name,
				Attrs:      attrs,
			})
		}
	}
	return out
}
