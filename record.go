package mongolog

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Document keys. They are part of the stored format.
const (
	KeyName      = "name"
	KeyThrowable = "throwable"
	KeyMessage   = "message"
	KeyArgs      = "args"
)

// Record is one log call as it is persisted.
type Record struct {
	// Name of the logger that produced the record.
	Name string
	// Message is the raw template; placeholders are never substituted.
	Message string
	// Args are stored as given. Omitted from the document when empty.
	Args []any
	// Throwable is the rendered error trace. Omitted from the document when empty.
	Throwable string
}

// Document renders the record for insertion. name and message are always
// present; throwable and args are left out entirely when absent rather than
// stored as null.
func (r Record) Document() bson.D {
	doc := make(bson.D, 0, 4)
	doc = append(doc, bson.E{Key: KeyName, Value: r.Name})
	if r.Throwable != "" {
		doc = append(doc, bson.E{Key: KeyThrowable, Value: r.Throwable})
	}
	doc = append(doc, bson.E{Key: KeyMessage, Value: r.Message})
	if len(r.Args) > 0 {
		doc = append(doc, bson.E{Key: KeyArgs, Value: bson.A(r.Args)})
	}
	return doc
}
