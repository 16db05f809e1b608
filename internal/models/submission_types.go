package models

// Submission is the flattened write-only payload for a product save. It is
// built fresh on every save and discarded once the upstream API acknowledges.
//
// Fields keeps the exact multipart field order; relation sets are already
// serialized as JSON id arrays and the description as the raw document blob.
type Submission struct {
	// ID routes updates; zero for creates.
	ID int64

	Fields []FormField

	// Images are the retained server-resident references, original order.
	// Images absent from a submission are detached upstream.
	Images []string

	// Attachments are the newly picked files, appended after the retained
	// references.
	Attachments []Attachment
}

// FormField is one scalar multipart form field.
type FormField struct {
	Name  string
	Value string
}

// Field returns the value of the named form field, or "" when absent.
func (s *Submission) Field(name string) string {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Attachment is a locally picked file carried as a raw multipart file part.
type Attachment struct {
	Key         string // composer-generated identity, stable for the draft's lifetime
	Filename    string
	ContentType string
	Data        []byte
}
