package odoo

// SelectionOption is one (value, label) pair of a selection field, in the
// order the server declared it.
type SelectionOption struct {
	Value string
	Label string
}

// FieldMetadata is the raw, per-field record returned by the schema server.
// It is fetched fresh on every run and never persisted.
type FieldMetadata struct {
	Name             string
	RawType          string
	Label            string
	Required         bool
	Readonly         bool
	RelationTarget   string
	SelectionOptions []SelectionOption
	Computed         bool
}

// ModelInfo describes one model registered on the server.
type ModelInfo struct {
	Name  string
	Label string
}
