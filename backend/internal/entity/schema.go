// ============================================================================
// backend/internal/entity/schema.go
// Typed field tables and remote capability contract for admin entities
// ============================================================================

package entity

import "context"

// Values is a flat snapshot of form inputs keyed by field key.
type Values map[string]string

// InputKind selects how a field is rendered in the form.
type InputKind string

const (
	InputText   InputKind = "text"
	InputNumber InputKind = "number"
	InputSelect InputKind = "select"
	InputTime   InputKind = "time"
)

// Option is one choice of a select input.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one column of an entity: how it is labelled, validated,
// rendered and read from or written into the typed record.
type Field[T any] struct {
	Key      string
	Label    string
	Required bool
	// InvalidValue is the placeholder of a select that counts as "not chosen".
	InvalidValue string
	Input        InputKind
	// Lookup names the option list of a select input (see OptionSource).
	Lookup string
	// Options are fixed choices used when Lookup is empty.
	Options []Option

	Get func(T) string
	Set func(*T, string)
}

// Schema is the full configuration of one admin entity page.
type Schema[T any] struct {
	Name   string
	Title  string
	Fields []Field[T]
	// ID returns the server-assigned id, or "" when the record was never persisted.
	ID func(T) string
	// Prepare may fill derived inputs after trimming and before validation.
	Prepare func(Values)
}

// Keys lists field keys in schema order.
func (s Schema[T]) Keys() []string {
	keys := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Record builds a typed record from collected values.
func (s Schema[T]) Record(v Values) T {
	var rec T
	for _, f := range s.Fields {
		if f.Set != nil {
			f.Set(&rec, v[f.Key])
		}
	}
	return rec
}

// ValuesOf reads every field of rec in schema order.
func (s Schema[T]) ValuesOf(rec T) Values {
	v := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		if f.Get != nil {
			v[f.Key] = f.Get(rec)
		}
	}
	return v
}

// ============================================================================
// Remote capability set
// ============================================================================

// Capabilities flags which remote operations an entity supports.
type Capabilities struct {
	Load   bool
	Create bool
	Remove bool
}

// Remote binds an entity to its backend resource. Only the operations flagged
// in Capabilities are ever called.
type Remote[T any] interface {
	Capabilities() Capabilities
	Load(ctx context.Context) ([]T, error)
	// Create persists rec. editing is the record under edit, nil in create mode.
	Create(ctx context.Context, rec T, editing *T) error
	Remove(ctx context.Context, id string) error
}

// OptionSource resolves lookup-backed select options. form carries the
// current inputs for lookups that depend on other fields.
type OptionSource interface {
	Options(ctx context.Context, lookup string, form Values) ([]Option, error)
}
