package entity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// Button and placeholder texts shown by every entity page.
const (
	LabelAdd   = "เพิ่มข้อมูล"
	LabelSave  = "บันทึกการแก้ไข"
	LabelEmpty = "ไม่มีข้อมูล"
)

// ErrIndexOutOfRange is returned when a row action addresses a missing row.
var ErrIndexOutOfRange = errors.New("row index out of range")

// ValidationError reports the first required field that was left empty.
type ValidationError struct {
	Key   string
	Label string
}

func (e *ValidationError) Error() string {
	return "กรอก/เลือก " + e.Label + " ให้ครบ"
}

// Notice levels.
const (
	NoticeError   = "error"
	NoticeWarning = "warning"
	NoticeSuccess = "success"
)

// Notice is the user-facing outcome of the last failed action.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// State is the controller's data: the last loaded records and the row under
// edit (-1 in create mode).
type State[T any] struct {
	Data      []T
	EditIndex int
}

// Controller drives one admin entity page: a form plus a table of records.
// It is not safe for concurrent use; callers serialise access per session.
type Controller[T any] struct {
	schema Schema[T]
	remote Remote[T]

	state       State[T]
	form        Values
	options     map[string][]Option
	notice      *Notice
	initialized bool
}

// New creates a controller in create mode. remote may be nil, in which case
// records live only in memory.
func New[T any](schema Schema[T], remote Remote[T]) *Controller[T] {
	c := &Controller[T]{
		schema:  schema,
		remote:  remote,
		state:   State[T]{Data: []T{}, EditIndex: -1},
		options: map[string][]Option{},
	}
	c.ResetForm()
	return c
}

func (c *Controller[T]) capabilities() Capabilities {
	if c.remote == nil {
		return Capabilities{}
	}
	return c.remote.Capabilities()
}

func (c *Controller[T]) fail(level string, err error) error {
	c.notice = &Notice{Level: level, Message: err.Error()}
	return err
}

// Name is the entity's route key.
func (c *Controller[T]) Name() string { return c.schema.Name }

// Title is the page heading.
func (c *Controller[T]) Title() string { return c.schema.Title }

// Loaded reports whether Init has run.
func (c *Controller[T]) Loaded() bool { return c.initialized }

// State returns a copy of the controller state.
func (c *Controller[T]) State() State[T] {
	data := make([]T, len(c.state.Data))
	copy(data, c.state.Data)
	return State[T]{Data: data, EditIndex: c.state.EditIndex}
}

// Form returns a copy of the current form inputs.
func (c *Controller[T]) Form() Values {
	out := make(Values, len(c.form))
	for k, v := range c.form {
		out[k] = v
	}
	return out
}

// SetForm replaces the inputs of the schema's fields; unknown keys are ignored.
func (c *Controller[T]) SetForm(v Values) {
	for _, f := range c.schema.Fields {
		c.form[f.Key] = v[f.Key]
	}
}

// ResetForm clears every input and returns to create mode.
func (c *Controller[T]) ResetForm() {
	c.form = make(Values, len(c.schema.Fields))
	for _, f := range c.schema.Fields {
		c.form[f.Key] = ""
	}
	c.state.EditIndex = -1
}

// Init loads the list for the first time.
func (c *Controller[T]) Init(ctx context.Context) error {
	c.initialized = true
	return c.Load(ctx)
}

// Load replaces the data with the backend list. Without a load capability the
// in-memory data is kept.
func (c *Controller[T]) Load(ctx context.Context) error {
	if !c.capabilities().Load {
		return nil
	}
	list, err := c.remote.Load(ctx)
	if err != nil {
		return c.fail(NoticeError, err)
	}
	if list == nil {
		list = []T{}
	}
	c.state.Data = list
	return nil
}

// Refresh reloads on explicit user request.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.notice = nil
	return c.Load(ctx)
}

// Collect trims the form inputs and validates them in schema order. The first
// required field that is empty or still on its placeholder aborts collection.
func (c *Controller[T]) Collect() (Values, error) {
	values := make(Values, len(c.schema.Fields))
	for _, f := range c.schema.Fields {
		values[f.Key] = strings.TrimSpace(c.form[f.Key])
	}
	if c.schema.Prepare != nil {
		c.schema.Prepare(values)
	}
	for _, f := range c.schema.Fields {
		v := values[f.Key]
		if f.Required && (v == "" || (f.InvalidValue != "" && v == f.InvalidValue)) {
			label := f.Label
			if label == "" {
				label = f.Key
			}
			return nil, &ValidationError{Key: f.Key, Label: label}
		}
	}
	return values, nil
}

// Submit adds a record, or saves the one under edit.
//
// With a create capability the record is sent to the backend and the list is
// reloaded; a failure leaves data, form and edit mode untouched. Without one
// the record is pushed or overwritten in memory. Success returns to create mode.
func (c *Controller[T]) Submit(ctx context.Context) error {
	c.notice = nil
	values, err := c.Collect()
	if err != nil {
		return c.fail(NoticeWarning, err)
	}
	rec := c.schema.Record(values)

	if c.capabilities().Create {
		var editing *T
		if i := c.state.EditIndex; i >= 0 && i < len(c.state.Data) {
			current := c.state.Data[i]
			editing = &current
		}
		if err := c.remote.Create(ctx, rec, editing); err != nil {
			log.Printf("WARN: %s submit failed: %v", c.schema.Name, err)
			return c.fail(NoticeError, err)
		}
		if err := c.Load(ctx); err != nil {
			return err
		}
	} else {
		if i := c.state.EditIndex; i >= 0 && i < len(c.state.Data) {
			c.state.Data[i] = rec
		} else {
			c.state.Data = append(c.state.Data, rec)
		}
	}

	c.ResetForm()
	return nil
}

// Edit copies row i into the form and enters edit mode.
func (c *Controller[T]) Edit(i int) error {
	if i < 0 || i >= len(c.state.Data) {
		return fmt.Errorf("edit row %d: %w", i, ErrIndexOutOfRange)
	}
	c.notice = nil
	c.form = c.schema.ValuesOf(c.state.Data[i])
	c.state.EditIndex = i
	return nil
}

// Cancel leaves edit mode without touching data.
func (c *Controller[T]) Cancel() {
	c.notice = nil
	c.ResetForm()
}

// Remove deletes row i: through the backend when it has a server id and a
// remove capability (then reloads), otherwise from memory.
func (c *Controller[T]) Remove(ctx context.Context, i int) error {
	if i < 0 || i >= len(c.state.Data) {
		return fmt.Errorf("remove row %d: %w", i, ErrIndexOutOfRange)
	}
	c.notice = nil
	row := c.state.Data[i]

	id := ""
	if c.schema.ID != nil {
		id = c.schema.ID(row)
	}
	if c.capabilities().Remove && id != "" {
		editedID := ""
		if e := c.state.EditIndex; e >= 0 && e != i && e < len(c.state.Data) {
			editedID = c.schema.ID(c.state.Data[e])
		}
		if err := c.remote.Remove(ctx, id); err != nil {
			log.Printf("WARN: %s remove %s failed: %v", c.schema.Name, id, err)
			return c.fail(NoticeError, err)
		}
		// Gone on the backend; drop it locally even if the reload fails.
		c.state.Data = append(c.state.Data[:i:i], c.state.Data[i+1:]...)
		c.afterRemove(i)
		if err := c.Load(ctx); err != nil {
			return err
		}
		if c.state.EditIndex >= 0 {
			c.followEdit(editedID)
		}
		return nil
	}

	c.state.Data = append(c.state.Data[:i:i], c.state.Data[i+1:]...)
	c.afterRemove(i)
	return nil
}

func (c *Controller[T]) afterRemove(i int) {
	switch {
	case c.state.EditIndex == i:
		c.ResetForm()
	case c.state.EditIndex > i:
		c.state.EditIndex--
	}
}

// followEdit points EditIndex at the reloaded row with the given id, or
// returns to create mode when that row is gone.
func (c *Controller[T]) followEdit(id string) {
	for j, row := range c.state.Data {
		if id != "" && c.schema.ID(row) == id {
			c.state.EditIndex = j
			return
		}
	}
	c.ResetForm()
}

// LoadOptions fills the option lists of lookup-backed selects. A failed
// lookup leaves that select empty.
func (c *Controller[T]) LoadOptions(ctx context.Context, src OptionSource) {
	if src == nil {
		return
	}
	for _, f := range c.schema.Fields {
		if f.Lookup == "" {
			continue
		}
		opts, err := src.Options(ctx, f.Lookup, c.form)
		if err != nil {
			log.Printf("WARN: %s lookup %s failed: %v", c.schema.Name, f.Lookup, err)
			opts = nil
		}
		c.options[f.Key] = opts
	}
}

// Notice returns the outcome of the last failed action, if any.
func (c *Controller[T]) Notice() *Notice { return c.notice }
