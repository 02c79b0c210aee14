package entity

import "context"

// Column is one table header.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Row is one rendered record; Index addresses it in edit/remove actions.
type Row struct {
	Index   int      `json:"index"`
	ID      string   `json:"id,omitempty"`
	Cells   []string `json:"cells"`
	Editing bool     `json:"editing"`
}

// FormField is one rendered form input.
type FormField struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Required    bool      `json:"required"`
	Input       InputKind `json:"input"`
	Value       string    `json:"value"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty"`
}

// View is the complete view model of an entity page.
type View struct {
	Name         string       `json:"name"`
	Title        string       `json:"title"`
	Columns      []Column     `json:"columns"`
	Rows         []Row        `json:"rows"`
	Empty        bool         `json:"empty"`
	EmptyText    string       `json:"empty_text,omitempty"`
	EmptyColspan int          `json:"empty_colspan,omitempty"`
	Fields       []FormField  `json:"fields"`
	EditIndex    int          `json:"edit_index"`
	SubmitLabel  string       `json:"submit_label"`
	ShowCancel   bool         `json:"show_cancel"`
	Notice       *Notice      `json:"notice,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
}

// Render builds the page view model from the current state.
func (c *Controller[T]) Render() View {
	v := View{
		Name:         c.schema.Name,
		Title:        c.schema.Title,
		Rows:         []Row{},
		EditIndex:    c.state.EditIndex,
		SubmitLabel:  LabelAdd,
		Notice:       c.notice,
		Capabilities: c.capabilities(),
	}
	if c.state.EditIndex >= 0 {
		v.SubmitLabel = LabelSave
		v.ShowCancel = true
	}

	for _, f := range c.schema.Fields {
		v.Columns = append(v.Columns, Column{Key: f.Key, Label: f.Label})

		input := f.Input
		if input == "" {
			input = InputText
		}
		opts := f.Options
		if f.Lookup != "" {
			opts = c.options[f.Key]
		}
		v.Fields = append(v.Fields, FormField{
			Key:         f.Key,
			Label:       f.Label,
			Required:    f.Required,
			Input:       input,
			Value:       c.form[f.Key],
			Placeholder: f.InvalidValue,
			Options:     opts,
		})
	}

	if len(c.state.Data) == 0 {
		v.Empty = true
		v.EmptyText = LabelEmpty
		v.EmptyColspan = len(c.schema.Fields) + 1
		return v
	}
	for i, rec := range c.state.Data {
		row := Row{Index: i, Editing: i == c.state.EditIndex}
		if c.schema.ID != nil {
			row.ID = c.schema.ID(rec)
		}
		for _, f := range c.schema.Fields {
			cell := ""
			if f.Get != nil {
				cell = f.Get(rec)
			}
			row.Cells = append(row.Cells, cell)
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// Page is the type-erased surface of a Controller used by HTTP handlers.
type Page interface {
	Name() string
	Title() string
	Loaded() bool
	Init(ctx context.Context) error
	Refresh(ctx context.Context) error
	SetForm(v Values)
	Submit(ctx context.Context) error
	Edit(i int) error
	Cancel()
	Remove(ctx context.Context, i int) error
	LoadOptions(ctx context.Context, src OptionSource)
	Render() View
}

var _ Page = (*Controller[struct{}])(nil)
