// ============================================================================
// backend/internal/timetable/viewer.go
// Timetable viewer state machine: selection screen <-> table screen
// ============================================================================

package timetable

import (
	"context"
	"log"
)

// Source fetches the full generated schedule.
type Source interface {
	FetchSchedule(ctx context.Context) ([]Entry, error)
}

// Mode is the table-screen rendering mode.
type Mode string

const (
	ModeGrid Mode = "grid"
	ModeList Mode = "list"
)

// Screen is the viewer's current screen.
type Screen string

const (
	ScreenSelection Screen = "selection"
	ScreenTable     Screen = "table"
)

// Viewer holds one viewer instance's state. The schedule is fetched at most
// once per instance; discard the instance to force a refetch.
type Viewer struct {
	source Source

	cache  []Entry
	loaded bool

	category Category
	item     string
	search   string
	mode     Mode
	screen   Screen
}

// NewViewer creates a viewer on the selection screen.
func NewViewer(source Source) *Viewer {
	return &Viewer{
		source:   source,
		category: CategoryTeacher,
		mode:     ModeGrid,
		screen:   ScreenSelection,
	}
}

// Open shows the selection screen for the given category, loading the
// schedule on first use. A failed fetch leaves the viewer with an empty
// schedule rather than failing.
func (v *Viewer) Open(ctx context.Context, category Category) {
	v.category = category
	v.item = ""
	v.search = ""
	v.mode = ModeGrid
	v.screen = ScreenSelection

	if v.loaded {
		return
	}
	entries, err := v.source.FetchSchedule(ctx)
	if err != nil {
		log.Printf("WARN: schedule fetch failed, showing empty timetable: %v", err)
		entries = []Entry{}
	}
	v.cache = entries
	v.loaded = true
}

// SelectItem enters the table screen for one item, resetting search and mode.
func (v *Viewer) SelectItem(item string) {
	v.item = item
	v.search = ""
	v.mode = ModeGrid
	v.screen = ScreenTable
}

// Back returns to the selection screen.
func (v *Viewer) Back() {
	v.screen = ScreenSelection
}

// SetSearch changes the free-text filter.
func (v *Viewer) SetSearch(q string) {
	v.search = q
}

// SetMode forces a rendering mode.
func (v *Viewer) SetMode(m Mode) {
	if m == ModeList {
		v.mode = ModeList
		return
	}
	v.mode = ModeGrid
}

// ToggleMode flips between grid and list.
func (v *Viewer) ToggleMode() {
	if v.mode == ModeGrid {
		v.mode = ModeList
	} else {
		v.mode = ModeGrid
	}
}

func (v *Viewer) Loaded() bool       { return v.loaded }
func (v *Viewer) Category() Category { return v.category }
func (v *Viewer) Item() string       { return v.item }
func (v *Viewer) Search() string     { return v.search }
func (v *Viewer) Mode() Mode         { return v.mode }
func (v *Viewer) Screen() Screen     { return v.screen }

// Items lists the selectable items of the current category.
func (v *Viewer) Items() []string {
	return UniqueItems(v.cache, v.category)
}

// Filtered returns the rows of the chosen item after search filtering.
func (v *Viewer) Filtered() []Entry {
	return Filter(v.cache, v.category, v.item, v.search)
}

// ============================================================================
// View models
// ============================================================================

// SelectionView is the item picker.
type SelectionView struct {
	Category      Category   `json:"category"`
	CategoryLabel string     `json:"category_label"`
	Categories    []Category `json:"categories"`
	Items         []string   `json:"items"`
	Empty         bool       `json:"empty"`
}

// TableView is the chosen item's timetable in the current mode.
type TableView struct {
	Item        string   `json:"item"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Search      string   `json:"search"`
	Mode        Mode     `json:"mode"`
	ToggleLabel string   `json:"toggle_label"`
	Grid        *Grid    `json:"grid,omitempty"`
	Cards       []Card   `json:"cards,omitempty"`
	Empty       bool     `json:"empty"`
	Category    Category `json:"category"`
}

// Selection renders the selection screen.
func (v *Viewer) Selection() SelectionView {
	items := v.Items()
	return SelectionView{
		Category:      v.category,
		CategoryLabel: v.category.Label(),
		Categories:    Categories,
		Items:         items,
		Empty:         len(items) == 0,
	}
}

// Table renders the table screen from the cached schedule; it never refetches.
func (v *Viewer) Table() TableView {
	rows := v.Filtered()
	tv := TableView{
		Item:        v.item,
		Title:       "ตารางสอน - " + v.item,
		Description: "ตารางเรียนของ" + v.category.Label() + " " + v.item,
		Search:      v.search,
		Mode:        v.mode,
		Empty:       len(rows) == 0,
		Category:    v.category,
	}
	if v.mode == ModeGrid {
		tv.ToggleLabel = "มุมมองรายการ"
		g := BuildGrid(rows)
		tv.Grid = &g
	} else {
		tv.ToggleLabel = "มุมมองตาราง"
		tv.Cards = BuildCards(rows)
	}
	return tv
}
