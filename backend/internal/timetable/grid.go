package timetable

import (
	"fmt"
	"strings"
)

// Cell is one <td> of the weekly grid. Block is nil for an empty hour.
type Cell struct {
	Hour  int    `json:"hour"`
	Span  int    `json:"span"`
	Block *Block `json:"block,omitempty"`

	Subject  string `json:"subject,omitempty"`
	Code     string `json:"code,omitempty"`
	Room     string `json:"room,omitempty"`
	Teacher  string `json:"teacher,omitempty"`
	TypeText string `json:"type_text,omitempty"`
	Class    string `json:"class,omitempty"`
}

// GridRow is one weekday line of the grid.
type GridRow struct {
	Day   string `json:"day"`
	Cells []Cell `json:"cells"`
}

// Grid is the day x hour matrix view model.
type Grid struct {
	Corner string    `json:"corner"`
	Hours  []string  `json:"hours"`
	Rows   []GridRow `json:"rows"`
	Empty  bool      `json:"empty"`
}

// FormatHour renders an hour column header, e.g. 8 -> "08:00".
func FormatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// TypeClass maps a period type onto its CSS class.
func TypeClass(t string) string {
	switch strings.ToLower(t) {
	case "lab":
		return "tt-type-lab"
	case "lecture":
		return "tt-type-lecture"
	case "tutorial":
		return "tt-type-tutorial"
	case "seminar":
		return "tt-type-seminar"
	default:
		return "tt-type-default"
	}
}

// TeacherShort drops the leading "อ." title from a teacher name.
func TeacherShort(name string) string {
	return strings.TrimPrefix(name, "อ.")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// BuildGrid lays filtered rows out as a weekday x hour table.
//
// A block starting at hour h yields one cell spanning End-Start columns and the
// hours it covers are skipped. An hour covered by some other block yields no
// cell; any other hour yields an empty cell. When two blocks start at the same
// hour the later one in merge order is the one shown.
func BuildGrid(rows []Entry) Grid {
	g := Grid{Corner: "วัน / เวลา"}
	for h := StartHour; h <= EndHour; h++ {
		g.Hours = append(g.Hours, FormatHour(h))
	}
	if len(rows) == 0 {
		g.Empty = true
		return g
	}

	blocksByDay := MergeBlocks(rows)
	for _, day := range DayOrder {
		blocks := blocksByDay[day]
		startIndex := make(map[int]Block, len(blocks))
		for _, b := range blocks {
			startIndex[b.Start] = b
		}

		row := GridRow{Day: day}
		for h := StartHour; h <= EndHour; h++ {
			if b, ok := startIndex[h]; ok {
				span := max(1, b.End-b.Start)
				blk := b
				row.Cells = append(row.Cells, Cell{
					Hour:     h,
					Span:     span,
					Block:    &blk,
					Subject:  orDash(b.SubjectName),
					Code:     b.CourseCode,
					Room:     orDash(b.Room),
					Teacher:  orDash(TeacherShort(b.Teacher)),
					TypeText: orDash(b.Type),
					Class:    TypeClass(b.Type),
				})
				h += span - 1
				continue
			}
			if !covered(blocks, h) {
				row.Cells = append(row.Cells, Cell{Hour: h, Span: 1})
			}
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func covered(blocks []Block, h int) bool {
	for _, b := range blocks {
		if b.Start < h && b.End > h {
			return true
		}
	}
	return false
}

// ============================================================================
// List view
// ============================================================================

// Card is one list-view entry; list mode never merges.
type Card struct {
	SubjectName string `json:"subject_name"`
	CourseCode  string `json:"course_code"`
	Day         string `json:"day"`
	Time        string `json:"time"`
	Room        string `json:"room"`
	Teacher     string `json:"teacher"`
	Type        string `json:"type"`
}

// BuildCards turns each filtered row into a card, in input order.
func BuildCards(rows []Entry) []Card {
	cards := make([]Card, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, Card{
			SubjectName: r.SubjectName,
			CourseCode:  r.CourseCode,
			Day:         r.Day,
			Time:        TimeLabel(r),
			Room:        r.Room,
			Teacher:     r.Teacher,
			Type:        r.Type,
		})
	}
	return cards
}
