package timetable

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Category selects which entry field the viewer groups by.
type Category string

const (
	CategoryTeacher      Category = "Teacher"
	CategoryRoom         Category = "Room"
	CategoryStudentGroup Category = "Student_Group"
)

// Categories in selector order.
var Categories = []Category{CategoryTeacher, CategoryRoom, CategoryStudentGroup}

// ParseCategory accepts the selector value; anything unknown means Teacher.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryRoom:
		return CategoryRoom
	case CategoryStudentGroup:
		return CategoryStudentGroup
	default:
		return CategoryTeacher
	}
}

// Field returns the entry value this category groups on.
func (c Category) Field(e Entry) string {
	switch c {
	case CategoryRoom:
		return e.Room
	case CategoryStudentGroup:
		return e.StudentGroup
	default:
		return e.Teacher
	}
}

// Label is the Thai noun shown in titles.
func (c Category) Label() string {
	switch c {
	case CategoryRoom:
		return "ห้อง"
	case CategoryStudentGroup:
		return "กลุ่มนักศึกษา"
	default:
		return "อาจารย์"
	}
}

// UniqueItems lists the distinct, trimmed, non-empty values of the category
// field, sorted with Thai collation.
func UniqueItems(entries []Entry, c Category) []string {
	seen := make(map[string]struct{})
	items := []string{}
	for _, e := range entries {
		v := strings.TrimSpace(c.Field(e))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		items = append(items, v)
	}
	collate.New(language.Thai).SortStrings(items)
	return items
}

// Filter keeps the rows of one item, then applies the free-text search
// (case-insensitive substring on subject, code, teacher and room).
func Filter(entries []Entry, c Category, item, search string) []Entry {
	out := []Entry{}
	q := strings.ToLower(search)
	for _, e := range entries {
		if strings.TrimSpace(c.Field(e)) != item {
			continue
		}
		if q != "" && !matches(e, q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matches(e Entry, q string) bool {
	for _, s := range []string{e.SubjectName, e.CourseCode, e.Teacher, e.Room} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}
