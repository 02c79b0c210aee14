// ============================================================================
// backend/internal/admin/schemas.go
// Field tables of the admin pages: labels, validation sentinels, inputs
// ============================================================================

package admin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"schedule_web/backend/internal/entity"
)

// Placeholders of select inputs that count as "nothing chosen".
const (
	ChooseType = "เลือกประเภท"
	ChooseDay  = "เลือกวัน"
)

// text binds a record field to a form input.
func text[T any](key, label string, ptr func(*T) *Text) entity.Field[T] {
	return entity.Field[T]{
		Key:   key,
		Label: label,
		Input: entity.InputText,
		Get:   func(r T) string { return string(*ptr(&r)) },
		Set:   func(r *T, v string) { *ptr(r) = Text(v) },
	}
}

func required[T any](f entity.Field[T]) entity.Field[T] {
	f.Required = true
	return f
}

func numeric[T any](f entity.Field[T]) entity.Field[T] {
	f.Input = entity.InputNumber
	return f
}

func clock[T any](f entity.Field[T]) entity.Field[T] {
	f.Input = entity.InputTime
	return f
}

// choice turns f into a select fed by a backend lookup. sentinel may be "".
func choice[T any](f entity.Field[T], lookup, sentinel string) entity.Field[T] {
	f.Input = entity.InputSelect
	f.Lookup = lookup
	f.InvalidValue = sentinel
	return f
}

// ============================================================================
// Schemas
// ============================================================================

var TeacherSchema = entity.Schema[Teacher]{
	Name:  "teacher",
	Title: "ข้อมูลอาจารย์",
	Fields: []entity.Field[Teacher]{
		required(numeric(text("id", "รหัสอาจารย์", func(r *Teacher) *Text { return &r.ID }))),
		required(text("name", "ชื่ออาจารย์", func(r *Teacher) *Text { return &r.Name })),
	},
	ID: func(r Teacher) string { return string(r.ID) },
}

var RoomSchema = entity.Schema[Room]{
	Name:  "room",
	Title: "ข้อมูลห้องเรียน",
	Fields: []entity.Field[Room]{
		numeric(text("id", "รหัสห้อง", func(r *Room) *Text { return &r.ID })),
		required(text("name", "ชื่อห้องเรียน", func(r *Room) *Text { return &r.Name })),
		required(choice(text("type", "ประเภทห้อง", func(r *Room) *Text { return &r.Type }), "room-types", ChooseType)),
	},
	ID: func(r Room) string { return string(r.ID) },
}

var RoomTypeSchema = entity.Schema[RoomType]{
	Name:  "roomtype",
	Title: "ข้อมูลประเภทห้อง",
	Fields: []entity.Field[RoomType]{
		numeric(text("id", "รหัสประเภทห้อง", func(r *RoomType) *Text { return &r.ID })),
		required(text("name", "ชื่อประเภทห้อง", func(r *RoomType) *Text { return &r.Name })),
	},
	ID: func(r RoomType) string { return string(r.ID) },
}

var StudentGroupSchema = entity.Schema[StudentGroup]{
	Name:  "studentgroup",
	Title: "ข้อมูลกลุ่มนักศึกษา",
	Fields: []entity.Field[StudentGroup]{
		required(numeric(text("id", "รหัสกลุ่มนักศึกษา", func(r *StudentGroup) *Text { return &r.ID }))),
		required(text("name", "ชื่อกลุ่มนักศึกษา", func(r *StudentGroup) *Text { return &r.Name })),
		required(choice(text("type", "ประเภทนักศึกษา", func(r *StudentGroup) *Text { return &r.Type }), "group-types", ChooseType)),
	},
	ID: func(r StudentGroup) string { return string(r.ID) },
}

var GroupTypeSchema = entity.Schema[GroupType]{
	Name:  "grouptype",
	Title: "ข้อมูลประเภทนักศึกษา",
	Fields: []entity.Field[GroupType]{
		required(numeric(text("id", "รหัสภาค", func(r *GroupType) *Text { return &r.ID }))),
		required(choice(text("type", "ประเภทนักศึกษา", func(r *GroupType) *Text { return &r.Type }), "curriculum-types", ChooseType)),
	},
	ID: func(r GroupType) string { return string(r.ID) },
}

var TimeSlotSchema = entity.Schema[TimeSlot]{
	Name:  "timeslot",
	Title: "ข้อมูลคาบเรียน",
	Fields: []entity.Field[TimeSlot]{
		required(numeric(text("id", "รหัสคาบ", func(r *TimeSlot) *Text { return &r.ID }))),
		required(choice(text("day", "วัน", func(r *TimeSlot) *Text { return &r.Day }), "days", ChooseDay)),
		required(clock(text("start", "เวลาเริ่ม", func(r *TimeSlot) *Text { return &r.Start }))),
		required(clock(text("end", "เวลาสิ้นสุด", func(r *TimeSlot) *Text { return &r.End }))),
	},
	ID: func(r TimeSlot) string { return string(r.ID) },
}

var GroupAllowSchema = entity.Schema[GroupAllow]{
	Name:  "groupallow",
	Title: "คาบที่อนุญาตของแต่ละภาค",
	Fields: []entity.Field[GroupAllow]{
		required(text("dept", "รหัสภาค", func(r *GroupAllow) *Text { return &r.Dept })),
		required(text("slot", "รหัสคาบ", func(r *GroupAllow) *Text { return &r.Slot })),
	},
	ID: func(r GroupAllow) string { return string(r.ID) },
}

var SubjectSchema = entity.Schema[Subject]{
	Name:  "subject",
	Title: "ข้อมูลรายวิชา",
	Fields: []entity.Field[Subject]{
		required(text("code", "รหัสวิชา", func(r *Subject) *Text { return &r.Code })),
		required(text("name", "ชื่อรายวิชา", func(r *Subject) *Text { return &r.Name })),
	},
	ID: func(r Subject) string { return string(r.ID) },
}

var CourseSchema = entity.Schema[Course]{
	Name:  "course",
	Title: "ข้อมูลรายวิชาที่เปิดสอน",
	Fields: []entity.Field[Course]{
		required(choice(text("teacher", "อาจารย์", func(r *Course) *Text { return &r.Teacher }), "teachers", "")),
		required(choice(text("subject_code", "รหัสวิชา", func(r *Course) *Text { return &r.SubjectCode }), "subject-codes", "")),
		required(choice(text("subject_name", "ชื่อวิชา", func(r *Course) *Text { return &r.SubjectName }), "subject-names", "")),
		choice(text("room_type", "ประเภทห้อง", func(r *Course) *Text { return &r.RoomType }), "room-types", ""),
		numeric(text("section", "กลุ่มเรียน", func(r *Course) *Text { return &r.Section })),
		choice(text("student_group", "กลุ่มนักศึกษา", func(r *Course) *Text { return &r.StudentGroup }), "student-groups", ""),
		numeric(text("theory_hours", "ชั่วโมงทฤษฎี", func(r *Course) *Text { return &r.TheoryHours })),
		numeric(text("lab_hours", "ชั่วโมงปฏิบัติ", func(r *Course) *Text { return &r.LabHours })),
	},
	ID: func(r Course) string { return string(r.ID) },
}

var PreScheduleSchema = entity.Schema[PreSchedule]{
	Name:  "pre",
	Title: "ตารางสอนล่วงหน้า",
	Fields: []entity.Field[PreSchedule]{
		choice(text("teacher", "อาจารย์", func(r *PreSchedule) *Text { return &r.Teacher }), "teacher-names", ""),
		required(choice(text("subject_code", "รหัสวิชา", func(r *PreSchedule) *Text { return &r.SubjectCode }), "subject-codes", "")),
		choice(text("subject_name", "ชื่อวิชา", func(r *PreSchedule) *Text { return &r.SubjectName }), "subject-names", ""),
		choice(text("room_type", "ประเภทห้อง", func(r *PreSchedule) *Text { return &r.RoomType }), "subject-types", ""),
		choice(text("type", "ประเภท", func(r *PreSchedule) *Text { return &r.Type }), "department-types", ""),
		choice(text("curriculum_type", "ประเภทนักศึกษา", func(r *PreSchedule) *Text { return &r.CurriculumType }), "curriculum-types", ""),
		numeric(text("hours", "ชั่วโมง", func(r *PreSchedule) *Text { return &r.Hours })),
		numeric(text("group_no", "กลุ่มเรียน", func(r *PreSchedule) *Text { return &r.GroupNo })),
		choice(text("day", "วัน", func(r *PreSchedule) *Text { return &r.Day }), "days", ""),
		choice(text("start", "เวลาเริ่ม", func(r *PreSchedule) *Text { return &r.Start }), "start-times", ""),
		choice(text("stop", "เวลาสิ้นสุด", func(r *PreSchedule) *Text { return &r.Stop }), "stop-times", ""),
		choice(text("room", "ห้อง", func(r *PreSchedule) *Text { return &r.Room }), "room-names", ""),
	},
	ID:      func(r PreSchedule) string { return string(r.ID) },
	Prepare: fillStopTime,
}

var ActivitySchema = entity.Schema[Activity]{
	Name:  "activity",
	Title: "กิจกรรมประจำสัปดาห์",
	Fields: []entity.Field[Activity]{
		required(text("name", "ชื่อกิจกรรม", func(r *Activity) *Text { return &r.Name })),
		required(choice(text("day", "วัน", func(r *Activity) *Text { return &r.Day }), "days", "")),
		required(choice(text("start", "เวลาเริ่ม", func(r *Activity) *Text { return &r.Start }), "start-times", "")),
		required(choice(text("stop", "เวลาสิ้นสุด", func(r *Activity) *Text { return &r.Stop }), "stop-times", "")),
	},
	ID: func(r Activity) string { return string(r.ID) },
}

// ============================================================================
// Derived inputs
// ============================================================================

// fillStopTime sets an empty stop time from the start time plus the hours.
func fillStopTime(v entity.Values) {
	if v["stop"] != "" {
		return
	}
	if end, ok := StopTime(v["start"], v["hours"]); ok {
		v["stop"] = end
	}
}

// StopTime adds hours to an HH:MM start, wrapping past midnight. It fails
// when start is not HH:MM or hours is not a positive number.
func StopTime(start, hours string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(start), ":")
	if start == "" || len(parts) < 2 {
		return "", false
	}
	h, err := clockPart(parts[0])
	if err != nil {
		return "", false
	}
	m, err := clockPart(parts[1])
	if err != nil {
		return "", false
	}

	if strings.TrimSpace(hours) == "" {
		return "", false
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(hours), 64)
	if err != nil || math.IsInf(dur, 0) || dur <= 0 {
		return "", false
	}

	mins := h*60 + m + int(math.Round(dur*60))
	mins = ((mins % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60), true
}

func clockPart(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
