// ============================================================================
// backend/internal/admin/registry.go
// Builds the full set of admin pages for one session
// ============================================================================

package admin

import (
	"schedule_web/backend/internal/backendapi"
	"schedule_web/backend/internal/entity"
	"schedule_web/backend/internal/localstore"
)

// Source selects where admin records live. With a Backend every page talks to
// the REST API; otherwise a Local store keeps them in MongoDB; with neither
// the records only exist in the session.
type Source struct {
	Backend Backend
	Local   *localstore.Store
}

// Mode names the storage for logs and the health page.
func (s Source) Mode() string {
	switch {
	case s.Backend != nil:
		return "backend"
	case s.Local != nil:
		return "mongodb"
	default:
		return "memory"
	}
}

// Entry describes one admin page in menu order.
type Entry struct {
	Name  string
	Title string
	build func(Source) entity.Page
}

func entry[T any](s entity.Schema[T], r backendapi.Resource, mode SaveMode, payload func(T) map[string]any, setID func(*T, string)) Entry {
	return Entry{
		Name:  s.Name,
		Title: s.Title,
		build: func(src Source) entity.Page {
			var remote entity.Remote[T]
			switch {
			case src.Backend != nil:
				remote = NewRESTRemote(src.Backend, r, mode, s.ID, payload)
			case src.Local != nil:
				remote = localstore.NewCollection(src.Local, s.Name, s.ID, setID)
			}
			return entity.New(s, remote)
		},
	}
}

// Entries lists every admin page.
var Entries = []Entry{
	entry(TeacherSchema, backendapi.TeacherResource, SaveUpsert, teacherPayload,
		func(r *Teacher, id string) { r.ID = Text(id) }),
	entry(RoomSchema, backendapi.RoomResource, SaveUpsert, roomPayload,
		func(r *Room, id string) { r.ID = Text(id) }),
	entry(RoomTypeSchema, backendapi.RoomTypeResource, SaveUpsert, roomTypePayload,
		func(r *RoomType, id string) { r.ID = Text(id) }),
	entry(StudentGroupSchema, backendapi.StudentGroupResource, SaveUpsert, studentGroupPayload,
		func(r *StudentGroup, id string) { r.ID = Text(id) }),
	entry(GroupTypeSchema, backendapi.GroupTypeResource, SaveUpsert, groupTypePayload,
		func(r *GroupType, id string) { r.ID = Text(id) }),
	entry(TimeSlotSchema, backendapi.TimeSlotResource, SaveUpsert, timeSlotPayload,
		func(r *TimeSlot, id string) { r.ID = Text(id) }),
	entry(GroupAllowSchema, backendapi.GroupAllowResource, SaveReplace, groupAllowPayload,
		func(r *GroupAllow, id string) { r.ID = Text(id) }),
	entry(SubjectSchema, backendapi.SubjectResource, SavePut, subjectPayload,
		func(r *Subject, id string) { r.ID = Text(id) }),
	entry(CourseSchema, backendapi.CourseResource, SavePut, coursePayload,
		func(r *Course, id string) { r.ID = Text(id) }),
	entry(PreScheduleSchema, backendapi.PreScheduleResource, SavePut, preSchedulePayload,
		func(r *PreSchedule, id string) { r.ID = Text(id) }),
	entry(ActivitySchema, backendapi.ActivityResource, SavePut, activityPayload,
		func(r *Activity, id string) { r.ID = Text(id) }),
}

// Lookup finds an entry by name.
func Lookup(name string) (Entry, bool) {
	for _, e := range Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// NewPages builds a fresh controller for every entry, keyed by name.
func NewPages(src Source) map[string]entity.Page {
	pages := make(map[string]entity.Page, len(Entries))
	for _, e := range Entries {
		pages[e.Name] = e.build(src)
	}
	return pages
}
