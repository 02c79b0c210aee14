// ============================================================================
// backend/internal/admin/remote.go
// REST remotes binding admin controllers to backend resources
// ============================================================================

package admin

import (
	"context"
	"fmt"

	"schedule_web/backend/internal/backendapi"
	"schedule_web/backend/internal/entity"
)

// Backend is the part of the REST client the admin remotes need.
type Backend interface {
	Load(ctx context.Context, r backendapi.Resource, out any) error
	Create(ctx context.Context, r backendapi.Resource, payload any) error
	Update(ctx context.Context, r backendapi.Resource, id string, payload any) error
	Delete(ctx context.Context, r backendapi.Resource, id string) error
	FlushLookups(ctx context.Context)
}

var _ Backend = (*backendapi.Client)(nil)

// SaveMode selects how a record under edit is written back.
type SaveMode int

const (
	// SaveUpsert always posts to the create route; the id in the payload
	// decides between insert and update.
	SaveUpsert SaveMode = iota
	// SavePut sends PUT to the update route when the edited record has an id.
	SavePut
	// SaveReplace deletes the edited record, then posts the new one. A failed
	// post leaves the old record deleted.
	SaveReplace
)

func (m SaveMode) String() string {
	switch m {
	case SavePut:
		return "put"
	case SaveReplace:
		return "replace"
	default:
		return "upsert"
	}
}

// RESTRemote implements entity.Remote over one backend resource.
type RESTRemote[T any] struct {
	backend  Backend
	resource backendapi.Resource
	mode     SaveMode
	id       func(T) string
	payload  func(T) map[string]any
}

// NewRESTRemote binds a resource. payload builds the request body of a save.
func NewRESTRemote[T any](b Backend, r backendapi.Resource, mode SaveMode, id func(T) string, payload func(T) map[string]any) *RESTRemote[T] {
	return &RESTRemote[T]{backend: b, resource: r, mode: mode, id: id, payload: payload}
}

func (r *RESTRemote[T]) Capabilities() entity.Capabilities {
	return entity.Capabilities{Load: true, Create: true, Remove: true}
}

func (r *RESTRemote[T]) Load(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.backend.Load(ctx, r.resource, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RESTRemote[T]) Create(ctx context.Context, rec T, editing *T) error {
	body := r.payload(rec)

	editID := ""
	if editing != nil {
		editID = r.id(*editing)
	}

	var err error
	switch {
	case r.mode == SavePut && editID != "":
		err = r.backend.Update(ctx, r.resource, editID, body)
	case r.mode == SaveReplace && editID != "":
		if err = r.backend.Delete(ctx, r.resource, editID); err != nil {
			return fmt.Errorf("replace %s %s: %w", r.resource.Name, editID, err)
		}
		err = r.backend.Create(ctx, r.resource, body)
	default:
		err = r.backend.Create(ctx, r.resource, body)
	}
	if err != nil {
		return err
	}

	r.backend.FlushLookups(ctx)
	return nil
}

func (r *RESTRemote[T]) Remove(ctx context.Context, id string) error {
	if err := r.backend.Delete(ctx, r.resource, id); err != nil {
		return err
	}
	r.backend.FlushLookups(ctx)
	return nil
}

// ============================================================================
// Request bodies
// ============================================================================

func teacherPayload(r Teacher) map[string]any {
	return map[string]any{"id": number(r.ID), "name": string(r.Name)}
}

// withOptionalID adds the id only when one was typed in, so the backend
// assigns one otherwise.
func withOptionalID(body map[string]any, id Text) map[string]any {
	if id != "" {
		body["id"] = number(id)
	}
	return body
}

func roomPayload(r Room) map[string]any {
	return withOptionalID(map[string]any{"name": string(r.Name), "type": number(r.Type)}, r.ID)
}

func roomTypePayload(r RoomType) map[string]any {
	return withOptionalID(map[string]any{"name": string(r.Name)}, r.ID)
}

func studentGroupPayload(r StudentGroup) map[string]any {
	return map[string]any{"id": number(r.ID), "name": string(r.Name), "type": number(r.Type)}
}

func groupTypePayload(r GroupType) map[string]any {
	return map[string]any{"id": number(r.ID), "type": string(r.Type)}
}

func timeSlotPayload(r TimeSlot) map[string]any {
	return map[string]any{
		"id":    number(r.ID),
		"day":   string(r.Day),
		"start": string(r.Start),
		"end":   string(r.End),
	}
}

func groupAllowPayload(r GroupAllow) map[string]any {
	return map[string]any{"dept": string(r.Dept), "slot": string(r.Slot)}
}

func subjectPayload(r Subject) map[string]any {
	return map[string]any{"code": string(r.Code), "name": string(r.Name)}
}

func coursePayload(r Course) map[string]any {
	return map[string]any{
		"teacher_id":                string(r.Teacher),
		"subject_code_course":       string(r.SubjectCode),
		"subject_name_course":       string(r.SubjectName),
		"room_type_course":          string(r.RoomType),
		"section_course":            number(r.Section),
		"student_group_id":          string(r.StudentGroup),
		"theory_slot_amount_course": number(r.TheoryHours),
		"lab_slot_amount_course":    number(r.LabHours),
	}
}

func preSchedulePayload(r PreSchedule) map[string]any {
	return map[string]any{
		"teacher_name_pre":    string(r.Teacher),
		"subject_code_pre":    string(r.SubjectCode),
		"subject_name_pre":    string(r.SubjectName),
		"room_type_pre":       string(r.RoomType),
		"type_pre":            string(r.Type),
		"curriculum_type_pre": string(r.CurriculumType),
		"hours_pre":           number(r.Hours),
		"group_no_pre":        number(r.GroupNo),
		"day_pre":             string(r.Day),
		"start_time_pre":      string(r.Start),
		"stop_time_pre":       string(r.Stop),
		"room_name_pre":       string(r.Room),
	}
}

// activityPayload writes the singular *_activity keys the add and update
// routes read; the list route answers with *_activities.
func activityPayload(r Activity) map[string]any {
	return map[string]any{
		"act_name_activity":   string(r.Name),
		"day_activity":        string(r.Day),
		"start_time_activity": string(r.Start),
		"stop_time_activity":  string(r.Stop),
	}
}
