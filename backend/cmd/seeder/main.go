package main

import (
	"context"
	"log"
	"time"

	"schedule_web/backend/internal/admin"
	"schedule_web/backend/internal/entity"
	"schedule_web/backend/internal/localstore"
	"schedule_web/backend/internal/shared"
)

// Sample reference data for running the admin pages offline
const (
	TypeLecture = "1"
	TypeLab     = "2"

	GroupRegular = "1"
	GroupSpecial = "2"
)

func main() {
	log.Println("INFO: Starting Offline Admin Seeder...")

	if err := shared.LoadEnv(".env"); err != nil {
		log.Println("INFO: continuing with system environment variables")
	}

	uri := shared.GetEnv("MONGO_URI", "mongodb://localhost:27017")
	dbName := shared.GetEnv("MONGO_DB_NAME", "schedule_web")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, db, err := shared.ConnectMongoDB(ctx, shared.DefaultMongoConfig(uri, dbName))
	if err != nil {
		log.Fatalf("FATAL: Failed to connect to MongoDB: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	store := localstore.New(db)

	// Drop the admin collections to ensure a clean start
	clearAdminCollections(ctx, store)

	// --- 1. Lookup entities ---
	seed(ctx, store, admin.RoomTypeSchema, func(r *admin.RoomType, id string) { r.ID = admin.Text(id) }, []admin.RoomType{
		{ID: TypeLecture, Name: "ห้องบรรยาย"},
		{ID: TypeLab, Name: "ห้องปฏิบัติการ"},
	})
	seed(ctx, store, admin.GroupTypeSchema, func(r *admin.GroupType, id string) { r.ID = admin.Text(id) }, []admin.GroupType{
		{ID: GroupRegular, Type: "ภาคปกติ"},
		{ID: GroupSpecial, Type: "ภาคพิเศษ"},
	})
	seed(ctx, store, admin.TeacherSchema, func(r *admin.Teacher, id string) { r.ID = admin.Text(id) }, []admin.Teacher{
		{ID: "1", Name: "อ.สมชาย ใจดี"},
		{ID: "2", Name: "อ.วิไล รักเรียน"},
	})
	seed(ctx, store, admin.RoomSchema, func(r *admin.Room, id string) { r.ID = admin.Text(id) }, []admin.Room{
		{ID: "101", Name: "R101", Type: TypeLecture},
		{ID: "201", Name: "LAB1", Type: TypeLab},
	})
	seed(ctx, store, admin.StudentGroupSchema, func(r *admin.StudentGroup, id string) { r.ID = admin.Text(id) }, []admin.StudentGroup{
		{ID: "1", Name: "CS1", Type: GroupRegular},
		{ID: "2", Name: "CS2", Type: GroupSpecial},
	})
	seed(ctx, store, admin.TimeSlotSchema, func(r *admin.TimeSlot, id string) { r.ID = admin.Text(id) }, []admin.TimeSlot{
		{ID: "1", Day: "จันทร์", Start: "08:00", End: "09:00"},
		{ID: "2", Day: "จันทร์", Start: "09:00", End: "10:00"},
		{ID: "3", Day: "เสาร์", Start: "09:00", End: "10:00"},
	})
	seed(ctx, store, admin.GroupAllowSchema, func(r *admin.GroupAllow, id string) { r.ID = admin.Text(id) }, []admin.GroupAllow{
		{Dept: GroupSpecial, Slot: "3"},
	})

	// --- 2. Course entities ---
	seed(ctx, store, admin.SubjectSchema, func(r *admin.Subject, id string) { r.ID = admin.Text(id) }, []admin.Subject{
		{Code: "CS101", Name: "Programming"},
		{Code: "CS201", Name: "Data Structures"},
	})
	seed(ctx, store, admin.CourseSchema, func(r *admin.Course, id string) { r.ID = admin.Text(id) }, []admin.Course{
		{Teacher: "1", SubjectCode: "CS101", SubjectName: "Programming", RoomType: TypeLecture,
			Section: "1", StudentGroup: "1", TheoryHours: "2", LabHours: "2"},
	})
	seed(ctx, store, admin.PreScheduleSchema, func(r *admin.PreSchedule, id string) { r.ID = admin.Text(id) }, []admin.PreSchedule{
		{Teacher: "อ.วิไล รักเรียน", SubjectCode: "CS201", SubjectName: "Data Structures", RoomType: "lecture",
			CurriculumType: "ภาคปกติ", Hours: "2", Day: "อังคาร", Start: "10:00", Stop: "12:00", Room: "R101"},
	})
	seed(ctx, store, admin.ActivitySchema, func(r *admin.Activity, id string) { r.ID = admin.Text(id) }, []admin.Activity{
		{Name: "กิจกรรมหน้าเสาธง", Day: "พุธ", Start: "15:00", Stop: "17:00"},
	})

	log.Println("INFO: All admin data seeded successfully.")
}

// ============================================================================
// SEEDING FUNCTIONS
// ============================================================================

func clearAdminCollections(ctx context.Context, store *localstore.Store) {
	for _, e := range admin.Entries {
		if err := store.Drop(ctx, e.Name); err != nil {
			log.Fatalf("FATAL: Failed to drop %s: %v", e.Name, err)
		}
	}
	log.Println("INFO: Admin collections cleared successfully.")
}

// seed inserts records through the same collection the offline pages use,
// so ids and ordering match what the web front reads back.
func seed[T any](ctx context.Context, store *localstore.Store, s entity.Schema[T], setID func(*T, string), records []T) {
	log.Printf("--- Seeding %s ---", s.Title)
	col := localstore.NewCollection(store, s.Name, s.ID, setID)
	for i, rec := range records {
		if err := col.Create(ctx, rec, nil); err != nil {
			log.Fatalf("FATAL: Error seeding %s #%d: %v", s.Name, i+1, err)
		}
	}
	log.Printf("Seeded %d %s records", len(records), s.Name)
}
