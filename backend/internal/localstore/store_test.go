package localstore

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"schedule_web/backend/internal/shared"
)

type room struct {
	ID   string
	Name string
}

func roomID(r room) string { return r.ID }
func setRoomID(r *room, id string) { r.ID = id }

// Requires a running MongoDB; MONGO_URI defaults to localhost.
func TestCollectionIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run MongoDB integration tests")
	}

	ctx := context.Background()
	uri := shared.GetEnv("MONGO_URI", "mongodb://localhost:27017")
	client, db, err := shared.ConnectMongoDB(ctx, shared.DefaultMongoConfig(uri, "schedule_web_test"))
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	name := "room_" + uuid.NewString()[:8]
	col := NewCollection(New(db), name, roomID, setRoomID)
	defer db.Collection("admin_" + name).Drop(ctx)

	t.Run("Insert assigns ids in order", func(t *testing.T) {
		if err := col.Create(ctx, room{Name: "A101"}, nil); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := col.Create(ctx, room{ID: "lab-1", Name: "LAB"}, nil); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		rooms, err := col.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(rooms) != 2 || rooms[0].Name != "A101" || rooms[1].ID != "lab-1" {
			t.Errorf("Unexpected rooms: %+v", rooms)
		}
		if rooms[0].ID == "" {
			t.Error("Expected generated id")
		}
	})

	t.Run("Edit keeps position", func(t *testing.T) {
		rooms, _ := col.Load(ctx)
		first := rooms[0]
		if err := col.Create(ctx, room{Name: "A102"}, &first); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		rooms, _ = col.Load(ctx)
		if len(rooms) != 2 || rooms[0].ID != first.ID || rooms[0].Name != "A102" {
			t.Errorf("Unexpected rooms after edit: %+v", rooms)
		}
	})

	t.Run("Edit with new key replaces", func(t *testing.T) {
		rooms, _ := col.Load(ctx)
		lab := rooms[1]
		if err := col.Create(ctx, room{ID: "lab-2", Name: "LAB"}, &lab); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		rooms, _ = col.Load(ctx)
		if len(rooms) != 2 || rooms[1].ID != "lab-2" {
			t.Errorf("Unexpected rooms after rekey: %+v", rooms)
		}
	})

	t.Run("Edit onto a taken id is rejected", func(t *testing.T) {
		rooms, _ := col.Load(ctx)
		first, lab := rooms[0], rooms[1]
		err := col.Create(ctx, room{ID: lab.ID, Name: "A103"}, &first)
		if !errors.Is(err, ErrDuplicateID) {
			t.Fatalf("Expected ErrDuplicateID, got %v", err)
		}
		rooms, _ = col.Load(ctx)
		if len(rooms) != 2 || rooms[0].ID != first.ID || rooms[1].Name != "LAB" {
			t.Errorf("Expected both records untouched, got %+v", rooms)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := col.Remove(ctx, "lab-2"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if err := col.Remove(ctx, "lab-2"); !errors.Is(err, ErrNoRecord) {
			t.Errorf("Expected ErrNoRecord, got %v", err)
		}
	})
}
