package repositories

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/desertthunder/kidspot/internal/models"
	"github.com/desertthunder/kidspot/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestTagRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))

		tag := models.NewTag("04A1FF", "spotify:album:abc123", map[string]string{"title": "Abbey Road"})
		if err := repo.Create(tag); err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}

		if tag.ID() == "" {
			t.Error("expected generated id after create")
		}
		if tag.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", tag.Sequence())
		}

		found, err := repo.Get(tag.ID())
		if err != nil {
			t.Fatalf("failed to get tag: %v", err)
		}

		if found.UID() != "04A1FF" {
			t.Errorf("expected uid 04A1FF, got %s", found.UID())
		}
		if found.TargetURI() != "spotify:album:abc123" {
			t.Errorf("expected target uri preserved, got %s", found.TargetURI())
		}
		if found.Metadata()["title"] != "Abbey Road" {
			t.Errorf("expected metadata round-trip, got %+v", found.Metadata())
		}
	})

	t.Run("Create Invalid Tag", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))

		tag := models.NewTag("04A1FF", "", nil)
		if err := repo.Create(tag); err == nil {
			t.Error("expected validation error for missing target")
		}
	})

	t.Run("Create Duplicate UID", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))

		if err := repo.Create(models.NewTag("04A1FF", "spotify:album:abc123", nil)); err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}

		err := repo.Create(models.NewTag("04A1FF", "spotify:album:other", nil))
		if !errors.Is(err, shared.ErrTagExists) {
			t.Errorf("expected ErrTagExists, got %v", err)
		}
	})

	t.Run("GetByUID Normalizes Input", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))

		if err := repo.Create(models.NewTag("04A1FF", "spotify:album:abc123", nil)); err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}

		found, err := repo.GetByUID("04:a1:ff")
		if err != nil {
			t.Fatalf("failed to get tag by separated uid: %v", err)
		}
		if found.UID() != "04A1FF" {
			t.Errorf("expected canonical uid, got %s", found.UID())
		}
	})

	t.Run("GetByUID Unknown", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))

		_, err := repo.GetByUID("DEADBEEF")
		if !errors.Is(err, shared.ErrUnknownTag) {
			t.Errorf("expected ErrUnknownTag, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))

		tag := models.NewTag("04A1FF", "spotify:album:abc123", nil)
		if err := repo.Create(tag); err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}

		tag.SetTargetURI("spotify:playlist:xyz789")
		tag.SetMetadata(map[string]string{"title": "Bedtime"})
		if err := repo.Update(tag); err != nil {
			t.Fatalf("failed to update tag: %v", err)
		}

		found, err := repo.Get(tag.ID())
		if err != nil {
			t.Fatalf("failed to get updated tag: %v", err)
		}
		if found.TargetURI() != "spotify:playlist:xyz789" {
			t.Errorf("expected updated target, got %s", found.TargetURI())
		}
		if found.Metadata()["title"] != "Bedtime" {
			t.Errorf("expected updated metadata, got %+v", found.Metadata())
		}
	})

	t.Run("Soft Delete", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))

		tag := models.NewTag("04A1FF", "spotify:album:abc123", nil)
		if err := repo.Create(tag); err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}

		if err := repo.DeleteByUID("04A1FF"); err != nil {
			t.Fatalf("failed to delete tag: %v", err)
		}

		if _, err := repo.GetByUID("04A1FF"); !errors.Is(err, shared.ErrUnknownTag) {
			t.Errorf("expected deleted tag to be unknown, got %v", err)
		}

		if err := repo.Delete(tag.ID()); err == nil {
			t.Error("expected error deleting an already deleted tag")
		}

		if err := repo.Create(models.NewTag("04A1FF", "spotify:album:replaced", nil)); err != nil {
			t.Errorf("expected re-registration after delete to succeed: %v", err)
		}
	})

	t.Run("List Ordered By Sequence", func(t *testing.T) {
		repo := NewTagRepository(setupTestDB(t))

		uids := []string{"AA01", "BB02", "CC03"}
		for _, uid := range uids {
			if err := repo.Create(models.NewTag(uid, "spotify:album:"+uid, nil)); err != nil {
				t.Fatalf("failed to create tag %s: %v", uid, err)
			}
		}

		tags, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list tags: %v", err)
		}
		if len(tags) != 3 {
			t.Fatalf("expected 3 tags, got %d", len(tags))
		}
		for i, tag := range tags {
			if tag.UID() != uids[i] {
				t.Errorf("expected %s at position %d, got %s", uids[i], i, tag.UID())
			}
		}
	})
}
