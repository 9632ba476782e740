package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/kidspot/internal/models"
	"github.com/desertthunder/kidspot/internal/shared"
)

// TagRepository implements models.Repository[*models.Tag] for the RFID tag mapping.
//
// The mapping is written by the registration tool and read by the RFID
// dispatcher, which resolves swipes via GetByUID.
type TagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new TagRepository with the given database connection
func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create inserts a new tag into the database with generated ID and sequence.
// The UID must not collide with an existing live row.
func (r *TagRepository) Create(tag *models.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if existing, err := r.GetByUID(tag.UID()); err == nil && existing != nil {
		return fmt.Errorf("%w: %s", shared.ErrTagExists, tag.UID())
	}

	sequence, err := NextSequence(r.db, "tags")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	tag.SetID(id)
	tag.SetSequence(sequence)

	metadata, err := json.Marshal(tag.Metadata())
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO tags (id, sequence, uid, target_uri, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		tag.UID(),
		tag.TargetURI(),
		string(metadata),
		tag.CreatedAt(),
		tag.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}

	return nil
}

// Get retrieves a tag by ID, excluding soft-deleted tags
func (r *TagRepository) Get(id string) (*models.Tag, error) {
	query := `
		SELECT id, sequence, uid, target_uri, metadata, created_at, updated_at, deleted_at
		FROM tags
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByUID retrieves a tag by its canonical UID.
//
// Returns shared.ErrUnknownTag when no live row matches, which the RFID
// dispatcher maps to the error indicator.
func (r *TagRepository) GetByUID(uid string) (*models.Tag, error) {
	query := `
		SELECT id, sequence, uid, target_uri, metadata, created_at, updated_at, deleted_at
		FROM tags
		WHERE uid = ? AND deleted_at IS NULL
	`

	tag, err := r.scanOne(r.db.QueryRow(query, models.NormalizeUID(uid)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", shared.ErrUnknownTag, uid)
		}
		return nil, err
	}
	return tag, nil
}

// Update modifies an existing tag's target and metadata
func (r *TagRepository) Update(tag *models.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	tag.SetUpdatedAt(now)

	metadata, err := json.Marshal(tag.Metadata())
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		UPDATE tags
		SET target_uri = ?, metadata = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, tag.TargetURI(), string(metadata), now, tag.ID())
	if err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("tag not found or already deleted: %s", tag.ID())
	}

	return nil
}

// Delete soft-deletes a tag by ID
func (r *TagRepository) Delete(id string) error {
	query := `UPDATE tags SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("tag not found or already deleted: %s", id)
	}

	return nil
}

// DeleteByUID soft-deletes a tag by its canonical UID
func (r *TagRepository) DeleteByUID(uid string) error {
	tag, err := r.GetByUID(uid)
	if err != nil {
		return err
	}
	return r.Delete(tag.ID())
}

// List retrieves all live tags ordered by sequence. Criteria are ignored.
func (r *TagRepository) List(criteria map[string]any) ([]*models.Tag, error) {
	query := `
		SELECT id, sequence, uid, target_uri, metadata, created_at, updated_at, deleted_at
		FROM tags
		WHERE deleted_at IS NULL
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *TagRepository) scanOne(row *sql.Row) (*models.Tag, error) {
	return r.scanRow(row)
}

func (r *TagRepository) scanRow(row scannable) (*models.Tag, error) {
	var (
		id, uid, targetURI, metadata string
		sequence                     int
		createdAt, updatedAt         time.Time
		deletedAt                    sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &uid, &targetURI, &metadata, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(metadata), &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata for tag %s: %w", id, err)
	}

	tag := models.NewTag(uid, targetURI, meta)
	tag.SetID(id)
	tag.SetSequence(sequence)
	tag.SetCreatedAt(createdAt)
	tag.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		ts := deletedAt.Time
		tag.SetDeletedAt(&ts)
	}

	return tag, nil
}
