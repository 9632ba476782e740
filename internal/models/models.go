package models

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

var uidPattern = regexp.MustCompile(`^[0-9A-F]+$`)

// NormalizeUID converts a raw tag identifier into its canonical form: uppercase hex with no separators.
func NormalizeUID(raw string) string {
	return strings.ToUpper(strings.NewReplacer(" ", "", ":", "", "-", "").Replace(raw))
}

// Tag maps a physical RFID tag UID to a playable Spotify target.
//
// Rows are written by the registration tool and read-only for the
// dispatcher during operation.
type Tag struct {
	id        string
	sequence  int
	uid       string
	targetURI string
	metadata  map[string]string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewTag creates a Tag for the given canonical UID and playback target.
func NewTag(uid, targetURI string, metadata map[string]string) *Tag {
	now := time.Now()
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &Tag{
		uid:       NormalizeUID(uid),
		targetURI: targetURI,
		metadata:  metadata,
		createdAt: now,
		updatedAt: now,
	}
}

func (t *Tag) ID() string                  { return t.id }
func (t *Tag) Sequence() int               { return t.sequence }
func (t *Tag) UID() string                 { return t.uid }
func (t *Tag) TargetURI() string           { return t.targetURI }
func (t *Tag) Metadata() map[string]string { return t.metadata }
func (t *Tag) CreatedAt() time.Time        { return t.createdAt }
func (t *Tag) UpdatedAt() time.Time        { return t.updatedAt }
func (t *Tag) DeletedAt() *time.Time       { return t.deletedAt }

func (t *Tag) SetID(id string)              { t.id = id }
func (t *Tag) SetSequence(seq int)          { t.sequence = seq }
func (t *Tag) SetUpdatedAt(ts time.Time)    { t.updatedAt = ts }
func (t *Tag) SetCreatedAt(ts time.Time)    { t.createdAt = ts }
func (t *Tag) SetDeletedAt(ts *time.Time)   { t.deletedAt = ts }
func (t *Tag) SetTargetURI(uri string)      { t.targetURI = uri }
func (t *Tag) SetMetadata(m map[string]string) {
	if m == nil {
		m = map[string]string{}
	}
	t.metadata = m
}

// Validate checks that the UID is canonical hex and a target is set.
func (t *Tag) Validate() error {
	if t.uid == "" {
		return fmt.Errorf("tag UID is required")
	}
	if !uidPattern.MatchString(t.uid) {
		return fmt.Errorf("tag UID must be uppercase hex, got %q", t.uid)
	}
	if t.targetURI == "" {
		return fmt.Errorf("tag target URI is required")
	}
	return nil
}

// Display renders the tag's metadata values as a single log-friendly line, in stable key order.
func (t *Tag) Display() string {
	if len(t.metadata) == 0 {
		return t.targetURI
	}
	keys := make([]string, 0, len(t.metadata))
	for k := range t.metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, t.metadata[k])
	}
	return strings.Join(values, " - ")
}
