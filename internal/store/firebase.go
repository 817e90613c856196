package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// DefaultFirebaseRoot is the Realtime Database path sessions live under.
const DefaultFirebaseRoot = "sessions"

// firebaseRecord is the value stored at <root>/<id>.
// Count keeps trailing empty slots, which the database does not store.
type firebaseRecord struct {
	Answers   []string `json:"answers"`
	Count     int      `json:"count"`
	UpdatedAt int64    `json:"updated_at"`
}

// realtimeDB is the subset of the Realtime Database used by the store.
type realtimeDB interface {
	Set(ctx context.Context, path string, v any) error
	Get(ctx context.Context, path string, v any) error
	Delete(ctx context.Context, path string) error
}

// refDB adapts *db.Client to realtimeDB.
type refDB struct {
	client *db.Client
}

func (r refDB) Set(ctx context.Context, path string, v any) error {
	return r.client.NewRef(path).Set(ctx, v)
}

func (r refDB) Get(ctx context.Context, path string, v any) error {
	return r.client.NewRef(path).Get(ctx, v)
}

func (r refDB) Delete(ctx context.Context, path string) error {
	return r.client.NewRef(path).Delete(ctx)
}

// FirebaseOptions configures the Realtime Database backend.
type FirebaseOptions struct {
	DatabaseURL     string
	CredentialsFile string
	Root            string
}

// Firebase persists answers in a Firebase Realtime Database.
type Firebase struct {
	db   realtimeDB
	root string
}

// NewFirebase connects to the Realtime Database described by opts.
func NewFirebase(ctx context.Context, opts FirebaseOptions) (*Firebase, error) {
	if opts.DatabaseURL == "" {
		return nil, errors.New("firebase database URL is required")
	}
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: opts.DatabaseURL}, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting database client: %w", err)
	}
	return newFirebase(refDB{client: client}, opts.Root), nil
}

func newFirebase(rdb realtimeDB, root string) *Firebase {
	root = strings.Trim(root, "/")
	if root == "" {
		root = DefaultFirebaseRoot
	}
	return &Firebase{db: rdb, root: root}
}

// path returns the database path of session id. Database keys cannot contain
// . # $ [ ] or /.
func (s *Firebase) path(id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	if strings.ContainsAny(id, ".#$[]/") {
		return "", fmt.Errorf("%w: %q contains characters not allowed in database keys", ErrInvalidSessionID, id)
	}
	return s.root + "/" + id, nil
}

// Save replaces the record of session id.
func (s *Firebase) Save(ctx context.Context, id string, answers []string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	rec := firebaseRecord{
		Answers:   cloneAnswers(answers),
		Count:     len(answers),
		UpdatedAt: time.Now().UTC().UnixMilli(),
	}
	if err = s.db.Set(ctx, p, rec); err != nil {
		return fmt.Errorf("saving answers: %w", err)
	}
	return nil
}

// Load reads the record of session id. A missing path decodes as null.
func (s *Firebase) Load(ctx context.Context, id string) ([]string, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	var rec *firebaseRecord
	if err = s.db.Get(ctx, p, &rec); err != nil {
		return nil, fmt.Errorf("loading answers: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if rec.Count < len(rec.Answers) {
		return nil, fmt.Errorf("%w: %d answers for count %d", ErrStoreCorrupted, len(rec.Answers), rec.Count)
	}
	answers := make([]string, rec.Count)
	copy(answers, rec.Answers)
	return answers, nil
}

// Clear deletes the record of session id.
func (s *Firebase) Clear(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err = s.db.Delete(ctx, p); err != nil {
		return fmt.Errorf("clearing answers: %w", err)
	}
	return nil
}
