package profilestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	applog "github.com/janisto/profile-playground/internal/platform/logging"
	"github.com/janisto/profile-playground/internal/profile"
)

const profilesCollection = "profiles"

// firestoreProfile maps to Firestore document structure.
type firestoreProfile struct {
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Age       *int      `firestore:"age"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (fp firestoreProfile) profile(id string) *profile.Profile {
	p := profile.Profile{ID: profile.ID(id), Name: fp.Name, Email: fp.Email, Age: fp.Age}
	return p.Clone()
}

func newFirestoreProfile(in profile.Input, now time.Time) firestoreProfile {
	in = in.Normalize()
	return firestoreProfile{
		Name:      in.Name,
		Email:     in.Email,
		Age:       in.Age,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FirestoreStore implements Service using Firestore. Documents get auto-generated ids
// and mutations of existing documents run in transactions.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// List returns all profiles ordered by creation time.
func (s *FirestoreStore) List(ctx context.Context) ([]profile.Profile, error) {
	docs, err := s.client.Collection(profilesCollection).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, err
	}

	out := make([]profile.Profile, 0, len(docs))
	for _, doc := range docs {
		var fp firestoreProfile
		if err := doc.DataTo(&fp); err != nil {
			return nil, err
		}
		out = append(out, *fp.profile(doc.Ref.ID))
	}
	return out, nil
}

// Get retrieves a profile by document id.
func (s *FirestoreStore) Get(ctx context.Context, id profile.ID) (*profile.Profile, error) {
	if strings.Contains(id.String(), "/") || id.IsZero() {
		return nil, ErrNotFound
	}
	doc, err := s.client.Collection(profilesCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var fp firestoreProfile
	if err := doc.DataTo(&fp); err != nil {
		return nil, err
	}
	return fp.profile(doc.Ref.ID), nil
}

// Create stores a new profile under an auto-generated document id.
func (s *FirestoreStore) Create(ctx context.Context, in profile.Input) (*profile.Profile, error) {
	docRef := s.client.Collection(profilesCollection).NewDoc()
	fp := newFirestoreProfile(in, time.Now().UTC())

	if _, err := docRef.Create(ctx, fp); err != nil {
		applog.LogAuditEvent(ctx, "create", resourceType, docRef.ID, applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	applog.LogAuditEvent(ctx, "create", resourceType, docRef.ID, applog.AuditSuccess, nil)
	return fp.profile(docRef.ID), nil
}

// Replace overwrites a profile in a transaction, keeping its creation time.
func (s *FirestoreStore) Replace(ctx context.Context, id profile.ID, in profile.Input) (*profile.Profile, error) {
	if strings.Contains(id.String(), "/") || id.IsZero() {
		return nil, ErrNotFound
	}
	docRef := s.client.Collection(profilesCollection).Doc(id.String())

	var result *profile.Profile

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}

		var existing firestoreProfile
		if err := doc.DataTo(&existing); err != nil {
			return err
		}

		fp := newFirestoreProfile(in, time.Now().UTC())
		fp.CreatedAt = existing.CreatedAt

		if err := tx.Set(docRef, fp); err != nil {
			return err
		}

		result = fp.profile(docRef.ID)
		return nil
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "update", resourceType, id.String(), applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	applog.LogAuditEvent(ctx, "update", resourceType, id.String(), applog.AuditSuccess, nil)

	return result, nil
}

// Delete removes a profile using a transaction to ensure it exists.
func (s *FirestoreStore) Delete(ctx context.Context, id profile.ID) error {
	if strings.Contains(id.String(), "/") || id.IsZero() {
		return ErrNotFound
	}
	docRef := s.client.Collection(profilesCollection).Doc(id.String())

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}

		return tx.Delete(docRef)
	})
	if err != nil {
		applog.LogAuditEvent(ctx, "delete", resourceType, id.String(), applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return err
	}

	applog.LogAuditEvent(ctx, "delete", resourceType, id.String(), applog.AuditSuccess, nil)

	return nil
}

// Compile-time interface check
var _ Service = (*FirestoreStore)(nil)
