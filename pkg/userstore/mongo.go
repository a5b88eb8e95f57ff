// Package userstore provides auth.Storage implementations: a MongoDB-backed
// store for production and an in-memory store for tests and local tooling.
package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/inkwellhq/inkwell/pkg/auth"
)

const accountsCollection = "users"

// accountDoc is the persisted shape of an auth.Account. Field names follow
// the collection's existing document schema.
type accountDoc struct {
	ID               string     `bson:"_id"`
	Name             string     `bson:"name"`
	Email            string     `bson:"email"`
	PasswordHash     []byte     `bson:"password,omitempty"`
	GoogleID         string     `bson:"googleId,omitempty"`
	AuthProvider     string     `bson:"authProvider"`
	Avatar           string     `bson:"avatar,omitempty"`
	IsAdmin          bool       `bson:"isAdmin"`
	ResetTokenHash   string     `bson:"resetPasswordToken,omitempty"`
	ResetTokenExpiry *time.Time `bson:"resetPasswordExpire,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt"`
}

func toDoc(acct *auth.Account) accountDoc {
	doc := accountDoc{
		ID:             acct.ID.String(),
		Name:           acct.Name,
		Email:          acct.Email,
		PasswordHash:   acct.PasswordHash,
		GoogleID:       acct.GoogleID,
		AuthProvider:   acct.AuthProvider,
		Avatar:         acct.Avatar,
		IsAdmin:        acct.IsAdmin,
		ResetTokenHash: acct.ResetTokenHash,
		CreatedAt:      acct.CreatedAt,
		UpdatedAt:      acct.UpdatedAt,
	}
	if !acct.ResetTokenExpiry.IsZero() {
		expiry := acct.ResetTokenExpiry
		doc.ResetTokenExpiry = &expiry
	}
	return doc
}

func (d accountDoc) toAccount() (*auth.Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("userstore: malformed account id %q: %w", d.ID, err)
	}

	acct := &auth.Account{
		ID:             id,
		Name:           d.Name,
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		GoogleID:       d.GoogleID,
		AuthProvider:   d.AuthProvider,
		Avatar:         d.Avatar,
		IsAdmin:        d.IsAdmin,
		ResetTokenHash: d.ResetTokenHash,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.ResetTokenExpiry != nil {
		acct.ResetTokenExpiry = *d.ResetTokenExpiry
	}
	return acct, nil
}

// MongoStore implements auth.Storage on a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a store over the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(accountsCollection)}
}

// EnsureIndexes creates the uniqueness constraints the authentication flows
// rely on: a unique index on email and a sparse unique index on googleId.
// Concurrent registration races are resolved by these constraints, not by
// read-then-write checks.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "resetPasswordToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("userstore: failed to create indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, acct *auth.Account) error {
	_, err := s.coll.InsertOne(ctx, toDoc(acct))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("userstore: insert: %w", err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, acct *auth.Account) error {
	// Full-document replace in a single write: cleared optional fields
	// (e.g. a consumed reset token) disappear atomically with the update.
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": acct.ID.String()}, toDoc(acct))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("userstore: replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrAccountNotFound
	}
	return nil
}

func (s *MongoStore) ByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *MongoStore) ByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStore) ByGoogleID(ctx context.Context, googleID string) (*auth.Account, error) {
	return s.findOne(ctx, bson.M{"googleId": googleID})
}

func (s *MongoStore) ByResetTokenHash(ctx context.Context, hash string) (*auth.Account, error) {
	return s.findOne(ctx, bson.M{"resetPasswordToken": hash})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*auth.Account, error) {
	var doc accountDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("userstore: find: %w", err)
	}
	return doc.toAccount()
}

// Compile-time interface assertion
var _ auth.Storage = (*MongoStore)(nil)
