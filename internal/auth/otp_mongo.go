package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxVerifyAttempts caps guesses against a single code before it is burned.
const maxVerifyAttempts = 5

type otpDocument struct {
	Identifier  string     `bson:"identifier"`
	CodeHash    string     `bson:"code_hash"`
	Salt        string     `bson:"salt"`
	Attempts    int        `bson:"attempts"`
	MaxAttempts int        `bson:"max_attempts"`
	ExpiresAt   time.Time  `bson:"expires_at"`
	ConsumedAt  *time.Time `bson:"consumed_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
}

// MongoStore is the durable Store variant. Codes are stored salted and
// hashed, never raw, and verification is rate-limited per code.
type MongoStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoStore creates a Mongo-backed store on the given database and
// ensures its lookup indexes exist.
func NewMongoStore(ctx context.Context, db *mongo.Database, now func() time.Time) (*MongoStore, error) {
	if now == nil {
		now = time.Now
	}
	collection := db.Collection("otps")
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "identifier", Value: 1}, {Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create otp indexes: %w", err)
	}
	return &MongoStore{collection: collection, now: now}, nil
}

func hashCode(code, salt string) string {
	sum := sha256.Sum256([]byte(code + ":" + salt))
	return hex.EncodeToString(sum[:])
}

// Put removes previous active codes for the identifier and stores a fresh
// salted hash.
func (s *MongoStore) Put(ctx context.Context, identifier, code string, ttl time.Duration) error {
	saltBytes := make([]byte, 8)
	if _, err := rand.Read(saltBytes); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	salt := hex.EncodeToString(saltBytes)

	if _, err := s.collection.DeleteMany(ctx, bson.M{"identifier": identifier, "consumed_at": nil}); err != nil {
		return fmt.Errorf("failed to clear previous codes: %w", err)
	}

	doc := otpDocument{
		Identifier:  identifier,
		CodeHash:    hashCode(code, salt),
		Salt:        salt,
		MaxAttempts: maxVerifyAttempts,
		ExpiresAt:   s.now().Add(ttl),
		CreatedAt:   s.now(),
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}
	return nil
}

// Verify checks a code against the active entry for the identifier. A match
// marks the entry consumed; a mismatch increments the attempt counter.
func (s *MongoStore) Verify(ctx context.Context, identifier, code string) (bool, error) {
	filter := bson.M{
		"identifier":  identifier,
		"consumed_at": nil,
		"expires_at":  bson.M{"$gt": s.now()},
	}
	var doc otpDocument
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up code: %w", err)
	}
	if doc.Attempts >= doc.MaxAttempts {
		return false, nil
	}

	candidate := hashCode(code, doc.Salt)
	ok := subtle.ConstantTimeCompare([]byte(candidate), []byte(doc.CodeHash)) == 1

	update := bson.M{"$inc": bson.M{"attempts": 1}}
	if ok {
		update["$set"] = bson.M{"consumed_at": s.now()}
	}
	if _, err := s.collection.UpdateOne(ctx, filter, update); err != nil {
		return false, fmt.Errorf("failed to record attempt: %w", err)
	}
	return ok, nil
}

// Peek reads entry metadata without consuming it.
func (s *MongoStore) Peek(ctx context.Context, identifier string) (*Entry, error) {
	var doc otpDocument
	err := s.collection.FindOne(ctx, bson.M{"identifier": identifier, "consumed_at": nil}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}
	return &Entry{Identifier: doc.Identifier, ExpiresAt: doc.ExpiresAt, Attempts: doc.Attempts}, nil
}

// PurgeExpired removes expired and consumed entries. The TTL index handles
// expiry on its own eventually; this is for eager cleanup in admin tooling.
func (s *MongoStore) PurgeExpired(ctx context.Context) error {
	_, err := s.collection.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"expires_at": bson.M{"$lte": s.now()}},
		bson.M{"consumed_at": bson.M{"$ne": nil}},
	}})
	if err != nil {
		return fmt.Errorf("failed to purge expired codes: %w", err)
	}
	return nil
}
