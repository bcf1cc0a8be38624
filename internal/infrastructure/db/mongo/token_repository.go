package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/firesafety/incident-system/internal/core/domain"
)

const collectionTokens = "tokens"

// TokenRepository is the Mongo-backed token ledger.
type TokenRepository struct {
	col *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{col: db.Collection(collectionTokens)}
}

type tokenDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Type      string             `bson:"type"`
	Value     string             `bson:"value"`
	ExpiresAt time.Time          `bson:"expires_at"`
	Disabled  bool               `bson:"disabled"`
	Username  string             `bson:"username"`
}

func (r *TokenRepository) Insert(ctx context.Context, token *domain.Token) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := tokenDoc{
		Type:      string(token.Type),
		Value:     token.Value,
		ExpiresAt: token.ExpiresAt.UTC(),
		Disabled:  token.Disabled,
		Username:  token.Username,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		token.ID = oid.Hex()
	}
	return nil
}

func (r *TokenRepository) FindByValue(ctx context.Context, value string) (*domain.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc tokenDoc
	if err := r.col.FindOne(ctx, bson.M{"value": value}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return docToToken(doc), nil
}

func (r *TokenRepository) FindByUsername(ctx context.Context, username string) ([]*domain.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"username": username})
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer cur.Close(ctx)

	var tokens []*domain.Token
	for cur.Next(ctx) {
		var doc tokenDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode token: %w", err)
		}
		tokens = append(tokens, docToToken(doc))
	}
	return tokens, cur.Err()
}

// Disable flips the permanent disabled flag. Disabling an already disabled
// token is a harmless no-op.
func (r *TokenRepository) Disable(ctx context.Context, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"value": value},
		bson.M{"$set": bson.M{"disabled": true}},
	)
	if err != nil {
		return fmt.Errorf("disable token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func (r *TokenRepository) DeleteByValue(ctx context.Context, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"value": value}); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// EnsureIndexes creates lookup indexes on value and username.
func (r *TokenRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "value", Value: 1}}},
		{Keys: bson.D{{Key: "username", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func docToToken(doc tokenDoc) *domain.Token {
	return &domain.Token{
		ID:        doc.ID.Hex(),
		Type:      domain.TokenType(doc.Type),
		Value:     doc.Value,
		ExpiresAt: doc.ExpiresAt.UTC(),
		Disabled:  doc.Disabled,
		Username:  doc.Username,
	}
}
