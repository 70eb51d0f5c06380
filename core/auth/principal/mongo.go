package principal

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kochabx/authkit/core/auth"
)

// Mongo 基于 MongoDB 集合的主体存储，文档 _id 为主体 key
type Mongo struct {
	checker
	coll *mongo.Collection
}

// NewMongo hasher 为 nil 时使用 argon2id
func NewMongo(coll *mongo.Collection, h Hasher) (*Mongo, error) {
	c, err := newChecker(h)
	if err != nil {
		return nil, err
	}
	return &Mongo{checker: c, coll: coll}, nil
}

// EnsureIndexes username 唯一索引与 email 稀疏唯一索引
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	return err
}

// Create 哈希口令并插入文档。
// username 与 email 跨字段冲突由插入前的查询拒绝，同字段冲突由唯一索引拒绝
func (s *Mongo) Create(ctx context.Context, rec Record, secret string) error {
	if err := s.prepare(&rec, secret); err != nil {
		return err
	}
	ids := rec.identifiers()
	n, err := s.coll.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"username": bson.M{"$in": ids}},
		bson.M{"email": bson.M{"$in": ids}},
	}})
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicate
	}

	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	_, err = s.coll.InsertOne(ctx, &rec)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// SetRoles 更新角色
func (s *Mongo) SetRoles(ctx context.Context, key string, roles ...string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": key},
		bson.M{"$set": bson.M{"roles": roles, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return auth.ErrPrincipalNotFound
	}
	return nil
}

// VerifyCredentials implements auth.PrincipalStore，identifier 匹配 username 或 email
func (s *Mongo) VerifyCredentials(ctx context.Context, identifier, secret string) (*auth.Principal, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}}
	var rec Record
	err := s.coll.FindOne(ctx, filter).Decode(&rec)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return s.check(nil, secret), nil
	case err != nil:
		return nil, err
	}
	return s.check(&rec, secret), nil
}

// FindByKey implements auth.PrincipalStore
func (s *Mongo) FindByKey(ctx context.Context, key string) (*auth.Principal, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": key, "disabled": false}).Decode(&rec)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, auth.ErrPrincipalNotFound
	case err != nil:
		return nil, err
	}
	return rec.Principal(), nil
}

var (
	_ auth.PrincipalStore = (*Memory)(nil)
	_ auth.PrincipalStore = (*Gorm)(nil)
	_ auth.PrincipalStore = (*Mongo)(nil)
)
