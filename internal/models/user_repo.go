package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection = "users"

	EmailIndexName     = "uniq_email"
	PhoneIndexName     = "uniq_phone"
	TokenIndexName     = "verification_token"
	CreatedAtIndexName = "created_at_desc"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) (*User, error)
	ConfirmVerificationToken(ctx context.Context, token string, at time.Time) (*User, error)
	ReplaceVerificationToken(ctx context.Context, email, token string, at time.Time) (*User, error)
}

// EnsureUserIndexes creates the unique email/phone indexes the registration
// path depends on, plus the token and list-order indexes.
func (mdb *MongodbRepo) EnsureUserIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, UsersCollection)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	_, err = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(EmailIndexName),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(PhoneIndexName),
		},
		{
			Keys:    bson.D{{Key: "verification_token", Value: 1}},
			Options: options.Index().SetSparse(true).SetName(TokenIndexName),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName(CreatedAtIndexName),
		},
	})
	if err != nil {
		return fmt.Errorf("error creating user indexes: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}

	if _, err := col.InsertOne(ctx, user); err != nil {
		return nil, mapWriteError(err, "error inserting user")
	}
	return user, nil
}

func (mdb *MongodbRepo) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return mdb.findOne(ctx, bson.M{"email": email})
}

func (mdb *MongodbRepo) FindUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return mdb.findOne(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) findOne(ctx context.Context, filter bson.M) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var user User
	if err := col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) ListUsers(ctx context.Context) ([]*User, error) {
	col, err := mdb.GetCollection(ctx, UsersCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]*User, 0)
	for cursor.Next(ctx) {
		var user User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("error decoding user: %w", err)
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return users, nil
}

func (mdb *MongodbRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*User, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	return mdb.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, ErrUserNotFound)
}

func (mdb *MongodbRepo) DeleteUser(ctx context.Context, id primitive.ObjectID) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var user User
	if err := col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error deleting user: %w", err)
	}
	return &user, nil
}

// ConfirmVerificationToken flips an unverified account to verified and drops
// its token in one atomic update. A consumed or unknown token matches nothing.
func (mdb *MongodbRepo) ConfirmVerificationToken(ctx context.Context, token string, at time.Time) (*User, error) {
	filter := bson.M{
		"verification_token": token,
		"is_email_verified":  false,
	}
	update := bson.M{
		"$set": bson.M{
			"is_email_verified": true,
			"email_verified_at": at,
			"updated_at":        at,
		},
		"$unset": bson.M{
			"verification_token": "",
		},
	}
	return mdb.findOneAndUpdate(ctx, filter, update, ErrInvalidToken)
}

func (mdb *MongodbRepo) ReplaceVerificationToken(ctx context.Context, email, token string, at time.Time) (*User, error) {
	filter := bson.M{
		"email":             email,
		"is_email_verified": false,
	}
	update := bson.M{
		"$set": bson.M{
			"verification_token": token,
			"updated_at":         at,
		},
	}
	return mdb.findOneAndUpdate(ctx, filter, update, ErrUserNotFound)
}

func (mdb *MongodbRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M, notFound error) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersCollection)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user User
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, mapWriteError(err, "error updating user")
	}
	return &user, nil
}

// mapWriteError names the unique index a duplicate-key error came from.
func mapWriteError(err error, msg string) error {
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	switch errMsg := err.Error(); {
	case strings.Contains(errMsg, EmailIndexName):
		return ErrEmailExists
	case strings.Contains(errMsg, PhoneIndexName):
		return ErrPhoneExists
	default:
		return &ConflictError{Message: "User already exists"}
	}
}
