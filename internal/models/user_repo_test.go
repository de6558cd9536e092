package models

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testNS = "servicehub.users"

func userDoc(id primitive.ObjectID, email string, verified bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "first_name", Value: "Ama"},
		{Key: "email", Value: email},
		{Key: "phone", Value: "555"},
		{Key: "password", Value: "$2a$10$hash"},
		{Key: "is_email_verified", Value: verified},
	}
}

func TestMongodbRepoUsers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns an id", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := repo.CreateUser(context.Background(), &User{Email: "a@x.com", Phone: "555"})
		require.NoError(mt, err)
		assert.False(mt, user.ID.IsZero())
	})

	mt.Run("create maps duplicate email to conflict", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: servicehub.users index: uniq_email dup key: { email: \"a@x.com\" }",
		}))

		_, err := repo.CreateUser(context.Background(), &User{Email: "a@x.com", Phone: "555"})
		assert.ErrorIs(mt, err, ErrEmailExists)
		assert.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("create maps duplicate phone to conflict", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: servicehub.users index: uniq_phone dup key: { phone: \"555\" }",
		}))

		_, err := repo.CreateUser(context.Background(), &User{Email: "b@x.com", Phone: "555"})
		assert.ErrorIs(mt, err, ErrPhoneExists)
	})

	mt.Run("find by email decodes the document", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, userDoc(id, "a@x.com", false)))

		user, err := repo.FindUserByEmail(context.Background(), "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, user.ID)
		assert.Equal(mt, "a@x.com", user.Email)
		assert.Equal(mt, "$2a$10$hash", user.Password)
	})

	mt.Run("find by id reports missing users", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))

		_, err := repo.FindUserByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrUserNotFound)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("list returns every document", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch,
			userDoc(first, "new@x.com", false),
			userDoc(second, "old@x.com", true),
		))

		users, err := repo.ListUsers(context.Background())
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, first, users[0].ID)
		assert.True(mt, users[1].IsEmailVerified)
	})

	mt.Run("list of an empty collection is not nil", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))

		users, err := repo.ListUsers(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, users)
		assert.Empty(mt, users)
	})

	mt.Run("confirm returns the verified document", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc(id, "a@x.com", true)},
		))

		user, err := repo.ConfirmVerificationToken(context.Background(), "T1", time.Now())
		require.NoError(mt, err)
		assert.True(mt, user.IsEmailVerified)
		assert.Empty(mt, user.VerificationToken)
	})

	mt.Run("confirm with an unknown token is invalid", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: nil},
		))

		_, err := repo.ConfirmVerificationToken(context.Background(), "nope", time.Now())
		assert.ErrorIs(mt, err, ErrInvalidToken)
	})

	mt.Run("update surfaces driver failures", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
			Name:    "BadValue",
		}))

		_, err := repo.UpdateUser(context.Background(), primitive.NewObjectID(), map[string]interface{}{"first_name": "Kofi"})
		require.Error(mt, err)
		assert.False(mt, errors.Is(err, ErrNotFound))
		assert.False(mt, errors.Is(err, ErrConflict))
	})

	mt.Run("update rejects an empty field set", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")

		_, err := repo.UpdateUser(context.Background(), primitive.NewObjectID(), nil)
		assert.Error(mt, err)
	})

	mt.Run("delete returns the removed document", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc(id, "a@x.com", false)},
		))

		user, err := repo.DeleteUser(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, id, user.ID)
	})

	mt.Run("indexes are created", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.EnsureUserIndexes(context.Background()))
	})

	mt.Run("index failures are reported", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Message: "IndexOptionsConflict",
		}))

		assert.Error(mt, repo.EnsureUserIndexes(context.Background()))
	})

	mt.Run("replace token only targets unverified accounts", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "servicehub")
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := repo.ReplaceVerificationToken(context.Background(), "a@x.com", "t2", time.Now())
		assert.ErrorIs(mt, err, ErrUserNotFound)
	})
}
