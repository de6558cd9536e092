package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account document stored in the users collection.
// Credential material (password hash, verification and remember tokens) is
// tagged json:"-" so no response path can leak it.
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName         string             `bson:"first_name" json:"first_name"`
	LastName          string             `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Email             string             `bson:"email" json:"email"`
	Phone             string             `bson:"phone" json:"phone"`
	Password          string             `bson:"password" json:"-"`
	Image             string             `bson:"image,omitempty" json:"image,omitempty"`
	ImageURL          string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	VerificationToken string             `bson:"verification_token,omitempty" json:"-"`
	IsEmailVerified   bool               `bson:"is_email_verified" json:"is_email_verified"`
	EmailVerifiedAt   *time.Time         `bson:"email_verified_at,omitempty" json:"email_verified_at,omitempty"`
	RememberToken     string             `bson:"remember_token" json:"-"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u *User) BeforeCreate(now time.Time) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = now
	u.UpdatedAt = now
}

// RegisterInput carries the multipart form fields of a registration request.
type RegisterInput struct {
	FirstName string `form:"first_name" json:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name" json:"last_name" validate:"max=100"`
	Email     string `form:"email" json:"email" validate:"required,email"`
	Phone     string `form:"phone" json:"phone" validate:"required,max=32"`
	Password  string `form:"password" json:"password" validate:"required,max=72"`
}

func (in *RegisterInput) Normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdatableUserFields maps each key a client may change through the generic
// update endpoint to the validator rules RegisterInput applies to it.
// Everything else is rejected.
var UpdatableUserFields = map[string]string{
	"first_name": "required,max=100",
	"last_name":  "max=100",
	"phone":      "required,max=32",
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseUserID validates a path id before any store access.
func ParseUserID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
