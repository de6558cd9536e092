package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/joshua-takyi/servicehub/internal/helpers"
	"github.com/joshua-takyi/servicehub/internal/models"
	"github.com/joshua-takyi/servicehub/internal/storage"
)

// ErrImageUpload marks a registration rejected because its image could not
// be stored.
var ErrImageUpload = errors.New("failed to store image")

type UserService struct {
	userRepo     models.UserRepo
	verification *VerificationService
	uploader     storage.Uploader
	logger       *slog.Logger
	now          func() time.Time
}

func NewUserService(userRepo models.UserRepo, verification *VerificationService, uploader storage.Uploader, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo:     userRepo,
		verification: verification,
		uploader:     uploader,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateUser registers a new account. Uniqueness of email and phone is left
// to the store's indexes; a duplicate surfaces as a models.ConflictError.
// A failed confirmation mail is logged and does not fail the registration.
func (us *UserService) CreateUser(ctx context.Context, in models.RegisterInput, image *multipart.FileHeader, baseURL string) (*models.User, error) {
	in.Normalize()
	if err := models.Validate.Struct(in); err != nil {
		return nil, models.NewValidationError(err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Phone:         in.Phone,
		Password:      hash,
		RememberToken: helpers.NewToken(),
	}
	user.BeforeCreate(us.now().UTC())

	if image != nil {
		asset, err := us.uploader.Save(ctx, image, baseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageUpload, err)
		}
		user.Image = asset.Name
		user.ImageURL = asset.URL
	}

	created, _, err := us.verification.IssueToken(ctx, user, baseURL)
	if err != nil {
		if created != nil && errors.Is(err, ErrMailDispatch) {
			us.logger.WarnContext(ctx, "User created without confirmation email",
				"user_id", created.ID.Hex(),
				"error", err,
			)
			return created, nil
		}
		us.discardImage(ctx, user.Image)
		return nil, err
	}

	us.logger.InfoContext(ctx, "User created", "user_id", created.ID.Hex())
	return created, nil
}

// AuthenticateUser returns models.ErrInvalidCredentials for both an unknown
// email and a wrong password.
func (us *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, &models.ValidationError{Message: "All fields required"}
	}

	user, err := us.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	if !helpers.CheckPassword(user.Password, password) {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

func (us *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := us.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (us *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := models.ParseUserID(id)
	if err != nil {
		return nil, err
	}
	return us.userRepo.FindUserByID(ctx, oid)
}

// UpdateUser applies a partial update restricted to
// models.UpdatableUserFields, each value checked with the registration rules.
func (us *UserService) UpdateUser(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	oid, err := models.ParseUserID(id)
	if err != nil {
		return nil, err
	}

	update, err := us.sanitizeUpdate(fields)
	if err != nil {
		return nil, err
	}
	update["updated_at"] = us.now().UTC()

	return us.userRepo.UpdateUser(ctx, oid, update)
}

func (us *UserService) sanitizeUpdate(fields map[string]interface{}) (map[string]interface{}, error) {
	if len(fields) == 0 {
		return nil, &models.ValidationError{Message: "no fields to update"}
	}

	rejected := make(map[string]string)
	update := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		rules, ok := models.UpdatableUserFields[key]
		if !ok {
			rejected[key] = "cannot be updated"
			continue
		}
		s, ok := value.(string)
		if !ok {
			rejected[key] = "must be a string"
			continue
		}
		s = strings.TrimSpace(s)
		if err := models.Validate.Var(s, rules); err != nil {
			rejected[key] = models.FieldMessage(err)
			continue
		}
		update[key] = s
	}

	if len(rejected) > 0 {
		return nil, &models.ValidationError{Message: "invalid update", Fields: rejected}
	}
	return update, nil
}

// DeleteUser removes the account and, best effort, its uploaded image.
func (us *UserService) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := models.ParseUserID(id)
	if err != nil {
		return nil, err
	}

	user, err := us.userRepo.DeleteUser(ctx, oid)
	if err != nil {
		return nil, err
	}

	us.discardImage(ctx, user.Image)
	return user, nil
}

func (us *UserService) discardImage(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := us.uploader.Remove(ctx, name); err != nil {
		us.logger.WarnContext(ctx, "Failed to remove uploaded image", "image", name, "error", err)
	}
}

// UpdatableFields lists the keys UpdateUser accepts, sorted.
func UpdatableFields() []string {
	keys := make([]string, 0, len(models.UpdatableUserFields))
	for k := range models.UpdatableUserFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
