// Package testutil holds in-memory stand-ins for the store, mailer and
// upload backends, shared by service and handler tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joshua-takyi/servicehub/internal/mailer"
	"github.com/joshua-takyi/servicehub/internal/models"
	"github.com/joshua-takyi/servicehub/internal/storage"
)

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MemoryUserRepo mimics the mongo repository, including the unique email
// and phone indexes.
type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	Calls int
	// FailWith, when set, is returned by every operation.
	FailWith error
}

var _ models.UserRepo = (*MemoryUserRepo)(nil)

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *MemoryUserRepo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// Get returns a copy of the stored document without counting as a call.
func (m *MemoryUserRepo) Get(id primitive.ObjectID) (*models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, false
	}
	c := *u
	return &c, true
}

func (m *MemoryUserRepo) begin() error {
	m.Calls++
	return m.FailWith
}

func (m *MemoryUserRepo) conflict(u *models.User, skip primitive.ObjectID) error {
	for id, existing := range m.users {
		if id == skip {
			continue
		}
		if existing.Email == u.Email {
			return models.ErrEmailExists
		}
		if existing.Phone == u.Phone {
			return models.ErrPhoneExists
		}
	}
	return nil
}

func (m *MemoryUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if err := m.conflict(user, user.ID); err != nil {
		return nil, err
	}
	stored := *user
	m.users[user.ID] = &stored
	return user, nil
}

func (m *MemoryUserRepo) find(match func(*models.User) bool) *models.User {
	for _, u := range m.users {
		if match(u) {
			return u
		}
	}
	return nil
}

func (m *MemoryUserRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	u := m.find(func(u *models.User) bool { return u.Email == email })
	if u == nil {
		return nil, models.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *MemoryUserRepo) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *MemoryUserRepo) ListUsers(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryUserRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	next := *u
	for k, v := range fields {
		switch k {
		case "first_name":
			next.FirstName, _ = v.(string)
		case "last_name":
			next.LastName, _ = v.(string)
		case "phone":
			next.Phone, _ = v.(string)
		case "updated_at":
			next.UpdatedAt, _ = v.(time.Time)
		default:
			return nil, fmt.Errorf("memory repo cannot set %q", k)
		}
	}
	if err := m.conflict(&next, id); err != nil {
		return nil, err
	}
	m.users[id] = &next
	c := next
	return &c, nil
}

func (m *MemoryUserRepo) DeleteUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	delete(m.users, id)
	return u, nil
}

func (m *MemoryUserRepo) ConfirmVerificationToken(ctx context.Context, token string, at time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	u := m.find(func(u *models.User) bool {
		return u.VerificationToken != "" && u.VerificationToken == token && !u.IsEmailVerified
	})
	if u == nil {
		return nil, models.ErrInvalidToken
	}
	verifiedAt := at
	u.IsEmailVerified = true
	u.EmailVerifiedAt = &verifiedAt
	u.UpdatedAt = at
	u.VerificationToken = ""
	c := *u
	return &c, nil
}

func (m *MemoryUserRepo) ReplaceVerificationToken(ctx context.Context, email, token string, at time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	u := m.find(func(u *models.User) bool { return u.Email == email && !u.IsEmailVerified })
	if u == nil {
		return nil, models.ErrUserNotFound
	}
	u.VerificationToken = token
	u.UpdatedAt = at
	c := *u
	return &c, nil
}

// RecordingMailer keeps every message it is asked to send.
type RecordingMailer struct {
	mu       sync.Mutex
	Messages []mailer.Message
	Err      error
}

var _ mailer.Mailer = (*RecordingMailer)(nil)

func (r *RecordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Messages = append(r.Messages, msg)
	return nil
}

func (r *RecordingMailer) Sent() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.Messages...)
}

// MemoryUploader records saved and removed asset names.
type MemoryUploader struct {
	mu      sync.Mutex
	Saved   []string
	Removed []string
	Err     error
}

var _ storage.Uploader = (*MemoryUploader)(nil)

func (m *MemoryUploader) Save(ctx context.Context, file *multipart.FileHeader, baseURL string) (*storage.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	name := fmt.Sprintf("%d-%s", len(m.Saved)+1, file.Filename)
	m.Saved = append(m.Saved, name)
	return &storage.Asset{Name: name, URL: baseURL + storage.PublicPath + "/" + name}, nil
}

func (m *MemoryUploader) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, name)
	return nil
}

var ErrBoom = errors.New("boom")
