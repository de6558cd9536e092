package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joshua-takyi/servicehub/internal/helpers"
	"github.com/joshua-takyi/servicehub/internal/mailer"
	"github.com/joshua-takyi/servicehub/internal/models"
	"github.com/joshua-takyi/servicehub/internal/templates"
)

const (
	ConfirmPath         = "/confirm"
	ConfirmationSubject = "Please Confirm Your Email Address"
)

// ErrMailDispatch marks a confirmation mail that could not be delivered.
// The account it belongs to has already been stored.
var ErrMailDispatch = errors.New("failed to send confirmation email")

// VerificationService owns the email confirmation handshake: a token is
// issued when the account is created, mailed as a link, and consumed once.
type VerificationService struct {
	userRepo  models.UserRepo
	mailer    mailer.Mailer
	templates *templates.Templates
	appName   string
	logger    *slog.Logger
	now       func() time.Time
}

func NewVerificationService(userRepo models.UserRepo, m mailer.Mailer, tpl *templates.Templates, appName string, logger *slog.Logger) *VerificationService {
	return &VerificationService{
		userRepo:  userRepo,
		mailer:    m,
		templates: tpl,
		appName:   appName,
		logger:    logger,
		now:       time.Now,
	}
}

// ConfirmationLink builds {baseURL}/confirm?token={token}.
func ConfirmationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + ConfirmPath + "?token=" + url.QueryEscape(token)
}

// IssueToken stores user as a new unverified account carrying a fresh token
// and mails the confirmation link. Store errors are returned as-is. A mail
// failure returns the created account together with an ErrMailDispatch error.
func (vs *VerificationService) IssueToken(ctx context.Context, user *models.User, baseURL string) (*models.User, string, error) {
	user.VerificationToken = helpers.NewToken()
	user.IsEmailVerified = false
	user.EmailVerifiedAt = nil

	created, err := vs.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, "", err
	}

	link := ConfirmationLink(baseURL, created.VerificationToken)
	if err := vs.sendConfirmation(ctx, created, link); err != nil {
		return created, link, err
	}
	return created, link, nil
}

// ConfirmToken verifies the account holding token. The token is removed in
// the same write, so replaying it reports ErrInvalidToken.
func (vs *VerificationService) ConfirmToken(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.ErrInvalidToken
	}

	user, err := vs.userRepo.ConfirmVerificationToken(ctx, token, vs.now().UTC())
	if err != nil {
		return nil, err
	}

	vs.logger.InfoContext(ctx, "Email confirmed", "user_id", user.ID.Hex())
	return user, nil
}

// ResendConfirmation replaces the token of an unverified account and mails a
// new link. Unknown and already verified addresses both yield ErrUserNotFound.
func (vs *VerificationService) ResendConfirmation(ctx context.Context, email, baseURL string) error {
	email = models.NormalizeEmail(email)
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return &models.ValidationError{Message: "a valid email is required"}
	}

	user, err := vs.userRepo.ReplaceVerificationToken(ctx, email, helpers.NewToken(), vs.now().UTC())
	if err != nil {
		return err
	}

	return vs.sendConfirmation(ctx, user, ConfirmationLink(baseURL, user.VerificationToken))
}

func (vs *VerificationService) sendConfirmation(ctx context.Context, user *models.User, link string) error {
	html, err := vs.templates.ConfirmationEmail(templates.ConfirmationEmailData{
		AppName:    vs.appName,
		FirstName:  user.FirstName,
		ConfirmURL: link,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMailDispatch, err)
	}

	err = vs.mailer.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: ConfirmationSubject,
		HTML:    html,
		Text:    "Please confirm your email address: " + link,
	})
	if err != nil {
		vs.logger.ErrorContext(ctx, "Confirmation email failed",
			"user_id", user.ID.Hex(),
			"error", err,
		)
		return fmt.Errorf("%w: %v", ErrMailDispatch, err)
	}

	vs.logger.InfoContext(ctx, "Confirmation email sent", "user_id", user.ID.Hex())
	return nil
}

// ActivationPage renders the HTML shown after a successful confirmation.
func (vs *VerificationService) ActivationPage(user *models.User) (string, error) {
	return vs.templates.ActivationSuccess(templates.ActivationPageData{
		AppName:   vs.appName,
		FirstName: user.FirstName,
	})
}
