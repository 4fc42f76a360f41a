package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pulsecare/pulsecare-api/config"
	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
	repo "github.com/pulsecare/pulsecare-api/internal/domain/repository"
	"github.com/pulsecare/pulsecare-api/pkg/helpers"
	"github.com/pulsecare/pulsecare-api/pkg/mailer"
	"github.com/pulsecare/pulsecare-api/pkg/resettoken"
)

// AuthService implements the account flows: doctor registration, login,
// account activation, and the two-phase password reset. All collaborators
// are injected; Pub, ES and Logger may be nil and are then skipped.
type AuthService struct {
	Users    repo.UserRepository
	Profiles repo.ProfileRepository
	Doctors  repo.DoctorRepository
	Tokens   repo.TokenRepository

	Reset  *resettoken.Generator
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
	Cfg    *config.Config

	ES             *elasticsearch.Client
	ESDoctorsIndex string
}

func NewAuthService(users repo.UserRepository, profiles repo.ProfileRepository, doctors repo.DoctorRepository, tokens repo.TokenRepository, reset *resettoken.Generator, pub *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config, es *elasticsearch.Client) *AuthService {
	return &AuthService{
		Users:          users,
		Profiles:       profiles,
		Doctors:        doctors,
		Tokens:         tokens,
		Reset:          reset,
		Pub:            pub,
		Logger:         logger,
		Cfg:            cfg,
		ES:             es,
		ESDoctorsIndex: cfg.ESDoctorsIndex,
	}
}

// SiteContext carries the scheme and host of the originating request. It is
// used only to parameterize links in outgoing emails, never for decisions.
type SiteContext struct {
	Scheme string
	Host   string
}

// RegisterInput is the registration payload. All fields are required; the
// HTTP layer enforces presence before the flow runs.
type RegisterInput struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Gender               string `json:"gender"`
	Password             string `json:"-"`
	PasswordConfirmation string `json:"-"`
	Specialty            string `json:"specialty"`
}

// Register validates and creates a doctor account: user (inactive), profile
// and doctor row, in that order. The three inserts are intentionally not
// wrapped in a transaction; a failure partway leaves the earlier rows behind
// exactly like the system this replaces. On success the validated input is
// echoed back rather than the created entities.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, site SiteContext) (RegisterInput, error) {
	// Validation order is part of the contract: duplicate email, password
	// policy, confirmation, duplicate username.
	taken, err := s.Users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return RegisterInput{}, err
	}
	if taken {
		return RegisterInput{}, ErrEmailTaken
	}

	if len(in.Password) < s.Cfg.PasswordMinLength {
		return RegisterInput{}, ErrPasswordTooShort
	}

	// Confirmation is compared against the password exactly as submitted.
	if in.PasswordConfirmation != in.Password {
		return RegisterInput{}, ErrPasswordMismatch
	}

	taken, err = s.Users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return RegisterInput{}, err
	}
	if taken {
		return RegisterInput{}, ErrUsernameTaken
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return RegisterInput{}, err
	}

	u := &entity.User{
		Email:     in.Email,
		Username:  in.Username,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  false,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return RegisterInput{}, err
	}

	p := &entity.Profile{UserID: u.ID, Gender: in.Gender}
	if err := s.Profiles.Create(ctx, p); err != nil {
		return RegisterInput{}, err
	}

	d := &entity.Doctor{ProfileID: p.ID, Specialty: in.Specialty}
	if err := s.Doctors.Create(ctx, d); err != nil {
		return RegisterInput{}, err
	}

	s.sendVerificationEmail(ctx, u, site)
	s.indexDoctor(ctx, u, d)

	return in, nil
}

// Login resolves the identifier to exactly one active user, verifies the
// password, and returns the user's bearer token, creating it on first login.
func (s *AuthService) Login(ctx context.Context, email, username, password string) (entity.AuthToken, error) {
	if email == "" && username == "" {
		return entity.AuthToken{}, ErrMissingIdentifier
	}

	// Users without a usable email are excluded from matching no matter
	// which identifier was supplied; they remain reachable by username
	// only once they have an email on record.
	candidates, err := s.Users.FindByIdentifier(ctx, email, username)
	if err != nil {
		return entity.AuthToken{}, err
	}
	// Zero matches and multiple matches are deliberately indistinguishable
	// to the caller.
	if len(candidates) != 1 {
		return entity.AuthToken{}, ErrUnknownIdentifier
	}
	u := candidates[0]

	if !helpers.CheckPassword(u.Password, password) {
		return entity.AuthToken{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return entity.AuthToken{}, ErrUserNotActive
	}

	token, created, err := s.Tokens.GetOrCreate(ctx, u.ID)
	if err != nil {
		return entity.AuthToken{}, err
	}
	if created && s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Debug("issued bearer token")
	}
	return token, nil
}

// ResetRequest triggers a password-reset email. It always reports success so
// callers cannot probe which addresses are registered.
func (s *AuthService) ResetRequest(ctx context.Context, email string, site SiteContext) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		if s.Logger != nil {
			s.Logger.WithField("email", email).Debug("reset requested for unknown email")
		}
		return
	}

	tok, err := s.Reset.Issue(userState(u))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("reset token issue failed")
		}
		return
	}
	link := s.actionLink(s.Cfg.ResetPasswordURL, site, "/reset-password", u.ID, tok)
	s.publishEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateResetPassword,
		Data: map[string]any{
			"Name":        u.FirstName,
			"CompanyName": s.Cfg.CompanyName,
			"ActionURL":   link,
			"ExpiresIn":   s.Cfg.ResetTokenTTL.String(),
		},
	})
}

// VerificationState is the outcome of checking a reset or activation link.
// It is produced by PrepareResetConfirm before any field validation runs.
type VerificationState struct {
	user  *entity.User
	valid bool
}

// PrepareResetConfirm decodes the opaque uid, loads the user, and verifies
// the time-boxed token. A malformed uid, an unknown or unparsable id, and a
// missing user all collapse into the same unverified state; nothing about
// which step failed is surfaced.
func (s *AuthService) PrepareResetConfirm(ctx context.Context, uidEncoded, token string) VerificationState {
	u := s.resolveUID(ctx, uidEncoded)
	if u == nil {
		return VerificationState{}
	}
	return VerificationState{user: u, valid: s.Reset.Verify(userState(u), token)}
}

// ConfirmReset validates the new password fields against the prepared
// verification state and persists the new password hash. The confirmation
// mismatch is reported before a rejected token, matching the field-then-form
// validation order of the surrounding API.
func (s *AuthService) ConfirmReset(ctx context.Context, st VerificationState, newPassword, newPasswordConfirmation string) error {
	if newPasswordConfirmation != newPassword {
		return ErrPasswordMismatch
	}
	if !st.valid {
		return ErrResetNotAllowed
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, st.user.ID, hash)
}

// ActivateAccount flips the user active after the emailed verification link
// is followed. Invalid or expired links get the same rejection as resets.
func (s *AuthService) ActivateAccount(ctx context.Context, uidEncoded, token string) error {
	u := s.resolveUID(ctx, uidEncoded)
	if u == nil || !s.Reset.Verify(userState(u), token) {
		return ErrResetNotAllowed
	}
	if err := s.Users.SetActive(ctx, u.ID); err != nil {
		return err
	}
	if err := s.Profiles.SetEmailVerified(ctx, u.ID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("profile verify flag update failed")
	}
	return nil
}

// Profile returns the user and profile rows for the authenticated user.
func (s *AuthService) Profile(ctx context.Context, userID string) (*entity.User, *entity.Profile, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return u, p, nil
}

func (s *AuthService) resolveUID(ctx context.Context, uidEncoded string) *entity.User {
	raw, err := resettoken.DecodeUID(uidEncoded)
	if err != nil {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	u, err := s.Users.GetByID(ctx, id.String())
	if err != nil {
		return nil
	}
	return u
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, u *entity.User, site SiteContext) {
	tok, err := s.Reset.Issue(userState(u))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("verification token issue failed")
		}
		return
	}
	link := s.actionLink(s.Cfg.VerifyEmailURL, site, "/verify-email", u.ID, tok)
	s.publishEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateVerifyEmail,
		Data: map[string]any{
			"Name":        u.FirstName,
			"CompanyName": s.Cfg.CompanyName,
			"ActionURL":   link,
		},
	})
}

// actionLink prefers the configured front-end URL and falls back to the
// originating site of the request.
func (s *AuthService) actionLink(base string, site SiteContext, path, userID, token string) string {
	if base == "" && site.Host != "" {
		scheme := site.Scheme
		if scheme == "" {
			scheme = "https"
		}
		base = scheme + "://" + site.Host + path
	}
	return base + "?uid=" + resettoken.EncodeUID(userID) + "&token=" + token
}

// publishEmail enqueues an email job. Delivery is fire-and-forget: failures
// are logged and never affect the flow outcome.
func (s *AuthService) publishEmail(ctx context.Context, job mailer.EmailJob) {
	if s.Pub == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("to", job.To).Warn("email publish failed")
	}
}

func (s *AuthService) indexDoctor(ctx context.Context, u *entity.User, d *entity.Doctor) {
	if s.ES == nil || s.ESDoctorsIndex == "" {
		return
	}
	doc := map[string]any{
		"user_id":    u.ID,
		"name":       strings.TrimSpace(u.FirstName + " " + u.LastName),
		"specialty":  d.Specialty,
		"created_at": d.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESDoctorsIndex, DocumentID: d.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("doctor_id", d.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("doctor_id", d.ID).Warn("es index response error")
	}
}

func userState(u *entity.User) resettoken.UserState {
	return resettoken.UserState{ID: u.ID, PasswordHash: u.Password, Active: u.IsActive}
}
