package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecare/pulsecare-api/config"
	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
	"github.com/pulsecare/pulsecare-api/pkg/helpers"
	"github.com/pulsecare/pulsecare-api/pkg/resettoken"
)

// ---- in-memory fakes ----

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = uuid.New().String()
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != "" && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeUserRepo) FindByIdentifier(_ context.Context, email, username string) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.User
	for _, u := range r.users {
		if u.Email == "" {
			continue
		}
		if u.Email == email || u.Username == username {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != "" && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("not found")
	}
	u.Password = passwordHash
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("not found")
	}
	u.IsActive = true
	return nil
}

func (r *fakeUserRepo) add(u entity.User) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	r.users[u.ID] = &u
	return &u
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	byUserID map[string]*entity.Profile
	failing  bool
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byUserID: map[string]*entity.Profile{}}
}

func (r *fakeProfileRepo) Create(_ context.Context, p *entity.Profile) error {
	if r.failing {
		return errors.New("profile insert failed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New().String()
	cp := *p
	r.byUserID[p.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byUserID[userID]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) SetEmailVerified(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byUserID[userID]
	if !ok {
		return errors.New("not found")
	}
	p.HasEmailVerified = true
	return nil
}

func (r *fakeProfileRepo) UpdateAvatar(_ context.Context, userID, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byUserID[userID]
	if !ok {
		return errors.New("not found")
	}
	p.AvatarURL = avatarURL
	return nil
}

type fakeDoctorRepo struct {
	mu          sync.Mutex
	byProfileID map[string]*entity.Doctor
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{byProfileID: map[string]*entity.Doctor{}}
}

func (r *fakeDoctorRepo) Create(_ context.Context, d *entity.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = uuid.New().String()
	cp := *d
	r.byProfileID[d.ProfileID] = &cp
	return nil
}

func (r *fakeDoctorRepo) GetByProfileID(_ context.Context, profileID string) (*entity.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byProfileID[profileID]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *d
	return &cp, nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	byUser map[string]entity.AuthToken
	calls  int
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{byUser: map[string]entity.AuthToken{}}
}

func (r *fakeTokenRepo) GetOrCreate(_ context.Context, userID string) (entity.AuthToken, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if t, ok := r.byUser[userID]; ok {
		return t, false, nil
	}
	t := entity.AuthToken{Key: fmt.Sprintf("key-%d-%s", r.calls, userID[:8]), UserID: userID, CreatedAt: time.Now()}
	r.byUser[userID] = t
	return t, true, nil
}

func (r *fakeTokenRepo) FindUserID(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byUser {
		if t.Key == key {
			return t.UserID, nil
		}
	}
	return "", errors.New("not found")
}

// ---- fixture ----

type authFixture struct {
	svc     *AuthService
	users   *fakeUserRepo
	profs   *fakeProfileRepo
	doctors *fakeDoctorRepo
	tokens  *fakeTokenRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserRepo()
	profs := newFakeProfileRepo()
	doctors := newFakeDoctorRepo()
	tokens := newFakeTokenRepo()
	cfg := &config.Config{
		PasswordMinLength: 8,
		CompanyName:       "PulseCare",
		ResetTokenTTL:     time.Hour,
	}
	svc := &AuthService{
		Users:    users,
		Profiles: profs,
		Doctors:  doctors,
		Tokens:   tokens,
		Reset:    resettoken.New("test-secret", time.Hour),
		Cfg:      cfg,
	}
	return &authFixture{svc: svc, users: users, profs: profs, doctors: doctors, tokens: tokens}
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FirstName:            "Grace",
		LastName:             "Okafor",
		Username:             "gokafor",
		Email:                "grace@example.com",
		Gender:               "female",
		Password:             "longenough",
		PasswordConfirmation: "longenough",
		Specialty:            "cardiology",
	}
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := helpers.HashPassword(plain)
	require.NoError(t, err)
	return h
}

// ---- Register ----

func TestRegisterSuccess(t *testing.T) {
	f := newAuthFixture(t)
	in := validRegisterInput()

	out, err := f.svc.Register(context.Background(), in, SiteContext{})
	require.NoError(t, err)
	assert.Equal(t, in, out, "registration echoes the validated input")

	u, err := f.users.GetByEmail(context.Background(), in.Email)
	require.NoError(t, err)
	assert.False(t, u.IsActive, "new accounts start inactive")
	assert.NotEqual(t, in.Password, u.Password, "password must be stored hashed")
	assert.True(t, helpers.CheckPassword(u.Password, in.Password))

	p, err := f.profs.GetByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "female", p.Gender)

	d, err := f.doctors.GetByProfileID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "cardiology", d.Specialty)
}

func TestRegisterDuplicateEmailWinsOverDuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.users.add(entity.User{Email: "grace@example.com", Username: "gokafor"})

	// Both email and username collide; the email error must be reported.
	in := validRegisterInput()
	_, err := f.svc.Register(context.Background(), in, SiteContext{})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterPasswordTooShort(t *testing.T) {
	f := newAuthFixture(t)
	in := validRegisterInput()
	in.Password = "short"
	// A mismatched confirmation must not mask the length failure.
	in.PasswordConfirmation = "different"
	_, err := f.svc.Register(context.Background(), in, SiteContext{})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterPasswordExactlyMinLength(t *testing.T) {
	f := newAuthFixture(t)
	in := validRegisterInput()
	in.Password = "12345678"
	in.PasswordConfirmation = "12345678"
	_, err := f.svc.Register(context.Background(), in, SiteContext{})
	assert.NoError(t, err)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	f := newAuthFixture(t)
	in := validRegisterInput()
	in.PasswordConfirmation = "longenough2"
	_, err := f.svc.Register(context.Background(), in, SiteContext{})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.users.add(entity.User{Email: "other@example.com", Username: "gokafor"})

	in := validRegisterInput()
	_, err := f.svc.Register(context.Background(), in, SiteContext{})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterPartialFailureLeavesUserRow(t *testing.T) {
	f := newAuthFixture(t)
	f.profs.failing = true

	in := validRegisterInput()
	_, err := f.svc.Register(context.Background(), in, SiteContext{})
	require.Error(t, err)
	assert.False(t, IsValidationError(err))

	// The user insert is not rolled back when the profile insert fails.
	_, err = f.users.GetByEmail(context.Background(), in.Email)
	assert.NoError(t, err)
}

// ---- Login ----

func TestLoginMissingIdentifier(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Login(context.Background(), "", "", "whatever")
	assert.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestLoginUnknownIdentifier(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Login(context.Background(), "nobody@example.com", "", "whatever")
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
}

func TestLoginBlankEmailUserIsUnreachable(t *testing.T) {
	f := newAuthFixture(t)
	f.users.add(entity.User{Username: "noemail", Password: mustHash(t, "longenough"), IsActive: true})

	// Even a correct username cannot match a user without an email on record.
	_, err := f.svc.Login(context.Background(), "", "noemail", "longenough")
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
}

func TestLoginAmbiguousMatchRejected(t *testing.T) {
	f := newAuthFixture(t)
	f.users.add(entity.User{Email: "a@example.com", Username: "alpha", Password: mustHash(t, "longenough"), IsActive: true})
	f.users.add(entity.User{Email: "b@example.com", Username: "beta", Password: mustHash(t, "longenough"), IsActive: true})

	// Email of one user plus username of another yields two candidates,
	// which is reported exactly like no match at all.
	_, err := f.svc.Login(context.Background(), "a@example.com", "beta", "longenough")
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.users.add(entity.User{Email: "a@example.com", Username: "alpha", Password: mustHash(t, "longenough"), IsActive: true})

	_, err := f.svc.Login(context.Background(), "a@example.com", "", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginPasswordCheckedBeforeActiveFlag(t *testing.T) {
	f := newAuthFixture(t)
	f.users.add(entity.User{Email: "a@example.com", Username: "alpha", Password: mustHash(t, "longenough"), IsActive: false})

	_, err := f.svc.Login(context.Background(), "a@example.com", "", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), "a@example.com", "", "longenough")
	assert.ErrorIs(t, err, ErrUserNotActive)
	assert.Zero(t, f.tokens.calls, "no token may be issued for an inactive user")
}

func TestLoginReturnsStableToken(t *testing.T) {
	f := newAuthFixture(t)
	f.users.add(entity.User{Email: "a@example.com", Username: "alpha", Password: mustHash(t, "longenough"), IsActive: true})

	t1, err := f.svc.Login(context.Background(), "a@example.com", "", "longenough")
	require.NoError(t, err)
	require.NotEmpty(t, t1.Key)

	t2, err := f.svc.Login(context.Background(), "", "alpha", "longenough")
	require.NoError(t, err)
	assert.Equal(t, t1.Key, t2.Key, "repeated logins reuse the same token")
}

// ---- Password reset ----

func TestResetRequestUnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture(t)
	// Must not panic or error; the flow has no failure surface.
	f.svc.ResetRequest(context.Background(), "nobody@example.com", SiteContext{})
}

func TestResetConfirmHappyPath(t *testing.T) {
	f := newAuthFixture(t)
	u := f.users.add(entity.User{Email: "a@example.com", Username: "alpha", Password: mustHash(t, "oldpassword"), IsActive: true})

	tok, err := f.svc.Reset.Issue(userState(u))
	require.NoError(t, err)
	uid := resettoken.EncodeUID(u.ID)

	st := f.svc.PrepareResetConfirm(context.Background(), uid, tok)
	err = f.svc.ConfirmReset(context.Background(), st, "brandnewpass", "brandnewpass")
	require.NoError(t, err)

	stored, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, helpers.CheckPassword(stored.Password, "brandnewpass"))
	assert.False(t, helpers.CheckPassword(stored.Password, "oldpassword"))
}

func TestResetConfirmMismatchReportedBeforeBadToken(t *testing.T) {
	f := newAuthFixture(t)
	u := f.users.add(entity.User{Email: "a@example.com", Username: "alpha", Password: mustHash(t, "oldpassword"), IsActive: true})

	st := f.svc.PrepareResetConfirm(context.Background(), resettoken.EncodeUID(u.ID), "garbage-token")
	err := f.svc.ConfirmReset(context.Background(), st, "brandnewpass", "different")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestResetConfirmRejectedToken(t *testing.T) {
	f := newAuthFixture(t)
	u := f.users.add(entity.User{Email: "a@example.com", Username: "alpha", Password: mustHash(t, "oldpassword"), IsActive: true})

	st := f.svc.PrepareResetConfirm(context.Background(), resettoken.EncodeUID(u.ID), "garbage-token")
	err := f.svc.ConfirmReset(context.Background(), st, "brandnewpass", "brandnewpass")
	assert.ErrorIs(t, err, ErrResetNotAllowed)
}

func TestResetConfirmMalformedUID(t *testing.T) {
	f := newAuthFixture(t)

	for _, uid := range []string{"%%%not-base64%%%", resettoken.EncodeUID("not-a-uuid"), resettoken.EncodeUID(uuid.New().String())} {
		st := f.svc.PrepareResetConfirm(context.Background(), uid, "whatever")
		err := f.svc.ConfirmReset(context.Background(), st, "brandnewpass", "brandnewpass")
		assert.ErrorIs(t, err, ErrResetNotAllowed)
	}
}

func TestResetTokenSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	u := f.users.add(entity.User{Email: "a@example.com", Username: "alpha", Password: mustHash(t, "oldpassword"), IsActive: true})

	tok, err := f.svc.Reset.Issue(userState(u))
	require.NoError(t, err)
	uid := resettoken.EncodeUID(u.ID)

	st := f.svc.PrepareResetConfirm(context.Background(), uid, tok)
	require.NoError(t, f.svc.ConfirmReset(context.Background(), st, "brandnewpass", "brandnewpass"))

	// The password change rotated the signing key, so the same token
	// no longer verifies.
	st = f.svc.PrepareResetConfirm(context.Background(), uid, tok)
	err = f.svc.ConfirmReset(context.Background(), st, "anothernewpass", "anothernewpass")
	assert.ErrorIs(t, err, ErrResetNotAllowed)
}

// ---- Activation ----

func TestActivateAccount(t *testing.T) {
	f := newAuthFixture(t)
	u := f.users.add(entity.User{Email: "a@example.com", Username: "alpha", Password: mustHash(t, "longenough")})
	f.profs.byUserID[u.ID] = &entity.Profile{ID: uuid.New().String(), UserID: u.ID}

	tok, err := f.svc.Reset.Issue(userState(u))
	require.NoError(t, err)

	err = f.svc.ActivateAccount(context.Background(), resettoken.EncodeUID(u.ID), tok)
	require.NoError(t, err)

	stored, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)

	p, err := f.profs.GetByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, p.HasEmailVerified)
}

func TestActivateAccountBadLink(t *testing.T) {
	f := newAuthFixture(t)
	u := f.users.add(entity.User{Email: "a@example.com", Username: "alpha", Password: mustHash(t, "longenough")})

	err := f.svc.ActivateAccount(context.Background(), resettoken.EncodeUID(u.ID), "garbage")
	assert.ErrorIs(t, err, ErrResetNotAllowed)

	stored, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestActivationLinkInvalidAfterActivation(t *testing.T) {
	f := newAuthFixture(t)
	u := f.users.add(entity.User{Email: "a@example.com", Username: "alpha", Password: mustHash(t, "longenough")})
	f.profs.byUserID[u.ID] = &entity.Profile{ID: uuid.New().String(), UserID: u.ID}

	tok, err := f.svc.Reset.Issue(userState(u))
	require.NoError(t, err)
	uid := resettoken.EncodeUID(u.ID)

	require.NoError(t, f.svc.ActivateAccount(context.Background(), uid, tok))

	// Flipping the active flag rotates the signing key as well.
	err = f.svc.ActivateAccount(context.Background(), uid, tok)
	assert.ErrorIs(t, err, ErrResetNotAllowed)
}
