package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecare/pulsecare-api/internal/domain/entity"
)

type stubTokenRepo struct {
	userByKey map[string]string
	lookups   int
}

func (s *stubTokenRepo) GetOrCreate(context.Context, string) (entity.AuthToken, bool, error) {
	return entity.AuthToken{}, false, errors.New("not used")
}

func (s *stubTokenRepo) FindUserID(_ context.Context, key string) (string, error) {
	s.lookups++
	uid, ok := s.userByKey[key]
	if !ok {
		return "", errors.New("not found")
	}
	return uid, nil
}

type stubUserRepo struct {
	byID map[string]*entity.User
}

func (s *stubUserRepo) Create(context.Context, *entity.User) error { return errors.New("not used") }
func (s *stubUserRepo) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, errors.New("not used")
}
func (s *stubUserRepo) FindByIdentifier(context.Context, string, string) ([]entity.User, error) {
	return nil, errors.New("not used")
}
func (s *stubUserRepo) ExistsByEmail(context.Context, string) (bool, error) {
	return false, errors.New("not used")
}
func (s *stubUserRepo) ExistsByUsername(context.Context, string) (bool, error) {
	return false, errors.New("not used")
}
func (s *stubUserRepo) UpdatePassword(context.Context, string, string) error {
	return errors.New("not used")
}
func (s *stubUserRepo) SetActive(context.Context, string) error { return errors.New("not used") }

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func newAuthEngine(tokens *stubTokenRepo, users *stubUserRepo, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(Auth(tokens, users, rdb, time.Minute))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	return r
}

func authGet(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingHeader(t *testing.T) {
	r := newAuthEngine(&stubTokenRepo{}, &stubUserRepo{}, nil)
	assert.Equal(t, http.StatusUnauthorized, authGet(r, "").Code)
}

func TestAuthWrongScheme(t *testing.T) {
	r := newAuthEngine(&stubTokenRepo{}, &stubUserRepo{}, nil)
	assert.Equal(t, http.StatusUnauthorized, authGet(r, "Bearer abc").Code)
}

func TestAuthUnknownToken(t *testing.T) {
	r := newAuthEngine(&stubTokenRepo{userByKey: map[string]string{}}, &stubUserRepo{}, nil)
	assert.Equal(t, http.StatusUnauthorized, authGet(r, "Token nope").Code)
}

func TestAuthValidToken(t *testing.T) {
	tokens := &stubTokenRepo{userByKey: map[string]string{"abc123": "user-1"}}
	users := &stubUserRepo{byID: map[string]*entity.User{"user-1": {ID: "user-1", IsActive: true}}}
	r := newAuthEngine(tokens, users, nil)

	w := authGet(r, "Token abc123")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestAuthInactiveUserRejected(t *testing.T) {
	tokens := &stubTokenRepo{userByKey: map[string]string{"abc123": "user-1"}}
	users := &stubUserRepo{byID: map[string]*entity.User{"user-1": {ID: "user-1", IsActive: false}}}
	r := newAuthEngine(tokens, users, nil)

	assert.Equal(t, http.StatusUnauthorized, authGet(r, "Token abc123").Code)
}

func TestAuthCachesLookups(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := &stubTokenRepo{userByKey: map[string]string{"abc123": "user-1"}}
	users := &stubUserRepo{byID: map[string]*entity.User{"user-1": {ID: "user-1", IsActive: true}}}
	r := newAuthEngine(tokens, users, rdb)

	require.Equal(t, http.StatusOK, authGet(r, "Token abc123").Code)
	require.Equal(t, http.StatusOK, authGet(r, "Token abc123").Code)
	assert.Equal(t, 1, tokens.lookups, "second request must hit the cache")
}
