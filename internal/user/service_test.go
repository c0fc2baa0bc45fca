package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shelfapi/internal/platform/crypto"
	"shelfapi/internal/testutil"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = testutil.TestUserID
		u.Role = RoleUser
	}
	return args.Error(0)
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *mockRepo) TouchLastLogin(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account with hashed password", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", mock.Anything, "reader@example.com").Return(User{}, ErrNotFound)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
			return u.Email == "reader@example.com" && crypto.VerifyPassword(u.PasswordHash, "Str0ng!Pass")
		})).Return(nil)

		u, err := NewService(repo).Register(ctx, " Reader@Example.com ", "Reader", "Str0ng!Pass")
		require.NoError(t, err)
		assert.Equal(t, testutil.TestUserID, u.ID)
		assert.Equal(t, "Reader", u.Name)
		assert.NotEqual(t, "Str0ng!Pass", u.PasswordHash)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", mock.Anything, "reader@example.com").Return(User{ID: "x"}, nil)

		_, err := NewService(repo).Register(ctx, "reader@example.com", "Reader", "Str0ng!Pass")
		assert.ErrorIs(t, err, ErrAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", mock.Anything, "reader@example.com").Return(User{}, errors.New("db down"))

		_, err := NewService(repo).Register(ctx, "reader@example.com", "Reader", "Str0ng!Pass")
		assert.EqualError(t, err, "db down")
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	hash, err := crypto.HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	stored := User{ID: testutil.TestUserID, Email: "reader@example.com", PasswordHash: hash}

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", mock.Anything, "reader@example.com").Return(stored, nil)
		repo.On("TouchLastLogin", mock.Anything, testutil.TestUserID).Return(nil)

		u, err := NewService(repo).Authenticate(ctx, "reader@example.com", "Str0ng!Pass")
		require.NoError(t, err)
		assert.Equal(t, testutil.TestUserID, u.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", mock.Anything, "reader@example.com").Return(stored, nil)

		_, err := NewService(repo).Authenticate(ctx, "reader@example.com", "nope")
		assert.ErrorIs(t, err, ErrNotFound)
		repo.AssertNotCalled(t, "TouchLastLogin", mock.Anything, mock.Anything)
	})
}

func TestHTTPHandler_GetCurrentUser(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, testutil.TestUserID).
		Return(User{ID: testutil.TestUserID, Name: "Reader", Email: "reader@example.com"}, nil)
	repo.On("GetByID", mock.Anything, testutil.OtherUserID).Return(User{}, ErrNotFound)
	h := NewHTTPHandler(NewService(repo))

	t.Run("returns id name email", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetCurrentUser(w, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/me", nil), testutil.TestUserID))

		res := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, map[string]any{
			"id":    testutil.TestUserID,
			"name":  "Reader",
			"email": "reader@example.com",
		}, res.Data())
	})

	t.Run("unknown user", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetCurrentUser(w, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/me", nil), testutil.OtherUserID))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("no user in context", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetCurrentUser(w, testutil.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHTTPHandler_RegisterUser(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", mock.Anything, "reader@example.com").Return(User{}, ErrNotFound)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		h := NewHTTPHandler(NewService(repo))

		w := httptest.NewRecorder()
		h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/users/register", map[string]string{
			"email": "reader@example.com", "name": "Reader", "password": "Str0ng!Pass",
		}))
		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusCreated, res.Code)
		assert.Equal(t, testutil.TestUserID, res.Data()["id"])
	})

	t.Run("weak password", func(t *testing.T) {
		h := NewHTTPHandler(NewService(new(mockRepo)))
		w := httptest.NewRecorder()
		h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/users/register", map[string]string{
			"email": "reader@example.com", "name": "Reader", "password": "weak",
		}))
		res := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "VALIDATION_ERROR", res.ErrorCode())
	})

	t.Run("conflict", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", mock.Anything, "reader@example.com").Return(User{ID: "x"}, nil)
		h := NewHTTPHandler(NewService(repo))

		w := httptest.NewRecorder()
		h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/users/register", map[string]string{
			"email": "reader@example.com", "name": "Reader", "password": "Str0ng!Pass",
		}))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
