package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"xhubsell/internal/auth"
	"xhubsell/internal/models"
	"xhubsell/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User, profile *models.SellerProfile) error {
	args := m.Called(ctx, user, profile)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uint, role models.Role) (*models.User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func newAuthOnlyServer(t *testing.T, repo *MockUserRepository) *Server {
	t.Helper()
	signer, err := auth.NewSigner(
		"handler-access-secret-0123456789abcdef",
		"handler-refresh-secret-0123456789abcdef",
		15*time.Minute, time.Hour,
	)
	require.NoError(t, err)
	return &Server{
		signer:      signer,
		authService: service.NewAuthService(repo, signer, nil),
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]any
		mockSetup      func(*MockUserRepository)
		expectedStatus int
		expectedReason string
	}{
		{
			name: "Success",
			body: map[string]any{
				"username": "testuser",
				"email":    "test@example.com",
				"password": "Password123!",
			},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, nil)
				m.On("GetByUsername", mock.Anything, "testuser").Return(nil, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*models.User"), (*models.SellerProfile)(nil)).
					Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = 7 }).
					Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Seller Gets Profile",
			body: map[string]any{
				"username": "newseller",
				"email":    "seller@example.com",
				"password": "Password123!",
				"role":     "SELLER",
			},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "seller@example.com").Return(nil, nil)
				m.On("GetByUsername", mock.Anything, "newseller").Return(nil, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*models.User"),
					mock.MatchedBy(func(p *models.SellerProfile) bool {
						return p != nil && p.Status == models.SellerStatusPendingVerification && p.Title == "newseller"
					})).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate Email",
			body: map[string]any{
				"username": "testuser",
				"email":    "exists@example.com",
				"password": "Password123!",
			},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "exists@example.com").Return(&models.User{ID: 1}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Weak Password",
			body: map[string]any{
				"username": "testuser",
				"email":    "test@example.com",
				"password": "Password123",
			},
			mockSetup:      func(*MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedReason: "password_missing_special",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.mockSetup(repo)
			s := newAuthOnlyServer(t, repo)
			app := fiber.New()
			app.Post("/register", s.Register)

			resp := postJSON(t, app, "/register", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated {
				var body struct {
					User         map[string]any `json:"user"`
					AccessToken  string         `json:"accessToken"`
					RefreshToken string         `json:"refreshToken"`
				}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.NotEmpty(t, body.AccessToken)
				assert.NotEmpty(t, body.RefreshToken)
				assert.NotContains(t, body.User, "password")
			}
			if tt.expectedReason != "" {
				var body models.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedReason, body.Reason)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)
	s := newAuthOnlyServer(t, repo)
	app := fiber.New()
	app.Post("/login", s.Login)

	resp := postJSON(t, app, "/login", map[string]string{"email": "nobody@example.com", "password": "Password123!"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Invalid credentials", body.Error)
}

func TestRefresh_Invalid(t *testing.T) {
	s := newAuthOnlyServer(t, new(MockUserRepository))
	app := fiber.New()
	app.Post("/refresh", s.Refresh)

	resp := postJSON(t, app, "/refresh", map[string]string{"refreshToken": "nope"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Invalid refresh token", body.Error)
}
