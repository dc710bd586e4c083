package security

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/zerowastechef/server/internal/domain/user"
	"github.com/zerowastechef/server/internal/infrastructure/config"
	apperrors "github.com/zerowastechef/server/pkg/errors"
)

type mockRoleReader struct {
	mock.Mock
}

func (m *mockRoleReader) FindByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// AuthTestSuite provides a test suite for TokenService and the auth middlewares
type AuthTestSuite struct {
	suite.Suite
	cfg    config.AuthConfig
	now    time.Time
	tokens *TokenService
}

func (suite *AuthTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (suite *AuthTestSuite) SetupTest() {
	suite.cfg = config.AuthConfig{
		JWTSecret:       "test-secret-key-for-testing-only",
		JWTExpiration:   time.Hour,
		ResetExpiration: time.Hour,
		BCryptCost:      4,
	}
	suite.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	suite.tokens = NewTokenService(suite.cfg).WithClock(suite.clock)
}

func (suite *AuthTestSuite) clock() time.Time {
	return suite.now
}

func (suite *AuthTestSuite) assertCode(err error, code apperrors.ErrorCode) {
	require.Error(suite.T(), err)
	assert.Equal(suite.T(), code, apperrors.GetCode(err))
}

func (suite *AuthTestSuite) TestIssueAndVerify() {
	suite.Run("Verify_FreshToken_ShouldReturnIdentity", func() {
		// Arrange
		token, err := suite.tokens.Issue(42, "alice")
		require.NoError(suite.T(), err)

		// Act
		identity, err := suite.tokens.Verify(token)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), int64(42), identity.ID)
		assert.Equal(suite.T(), "alice", identity.Username)
	})

	suite.Run("Verify_WrongSecret_ShouldFailWithInvalidToken", func() {
		other := NewTokenService(config.AuthConfig{JWTSecret: "another-secret", JWTExpiration: time.Hour}).WithClock(suite.clock)
		token, err := other.Issue(1, "bob")
		require.NoError(suite.T(), err)

		_, err = suite.tokens.Verify(token)

		suite.assertCode(err, apperrors.CodeInvalidToken)
	})

	suite.Run("Verify_MalformedToken_ShouldFailWithInvalidToken", func() {
		_, err := suite.tokens.Verify("not.a.jwt")

		suite.assertCode(err, apperrors.CodeInvalidToken)
	})

	suite.Run("Verify_ExpiredToken_ShouldFailWithInvalidToken", func() {
		token, err := suite.tokens.Issue(1, "bob")
		require.NoError(suite.T(), err)
		suite.now = suite.now.Add(time.Hour + time.Second)

		_, err = suite.tokens.Verify(token)

		suite.assertCode(err, apperrors.CodeInvalidToken)
	})

	suite.Run("Verify_ResetToken_ShouldNotAuthenticate", func() {
		token, err := suite.tokens.IssueReset(7)
		require.NoError(suite.T(), err)

		_, err = suite.tokens.Verify(token)

		suite.assertCode(err, apperrors.CodeInvalidToken)
	})
}

func (suite *AuthTestSuite) TestResetTokens() {
	suite.Run("VerifyReset_ResetToken_ShouldReturnUserID", func() {
		token, err := suite.tokens.IssueReset(7)
		require.NoError(suite.T(), err)

		id, err := suite.tokens.VerifyReset(token)

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), int64(7), id)
	})

	suite.Run("VerifyReset_SessionToken_ShouldFail", func() {
		token, err := suite.tokens.Issue(7, "carol")
		require.NoError(suite.T(), err)

		_, err = suite.tokens.VerifyReset(token)

		suite.assertCode(err, apperrors.CodeInvalidResetToken)
		code, body := apperrors.ToResponse(err)
		assert.Equal(suite.T(), http.StatusBadRequest, code)
		assert.Equal(suite.T(), "Invalid or expired token", body.Message)
	})
}

func (suite *AuthTestSuite) TestAuthenticateRequest() {
	suite.Run("AuthenticateRequest_BearerHeader_ShouldAttachIdentity", func() {
		token, err := suite.tokens.Issue(3, "dave")
		require.NoError(suite.T(), err)

		identity, err := suite.tokens.AuthenticateRequest("Bearer " + token)

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), &Identity{ID: 3, Username: "dave"}, identity)
	})

	suite.Run("AuthenticateRequest_LowercaseScheme_ShouldBeAccepted", func() {
		token, err := suite.tokens.Issue(3, "dave")
		require.NoError(suite.T(), err)

		_, err = suite.tokens.AuthenticateRequest("bearer " + token)

		assert.NoError(suite.T(), err)
	})

	suite.Run("AuthenticateRequest_MissingToken_ShouldFailWithMissingToken", func() {
		for _, header := range []string{"", "   ", "Bearer", "Bearer "} {
			_, err := suite.tokens.AuthenticateRequest(header)

			suite.assertCode(err, apperrors.CodeMissingToken)
		}
	})

	suite.Run("AuthenticateRequest_OtherScheme_ShouldFailWithInvalidToken", func() {
		_, err := suite.tokens.AuthenticateRequest("Basic dXNlcjpwYXNz")

		suite.assertCode(err, apperrors.CodeInvalidToken)
	})

	suite.Run("AuthenticateRequest_ZeroTTLAfterClockSkip_ShouldReject", func() {
		// Arrange
		token, err := suite.tokens.IssueWithTTL(3, "dave", 0)
		require.NoError(suite.T(), err)
		suite.now = suite.now.Add(2 * time.Second)

		// Act
		_, err = suite.tokens.AuthenticateRequest("Bearer " + token)

		// Assert
		suite.assertCode(err, apperrors.CodeInvalidToken)
		code, body := apperrors.ToResponse(err)
		assert.Equal(suite.T(), http.StatusUnauthorized, code)
		assert.Equal(suite.T(), "Invalid token", body.Message)
	})
}

func (suite *AuthTestSuite) newRouter(roles RoleReader) *gin.Engine {
	router := gin.New()
	logger := zap.NewNop()
	router.GET("/me", suite.tokens.Authenticate(logger), func(c *gin.Context) {
		identity, _ := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": identity.ID})
	})
	router.DELETE("/admin", suite.tokens.Authenticate(logger), RequireAdmin(roles, logger), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func (suite *AuthTestSuite) do(router http.Handler, method, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func message(w *httptest.ResponseRecorder) string {
	var body apperrors.Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Message
}

func (suite *AuthTestSuite) TestMiddleware() {
	admin := user.Reconstitute(1, "admin", "admin@example.com", "hash", user.Profile{}, user.RoleAdmin, suite.now)
	standard := user.Reconstitute(2, "eve", "eve@example.com", "hash", user.Profile{}, user.RoleStandard, suite.now)

	suite.Run("Authenticate_NoHeader_ShouldReturn401", func() {
		w := suite.do(suite.newRouter(&mockRoleReader{}), http.MethodGet, "/me", "")

		assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
		assert.Equal(suite.T(), "No token provided", message(w))
	})

	suite.Run("Authenticate_InvalidToken_ShouldReturn401", func() {
		w := suite.do(suite.newRouter(&mockRoleReader{}), http.MethodGet, "/me", "Bearer garbage")

		assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
		assert.Equal(suite.T(), "Invalid token", message(w))
	})

	suite.Run("Authenticate_ValidToken_ShouldReachHandler", func() {
		token, _ := suite.tokens.Issue(2, "eve")

		w := suite.do(suite.newRouter(&mockRoleReader{}), http.MethodGet, "/me", "Bearer "+token)

		assert.Equal(suite.T(), http.StatusOK, w.Code)
		assert.JSONEq(suite.T(), `{"id":2}`, w.Body.String())
	})

	suite.Run("RequireAdmin_StandardUser_ShouldReturn403", func() {
		// Arrange
		roles := &mockRoleReader{}
		roles.On("FindByID", mock.Anything, int64(2)).Return(standard, nil)
		token, _ := suite.tokens.Issue(2, "eve")

		// Act
		w := suite.do(suite.newRouter(roles), http.MethodDelete, "/admin", "Bearer "+token)

		// Assert
		assert.Equal(suite.T(), http.StatusForbidden, w.Code)
		assert.Equal(suite.T(), "Admin access required", message(w))
		roles.AssertExpectations(suite.T())
	})

	suite.Run("RequireAdmin_Administrator_ShouldPass", func() {
		roles := &mockRoleReader{}
		roles.On("FindByID", mock.Anything, int64(1)).Return(admin, nil)
		token, _ := suite.tokens.Issue(1, "admin")

		w := suite.do(suite.newRouter(roles), http.MethodDelete, "/admin", "Bearer "+token)

		assert.Equal(suite.T(), http.StatusNoContent, w.Code)
	})

	suite.Run("RequireAdmin_RoleReadEveryRequest_ShouldSeeDemotion", func() {
		roles := &mockRoleReader{}
		roles.On("FindByID", mock.Anything, int64(1)).Return(admin, nil).Once()
		roles.On("FindByID", mock.Anything, int64(1)).Return(standard, nil).Once()
		token, _ := suite.tokens.Issue(1, "admin")
		router := suite.newRouter(roles)

		first := suite.do(router, http.MethodDelete, "/admin", "Bearer "+token)
		second := suite.do(router, http.MethodDelete, "/admin", "Bearer "+token)

		assert.Equal(suite.T(), http.StatusNoContent, first.Code)
		assert.Equal(suite.T(), http.StatusForbidden, second.Code)
		roles.AssertNumberOfCalls(suite.T(), "FindByID", 2)
	})

	suite.Run("RequireAdmin_DeletedUser_ShouldReturn403", func() {
		roles := &mockRoleReader{}
		roles.On("FindByID", mock.Anything, int64(9)).Return(nil, user.ErrUserNotFound)
		token, _ := suite.tokens.Issue(9, "ghost")

		w := suite.do(suite.newRouter(roles), http.MethodDelete, "/admin", "Bearer "+token)

		assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	})

	suite.Run("RequireAdmin_StorageFailure_ShouldReturn500", func() {
		roles := &mockRoleReader{}
		roles.On("FindByID", mock.Anything, int64(1)).Return(nil, errors.New("database is locked"))
		token, _ := suite.tokens.Issue(1, "admin")

		w := suite.do(suite.newRouter(roles), http.MethodDelete, "/admin", "Bearer "+token)

		assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
		assert.Equal(suite.T(), "Internal Server Error", message(w))
	})
}

func (suite *AuthTestSuite) TestPasswordHasher() {
	hasher := NewPasswordHasher(suite.cfg.BCryptCost)

	suite.Run("Compare_SamePassword_ShouldMatch", func() {
		hash, err := hasher.Hash("Secr3t!pass")
		require.NoError(suite.T(), err)

		assert.NotEqual(suite.T(), "Secr3t!pass", hash)
		assert.NoError(suite.T(), hasher.Compare(hash, "Secr3t!pass"))
	})

	suite.Run("Compare_WrongPassword_ShouldFail", func() {
		hash, err := hasher.Hash("Secr3t!pass")
		require.NoError(suite.T(), err)

		assert.Error(suite.T(), hasher.Compare(hash, "wrong"))
	})
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}
