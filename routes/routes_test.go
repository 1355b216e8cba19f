package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"usuarios-api/config"
	"usuarios-api/events"
	"usuarios-api/handlers"
	"usuarios-api/helper"
	"usuarios-api/middleware"
	"usuarios-api/models"
	"usuarios-api/repositories"
	"usuarios-api/services"
	"usuarios-api/testutil"
)

type envelope struct {
	Code        int             `json:"code"`
	CodeMessage string          `json:"code_message"`
	CodeType    string          `json:"code_type"`
	Data        json.RawMessage `json:"data"`
}

type IntegrationTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (suite *IntegrationTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	// Fresh in-memory database per test
	suite.db = testutil.OpenTestDB(suite.T())

	validator, err := helper.NewValidator()
	suite.Require().NoError(err)

	userRepo := repositories.NewUserRepository(suite.db)
	tokenService := services.NewTokenService(config.JWTConfig{Secret: []byte("test-secret"), Expiration: time.Hour})
	userService := services.NewUserService(
		userRepo,
		services.NewPasswordHasher(),
		tokenService,
		validator,
		events.NopPublisher{},
	)

	suite.router = New(Deps{
		Logger:        zap.NewNop(),
		AllowedOrigin: "*",
		UserHandler:   handlers.NewUserHandler(userService),
		HealthHandler: handlers.NewHealthHandler(userRepo),
		Tokens:        tokenService,
	})
}

func (suite *IntegrationTestSuite) do(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (suite *IntegrationTestSuite) registerAndLogin(username, email, password string) (models.UserProfile, string) {
	w, env := suite.do("POST", "/user/cadastro", map[string]string{
		"nome_usuario": username,
		"email":        email,
		"senha":        password,
	}, "")
	suite.Require().Equal(http.StatusCreated, w.Code)

	var user models.UserProfile
	suite.Require().NoError(json.Unmarshal(env.Data, &user))

	w, env = suite.do("POST", "/user/login", map[string]string{"email": email, "senha": password}, "")
	suite.Require().Equal(http.StatusOK, w.Code)

	var login models.LoginResponse
	suite.Require().NoError(json.Unmarshal(env.Data, &login))
	suite.Require().NotEmpty(login.Token)
	return user, login.Token
}

func (suite *IntegrationTestSuite) userCount() int64 {
	var count int64
	suite.Require().NoError(suite.db.Model(&models.User{}).Count(&count).Error)
	return count
}

func (suite *IntegrationTestSuite) TestUserLifecycle() {
	// Register
	w, env := suite.do("POST", "/user/cadastro", map[string]string{
		"nome_usuario": "abc",
		"email":        "a@b.com",
		"senha":        "secret1",
	}, "")
	suite.Equal(http.StatusCreated, w.Code)
	suite.NotContains(w.Body.String(), "secret1")
	suite.NotContains(w.Body.String(), "senha")

	var created models.UserProfile
	suite.NoError(json.Unmarshal(env.Data, &created))
	suite.NotZero(created.ID)
	suite.Equal(models.RoleViewer, created.Role)

	// Login
	w, env = suite.do("POST", "/user/login", map[string]string{"email": "a@b.com", "senha": "secret1"}, "")
	suite.Equal(http.StatusOK, w.Code)
	var login models.LoginResponse
	suite.NoError(json.Unmarshal(env.Data, &login))
	suite.NotEmpty(login.Token)

	// GetSelf
	w, env = suite.do("GET", "/user/usuario", nil, login.Token)
	suite.Equal(http.StatusOK, w.Code)
	var self models.UserProfile
	suite.NoError(json.Unmarshal(env.Data, &self))
	suite.Equal("a@b.com", self.Email)
	suite.Equal(created.ID, self.ID)

	// Delete
	w, _ = suite.do("DELETE", fmt.Sprintf("/user/usuario/%d", created.ID), nil, login.Token)
	suite.Equal(http.StatusOK, w.Code)

	// The token outlives the user but no longer resolves to one
	w, env = suite.do("GET", "/user/usuario", nil, login.Token)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("notFound", env.CodeType)

	w, env = suite.do("POST", "/user/verify-token", nil, login.Token)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("false", string(env.Data))
}

func (suite *IntegrationTestSuite) TestRegister_ValidationListsFields() {
	w, env := suite.do("POST", "/user/cadastro", map[string]string{
		"nome_usuario": "ab",
		"email":        "nope",
		"senha":        "123",
	}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("validationError", env.CodeType)

	var fields map[string][]string
	suite.NoError(json.Unmarshal(env.Data, &fields))
	suite.Contains(fields, "nome_usuario")
	suite.Contains(fields, "email")
	suite.Contains(fields, "senha")
	suite.Zero(suite.userCount())
}

func (suite *IntegrationTestSuite) TestRegister_MalformedBody() {
	req := httptest.NewRequest("POST", "/user/cadastro", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	var env envelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	suite.Equal(http.StatusBadRequest, env.Code)
	suite.Equal("badRequest", env.CodeType)
	suite.Zero(suite.userCount())
}

func (suite *IntegrationTestSuite) TestRegister_Conflict() {
	suite.registerAndLogin("abc", "a@b.com", "secret1")

	w, env := suite.do("POST", "/user/cadastro", map[string]string{
		"nome_usuario": "other",
		"email":        "a@b.com",
		"senha":        "secret1",
	}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("conflict", env.CodeType)

	w, env = suite.do("POST", "/user/cadastro", map[string]string{
		"nome_usuario": "abc",
		"email":        "other@b.com",
		"senha":        "secret1",
	}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("conflict", env.CodeType)
	suite.EqualValues(1, suite.userCount())
}

func (suite *IntegrationTestSuite) TestLogin_InvalidCredentialsAreIndistinguishable() {
	suite.registerAndLogin("abc", "a@b.com", "secret1")

	w1, wrongPassword := suite.do("POST", "/user/login", map[string]string{"email": "a@b.com", "senha": "wrong1"}, "")
	w2, unknownEmail := suite.do("POST", "/user/login", map[string]string{"email": "x@b.com", "senha": "secret1"}, "")

	suite.Equal(http.StatusBadRequest, w1.Code)
	suite.Equal(http.StatusBadRequest, w2.Code)
	suite.Equal(wrongPassword, unknownEmail)
}

func (suite *IntegrationTestSuite) TestVerifyToken() {
	_, token := suite.registerAndLogin("abc", "a@b.com", "secret1")

	cases := map[string]string{
		token:            "true",
		"":               "false",
		"garbage":        "false",
		token[:20] + "x": "false",
	}
	for tok, want := range cases {
		w, env := suite.do("POST", "/user/verify-token", nil, tok)
		suite.Equal(http.StatusOK, w.Code)
		suite.Equal(want, string(env.Data))
	}
}

func (suite *IntegrationTestSuite) TestProtectedRoutes_RequireToken() {
	user, _ := suite.registerAndLogin("abc", "a@b.com", "secret1")
	path := fmt.Sprintf("/user/usuario/%d", user.ID)
	update := map[string]string{"nome_usuario": "hacked", "email": "h@b.com"}

	requests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{"GET", "/user/usuarios", nil},
		{"GET", "/user/usuario", nil},
		{"PUT", path, update},
		{"DELETE", path, nil},
	}

	for _, token := range []string{"", "malformed.token.value"} {
		for _, r := range requests {
			w, env := suite.do(r.method, r.path, r.body, token)
			suite.Equal(http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
			suite.Equal("unAuthorized", env.CodeType)
		}
	}

	var stored models.User
	suite.Require().NoError(suite.db.First(&stored, user.ID).Error)
	suite.Equal("abc", stored.Username)
	suite.EqualValues(1, suite.userCount())
}

func (suite *IntegrationTestSuite) TestListUsers() {
	_, token := suite.registerAndLogin("abc", "a@b.com", "secret1")
	suite.registerAndLogin("def", "d@e.com", "secret1")

	w, env := suite.do("GET", "/user/usuarios", nil, token)
	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "senha")

	var users []models.UserSummary
	suite.NoError(json.Unmarshal(env.Data, &users))
	suite.Len(users, 2)
	suite.Equal("abc", users[0].Username)
	suite.Equal("d@e.com", users[1].Email)
}

func (suite *IntegrationTestSuite) TestUpdateUser() {
	user, token := suite.registerAndLogin("abc", "a@b.com", "secret1")
	path := fmt.Sprintf("/user/usuario/%d", user.ID)

	w, env := suite.do("PUT", path, map[string]string{"nome_usuario": "abcd", "email": "new@b.com"}, token)
	suite.Equal(http.StatusOK, w.Code)
	var updated models.UserProfile
	suite.NoError(json.Unmarshal(env.Data, &updated))
	suite.Equal("abcd", updated.Username)
	suite.Equal("new@b.com", updated.Email)
	suite.Equal(models.RoleViewer, updated.Role)

	// password left as is
	w, _ = suite.do("POST", "/user/login", map[string]string{"email": "new@b.com", "senha": "secret1"}, "")
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do("PUT", path, map[string]string{"nome_usuario": "abcd", "email": "new@b.com", "senha": "secret2"}, token)
	suite.Equal(http.StatusOK, w.Code)
	w, _ = suite.do("POST", "/user/login", map[string]string{"email": "new@b.com", "senha": "secret2"}, "")
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do("PUT", "/user/usuario/9999", map[string]string{"nome_usuario": "ghost", "email": "g@b.com"}, token)
	suite.Equal(http.StatusNotFound, w.Code)

	w, env = suite.do("PUT", "/user/usuario/abc", map[string]string{"nome_usuario": "ghost", "email": "g@b.com"}, token)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("validationError", env.CodeType)
}

func (suite *IntegrationTestSuite) TestDeleteUser_NotFound() {
	_, token := suite.registerAndLogin("abc", "a@b.com", "secret1")

	w, env := suite.do("DELETE", "/user/usuario/9999", nil, token)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("notFound", env.CodeType)
}

func (suite *IntegrationTestSuite) TestHealth() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"status":"healthy","database":"ok"}`, w.Body.String())
}
