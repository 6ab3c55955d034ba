package v1_test

import (
	"net/http"
	"testing"

	v1 "github.com/halfsies/backend/internal/controllers/v1"
	"github.com/halfsies/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestOptionsUser() {
	r := test.Request(suite.T(), http.MethodOptions, "/v1/users", "")
	assert.Equal(suite.T(), http.StatusNoContent, r.Code)
	assert.Equal(suite.T(), "OPTIONS, POST", r.Header().Get("allow"))
}

func (suite *TestSuiteStandard) TestRegisterUser() {
	session := suite.registerTestUser("morre")

	assert.Equal(suite.T(), "morre", session.User.Username)
	assert.NotEmpty(suite.T(), session.Token)
	assert.NotEmpty(suite.T(), session.User.ID)
}

func (suite *TestSuiteStandard) TestRegisterUserInvalid() {
	tests := []struct {
		name   string
		status int
		body   any
	}{
		{"Broken body", http.StatusBadRequest, `{ "username": 2" }`},
		{"No body", http.StatusBadRequest, ""},
		{"Empty username", http.StatusBadRequest, v1.UserEditable{Username: "", Password: "test-password-123"}},
		{"Password too short", http.StatusBadRequest, v1.UserEditable{Username: "morre", Password: "short"}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "/v1/users", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestRegisterUserDuplicateUsername() {
	_ = suite.registerTestUser("morre")

	r := test.Request(suite.T(), http.MethodPost, "/v1/users", v1.UserEditable{Username: "morre", Password: "test-password-123"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestLogin() {
	_ = suite.registerTestUser("morre")

	r := test.Request(suite.T(), http.MethodPost, "/v1/users/login", v1.UserEditable{Username: "morre", Password: "test-password-123"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.SessionResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "morre", response.Data.User.Username)
	assert.NotEmpty(suite.T(), response.Data.Token)
}

func (suite *TestSuiteStandard) TestLoginInvalidCredentials() {
	_ = suite.registerTestUser("morre")

	tests := []struct {
		name string
		body v1.UserEditable
	}{
		{"Wrong password", v1.UserEditable{Username: "morre", Password: "not-the-password"}},
		{"Unknown username", v1.UserEditable{Username: "nobody", Password: "test-password-123"}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "/v1/users/login", tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusUnauthorized)

			// The response must not leak whether the username exists
			var response v1.SessionResponse
			test.DecodeResponse(t, &r, &response)
			assert.Equal(t, "the username or password is incorrect", *response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestAuthenticationRequired() {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"No header", nil},
		{"No bearer prefix", map[string]string{"Authorization": "some-token"}},
		{"Garbage token", map[string]string{"Authorization": "Bearer some-token"}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "/v1/groups", v1.GroupEditable{Name: "Testing"}, tt.headers)
			test.AssertHTTPStatus(t, &r, http.StatusUnauthorized)
		})
	}
}
