package handler_test

import (
	"net/http"
	"testing"

	"github.com/Baaaki/market-square/internal/models"
	"github.com/Baaaki/market-square/internal/testutil"
	"github.com/Baaaki/market-square/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AdminHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	router *gin.Engine
	user   *models.User
	admin  *models.User
}

func (s *AdminHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.router, _ = newTestRouter(s.testDB)

	s.user = testutil.DefaultTestUser()
	s.admin = testutil.DefaultAdminUser()
	require.NoError(s.T(), s.testDB.DB.Create(s.user).Error)
	require.NoError(s.T(), s.testDB.DB.Create(s.admin).Error)
}

func (s *AdminHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *AdminHandlerIntegrationTestSuite) TestGetAllUsers() {
	w := testutil.PerformRequest(s.T(), s.router, http.MethodGet, "/api/admin/users", nil, asUser(s.admin))
	require.Equal(s.T(), http.StatusOK, w.Code)

	var body struct {
		Users []map[string]interface{} `json:"users"`
		Count int                      `json:"count"`
	}
	testutil.DecodeJSON(s.T(), w, &body)

	assert.Equal(s.T(), 2, body.Count)
	for _, u := range body.Users {
		assert.NotContains(s.T(), u, "password")
		assert.NotContains(s.T(), u, "PasswordHash")
	}
}

func (s *AdminHandlerIntegrationTestSuite) TestGetAllUsersRequiresAdmin() {
	w := testutil.PerformRequest(s.T(), s.router, http.MethodGet, "/api/admin/users", nil, asUser(s.user))
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	w = testutil.PerformRequest(s.T(), s.router, http.MethodGet, "/api/admin/users", nil, nil)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func TestAdminHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerIntegrationTestSuite))
}
