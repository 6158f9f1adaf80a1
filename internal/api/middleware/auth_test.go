package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bugtrack/internal/model"
	"bugtrack/internal/pkg/config"
	"bugtrack/internal/pkg/jwt"
	"bugtrack/internal/repository"
	"bugtrack/pkg/constants"
)

func setupAuthTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				Secret:             "test-secret",
				AccessTokenExpire:  3600,
				RefreshTokenExpire: 7200,
			},
		},
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	r := gin.New()
	r.GET("/whoami", AuthMiddleware(repository.NewUserRepository(db)), func(c *gin.Context) {
		actor := Actor(c)
		c.JSON(http.StatusOK, gin.H{"username": actor.Username, "role": actor.Role})
	})
	return r, db
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.HeaderBearerPrefix+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareLoadsActorFromDB(t *testing.T) {
	r, db := setupAuthTest(t)
	require.NoError(t, db.Create(&model.User{
		Username: "alice",
		Password: "x",
		Role:     constants.RoleProjectManager,
		Status:   constants.UserStatusActive,
	}).Error)

	// Token里的角色是过期快照, 以库中当前角色为准
	token, err := jwt.GenerateAccessToken("alice", constants.RoleAdmin, constants.AuthTypeLocal)
	require.NoError(t, err)

	w := doRequest(r, token)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, constants.RoleProjectManager, body["role"])
}

func TestAuthMiddlewareRejectsMissingOrBadToken(t *testing.T) {
	r, _ := setupAuthTest(t)

	w := doRequest(r, "")
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(401), body["code"])

	w = doRequest(r, "not-a-jwt")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(401), body["code"])
}

func TestAuthMiddlewareRejectsRefreshToken(t *testing.T) {
	r, db := setupAuthTest(t)
	require.NoError(t, db.Create(&model.User{
		Username: "alice",
		Password: "x",
		Role:     constants.RoleProjectManager,
		Status:   constants.UserStatusActive,
	}).Error)

	token, err := jwt.GenerateRefreshToken("alice", constants.RoleProjectManager, constants.AuthTypeLocal)
	require.NoError(t, err)

	w := doRequest(r, token)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(401), body["code"])
}

func TestAuthMiddlewareRejectsDeactivatedUser(t *testing.T) {
	r, db := setupAuthTest(t)
	// Status有default:1标签, GORM的Create会用默认值覆盖零值, 需显式Update写入0
	require.NoError(t, db.Create(&model.User{
		Username: "alice",
		Password: "x",
		Role:     constants.RoleProjectManager,
		Status:   constants.UserStatusDeactivated,
	}).Error)
	require.NoError(t, db.Model(&model.User{}).
		Where("username = ?", "alice").
		Update("status", constants.UserStatusDeactivated).Error)

	token, err := jwt.GenerateAccessToken("alice", constants.RoleProjectManager, constants.AuthTypeLocal)
	require.NoError(t, err)

	w := doRequest(r, token)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(403), body["code"])
}
