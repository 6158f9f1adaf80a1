package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"bugtrack/internal/model"
	"bugtrack/internal/pkg/jwt"
	"bugtrack/internal/repository"
	"bugtrack/pkg/constants"
	"bugtrack/pkg/responses"
)

// AuthMiddleware JWT认证中间件, 校验通过后从库中加载操作者并存入context
func AuthMiddleware(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			responses.ErrorWithCode(c, 401, "缺少Authorization Header")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			responses.ErrorWithCode(c, 401, "Authorization格式错误")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix)

		claims, err := jwt.ValidateToken(token)
		if err != nil {
			responses.Error(c, err)
			c.Abort()
			return
		}

		// 必须是AccessToken
		if claims.Type != constants.JWTTypeAccess {
			responses.ErrorWithCode(c, 401, "无效的Token类型")
			c.Abort()
			return
		}

		// 角色和受限标记以库中当前状态为准, 不信任Token里的快照
		actor, err := userRepo.FindByUsername(claims.Username)
		if err != nil {
			responses.Error(c, err)
			c.Abort()
			return
		}
		if !actor.IsActive() {
			responses.ErrorWithCode(c, 403, "用户已禁用")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Set(constants.ContextKeyUsername, actor.Username)

		c.Next()
	}
}

// Actor 从context取出认证后的操作者
func Actor(c *gin.Context) *model.User {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return nil
	}
	actor, ok := value.(*model.User)
	if !ok {
		return nil
	}
	return actor
}
