package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"bugtrack/internal/api/handler"
	"bugtrack/internal/api/middleware"
	"bugtrack/internal/pkg/config"
	"bugtrack/internal/repository"
	"bugtrack/internal/service"
)

// Setup 设置路由
func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 初始化Repository
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// 初始化Service
	ldapService := service.NewLDAPService(&cfg.Auth.LDAP)
	authService := service.NewAuthService(&cfg.Auth, &cfg.Demo, userRepo, ldapService)
	userService := service.NewUserService(db, userRepo)
	projectService := service.NewProjectService(db, projectRepo, issueRepo)
	issueService := service.NewIssueService(db, projectRepo, issueRepo, commentRepo, userRepo)
	commentService := service.NewCommentService(db, projectRepo, issueRepo, commentRepo)
	assignmentService := service.NewAssignmentService(db, projectRepo, issueRepo, userRepo)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService, assignmentService)
	issueHandler := handler.NewIssueHandler(issueService, assignmentService)
	commentHandler := handler.NewCommentHandler(commentService)

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证相关(无需token)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.POST("/demo", authHandler.DemoLogin)
			authGroup.POST("/refresh", authHandler.RefreshToken)
		}

		// 需要认证的路由
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(userRepo))
		{
			// 个人资料
			profileGroup := authed.Group("/profile")
			{
				profileGroup.GET("", userHandler.GetProfile)
				profileGroup.PUT("", userHandler.UpdateProfile)
				profileGroup.DELETE("", userHandler.DeleteProfile)
				profileGroup.PUT("/password", userHandler.ChangePassword)
			}

			// 用户管理(管理员)
			userGroup := authed.Group("/users")
			{
				userGroup.GET("", userHandler.List)
				userGroup.POST("", userHandler.Create)
				userGroup.GET("/:id", userHandler.Get)
				userGroup.PUT("/:id", userHandler.UpdateUser)
				userGroup.PUT("/:id/password", userHandler.SetPassword)
				userGroup.POST("/batch/role", userHandler.BatchSetRole)
				userGroup.POST("/batch/deactivate", userHandler.BatchDeactivate)
			}

			// 项目管理
			projectGroup := authed.Group("/projects")
			{
				projectGroup.POST("", projectHandler.Create)
				projectGroup.GET("", projectHandler.List)
				projectGroup.GET("/mine", projectHandler.ListMine)
				projectGroup.GET("/:slug", projectHandler.Detail)
				projectGroup.PUT("/:slug", projectHandler.Update)
				projectGroup.DELETE("/:slug", projectHandler.Delete)
				projectGroup.POST("/:slug/assign", projectHandler.Assign)

				// 项目作用域下的Issue
				projectGroup.POST("/:slug/issues", issueHandler.Create)
				projectGroup.GET("/:slug/issues/:num", issueHandler.Detail)
				projectGroup.PUT("/:slug/issues/:num", issueHandler.Update)
				projectGroup.DELETE("/:slug/issues/:num", issueHandler.Delete)
				projectGroup.POST("/:slug/issues/:num/assign", issueHandler.Assign)
				projectGroup.POST("/:slug/issues/:num/comments", commentHandler.Create)
			}

			// Issue自助入口
			issueGroup := authed.Group("/issues")
			{
				issueGroup.POST("", issueHandler.CreateUnscoped)
				issueGroup.GET("/mine", issueHandler.ListMine)
			}

			// 评论与回复
			commentGroup := authed.Group("/comments")
			{
				commentGroup.PUT("/:id", commentHandler.Update)
				commentGroup.DELETE("/:id", commentHandler.Delete)
				commentGroup.POST("/:id/replies", commentHandler.CreateReply)
			}
			replyGroup := authed.Group("/replies")
			{
				replyGroup.PUT("/:id", commentHandler.UpdateReply)
				replyGroup.DELETE("/:id", commentHandler.DeleteReply)
			}
		}
	}

	return r
}
