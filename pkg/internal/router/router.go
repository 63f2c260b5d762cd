// Package router 管理路由配置，将路径绑定到 pkg/internal/handle 中的处理器.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/internal/handle"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/middleware"
)

// RegisterAuthRoutes 注册认证路由。register 与 login 在认证跳过清单内.
func RegisterAuthRoutes(g *gin.RouterGroup) {
	authRoutes := g.Group("/auth")
	{
		authRoutes.POST("/register", handle.Register)
		authRoutes.POST("/login", handle.Login)
		authRoutes.GET("/me", handle.Me)
		authRoutes.PUT("/password", handle.ChangePassword)
	}
}

// RegisterDocumentRoutes 注册文档路由：上传、查询、验证与证书入口.
func RegisterDocumentRoutes(g *gin.RouterGroup) {
	docRoutes := g.Group("/documents")
	{
		docRoutes.POST("", handle.UploadDocument)
		docRoutes.GET("", handle.ListDocuments)
		docRoutes.GET("/categories", handle.ListCategories)

		// 批量操作
		docRoutes.POST("/batch/analyze", handle.BatchAnalyze)

		singleGroup := docRoutes.Group("/:id")
		{
			singleGroup.GET("", handle.GetDocument)
			singleGroup.PUT("", handle.UpdateDocument)
			singleGroup.DELETE("", handle.DeleteDocument)
			singleGroup.GET("/download", handle.DownloadDocument)
			singleGroup.POST("/restore", handle.RestoreDocument)
			singleGroup.DELETE("/purge", handle.PurgeDocument)

			// 验证状态机入口
			singleGroup.POST("/analyze", handle.AnalyzeDocument)
			singleGroup.POST("/verify", handle.RequestVerification)
			singleGroup.GET("/history", handle.ReviewHistory)

			// 分享与预览
			singleGroup.POST("/share", handle.CreateShare)
			singleGroup.POST("/preview", handle.GrantPreview)

			// 证书
			singleGroup.POST("/certificate", handle.GenerateCertificate)
			singleGroup.GET("/certificate", handle.GetCertificate)
		}
	}
}

// RegisterReviewRoutes 注册审核路由，整组要求 verifier 或 admin 角色.
func RegisterReviewRoutes(g *gin.RouterGroup) {
	reviewRoutes := g.Group("/review",
		middleware.RequireRole(model.RoleVerifier, model.RoleAdmin))
	{
		reviewRoutes.GET("/queue", handle.ReviewQueue)
		reviewRoutes.GET("/stats", handle.VerifierStats)
		reviewRoutes.GET("/history", handle.VerifierHistory)

		reviewRoutes.POST("/:id", handle.ManualReview)
		reviewRoutes.POST("/:id/quick", handle.QuickReview)
	}

	// 指派是管理动作，单独限定 admin
	g.POST("/review/:id/assign",
		middleware.RequireRole(model.RoleAdmin), handle.AssignVerifier)
}

// RegisterShareRoutes 注册分享管理路由（属主视角）.
func RegisterShareRoutes(g *gin.RouterGroup) {
	shareRoutes := g.Group("/shares")
	{
		shareRoutes.GET("", handle.ListShares)
		shareRoutes.DELETE("/:share_id", handle.RevokeShare)
	}
}

// RegisterCertificateRoutes 注册证书下载路由.
func RegisterCertificateRoutes(g *gin.RouterGroup) {
	g.GET("/certificates/:certificate_id/download", handle.DownloadCertificate)
}

// RegisterPublicRoutes 注册匿名路由，整组在认证跳过清单内.
func RegisterPublicRoutes(g *gin.RouterGroup) {
	publicRoutes := g.Group("/public")
	{
		publicRoutes.GET("/shares/:share_id", handle.PublicShareMeta)
		publicRoutes.GET("/shares/:share_id/view", handle.PublicShareView)
		publicRoutes.GET("/shares/:share_id/download", handle.PublicShareDownload)

		publicRoutes.GET("/certificates/:certificate_id", handle.PublicVerifyCertificate)
		publicRoutes.GET("/preview/:token", handle.PublicPreview)
		publicRoutes.GET("/signing-key", handle.PublicSigningKey)
	}
}

// RegisterAdminRoutes 注册管理台路由，整组要求 admin 角色.
func RegisterAdminRoutes(g *gin.RouterGroup) {
	adminRoutes := g.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	{
		adminRoutes.GET("/stats", handle.AdminStats)

		adminRoutes.GET("/users", handle.AdminListUsers)
		adminRoutes.POST("/users", handle.AdminCreateUser)
		adminRoutes.PUT("/users/:id/role", handle.AdminUpdateRole)
		adminRoutes.PUT("/users/:id/ban", handle.AdminSetBan)
		adminRoutes.PUT("/users/:id/password", handle.AdminResetPassword)
		adminRoutes.DELETE("/users/:id", handle.AdminDeleteUser)

		// 调度器巡检
		RegisterSchedulerRoutes(adminRoutes)
	}
}

// RegisterNotificationRoutes 注册通知路由.
func RegisterNotificationRoutes(g *gin.RouterGroup) {
	notifyRoutes := g.Group("/notifications")
	{
		notifyRoutes.GET("", handle.ListNotifications)
		notifyRoutes.GET("/preferences", handle.GetPreferences)
		notifyRoutes.PUT("/preferences", handle.UpdatePreferences)
		notifyRoutes.PUT("/:id/read", handle.MarkNotificationRead)
	}
}
