/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2026-03-12 11:30:55
 * @LastEditTime: 2026-04-17 18:26:37
 * @LastEditors: 安知鱼
 */
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anzhiyu-c/ibbs/internal/app/middleware"
	ai_handler "github.com/anzhiyu-c/ibbs/pkg/handler/ai"
	attachment_handler "github.com/anzhiyu-c/ibbs/pkg/handler/attachment"
	auth_handler "github.com/anzhiyu-c/ibbs/pkg/handler/auth"
	bug_report_handler "github.com/anzhiyu-c/ibbs/pkg/handler/bug_report"
	captcha_handler "github.com/anzhiyu-c/ibbs/pkg/handler/captcha"
	chatbot_handler "github.com/anzhiyu-c/ibbs/pkg/handler/chatbot"
	knowledge_handler "github.com/anzhiyu-c/ibbs/pkg/handler/knowledge"
	post_handler "github.com/anzhiyu-c/ibbs/pkg/handler/post"
	public_handler "github.com/anzhiyu-c/ibbs/pkg/handler/public"
	rating_handler "github.com/anzhiyu-c/ibbs/pkg/handler/rating"
	setting_handler "github.com/anzhiyu-c/ibbs/pkg/handler/setting"
	user_handler "github.com/anzhiyu-c/ibbs/pkg/handler/user"
	version_handler "github.com/anzhiyu-c/ibbs/pkg/handler/version"
)

// NoCacheMiddleware 全局反缓存中间件，确保所有API响应都不会被CDN缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Next()
	}
}

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	authHandler       *auth_handler.AuthHandler
	captchaHandler    *captcha_handler.Handler
	userHandler       *user_handler.UserHandler
	postHandler       *post_handler.Handler
	ratingHandler     *rating_handler.Handler
	aiHandler         *ai_handler.Handler
	chatbotHandler    *chatbot_handler.Handler
	bugReportHandler  *bug_report_handler.Handler
	publicHandler     *public_handler.PublicHandler
	attachmentHandler *attachment_handler.Handler
	knowledgeHandler  *knowledge_handler.Handler
	settingHandler    *setting_handler.SettingHandler
	versionHandler    *version_handler.Handler
	mw                *middleware.Middleware
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	authHandler *auth_handler.AuthHandler,
	captchaHandler *captcha_handler.Handler,
	userHandler *user_handler.UserHandler,
	postHandler *post_handler.Handler,
	ratingHandler *rating_handler.Handler,
	aiHandler *ai_handler.Handler,
	chatbotHandler *chatbot_handler.Handler,
	bugReportHandler *bug_report_handler.Handler,
	publicHandler *public_handler.PublicHandler,
	attachmentHandler *attachment_handler.Handler,
	knowledgeHandler *knowledge_handler.Handler,
	settingHandler *setting_handler.SettingHandler,
	versionHandler *version_handler.Handler,
	mw *middleware.Middleware,
) *Router {
	return &Router{
		authHandler:       authHandler,
		captchaHandler:    captchaHandler,
		userHandler:       userHandler,
		postHandler:       postHandler,
		ratingHandler:     ratingHandler,
		aiHandler:         aiHandler,
		chatbotHandler:    chatbotHandler,
		bugReportHandler:  bugReportHandler,
		publicHandler:     publicHandler,
		attachmentHandler: attachmentHandler,
		knowledgeHandler:  knowledgeHandler,
		settingHandler:    settingHandler,
		versionHandler:    versionHandler,
		mw:                mw,
	}
}

// Setup 将所有路由注册到 Gin 引擎。
func (r *Router) Setup(engine *gin.Engine) {
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 附件需要被浏览器缓存，不套用反缓存中间件
	engine.GET("/api/attachments/*key", r.attachmentHandler.Get)

	apiGroup := engine.Group("/api")
	apiGroup.Use(NoCacheMiddleware(), r.mw.Antiforgery())

	r.registerAuthRoutes(apiGroup)
	r.registerUserRoutes(apiGroup)
	r.registerPostRoutes(apiGroup)
	r.registerAIRoutes(apiGroup)
	r.registerChatbotRoutes(apiGroup)
	r.registerBugReportRoutes(apiGroup)
	r.registerPublicRoutes(apiGroup)
	r.registerAdminRoutes(apiGroup)
}

func (r *Router) registerAuthRoutes(api *gin.RouterGroup) {
	api.GET("/antiforgery/token", r.authHandler.GetAntiforgeryToken)
	api.GET("/captcha/image", r.captchaHandler.GenerateImage)

	auth := api.Group("/auth")
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh-token", r.authHandler.RefreshToken)
	}
}

func (r *Router) registerUserRoutes(api *gin.RouterGroup) {
	user := api.Group("/user").Use(r.mw.JWTAuth())
	{
		user.GET("/info", r.userHandler.GetUserInfo)
		user.GET("/profile", r.userHandler.GetUserInfo)
		user.PUT("/profile", r.userHandler.UpdateProfile)
		user.PUT("/password", r.userHandler.ChangePassword)
	}

	users := api.Group("/users").Use(r.mw.JWTAuthOptional())
	{
		users.GET("/:id/profile", r.userHandler.GetUserProfile)
		users.GET("/:id/posts", r.postHandler.ListUserPosts)
	}
}

func (r *Router) registerPostRoutes(api *gin.RouterGroup) {
	postsPublic := api.Group("/posts").Use(r.mw.JWTAuthOptional())
	{
		postsPublic.GET("", r.postHandler.ListPosts)
		postsPublic.GET("/top-rated", r.postHandler.ListTopRated)
		postsPublic.GET("/:id", r.postHandler.GetPost)
		postsPublic.GET("/:id/ratings", r.ratingHandler.ListRatings)
	}

	posts := api.Group("/posts").Use(r.mw.JWTAuth())
	{
		posts.POST("", r.postHandler.CreatePost)
		posts.PUT("/:id", r.postHandler.UpdatePost)
		posts.DELETE("/:id", r.postHandler.DeletePost)
		posts.PUT("/:id/rating", r.ratingHandler.UpdateRating)
		posts.DELETE("/:id/rating", r.ratingHandler.RemoveRating)
	}
}

func (r *Router) registerAIRoutes(api *gin.RouterGroup) {
	ai := api.Group("/ai").Use(r.mw.JWTAuth(), r.mw.AIRateLimit())
	{
		ai.POST("/rewrite", r.aiHandler.Rewrite)
		ai.POST("/moderate", r.aiHandler.Moderate)
		ai.POST("/tags", r.aiHandler.SuggestTags)
	}
}

func (r *Router) registerChatbotRoutes(api *gin.RouterGroup) {
	chatbot := api.Group("/chatbot")
	{
		chatbot.GET("/sample-prompts", r.chatbotHandler.GetSamplePrompts)
		chatbot.POST("/messages", r.mw.JWTAuthOptional(), r.mw.AIRateLimit(), r.chatbotHandler.SendMessage)
	}
}

func (r *Router) registerBugReportRoutes(api *gin.RouterGroup) {
	bugs := api.Group("/bug-reports")
	{
		bugs.POST("", r.mw.JWTAuthOptional(), r.bugReportHandler.Submit)
		bugs.GET("", r.mw.JWTAuth(), r.bugReportHandler.List)
		bugs.PUT("/:id/status", r.mw.JWTAuth(), r.mw.AdminAuth(), r.bugReportHandler.UpdateStatus)
	}
}

func (r *Router) registerPublicRoutes(api *gin.RouterGroup) {
	api.GET("/lookups/:type", r.publicHandler.GetLookups)

	public := api.Group("/public")
	{
		public.GET("/site-config", r.settingHandler.GetSiteConfig)
		public.GET("/version", r.versionHandler.GetVersion)
		public.GET("/version/string", r.versionHandler.GetVersionString)
	}
}

func (r *Router) registerAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		admin.GET("/settings", r.settingHandler.GetAdminSettings)
		admin.PUT("/settings", r.settingHandler.UpdateSettings)

		admin.GET("/knowledge", r.knowledgeHandler.List)
		admin.POST("/knowledge", r.knowledgeHandler.Upsert)
		admin.DELETE("/knowledge/:slug", r.knowledgeHandler.Delete)
	}
}
