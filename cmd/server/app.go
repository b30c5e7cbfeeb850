/*
 * @Description: 应用装配：加载配置、初始化基础设施并注入所有依赖
 * @Author: 安知鱼
 * @Date: 2026-03-02 09:58:14
 * @LastEditTime: 2026-04-18 17:20:36
 * @LastEditors: 安知鱼
 */
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anzhiyu-c/ibbs/internal/app/bootstrap"
	"github.com/anzhiyu-c/ibbs/internal/app/listener"
	"github.com/anzhiyu-c/ibbs/internal/app/middleware"
	"github.com/anzhiyu-c/ibbs/internal/app/task"
	"github.com/anzhiyu-c/ibbs/internal/configdef"
	"github.com/anzhiyu-c/ibbs/internal/infra/agent"
	"github.com/anzhiyu-c/ibbs/internal/infra/persistence/database"
	ent_impl "github.com/anzhiyu-c/ibbs/internal/infra/persistence/ent"
	mongo_impl "github.com/anzhiyu-c/ibbs/internal/infra/persistence/mongo"
	"github.com/anzhiyu-c/ibbs/internal/infra/router"
	"github.com/anzhiyu-c/ibbs/internal/infra/storage"
	"github.com/anzhiyu-c/ibbs/internal/pkg/event"
	"github.com/anzhiyu-c/ibbs/internal/pkg/logger"
	"github.com/anzhiyu-c/ibbs/internal/pkg/version"
	"github.com/anzhiyu-c/ibbs/pkg/config"
	"github.com/anzhiyu-c/ibbs/pkg/domain/repository"
	"github.com/anzhiyu-c/ibbs/pkg/service/ai"
	"github.com/anzhiyu-c/ibbs/pkg/service/auth"
	"github.com/anzhiyu-c/ibbs/pkg/service/bug_report"
	"github.com/anzhiyu-c/ibbs/pkg/service/chatbot"
	"github.com/anzhiyu-c/ibbs/pkg/service/imagecaptcha"
	"github.com/anzhiyu-c/ibbs/pkg/service/knowledge"
	"github.com/anzhiyu-c/ibbs/pkg/service/lookup"
	"github.com/anzhiyu-c/ibbs/pkg/service/post"
	"github.com/anzhiyu-c/ibbs/pkg/service/rating"
	"github.com/anzhiyu-c/ibbs/pkg/service/setting"
	"github.com/anzhiyu-c/ibbs/pkg/service/user"
	"github.com/anzhiyu-c/ibbs/pkg/service/utility"

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

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// shutdownTimeout 优雅退出时等待进行中请求的最长时间
const shutdownTimeout = 10 * time.Second

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg        *config.Config
	engine     *gin.Engine
	taskBroker *task.Broker
	sqlDB      *sql.DB
	eventBus   *event.EventBus
	logger     *zap.Logger
	appVersion string

	settingSvc setting.SettingService
	tokenSvc   auth.TokenService
	userSvc    user.UserService
	postSvc    post.Service
	cacheSvc   utility.CacheService
	mw         *middleware.Middleware
}

func (a *App) PrintBanner() {
	banner := `

      ██╗██████╗ ██████╗ ███████╗
      ██║██╔══██╗██╔══██╗██╔════╝
      ██║██████╔╝██████╔╝███████╗
      ██║██╔══██╗██╔══██╗╚════██║
      ██║██████╔╝██████╔╝███████║
      ╚═╝╚═════╝ ╚═════╝ ╚══════╝

`
	fmt.Println(banner)
	fmt.Println("--------------------------------------------------------")
	fmt.Printf(" IBBS - Internet Bulletin Board System: %s\n", version.GetVersionString())
	fmt.Println("--------------------------------------------------------")
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp() (*App, func(), error) {
	appVersion := version.GetVersion()

	// --- Phase 1: 加载外部配置 ---
	bootLogger, err := logger.New(false)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	cfg, err := config.NewConfig(bootLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	log := bootLogger
	if cfg.GetBool(config.KeyServerDebug) {
		if log, err = logger.New(true); err != nil {
			return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
		}
	}
	ctx := context.Background()

	// --- Phase 2: 初始化基础设施 ---
	sqlDB, dialectName, err := database.NewSQLDB(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("创建数据库连接池失败: %w", err)
	}

	// cleanups 按注册的逆序执行
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		_ = log.Sync()
	}
	cleanups = append(cleanups, func() {
		log.Info("关闭数据库连接")
		sqlDB.Close()
	})

	redisClient := database.NewRedisClient(ctx, cfg, log)
	if redisClient != nil {
		cleanups = append(cleanups, func() {
			log.Info("关闭 Redis 连接")
			redisClient.Close()
		})
	}
	mongoDB, closeMongo := database.NewMongoDatabase(ctx, cfg, log)
	cleanups = append(cleanups, closeMongo)

	eventBus := event.NewEventBus(log)
	cleanups = append(cleanups, eventBus.Shutdown)

	// --- Phase 3: 初始化数据仓库层 ---
	repos := ent_impl.NewRepositories(sqlDB, dialectName)
	txManager := ent_impl.NewTransactionManager(sqlDB, dialectName)
	knowledgeRepo := newKnowledgeRepository(ctx, mongoDB, log)

	// --- Phase 4: 初始化应用引导程序 ---
	bootstrapper := bootstrap.NewBootstrapper(sqlDB, dialectName, repos, log)
	if err := bootstrapper.InitializeDatabase(ctx); err != nil {
		return nil, cleanup, fmt.Errorf("数据库初始化失败: %w", err)
	}

	settingSvc := setting.NewSettingService(repos.Setting, log)
	if err := settingSvc.LoadAllSettings(ctx); err != nil {
		return nil, cleanup, fmt.Errorf("从数据库加载站点配置失败: %w", err)
	}

	// --- Phase 4.5: 初始化 ID 编码器 ---
	if err := bootstrap.InitIDEncoder(settingSvc); err != nil {
		return nil, cleanup, err
	}
	log.Info("ID 编码器初始化成功")

	// --- Phase 5: 初始化业务逻辑层 ---
	cacheSvc := utility.NewCacheServiceWithFallback(redisClient, log)
	cleanups = append(cleanups, func() { utility.StopCacheService(cacheSvc) })

	storageProvider, err := storage.NewProviderFromConfig(ctx, cfg, log)
	if err != nil {
		return nil, cleanup, fmt.Errorf("初始化附件存储失败: %w", err)
	}
	agentClient, err := agent.New(ctx, cfg, log)
	if err != nil {
		return nil, cleanup, fmt.Errorf("初始化 AI 代理失败: %w", err)
	}
	log.Info("AI 代理已就绪", zap.String("provider", agentClient.Name()))

	lookupSvc := lookup.NewService(repos.Lookup, cacheSvc, log)
	aiSvc := ai.NewService(agentClient, lookupSvc, log)
	captchaSvc := imagecaptcha.NewImageCaptchaService(cacheSvc, log)
	tokenSvc := auth.NewTokenService(repos.User, settingSvc)
	authSvc := auth.NewAuthService(repos.User, settingSvc, tokenSvc, captchaSvc, log)
	userSvc := user.NewUserService(repos.User, repos.Post, cacheSvc, log)
	postSvc := post.NewService(repos.Post, repos.User, txManager, aiSvc, settingSvc, eventBus, log)
	ratingSvc := rating.NewService(repos.Post, repos.Rating, txManager, eventBus, log)
	bugSvc := bug_report.NewService(repos.BugReport, repos.User, lookupSvc, aiSvc, storageProvider, eventBus, log)

	knowledgeSvc := knowledge.NewService(knowledgeRepo, log)
	if err := knowledgeSvc.SeedDefaults(ctx, configdef.DefaultKnowledgeArticles); err != nil {
		log.Warn("写入内置知识库文章失败", zap.Error(err))
	}
	chatbotSvc := chatbot.NewService(aiSvc, lookupSvc, log,
		chatbot.DefaultSkills(aiSvc, knowledgeSvc, postSvc, userSvc, bugSvc, lookupSvc)...)

	// --- Phase 6: 后台任务与事件监听 ---
	taskBroker := task.NewBroker(postSvc, ratingSvc, lookupSvc, log)
	listener.NewPostEventListener(eventBus, taskBroker, userSvc, settingSvc, log)

	// --- Phase 7: 初始化表现层 ---
	mw := middleware.NewMiddleware(tokenSvc, settingSvc, log)
	appRouter := router.NewRouter(
		auth_handler.NewAuthHandler(authSvc, tokenSvc),
		captcha_handler.NewHandler(captchaSvc),
		user_handler.NewUserHandler(userSvc),
		post_handler.NewHandler(postSvc),
		rating_handler.NewHandler(ratingSvc),
		ai_handler.NewHandler(aiSvc),
		chatbot_handler.NewHandler(chatbotSvc),
		bug_report_handler.NewHandler(bugSvc),
		public_handler.NewPublicHandler(lookupSvc),
		attachment_handler.NewHandler(storageProvider, log),
		knowledge_handler.NewHandler(knowledgeSvc),
		setting_handler.NewSettingHandler(settingSvc),
		version_handler.NewHandler(),
		mw,
	)

	// --- Phase 8: 配置 Gin 引擎 ---
	if !cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.Recovery(log), middleware.RequestLogger(log), middleware.Cors())
	if err := engine.SetTrustedProxies(nil); err != nil {
		log.Warn("设置可信代理失败", zap.Error(err))
	}
	appRouter.Setup(engine)

	app := &App{
		cfg:        cfg,
		engine:     engine,
		taskBroker: taskBroker,
		sqlDB:      sqlDB,
		eventBus:   eventBus,
		logger:     log,
		appVersion: appVersion,
		settingSvc: settingSvc,
		tokenSvc:   tokenSvc,
		userSvc:    userSvc,
		postSvc:    postSvc,
		cacheSvc:   cacheSvc,
		mw:         mw,
	}
	return app, cleanup, nil
}

// newKnowledgeRepository MongoDB 可用时使用 MongoDB，否则退回进程内知识库
func newKnowledgeRepository(ctx context.Context, db *mongo.Database, log *zap.Logger) repository.KnowledgeRepository {
	if db != nil {
		repo, err := mongo_impl.NewKnowledgeRepository(ctx, db)
		if err == nil {
			return repo
		}
		log.Warn("初始化 MongoDB 知识库失败，使用内置知识库", zap.Error(err))
	}
	return mongo_impl.NewMemoryKnowledgeRepository(nil)
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}

func (a *App) DB() *sql.DB {
	return a.sqlDB
}

func (a *App) SettingService() setting.SettingService {
	return a.settingSvc
}

func (a *App) TokenService() auth.TokenService {
	return a.tokenSvc
}

func (a *App) UserService() user.UserService {
	return a.userSvc
}

func (a *App) PostService() post.Service {
	return a.postSvc
}

func (a *App) CacheService() utility.CacheService {
	return a.cacheSvc
}

func (a *App) Middleware() *middleware.Middleware {
	return a.mw
}

// EventBus 返回事件总线，用于发布和订阅事件
func (a *App) EventBus() *event.EventBus {
	return a.eventBus
}

// Version 返回应用的版本号
func (a *App) Version() string {
	return a.appVersion
}

// Run 启动后台任务并监听端口，收到 SIGINT/SIGTERM 后优雅退出
func (a *App) Run() error {
	if err := a.taskBroker.RegisterCronJobs(); err != nil {
		return fmt.Errorf("注册定时任务失败: %w", err)
	}
	a.taskBroker.Start()

	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("应用程序启动成功，正在监听端口", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("收到退出信号，正在关闭 HTTP 服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Stop() {
	if a.taskBroker != nil {
		a.taskBroker.Stop()
	}
}
