// Package app wires the HTTP surface: middleware, routes and the
// dependencies every handler receives
package app

import (
	"fmt"
	"net/http"
	"time"

	"hopperai/chat-api/app/chat"
	"hopperai/chat-api/app/image"
	"hopperai/chat-api/app/root"
	"hopperai/chat-api/app/user"
	"hopperai/chat-api/config"
	"hopperai/chat-api/db"
	"hopperai/chat-api/internal"
	"hopperai/chat-api/internal/gateway"
	"hopperai/chat-api/internal/service"
	"hopperai/chat-api/internal/store"
	"hopperai/chat-api/pkg/middleware"
	"hopperai/chat-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"

	sessionTTL  = time.Hour * 24 * 30
	maxBodySize = 1 << 20
)

// Options holds what Register needs besides the handler dependencies
type Options struct {
	CORSOrigins []string
	RateLimiter *middleware.RateLimiter
	Cache       persist.CacheStore
}

// NewRouter builds the engine from the loaded configuration. The returned
// function stops background jobs and closes the database, call it after the
// HTTP server has shut down.
func NewRouter() (*gin.Engine, func(), error) {
	makeLogger(viper.GetString("app.log_level"))

	conn, err := db.New(viper.GetString("database.driver"), viper.GetString("database.dsn"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	s := store.New(conn)

	upstream := gateway.Config{
		BaseURL: viper.GetString("upstream.base_url"),
		APIKey:  viper.GetString("upstream.api_key"),
		Referer: viper.GetString("upstream.referer"),
		Title:   viper.GetString("upstream.title"),
	}

	chatCfg := upstream
	chatCfg.Model = viper.GetString("upstream.chat_model")
	chatCfg.Timeout = viper.GetDuration("upstream.chat_timeout")

	imageCfg := upstream
	imageCfg.Model = viper.GetString("upstream.image_model")
	imageCfg.Timeout = viper.GetDuration("upstream.image_timeout")

	d := &internal.Deps{
		Store:      s,
		Argon:      security.New(),
		Completion: gateway.NewCompletion(chatCfg),
		Images:     gateway.NewImages(imageCfg),
		Mailer: service.NewMailer(service.MailConfig{
			Host:      viper.GetString("smtp.host"),
			Port:      viper.GetInt("smtp.port"),
			Username:  viper.GetString("smtp.username"),
			Password:  viper.GetString("smtp.password"),
			From:      viper.GetString("smtp.from"),
			PublicURL: viper.GetString("host.public_url"),
		}),
		JWTSecret:        viper.GetString("jwt.secret"),
		SessionTTL:       sessionTTL,
		SSLEnabled:       viper.GetBool("host.ssl_enabled"),
		ResendCooldown:   viper.GetDuration("security.resend_cooldown"),
		MaxContentLength: viper.GetInt("chat.max_content_length"),
		HistoryLimit:     viper.GetInt("chat.history_limit"),
	}

	rateLimit := viper.GetInt("security.rate_limit")
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})

	cacheStore, rdb, err := newCacheStore(viper.GetString("cache.redis_url"))
	if err != nil {
		rl.Stop()
		db.Close(conn)
		return nil, nil, err
	}

	// Verification tokens live for a day so checking daily is enough
	stopCleanup, err := service.StartTokenCleanup(viper.GetString("cleanup.schedule"), s)
	if err != nil {
		rl.Stop()
		db.Close(conn)
		return nil, nil, err
	}

	router := gin.New()
	Register(router, d, Options{
		CORSOrigins: config.CORSOrigins(),
		RateLimiter: rl,
		Cache:       cacheStore,
	})

	cleanup := func() {
		stopCleanup()
		rl.Stop()

		if rdb != nil {
			if err := rdb.Close(); err != nil {
				zap.L().Error("Failed to close redis client", zap.Error(err))
			}
		}

		if err := db.Close(conn); err != nil {
			zap.L().Error("Failed to close database", zap.Error(err))
		}
	}

	return router, cleanup, nil
}

// Register attaches the middleware chain and every route to router
func Register(router *gin.Engine, d *internal.Deps, o Options) {
	if o.Cache == nil {
		o.Cache = persist.NewMemoryStore(time.Minute)
	}

	router.Use(
		cors.New(corsConfig(o.CORSOrigins)),
		middleware.NewRequestIDMiddleware(),
		gin.CustomRecovery(func(c *gin.Context, err any) {
			zap.L().Error("Recovered from panic", zap.Any("error", err), zap.String("requestID", c.GetString("requestID")))

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"detail":    "Internal server error",
				"requestID": c.GetString("requestID"),
			})
		}),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v, ok := c.Get("userID"); ok {
					fields = append(fields, zap.Any("userID", v))
				}

				return fields
			},
		}),
		middleware.BodySizeLimiter(maxBodySize),
	)

	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"detail":    "Not found",
			"requestID": c.GetString("requestID"),
		})
	})

	auth := middleware.NewAuthMiddleware(d.Store, d.JWTSecret, true)
	optionalAuth := middleware.NewAuthMiddleware(d.Store, d.JWTSecret, false)

	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if o.RateLimiter != nil {
		limit = o.RateLimiter.Handler()
	}

	// GET /			-> Service information
	router.GET("/", cache.CacheByRequestURI(o.Cache, time.Minute, cache.WithoutHeader()), root.Info)

	// GET /health			-> Liveness, never touches dependencies
	router.GET("/health", root.Health)
	router.HEAD("/health", root.Health)

	// HEAD /heartbeat		-> Used to check if the server is alive
	router.HEAD("/heartbeat", root.Heartbeat)

	// POST /chat			-> Sends a message to the AI, stored when logged in
	router.POST("/chat", limit, optionalAuth, func(c *gin.Context) { chat.ChatSend(c, d) })

	// GET /chats			-> Returns the caller's chat history
	router.GET("/chats", auth, func(c *gin.Context) { chat.ChatHistory(c, d) })

	// POST /generate-image		-> Generates an image from a prompt
	router.POST("/generate-image", limit, func(c *gin.Context) { image.ImageGenerate(c, d) })

	// GET /verify?token=		-> Verifies a user's email
	router.GET("/verify", func(c *gin.Context) { user.UserVerify(c, d) })

	u := router.Group("/users")
	{
		// POST /users			-> Registers a new user
		u.POST("", func(c *gin.Context) { user.UserRegister(c, d) })

		// GET /users/me		-> Returns the logged in user
		u.GET("/me", auth, func(c *gin.Context) { user.UserFetch(c, d) })

		// POST /users/login		-> Logs in a user and returns a JWT token
		u.POST("/login", func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /users/logout		-> Ends the current session
		u.POST("/logout", auth, func(c *gin.Context) { user.UserLogout(c, d) })

		// POST /users/verify/resend	-> Sends a new verification email
		u.POST("/verify/resend", func(c *gin.Context) { user.UserResendVerification(c, d) })
	}
}

// corsConfig allows every origin when the list is empty or contains "*".
// Credentials are allowed, so the origin is echoed back instead of "*".
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}

	if wildcard {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}

	return cfg
}

// newCacheStore returns a redis backed response cache when url is set and an
// in-memory one otherwise. The client is returned so it can be closed.
func newCacheStore(url string) (persist.CacheStore, *redis.Client, error) {
	if url == "" {
		return persist.NewMemoryStore(time.Minute), nil, nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid cache.redis_url, %w", err)
	}

	rdb := redis.NewClient(opt)
	return persist.NewRedisStore(rdb), rdb, nil
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
