package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestIDHeader 请求ID头
const RequestIDHeader = "X-Request-ID"

// requestIDKey 请求ID在gin上下文中的键
const requestIDKey = "request_id"

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	Logger    *zap.Logger
	RateLimit *RateLimitConfig
	CORS      *CORSConfig
	Security  *SecurityConfig
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool          // 是否启用限流
	RequestsPerSecond int           // 每秒请求数限制
	Burst             int           // 突发请求数
	CleanupInterval   time.Duration // 空闲限流器清理间隔
}

// CORSConfig CORS配置
type CORSConfig struct {
	AllowOrigins     []string // 允许的源
	AllowMethods     []string // 允许的HTTP方法
	AllowHeaders     []string // 允许的请求头
	AllowCredentials bool     // 是否允许凭据
	MaxAge           int      // 预检请求缓存时间
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	EnableCSP  bool // 是否启用内容安全策略
	EnableHSTS bool // 是否启用HSTS
}

// DefaultMiddlewareConfig 默认中间件配置
func DefaultMiddlewareConfig(logger *zap.Logger) *MiddlewareConfig {
	return &MiddlewareConfig{
		Logger: logger,
		RateLimit: &RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 100,             // 每秒100个请求
			Burst:             200,             // 允许突发200个请求
			CleanupInterval:   5 * time.Minute, // 5分钟清理一次
		},
		CORS: &CORSConfig{
			AllowOrigins:     []string{"*"}, // 前端独立部署，默认允许所有源
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           86400, // 24小时
		},
		Security: &SecurityConfig{
			EnableCSP:  true,
			EnableHSTS: true,
		},
	}
}

// SetupMiddleware 配置所有中间件
func SetupMiddleware(r *gin.Engine, config *MiddlewareConfig) {
	// 1. 请求ID，后续日志都带上
	r.Use(RequestIDMiddleware())

	// 2. 恢复中间件，防止panic导致服务崩溃
	r.Use(RecoveryMiddleware(config.Logger))

	// 3. 结构化日志中间件
	r.Use(StructuredLogger(config.Logger))

	// 4. 安全头中间件
	if config.Security != nil {
		r.Use(SecurityHeaders(config.Security))
	}

	// 5. CORS跨域中间件
	if config.CORS != nil {
		r.Use(CORSMiddleware(config.CORS))
	}

	// 6. 请求限流中间件
	if config.RateLimit != nil && config.RateLimit.Enabled {
		r.Use(RateLimitMiddleware(NewRateLimiter(config.RateLimit)))
	}
}

// RecoveryMiddleware 恢复中间件
// 捕获panic并记录详细错误日志，返回统一的JSON错误
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error("Request panic recovered",
			zap.Any("panic", recovered),
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("remote_addr", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"code":      "INTERNAL_ERROR",
			"message":   "服务器内部错误",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
}

// StructuredLogger 结构化日志中间件
// 记录每个HTTP请求的响应时间、状态码等
func StructuredLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("remote_addr", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP Request", fields...)
		default:
			logger.Info("HTTP Request", fields...)
		}
	}
}

// SecurityHeaders 安全头中间件
func SecurityHeaders(config *SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// HSTS头（仅HTTPS）
		if config.EnableHSTS && c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		if config.EnableCSP {
			c.Header("Content-Security-Policy",
				"default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'")
		}

		c.Next()
	}
}

// CORSMiddleware CORS跨域中间件
// 处理跨域请求，支持预检请求和实际请求
func CORSMiddleware(config *CORSConfig) gin.HandlerFunc {
	allowAll := slices.Contains(config.AllowOrigins, "*")
	methods := strings.Join(config.AllowMethods, ", ")
	headers := strings.Join(config.AllowHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case allowAll && !config.AllowCredentials:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && (allowAll || slices.Contains(config.AllowOrigins, origin)):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		if methods != "" {
			c.Header("Access-Control-Allow-Methods", methods)
		}
		if headers != "" {
			c.Header("Access-Control-Allow-Headers", headers)
		}
		if config.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		if config.MaxAge > 0 {
			c.Header("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
		}

		// 处理预检请求
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端IP限流
type RateLimiter struct {
	mu              sync.Mutex
	limiters        map[string]*limiterEntry
	rate            rate.Limit
	burst           int
	cleanupInterval time.Duration
	lastCleanup     time.Time
	now             func() time.Time
}

// NewRateLimiter 创建限流器实例
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	interval := config.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RateLimiter{
		limiters:        make(map[string]*limiterEntry),
		rate:            rate.Limit(config.RequestsPerSecond),
		burst:           config.Burst,
		cleanupInterval: interval,
		lastCleanup:     time.Now(),
		now:             time.Now,
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	now := rl.now()
	rl.cleanupLocked(now)

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	rl.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Len 当前跟踪的客户端数量
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// cleanupLocked 移除超过一个清理周期未出现的客户端
func (rl *RateLimiter) cleanupLocked(now time.Time) {
	if now.Sub(rl.lastCleanup) < rl.cleanupInterval {
		return
	}
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) >= rl.cleanupInterval {
			delete(rl.limiters, key)
		}
	}
	rl.lastCleanup = now
}

// RateLimitMiddleware 请求限流中间件
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow("ip:" + c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"code":    "RATE_LIMIT_EXCEEDED",
				"message": "请求频率超过限制，请稍后重试",
			})
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware 请求ID中间件
// 沿用调用方传入的请求ID，否则生成UUID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID 获取当前请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
