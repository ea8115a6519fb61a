package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tablecart/internal/config"
	"github.com/tablecart/internal/constants"
	handlershared "github.com/tablecart/internal/http/handlers/shared"
	"github.com/tablecart/internal/http/response"
	"github.com/tablecart/internal/logger"
	"github.com/tablecart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
			constants.CartSessionHeader,
			requestIDHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// CartSessionMiddleware 购物车会话中间件。
// 按路由中的 :slug 解析店铺，校验会话 token 后恢复该会话的购物车并写入上下文。
func CartSessionMiddleware(cartService *service.CartService, sessions *service.CartSessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cartService == nil || sessions == nil {
			logger.Errorw("cart_session_middleware_unavailable")
			response.Error(c, response.CodeInternal, "error.cart_unavailable")
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		storefront, err := cartService.ResolveStorefront(ctx, c.Param("slug"))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrStorefrontNotFound), errors.Is(err, service.ErrStorefrontInactive):
				response.NotFound(c, "error.storefront_not_found")
			default:
				logger.SW("request_id", getRequestID(c)).Errorw("cart_storefront_resolve_failed", "slug", c.Param("slug"), "error", err)
				response.Error(c, response.CodeInternal, "error.storefront_fetch_failed")
			}
			c.Abort()
			return
		}

		tokenString, ok := handlershared.ExtractCartToken(c)
		if !ok {
			response.Unauthorized(c, "error.cart_session_missing")
			c.Abort()
			return
		}
		claims, err := sessions.ParseForStorefront(tokenString, storefront.ID)
		if err != nil {
			if errors.Is(err, service.ErrCartSessionMismatch) {
				response.Forbidden(c, "error.cart_session_mismatch")
			} else {
				response.Unauthorized(c, "error.cart_session_invalid")
			}
			c.Abort()
			return
		}

		openCart, err := cartService.OpenForStorefront(ctx, storefront, claims.SessionID)
		if err != nil {
			logger.SW("request_id", getRequestID(c)).Errorw("cart_open_failed", "storefront_id", storefront.ID, "error", err)
			response.Error(c, response.CodeInternal, "error.cart_unavailable")
			c.Abort()
			return
		}

		c.Set(constants.StorefrontContextKey, storefront)
		c.Set(constants.CartSessionClaimKey, claims)
		c.Set(constants.CartContextKey, openCart)
		c.Next()
	}
}
