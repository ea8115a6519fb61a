package router

import (
	"fmt"
	"strings"

	"github.com/tablecart/internal/cache"
	"github.com/tablecart/internal/config"
	"github.com/tablecart/internal/constants"
	publichandlers "github.com/tablecart/internal/http/handlers/public"
	"github.com/tablecart/internal/logger"
	"github.com/tablecart/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	couponRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:coupon", redisPrefix),
		WindowSeconds: cfg.Cart.CouponRateLimit.WindowSeconds,
		MaxRequests:   cfg.Cart.CouponRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Cart.CouponRateLimit.BlockSeconds,
		MessageKey:    "error.coupon_too_many_attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开菜单接口
		public := apiV1.Group("/public/storefronts/:slug")
		{
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:product_id/options", publicHandler.GetProductOptions)
		}

		storefront := apiV1.Group("/storefronts/:slug")
		storefront.POST("/cart/session", publicHandler.CreateCartSession)

		// 购物车接口（需会话）
		cartGroup := storefront.Group("/cart")
		cartGroup.Use(CartSessionMiddleware(c.CartService, c.CartSessionService))
		{
			cartGroup.GET("", publicHandler.GetCart)
			cartGroup.DELETE("", publicHandler.ClearCart)
			cartGroup.POST("/items", publicHandler.AddCartItem)
			cartGroup.POST("/lines/:line_id/increment", publicHandler.IncrementCartLine)
			cartGroup.POST("/lines/:line_id/decrement", publicHandler.DecrementCartLine)
			cartGroup.DELETE("/lines/:line_id", publicHandler.RemoveCartLine)
			cartGroup.PUT("/table-label", publicHandler.SetTableLabel)
			cartGroup.POST("/coupon", RateLimitMiddleware(redisClient, couponRule, KeyByCartSession), publicHandler.ApplyCoupon)
			cartGroup.DELETE("/coupon", publicHandler.RemoveCoupon)
		}
	}

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, healthStatus(c))
	})

	return r
}

func healthStatus(c *provider.Container) gin.H {
	status := gin.H{"status": "ok"}
	if c == nil {
		return status
	}
	switch slot := c.CartSlot.(type) {
	case *cache.CartSlot:
		status["cart_slot"] = constants.CartSlotBackendRedis
		status["cart_slot_breaker"] = slot.State().String()
	default:
		if c.UsesDatabaseSlot() {
			status["cart_slot"] = constants.CartSlotBackendDatabase
		} else {
			status["cart_slot"] = constants.CartSlotBackendMemory
		}
	}
	return status
}
