package provider

import (
	"strings"
	"time"

	"github.com/tablecart/internal/cache"
	"github.com/tablecart/internal/cart"
	"github.com/tablecart/internal/config"
	"github.com/tablecart/internal/constants"
	"github.com/tablecart/internal/logger"
	"github.com/tablecart/internal/models"
	"github.com/tablecart/internal/queue"
	"github.com/tablecart/internal/repository"
	"github.com/tablecart/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	CartSlot    cart.Slot

	// Repositories
	StorefrontRepo   repository.StorefrontRepository
	ProductRepo      repository.ProductRepository
	CouponRepo       repository.CouponRepository
	CartSnapshotRepo repository.CartSnapshotRepository

	// Services
	CatalogService     *service.CatalogService
	CouponService      *service.CouponService
	CartService        *service.CartService
	CartSessionService *service.CartSessionService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 选择购物车槽位
	c.CartSlot = c.buildCartSlot()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.StorefrontRepo = repository.NewStorefrontRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CartSnapshotRepo = repository.NewCartSnapshotRepository(db, c.Config.Cart.SnapshotTTL())
}

// buildCartSlot 按配置选择槽位，redis 未启用时退回数据库
func (c *Container) buildCartSlot() cart.Slot {
	backend := strings.ToLower(strings.TrimSpace(c.Config.Cart.SlotBackend))
	switch backend {
	case constants.CartSlotBackendMemory:
		logger.Warnw("provider_cart_slot_memory", "hint", "carts are lost on restart")
		return cart.NewMemorySlot()
	case constants.CartSlotBackendDatabase:
		return c.CartSnapshotRepo
	case "", constants.CartSlotBackendRedis:
		if !cache.Enabled() {
			logger.Warnw("provider_cart_slot_redis_unavailable", "fallback", constants.CartSlotBackendDatabase)
			return c.CartSnapshotRepo
		}
		return cache.NewCartSlot(cache.Client(), cache.CartSlotOptions{
			Prefix:           cache.Prefix(),
			TTL:              c.Config.Cart.SnapshotTTL(),
			FailureThreshold: c.Config.Cart.Breaker.FailureThreshold,
			OpenTimeout:      time.Duration(c.Config.Cart.Breaker.OpenTimeoutSeconds) * time.Second,
		})
	default:
		logger.Warnw("provider_cart_slot_backend_unknown", "backend", backend, "fallback", constants.CartSlotBackendDatabase)
		return c.CartSnapshotRepo
	}
}

func (c *Container) initServices() {
	c.CatalogService = service.NewCatalogService(c.ProductRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo)
	c.CartService = service.NewCartService(c.StorefrontRepo, c.CatalogService, c.CouponService, c.CartSlot)
	c.CartSessionService = service.NewCartSessionService(c.Config.Cart.SessionSecret, c.Config.Cart.SessionTTL())
}

// UsesDatabaseSlot 当前是否使用数据库槽位（需要定期清理过期快照）
func (c *Container) UsesDatabaseSlot() bool {
	_, ok := c.CartSlot.(*repository.GormCartSnapshotRepository)
	return ok
}
