package constants

// 优惠券类型常量
const (
	CouponTypePercentage = "percentage"
	CouponTypePercent    = "percent"
	CouponTypeFixed      = "fixed"
)

// 购物车槽位后端常量
const (
	CartSlotBackendRedis    = "redis"
	CartSlotBackendDatabase = "database"
	CartSlotBackendMemory   = "memory"
)

// 购物车会话相关常量
const (
	CartSessionHeader    = "X-Cart-Token"
	CartSessionIssuer    = "tablecart"
	CartSessionClaimKey  = "cart_session"
	CartContextKey       = "open_cart"
	StorefrontContextKey = "storefront"
)

// 购物车行限制常量，请求绑定中的 max=999 与 MaxLineQuantity 保持一致
const (
	MaxLineQuantity              = 999
	MaxLineTotalMinorUnits int64 = 100000000000
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskCartSnapshotPurge = "cart:snapshot_purge"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "tc"
)
