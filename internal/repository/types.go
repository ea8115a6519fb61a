package repository

// ProductListFilter 查询菜品列表的过滤条件
type ProductListFilter struct {
	StorefrontID string
	Page         int
	PageSize     int
	Search       string
	OnlyActive   bool
}
