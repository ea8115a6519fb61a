package public

import (
	handlershared "github.com/tablecart/internal/http/handlers/shared"
	"github.com/tablecart/internal/service"

	"github.com/gin-gonic/gin"
)

func getOpenCart(c *gin.Context) (*service.OpenCart, bool) {
	return handlershared.GetOpenCart(c)
}
