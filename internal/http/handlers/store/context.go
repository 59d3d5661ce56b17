package store

import (
	"github.com/sampleloop/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getStoreID(c *gin.Context) (uint, bool) {
	return shared.GetContextUint(c, "store_id")
}
