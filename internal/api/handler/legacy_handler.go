package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ocerny17-lgtm/kavarna/pkg/response"
)

type legacyEnvelope struct {
	Orders json.RawMessage `json:"orders"`
}

// LegacyOrders 旧版文件持久化端点（orders.php 的移植）。
// GET 返回 {orders: [...]}，POST 整份覆盖；没有合并逻辑，
// 也不接同步循环——只是备用持久化路径。
// @Summary 旧版文件持久化端点
// @Tags 旧版
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Failure 405 {object} response.Response
// @Router /api/legacy/orders [get]
func (h *Handler) LegacyOrders(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet:
		orders, err := h.legacy.Read()
		if err != nil {
			response.InternalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	case http.MethodPost:
		var env legacyEnvelope
		if err := c.ShouldBindJSON(&env); err != nil || env.Orders == nil {
			response.BadRequest(c, "bad payload")
			return
		}
		if err := h.legacy.Write(env.Orders); err != nil {
			response.BadRequest(c, "bad payload")
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	default:
		response.MethodNotAllowed(c, "method not allowed")
	}
}
