package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ocerny17-lgtm/kavarna/internal/api/middleware"
	"github.com/ocerny17-lgtm/kavarna/internal/service"
	"github.com/ocerny17-lgtm/kavarna/pkg/response"
)

type createOrderRequest struct {
	CustomerName string `json:"customerName" binding:"required"`
	CoffeeType   string `json:"coffeeType" binding:"required"`
	ExtraWishes  string `json:"extraWishes"`
	WithMilk     *bool  `json:"withMilk"`
	SugarSpoons  int    `json:"sugarSpoons" binding:"gte=0"`
}

// CreateOrder 顾客下单
// @Summary 创建订单
// @Tags 订单
// @Accept json
// @Produce json
// @Param request body createOrderRequest true "订单信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	// 缺省带奶，与旧版数据的归一化规则一致
	withMilk := true
	if req.WithMilk != nil {
		withMilk = *req.WithMilk
	}
	in := service.CreateOrderInput{
		CustomerName: req.CustomerName,
		CoffeeType:   req.CoffeeType,
		ExtraWishes:  req.ExtraWishes,
		WithMilk:     withMilk,
		SugarSpoons:  req.SugarSpoons,
	}
	order, err := h.orders.Create(c.Request.Context(), in, middleware.Identity(c))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, order)
}

// ListOrders 活跃订单列表
// @Summary 查询活跃订单（done 除外），按创建时间升序
// @Tags 订单
// @Produce json
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	list := h.orders.List(c.Request.Context())
	response.Success(c, gin.H{"orders": list})
}

// ClaimOrder barista 接单
// @Summary 接单（new → claimed）
// @Tags 订单
// @Produce json
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/orders/{id}/claim [post]
func (h *Handler) ClaimOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	order, err := h.orders.Claim(c.Request.Context(), id, middleware.Identity(c))
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}
	// 订单不存在或已被抢：静默 no-op，回当前状态由界面自行刷新
	response.Success(c, order)
}

// DeliverOrder barista 开始配送
// @Summary 配送（claimed → delivering，仅限认领者本人）
// @Tags 订单
// @Produce json
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/orders/{id}/deliver [post]
func (h *Handler) DeliverOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	order, err := h.orders.MarkDelivering(c.Request.Context(), id, middleware.Identity(c))
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}
	response.Success(c, order)
}
