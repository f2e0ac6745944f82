package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ocerny17-lgtm/kavarna/internal/api/middleware"
	"github.com/ocerny17-lgtm/kavarna/internal/service"
	"github.com/ocerny17-lgtm/kavarna/pkg/response"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login barista 登录
// @Summary 登录（固定凭据表），成功后种会话 cookie
// @Tags 会话
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	// MaxAge 0：浏览器会话 cookie，关掉会话身份即失效
	c.SetCookie(h.sessionCookie, token, 0, "/", "", false, true)
	response.Success(c, gin.H{"barista": req.Username})
}

// Logout 登出，清掉会话 cookie
// @Summary 登出
// @Tags 会话
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(h.sessionCookie, "", -1, "/", "", false, true)
	response.Success(c, nil)
}

// Me 当前会话身份
// @Summary 查询当前会话的 barista 身份，匿名时为空
// @Tags 会话
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	name := middleware.Identity(c)
	if name == "" {
		response.Success(c, gin.H{"barista": nil})
		return
	}
	response.Success(c, gin.H{"barista": name})
}
