package handler

import (
	"github.com/ocerny17-lgtm/kavarna/internal/repository"
	"github.com/ocerny17-lgtm/kavarna/internal/service"
)

// Handler 聚合 API 依赖
type Handler struct {
	orders        service.OrderService
	auth          service.AuthService
	legacy        *repository.FileStore
	sessionCookie string
}

func NewHandler(orders service.OrderService, auth service.AuthService, legacy *repository.FileStore, sessionCookie string) *Handler {
	if sessionCookie == "" { sessionCookie = "kavarna_session" }
	return &Handler{orders: orders, auth: auth, legacy: legacy, sessionCookie: sessionCookie}
}
