package store

import "github.com/sampleloop/internal/provider"

// Handler 门店接口处理器入口
// 说明：除换取 token 外，所有接口都要求携带门店 JWT，
// 门店身份一律取自 token 声明，不信任请求参数。
type Handler struct {
	*provider.Container
}

// New 创建门店处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
