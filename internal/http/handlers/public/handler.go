package public

import "github.com/sampleloop/internal/provider"

// Handler 公开接口处理器入口
// 说明：该处理器仅用于无需门店鉴权的接口（平台回调、健康探测）。
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
