// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PingFunc はストレージバックエンドの疎通を確認します。
type PingFunc func(ctx context.Context) error

// HealthHandler は /healthz を処理し、キャッシュ・アップロード保存先の状態を報告します。
type HealthHandler struct {
	backend string   // "redis" または "memory"
	ping    PingFunc // nilの場合は常に正常
}

// NewHealthHandler はHealthHandlerの新しいインスタンスを生成します。
func NewHealthHandler(backend string, ping PingFunc) *HealthHandler {
	return &HealthHandler{backend: backend, ping: ping}
}

// Health はHTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// バックエンドへのPINGが失敗した場合は503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	status, body := http.StatusOK, gin.H{"status": "ok", "backend": h.backend}
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = gin.H{"status": "degraded", "backend": h.backend, "error": err.Error()}
		}
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	c.JSON(status, body)
}
