package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	chatservice "github.com/zhouzirui/padel-assistant/backend/internal/service/chat"
)

// maxBodyBytes 限制请求体大小，会话接口只接收很短的 JSON。
const maxBodyBytes = 64 << 10

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError 把会话服务的哨兵错误映射成 HTTP 状态码
func RespondServiceError(w http.ResponseWriter, err error) {
	RespondError(w, StatusFromError(err), err.Error())
}

// StatusFromError 返回错误对应的 HTTP 状态码
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, chatservice.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatservice.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, chatservice.ErrProfileRequired):
		return http.StatusBadRequest
	case errors.Is(err, chatservice.ErrCollaboratorFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON 解析请求体，拒绝未知字段和多余内容
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}
