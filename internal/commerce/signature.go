package commerce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// ComputeSignature 计算原始请求体的 HMAC-SHA256 签名（base64 编码）
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature 以恒定时间比较校验 webhook 签名
func VerifySignature(secret string, body []byte, provided string) bool {
	provided = strings.TrimSpace(provided)
	if secret == "" || provided == "" {
		return false
	}
	expected := ComputeSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(provided))
}
