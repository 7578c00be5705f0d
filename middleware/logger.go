package middleware

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// ManagerKey is the gin context key of the signed-in manager's phone.
const ManagerKey = "manager"

type accessEntry struct {
	Timestamp string  `json:"ts"`
	Level     string  `json:"level"`
	Hostname  string  `json:"host"`
	RequestID string  `json:"rid,omitempty"`
	Manager   string  `json:"manager,omitempty"`
	ClientIP  string  `json:"ip"`
	Method    string  `json:"method"`
	Path      string  `json:"path"`
	Status    int     `json:"status"`
	LatencyMs float64 `json:"latencyMs"`
	UserAgent string  `json:"ua"`
	BodySize  int     `json:"size"`
	Error     string  `json:"error,omitempty"`
}

// LoggerMiddleware writes one JSON access log line per request. Query strings are
// left out since list filters may carry guest phone numbers.
func LoggerMiddleware() gin.HandlerFunc {
	hostname, _ := os.Hostname()
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		level := "info"
		switch {
		case param.StatusCode >= 500:
			level = "error"
		case param.StatusCode >= 400:
			level = "warn"
		}
		entry := accessEntry{
			Timestamp: param.TimeStamp.UTC().Format(time.RFC3339Nano),
			Level:     level,
			Hostname:  hostname,
			RequestID: keyString(param.Keys, RequestIDKey),
			Manager:   keyString(param.Keys, ManagerKey),
			ClientIP:  param.ClientIP,
			Method:    param.Method,
			Path:      param.Request.URL.Path,
			Status:    param.StatusCode,
			LatencyMs: float64(param.Latency) / float64(time.Millisecond),
			UserAgent: param.Request.UserAgent(),
			BodySize:  param.BodySize,
			Error:     param.ErrorMessage,
		}
		b, _ := json.Marshal(entry)
		return string(b) + "\n"
	})
}

func keyString(keys map[string]any, key string) string {
	if v, ok := keys[key].(string); ok {
		return v
	}
	return ""
}
