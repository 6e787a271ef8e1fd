package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/cache"
)

// IdempotencyHeader is the request header carrying the client's key
const IdempotencyHeader = "Idempotency-Key"

const (
	idempotencyOperation = "idempotency"
	inFlightTTL          = 30 * time.Second
)

// storedResponse is what gets cached for a completed request
type storedResponse struct {
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status"`
	Body        string `json:"body"`
}

// captureWriter tees the response body so it can be cached
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key from the same user. A reused key with a different body is
// rejected with 422 and a key whose first request is still running gets 409.
// Only 2xx responses are stored. With a nil store the middleware is a no-op.
// It must run after AuthMiddleware.
func IdempotencyMiddleware(store cache.Cache, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if store == nil || key == "" {
			c.Next()
			return
		}

		user, ok := GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		ctx := c.Request.Context()
		scope := user.ID.String() + ":" + key
		responseKey := store.GenerateKey(idempotencyOperation, scope)
		lockKey := store.GenerateKey(idempotencyOperation+"-lock", scope)

		cached, err := store.Get(ctx, responseKey)
		if err != nil {
			logger.Warn("Idempotency lookup failed, processing without replay", zap.Error(err))
			c.Next()
			return
		}
		if cached != "" {
			var stored storedResponse
			if err := json.Unmarshal([]byte(cached), &stored); err != nil {
				logger.Warn("Discarding unreadable idempotency record", zap.String("key", key), zap.Error(err))
			} else {
				if stored.RequestHash != requestHash {
					c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "idempotency key reused with a different request body"})
					c.Abort()
					return
				}
				logger.Info("Replaying idempotent response",
					zap.String("user_id", user.ID.String()),
					zap.String("key", key),
				)
				c.Header("Idempotent-Replayed", "true")
				c.Data(stored.Status, "application/json; charset=utf-8", []byte(stored.Body))
				c.Abort()
				return
			}
		}

		reserved, err := store.Reserve(ctx, lockKey, inFlightTTL)
		if err != nil {
			logger.Warn("Idempotency lock failed, processing without replay", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			c.JSON(http.StatusConflict, gin.H{"error": "a request with this idempotency key is already in progress"})
			c.Abort()
			return
		}

		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status >= 200 && status < 300 {
			record, err := json.Marshal(storedResponse{
				RequestHash: requestHash,
				Status:      status,
				Body:        writer.body.String(),
			})
			if err == nil {
				err = store.Set(ctx, responseKey, record, ttl)
			}
			if err != nil {
				logger.Warn("Failed to store idempotent response", zap.String("key", key), zap.Error(err))
			}
		}

		if err := store.Delete(ctx, lockKey); err != nil {
			logger.Warn("Failed to release idempotency lock", zap.String("key", key), zap.Error(err))
		}
	}
}
