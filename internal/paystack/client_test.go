package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/config"
	"github.com/anchorfit/storefront/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.PaystackConfig{
		SecretKey:   "sk_test_secret",
		BaseURL:     server.URL + "/",
		CallbackURL: "https://shop.example.com/payment/callback",
		Timeout:     2 * time.Second,
	}, zap.NewNop())
}

func TestInitializeTransaction_Success(t *testing.T) {
	var got InitializeRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref_123"}}`))
	})

	tx, err := client.InitializeTransaction(context.Background(), InitializeRequest{
		Email:  "ada@example.com",
		Amount: 6110000,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/abc", tx.AuthorizationURL)
	assert.Equal(t, "ref_123", tx.Reference)
	assert.Equal(t, int64(6110000), got.Amount)
	assert.Equal(t, "https://shop.example.com/payment/callback", got.CallbackURL)
}

func TestInitializeTransaction_StatusFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":false,"message":"Invalid email"}`))
	})

	_, err := client.InitializeTransaction(context.Background(), InitializeRequest{Email: "bad", Amount: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email")
}

func TestInitializeTransaction_NonJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	_, err := client.InitializeTransaction(context.Background(), InitializeRequest{Email: "a@b.c", Amount: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestInitializeTransaction_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.InitializeTransaction(ctx, InitializeRequest{Email: "a@b.c", Amount: 100})
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"ref_123"}}`)
	valid := Sign(secret, body)

	tests := []struct {
		name    string
		body    []byte
		header  string
		wantErr bool
	}{
		{"valid", body, valid, false},
		{"valid uppercase hex", body, strings.ToUpper(valid), false},
		{"missing", body, "", true},
		{"not hex", body, "zz", true},
		{"wrong secret", body, Sign("other", body), true},
		{"tampered body", []byte(`{"event":"charge.success","data":{"reference":"ref_999"}}`), valid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(secret, tt.body, tt.header)
			if tt.wantErr {
				var sigErr *errors.ErrInvalidSignature
				assert.ErrorAs(t, err, &sigErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	event, err := ParseEvent([]byte(`{"event":"charge.success","data":{"reference":"ref_1","amount":6110000,"status":"success"}}`))
	require.NoError(t, err)
	assert.Equal(t, "charge.success", event.Event)
	assert.Equal(t, "ref_1", event.Data.Reference)
	assert.Equal(t, int64(6110000), event.Data.Amount)

	_, err = ParseEvent([]byte(`{not json`))
	assert.Error(t, err)
}
