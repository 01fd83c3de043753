package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DryRunSkipsHTTP(t *testing.T) {
	c := NewClientWithOptions("dry-run", "", false)
	c.BaseURL = "http://127.0.0.1:1" // would fail if dialled
	require.NoError(t, c.SendCode(context.Background(), "+15551234567", "1234"))
}

func TestClient_SendCode(t *testing.T) {
	var gotRecipient, gotText, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotRecipient = r.PostForm.Get("recipient")
		gotText = r.PostForm.Get("text")
		gotKey = r.PostForm.Get("apiKey")
		_, _ = w.Write([]byte(`{"code":0,"data":{"messageId":"42"}}`))
	}))
	defer srv.Close()

	c := NewClientWithOptions("key", "NUSA", false)
	c.BaseURL = srv.URL
	require.NoError(t, c.SendCode(context.Background(), "+15551234567", "0420"))

	assert.Equal(t, "15551234567", gotRecipient)
	assert.Equal(t, "Your login code: 0420", gotText)
	assert.Equal(t, "key", gotKey)
}

func TestClient_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":1,"message":"bad recipient"}`))
	}))
	defer srv.Close()

	c := NewClientWithOptions("key", "", false)
	c.BaseURL = srv.URL
	err := c.SendCode(context.Background(), "+15551234567", "0420")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad recipient")
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClientWithOptions("key", "", false)
	c.BaseURL = srv.URL
	assert.Error(t, c.SendCode(context.Background(), "+15551234567", "0420"))
}
