package phone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitHostPort turns "http://127.0.0.1:1234" into ("http://127.0.0.1", "1234").
func splitHostPort(t *testing.T, url string) (string, string) {
	t.Helper()
	idx := strings.LastIndex(url, ":")
	require.True(t, idx > 0)
	return url[:idx], url[idx+1:]
}

func TestSendSMS_PostsPayloadWithBasicAuth(t *testing.T) {
	var got smsPayload
	var user, pass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/message", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		user, pass, _ = r.BasicAuth()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	host, port := splitHostPort(t, server.URL)
	svc := NewPhoneService(host, port, "gw", "secret")

	err := svc.SendSMS(context.Background(), "", "Your OTP is 1234", []string{"+919876543210"})
	require.NoError(t, err)

	assert.Equal(t, "Your OTP is 1234", got.TextMessage.Text)
	assert.Equal(t, []string{"+919876543210"}, got.PhoneNumbers)
	assert.Equal(t, "gw", user)
	assert.Equal(t, "secret", pass)
}

func TestSendSMS_NonSuccessStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	host, port := splitHostPort(t, server.URL)
	svc := NewPhoneService(host, port, "", "")

	err := svc.SendSMS(context.Background(), "CropCare", "hello", []string{"1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
