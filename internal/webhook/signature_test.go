package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifier_Verify(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"event":"charge.success","data":{"reference":"TC_abc_1"}}`)

	verifier := NewVerifier(secret)

	t.Run("valid signature", func(t *testing.T) {
		assert.True(t, verifier.Verify(body, sign(secret, body)))
	})

	t.Run("tampered body with stale signature", func(t *testing.T) {
		tampered := []byte(`{"event":"charge.success","data":{"reference":"TC_evil_1"}}`)
		assert.False(t, verifier.Verify(tampered, sign(secret, body)))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, verifier.Verify(body, sign("other_secret", body)))
	})

	t.Run("non-hex signature header", func(t *testing.T) {
		assert.False(t, verifier.Verify(body, "not-hex!"))
	})

	t.Run("empty signature header", func(t *testing.T) {
		assert.False(t, verifier.Verify(body, ""))
	})
}

func TestParseEvent(t *testing.T) {
	t.Run("charge success event", func(t *testing.T) {
		body := []byte(`{"event":"charge.success","data":{"reference":"TC_abc_1","status":"success","amount":5000000,"gateway_response":"Approved"}}`)

		evt, err := ParseEvent(body)
		assert.NoError(t, err)
		assert.Equal(t, EventChargeSuccess, evt.Event)
		assert.Equal(t, "TC_abc_1", evt.Data.Reference)
		assert.Equal(t, int64(5000000), evt.Data.AmountMinor)
	})

	t.Run("undecodable payload", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{not json`))
		assert.Error(t, err)
	})

	t.Run("missing event name", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{"data":{"reference":"TC_abc_1"}}`))
		assert.Error(t, err)
	})
}
