// Package webhook validates and decodes inbound gateway
// notifications. Signature checking happens against the exact raw
// request body before any decoding; a mismatch reveals nothing about
// whether the secret or the payload was at fault.
package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Event names this service reacts to. Everything else is acknowledged
// and ignored.
const (
	EventChargeSuccess   = "charge.success"
	EventTransferSuccess = "transfer.success"
	EventTransferFailed  = "transfer.failed"
)

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify computes HMAC-SHA512 over the raw body and compares it to the
// hex signature header in constant time.
func (v *Verifier) Verify(rawBody []byte, signatureHeader string) bool {
	provided, err := hex.DecodeString(signatureHeader)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), provided)
}

// Event is the strongly-typed form of a gateway notification. The
// payload is parsed and validated exactly once at the boundary.
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

type EventData struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"`
	AmountMinor     int64  `json:"amount"`
	GatewayResponse string `json:"gateway_response"`
}

// ParseEvent decodes a verified webhook body.
func ParseEvent(rawBody []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(rawBody, &evt); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}
	if evt.Event == "" {
		return nil, fmt.Errorf("webhook payload has no event name")
	}
	return &evt, nil
}
