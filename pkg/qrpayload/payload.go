// Package qrpayload implements the attendance QR wire format: a JSON payload
// carrying the event id, the event's live attendance token and an issue
// timestamp. The payload is not signed; integrity relies on the token being
// unguessable and checked server-side against the stored value.
package qrpayload

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"
)

// PayloadType is the fixed type tag every valid payload must carry.
const PayloadType = "event_attendance"

// MaxAge is the freshness bound applied on decode.
const MaxAge = 24 * time.Hour

const tokenBytes = 32

type Payload struct {
	EventID   string `json:"eventId"`
	Token     string `json:"token"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	Type      string `json:"type"`
}

// GenerateSecureToken returns a fresh 256-bit attendance token, hex encoded.
func GenerateSecureToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic("qrpayload: read random: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// Encode serializes a payload for eventID with the current timestamp.
func Encode(eventID, token string) string {
	p := Payload{
		EventID:   eventID,
		Token:     token,
		Timestamp: time.Now().UnixMilli(),
		Type:      PayloadType,
	}
	// Marshal cannot fail for this shape.
	b, _ := json.Marshal(p)
	return string(b)
}

// Decode parses and validates raw. It is total: malformed JSON, missing or
// mistyped fields, a wrong type tag or a timestamp older than MaxAge all
// collapse to nil, never an error or panic.
func Decode(raw string) *Payload {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	if p.Type != PayloadType || p.EventID == "" || p.Token == "" || p.Timestamp <= 0 {
		return nil
	}
	if time.Since(time.UnixMilli(p.Timestamp)) > MaxAge {
		return nil
	}
	return &p
}
