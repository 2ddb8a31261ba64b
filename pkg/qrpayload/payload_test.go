package qrpayload

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureToken(t *testing.T) {
	a := GenerateSecureToken()
	b := GenerateSecureToken()
	assert.Len(t, a, 64) // 256 bits, hex encoded
	assert.Len(t, b, 64)
	assert.NotEqual(t, a, b)
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	raw := Encode("evt-1", "tok-1")

	p := Decode(raw)
	require.NotNil(t, p)
	assert.Equal(t, "evt-1", p.EventID)
	assert.Equal(t, "tok-1", p.Token)
	assert.Equal(t, PayloadType, p.Type)
	assert.InDelta(t, time.Now().UnixMilli(), p.Timestamp, 2000)
}

func TestDecodeRejectsInvalidInput(t *testing.T) {
	fresh := time.Now().UnixMilli()
	cases := map[string]string{
		"empty":           "",
		"not json":        "not a payload",
		"wrong type tag":  fmt.Sprintf(`{"eventId":"e","token":"t","timestamp":%d,"type":"other"}`, fresh),
		"missing event":   fmt.Sprintf(`{"token":"t","timestamp":%d,"type":"event_attendance"}`, fresh),
		"missing token":   fmt.Sprintf(`{"eventId":"e","timestamp":%d,"type":"event_attendance"}`, fresh),
		"zero timestamp":  `{"eventId":"e","token":"t","timestamp":0,"type":"event_attendance"}`,
		"string ts":       `{"eventId":"e","token":"t","timestamp":"now","type":"event_attendance"}`,
		"array payload":   `[1,2,3]`,
		"truncated json":  `{"eventId":"e","token":`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, Decode(raw))
		})
	}
}

func TestDecodeRejectsStalePayload(t *testing.T) {
	stale, err := json.Marshal(Payload{
		EventID:   "evt-1",
		Token:     "tok-1",
		Timestamp: time.Now().Add(-MaxAge - time.Minute).UnixMilli(),
		Type:      PayloadType,
	})
	require.NoError(t, err)
	assert.Nil(t, Decode(string(stale)))
}

func TestDecodeAcceptsPayloadWithinMaxAge(t *testing.T) {
	recent, err := json.Marshal(Payload{
		EventID:   "evt-1",
		Token:     "tok-1",
		Timestamp: time.Now().Add(-MaxAge + time.Minute).UnixMilli(),
		Type:      PayloadType,
	})
	require.NoError(t, err)
	assert.NotNil(t, Decode(string(recent)))
}
