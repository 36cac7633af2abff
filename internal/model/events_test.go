package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDrawResponseAccepted(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		accepted bool
		valid    bool
	}{
		{"accepted", `{"event":"draw_response","data":{"accepted":true}}`, true, true},
		{"declined", `{"event":"draw_response","data":{"accepted":false}}`, false, true},
		{"absent", `{"event":"draw_response","data":{"note":"hmm"}}`, false, true},
		{"null", `{"event":"draw_response","data":{"accepted":null}}`, false, true},
		{"no data", `{"event":"draw_response"}`, false, true},
		{"number", `{"event":"draw_response","data":{"accepted":1}}`, false, false},
		{"string", `{"event":"draw_response","data":{"accepted":"yes"}}`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeInbound([]byte(tt.frame))
			if !tt.valid {
				assert.ErrorIs(t, err, ErrMalformedEvent)
				return
			}
			require.NoError(t, err)
			response, ok := ev.(DrawResponse)
			require.True(t, ok)
			assert.Equal(t, tt.accepted, response.Accepted)
		})
	}
}

func TestDecodeDrawResponseKeepsPayload(t *testing.T) {
	ev, err := DecodeInbound([]byte(`{"event":"draw_response","data":{"accepted":true,"note":"good game"}}`))
	require.NoError(t, err)

	relayed := DrawResponseRelayed{Payload: ev.(DrawResponse).Payload}
	assert.True(t, relayed.Accepted())

	frame, err := EncodeOutbound(relayed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"draw_response","data":{"accepted":true,"note":"good game"}}`, string(frame))
}
