package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Action
		wantErr bool
	}{
		{"screen", `{"type":"SET_CURRENT_SCREEN","payload":{"screen":"itinerary"}}`, SetCurrentScreen{Screen: ScreenItinerary}, false},
		{"reorder", `{"type":"REORDER_STOPS","payload":{"from":0,"to":2}}`, ReorderStops{From: 0, To: 2}, false},
		{"no payload", `{"type":"OPEN_CHAT"}`, OpenChat{}, false},
		{"null payload", `{"type":"RESET","payload":null}`, Reset{}, false},
		{"unknown type", `{"type":"FLY_TO_MOON"}`, nil, true},
		{"bad payload", `{"type":"REMOVE_STOP","payload":{"id":42}}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env Envelope
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &env))

			got, err := DecodeAction(env)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeAction_CoversEveryType(t *testing.T) {
	for typ := range decoders {
		a, err := DecodeAction(Envelope{Type: typ})
		require.NoError(t, err)
		assert.Equal(t, typ, a.Type())
	}
}
