package widget

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayload_ErrorMessage(t *testing.T) {
	cases := []struct {
		name    string
		value   any
		wantMsg string
		wantOK  bool
	}{
		{"absent", nil, "", false},
		{"message", "quota exceeded", "quota exceeded", true},
		{"empty string", "", "", false},
		{"false", false, "", false},
		{"true", true, "unknown error", true},
		{"zero", float64(0), "", false},
		{"zero json number", json.Number("0"), "", false},
		{"error code", float64(503), "503", true},
		{"object", map[string]any{"code": 1}, "unknown error", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Payload{}
			if tc.value != nil {
				d["error"] = tc.value
			}
			msg, ok := d.ErrorMessage()
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantMsg, msg)
		})
	}
}

func TestParams_Coercion(t *testing.T) {
	p := Params{"n": "2024", "f": float64(3), "s": float64(1.5), "b": true}

	assert.Equal(t, 2024, p.Int("n", 0))
	assert.Equal(t, 3, p.Int("f", 0))
	assert.Equal(t, "1.5", p.String("s", ""))
	assert.Equal(t, 7, p.Int("missing", 7))
	assert.True(t, p.Bool("b"))
	assert.False(t, p.Bool("n"))
}
