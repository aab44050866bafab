package responseformat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func TestWriteResponse_DefaultsToJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sessions/abc/route", nil)
	rec := httptest.NewRecorder()

	err := NewFormatter().WriteResponse(rec, req, http.StatusOK, []point{{Lat: 47.1, Lng: 8.5}}, map[string]string{"X-Route-Points": "1"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Route-Points"))
	assert.JSONEq(t, `[{"lat":47.1,"lng":8.5}]`, rec.Body.String())
}

func TestWriteResponse_MsgPack(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
	}{
		{"query parameter", "/sessions/abc/route?format=msgpack", ""},
		{"accept header", "/sessions/abc/route", ContentTypeMsgPack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()

			require.NoError(t, NewFormatter().WriteResponse(rec, req, http.StatusOK, []point{{Lat: 47.1, Lng: 8.5}}, nil))
			assert.Equal(t, ContentTypeMsgPack, rec.Header().Get("Content-Type"))

			var got []map[string]float64
			require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
			require.Len(t, got, 1)
			assert.Equal(t, 47.1, got[0]["lat"])
		})
	}
}

func TestWriteError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sessions/missing/route", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, NewFormatter().WriteError(rec, req, http.StatusNotFound, "session not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session not found", body.Error)
}
