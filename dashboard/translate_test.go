package dashboard

import (
	"errors"
	"fmt"
	"testing"

	"fichaje/client"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"too far with distance", 400, `{"message":"Estás demasiado lejos de la oficina (420 m)"}`, MsgTooFar + " (420 m)"},
		{"too far english", 400, `{"message":"You are too far away"}`, MsgTooFar},
		{"restricted", 403, `{"message":"Fichaje restringido a la oficina"}`, MsgUseOfficeNFC},
		{"must scan", 400, `{"status":"Debes escanear el NFC"}`, MsgUseOfficeNFC},
		{"wrong nfc", 400, `{"message":"NFC incorrecto"}`, MsgNFCUnknown},
		{"invalid nfc", 400, `{"message":"Código no válido"}`, MsgNFCUnknown},
		{"gps", 400, `{"message":"GPS desactivado"}`, MsgHighAccuracyGPS},
		{"forbidden", 403, `{"message":"nope"}`, MsgForbidden},
		{"not found", 404, `{}`, MsgNotFound},
		{"server", 500, `<html>boom</html>`, MsgServerError},
		{"plain text body", 400, `Turno cerrado`, "Turno cerrado"},
		{"unmatched message", 409, `{"message":"Ya has fichado"}`, "Ya has fichado"},
		{"empty", 400, ``, MsgUnknownError},
		{"non-string message", 400, `{"message":42}`, MsgUnknownError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Translate(tt.status, []byte(tt.body)); got != tt.want {
				t.Fatalf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslateError(t *testing.T) {
	if got := TranslateError(fmt.Errorf("%w: bad json", client.ErrDecode)); got != MsgUnreadableResponse {
		t.Fatalf("decode error = %q", got)
	}
	if got := TranslateError(errors.New("boom")); got != MsgUnknownError {
		t.Fatalf("generic error = %q", got)
	}
	wrapped := fmt.Errorf("clock: %w", &client.Error{StatusCode: 400, Body: []byte(`{"message":"GPS"}`)})
	if got := TranslateError(wrapped); got != MsgHighAccuracyGPS {
		t.Fatalf("wrapped api error = %q", got)
	}
}
