package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fichaje/client"
)

// TODO: switch to structured error codes once the backend exposes them;
// substring matching breaks whenever its wording changes.
var translationRules = []struct {
	needles []string
	message string
	suffix  bool
}{
	{[]string{"lejos", "too far"}, MsgTooFar, true},
	{[]string{"restringido", "escanear el nfc", "restricted"}, MsgUseOfficeNFC, false},
	{[]string{"nfc incorrecto", "no válido", "no valido", "invalid nfc"}, MsgNFCUnknown, false},
	{[]string{"gps"}, MsgHighAccuracyGPS, false},
}

// Translate turns a backend error response into a short message for the
// user. Known business denials are matched on the embedded message text,
// everything else falls back to the HTTP status category.
func Translate(status int, body []byte) string {
	original := extractMessage(body)
	lower := strings.ToLower(original)

	for _, rule := range translationRules {
		for _, needle := range rule.needles {
			if !strings.Contains(lower, needle) {
				continue
			}
			if rule.suffix {
				if idx := strings.Index(original, "("); idx >= 0 {
					return rule.message + " " + original[idx:]
				}
			}
			return rule.message
		}
	}

	switch {
	case status == http.StatusForbidden:
		return MsgForbidden
	case status == http.StatusNotFound:
		return MsgNotFound
	case status >= 500:
		return MsgServerError
	}

	if original != "" {
		return original
	}
	return MsgUnknownError
}

// TranslateError handles any error returned by the client. Network
// failures are left to the caller, which knows the context.
func TranslateError(err error) string {
	var apiErr *client.Error
	if errors.As(err, &apiErr) {
		return Translate(apiErr.StatusCode, apiErr.Body)
	}
	if errors.Is(err, client.ErrDecode) {
		return MsgUnreadableResponse
	}
	if errors.Is(err, client.ErrNetwork) {
		return MsgNetwork
	}
	return MsgUnknownError
}

// extractMessage reads {"message": ...} or {"status": ...}. A body that is
// not a JSON object is used verbatim.
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return trimmed
	}
	if m, ok := obj["message"].(string); ok {
		return m
	}
	if s, ok := obj["status"].(string); ok {
		return s
	}
	return ""
}
