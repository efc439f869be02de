// Package nfc extracts the clock code from what a tag reader delivers.
// Readers hand over either the bare code or an NDEF text/URI record.
package nfc

import (
	"errors"
	"net/url"
	"strings"
	"unicode"
)

const maxCodeLen = 128

// TagError explains why a tag was rejected. Reason is shown to the user.
type TagError struct {
	Reason  string
	Payload string
}

func (e *TagError) Error() string {
	return "invalid NFC tag: " + e.Reason
}

var ErrInvalidTag = errors.New("invalid NFC tag")

func (e *TagError) Is(target error) bool {
	return target == ErrInvalidTag
}

// Read returns the tag code carried by payload. Accepted forms:
//
//	OFICINA-01
//	fichaje:OFICINA-01
//	https://empresa.example/nfc/OFICINA-01
//	en OFICINA-01   (NDEF text record with language prefix)
func Read(payload string) (string, error) {
	raw := strings.TrimSpace(payload)
	if raw == "" {
		return "", &TagError{Reason: "etiqueta vacía", Payload: payload}
	}

	code := raw
	switch {
	case strings.HasPrefix(strings.ToLower(raw), "fichaje:"):
		code = raw[len("fichaje:"):]
	case strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://"):
		u, err := url.Parse(raw)
		if err != nil {
			return "", &TagError{Reason: "URL no válida", Payload: payload}
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) < 2 || parts[len(parts)-2] != "nfc" {
			return "", &TagError{Reason: "la etiqueta no es de fichaje", Payload: payload}
		}
		code = parts[len(parts)-1]
	default:
		// NDEF text records may keep their two-letter language code.
		if len(raw) > 3 && raw[2] == ' ' && isLang(raw[:2]) {
			code = raw[3:]
		}
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return "", &TagError{Reason: "etiqueta vacía", Payload: payload}
	}
	if len(code) > maxCodeLen {
		return "", &TagError{Reason: "código demasiado largo", Payload: payload}
	}
	for _, r := range code {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return "", &TagError{Reason: "caracteres no válidos", Payload: payload}
		}
	}
	return code, nil
}

func isLang(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
