// Package httputil holds the response writers shared by the HTML handlers.
package httputil

import (
	"bytes"
	"errors"
	"net/http"

	dErrors "potterdex/pkg/domain-errors"
)

// Plain-text messages shown to clients. Internal details never leave the process.
const (
	MsgNotFound        = "Ruta no encontrada"
	MsgInternal        = "Error al procesar la solicitud"
	MsgTooManyRequests = "Demasiadas solicitudes"
)

// WriteError translates a coded error into a plain-text response.
// Internal and unavailable errors always get the generic message.
func WriteError(w http.ResponseWriter, err error) {
	code, ok := dErrors.CodeOf(err)
	if !ok {
		code = dErrors.CodeInternal
	}
	status := dErrors.ToHTTPStatus(code)

	msg := MsgInternal
	switch code {
	case dErrors.CodeInternal, dErrors.CodeUnavailable:
	case dErrors.CodeNotFound:
		msg = MsgNotFound
	default:
		var de *dErrors.Error
		if errors.As(err, &de) && de.Message != "" {
			msg = de.Message
		}
	}
	WriteText(w, status, msg)
}

// WriteText writes a plain-text body with the given status.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteHTML writes a fully rendered document. Rendering happens into a buffer
// first so a template failure never leaves a half-written 200.
func WriteHTML(w http.ResponseWriter, status int, body *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = body.WriteTo(w)
}

// Redirect sends a 302 to location.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusFound)
}
