package supabase

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// PostgREST and Postgres codes that mean the schema does not match.
var structuralCodes = map[string]bool{
	"PGRST200": true, // relationship not found
	"PGRST204": true, // column not found
	"PGRST205": true, // table not found
	"42P01":    true, // undefined table
	"42703":    true, // undefined column
}

// Codes the backend uses to reject a well-formed request.
var validationCodes = map[string]bool{
	"23505": true, // unique violation
	"23502": true, // not null violation
	"23503": true, // foreign key violation
	"23514": true, // check violation
	"22P02": true, // invalid text representation
	"42501": true, // insufficient privilege / row-level security
}

const codeNoRows = "PGRST116"

// errorFields pulls the code and message out of a PostgREST or GoTrue error
// body. GoTrue reports numeric "code" values, so only string fields count.
func errorFields(body []byte) (code, msg string) {
	if !gjson.ValidBytes(body) {
		return "", strings.TrimSpace(string(body))
	}
	res := gjson.ParseBytes(body)
	for _, k := range []string{"error_code", "code", "error"} {
		if v := res.Get(k); v.Type == gjson.String && v.Str != "" {
			code = v.Str
			break
		}
	}
	for _, k := range []string{"message", "msg", "error_description"} {
		if v := res.Get(k); v.Type == gjson.String && v.Str != "" {
			msg = v.Str
			break
		}
	}
	return code, msg
}

// classify maps a failed response onto the remote error taxonomy.
func classify(status int, body []byte, auth bool) *ports.RemoteError {
	code, msg := errorFields(body)
	e := &ports.RemoteError{Kind: ports.RemoteGeneric, Status: status, Code: code, Message: msg}

	switch {
	case status >= http.StatusInternalServerError:
		// generic
	case auth:
		switch status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
			http.StatusConflict, http.StatusUnprocessableEntity, http.StatusTooManyRequests:
			e.Kind = ports.RemoteValidation
		}
	case code == codeNoRows:
		e.Kind = ports.RemoteNotFound
	case structuralCodes[code] || strings.Contains(strings.ToLower(msg), "does not exist"):
		e.Kind = ports.RemoteStructural
	case status == http.StatusNotFound && code == "":
		e.Kind = ports.RemoteStructural
	case validationCodes[code]:
		e.Kind = ports.RemoteValidation
	case status == http.StatusBadRequest || status == http.StatusForbidden ||
		status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		e.Kind = ports.RemoteValidation
	}
	return e
}
