package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
)

// maxJSONBody bounds request bodies; inline images arrive base64 encoded.
const maxJSONBody = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeError converts err into the JSON error envelope. Internal causes are
// logged and never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", e.Err)
	} else {
		slog.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", e.Status(), "reason", e.Message)
	}
	writeJSON(w, e.Status(), apiResponse{Success: false, Message: e.Message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body is too large")
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}

// pathID parses the {id} route variable. ok is false for anything that is
// not a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return n
}

// flexString accepts a JSON string, number or boolean and keeps its text.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	switch b[0] {
	case '{', '[':
		return errors.New("expected a scalar value")
	}
	*f = flexString(strings.TrimSpace(string(b)))
	return nil
}

func (f flexString) String() string { return strings.TrimSpace(string(f)) }

func (f flexString) Bool() bool {
	v, _ := strconv.ParseBool(f.String())
	return v
}

// Int64 returns the value as an id; ok is false when it is not numeric.
func (f flexString) Int64() (int64, bool) {
	n, err := strconv.ParseInt(f.String(), 10, 64)
	return n, err == nil
}

// Int returns the value as a count. Integral decimals such as 2.0 are
// accepted; ok is false for fractions and non-numbers.
func (f flexString) Int() (int, bool) {
	d, err := decimal.NewFromString(f.String())
	if err != nil || !d.IsInteger() || d.Abs().GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, false
	}
	return int(d.IntPart()), true
}
