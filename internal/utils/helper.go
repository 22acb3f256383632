package utils

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

func StrPtr(s string) *string {
	return &s
}

func IntPtr(n int) *int {
	return &n
}

func BoolPtr(b bool) *bool {
	return &b
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, map[string]string{"message": message})
}

// FormString returns a trimmed form value and whether the field was sent.
func FormString(r *http.Request, key string) (*string, bool) {
	vals, ok := r.Form[key]
	if !ok || len(vals) == 0 {
		return nil, false
	}
	v := strings.TrimSpace(vals[0])
	return &v, true
}

func FormFloat(r *http.Request, key string) (*float64, bool, error) {
	s, ok := FormString(r, key)
	if !ok || *s == "" {
		return nil, false, nil
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil, true, err
	}
	return &f, true, nil
}

func FormInt(r *http.Request, key string) (*int, bool, error) {
	s, ok := FormString(r, key)
	if !ok || *s == "" {
		return nil, false, nil
	}
	n, err := strconv.Atoi(*s)
	if err != nil {
		return nil, true, err
	}
	return &n, true, nil
}

func FormBool(r *http.Request, key string) (*bool, bool, error) {
	s, ok := FormString(r, key)
	if !ok || *s == "" {
		return nil, false, nil
	}
	b, err := strconv.ParseBool(*s)
	if err != nil {
		return nil, true, err
	}
	return &b, true, nil
}
