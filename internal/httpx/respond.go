package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/ariefcatur/go-flower-shop/internal/orders"
)

const maxBodyBytes = 1 << 20

type detail struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, detail{Detail: msg})
}

// decodeJSON turns type mismatches into field errors the same way validation does.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		ve := &orders.ValidationError{}
		ve.Add(typeErr.Field, fmt.Sprintf("Incorrect type. Expected %s.", typeErr.Type))
		return ve
	}
	return fmt.Errorf("JSON parse error - %w", err)
}

// writeError maps service errors onto status codes at the request boundary.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *orders.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ve.Fields)
	case errors.Is(err, orders.ErrFlowerNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, orders.ErrUnknownAuthor), errors.Is(err, ErrUnauthenticated):
		writeDetail(w, http.StatusUnauthorized, "Invalid token.")
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeDetail(w, http.StatusGatewayTimeout, "Request timed out.")
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
	}
}
