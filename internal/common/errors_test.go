package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("user 42: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("not yours: %w", ErrForbidden), http.StatusForbidden},
		{"bad request", ErrBadRequest, http.StatusBadRequest},
		{"conflict", fmt.Errorf("email taken: %w", ErrConflict), http.StatusConflict},
		{"too many requests", ErrTooManyRequests, http.StatusTooManyRequests},
		{"raw unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"store error", StoreError("saving product", errors.New("connection reset")), http.StatusBadRequest},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromError(tt.err); got != tt.want {
				t.Errorf("HTTPStatusFromError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStoreErrorKeepsDetail(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "22001", Message: "value too long", Detail: "Key (id_product)=(x) too long."}
	err := StoreError("error creating product", fmt.Errorf("insert: %w", pgErr))

	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("StoreError() = %v, want ErrBadRequest kind", err)
	}
	var detailed *DetailedError
	if !errors.As(err, &detailed) {
		t.Fatalf("StoreError() = %T, want *DetailedError", err)
	}
	if detailed.Detail != pgErr.Detail {
		t.Errorf("Detail = %q, want %q", detailed.Detail, pgErr.Detail)
	}
	if err.Error() != "error creating product" {
		t.Errorf("Error() = %q, want the caller's message", err.Error())
	}
}

func TestStoreErrorPassesClassifiedErrors(t *testing.T) {
	in := fmt.Errorf("user missing: %w", ErrNotFound)
	if got := StoreError("ignored", in); got != in {
		t.Errorf("StoreError() = %v, want the original error", got)
	}
	if StoreError("ignored", nil) != nil {
		t.Error("StoreError(nil) != nil")
	}
}

func TestRespondWithDomainError(t *testing.T) {
	t.Run("detail is forwarded", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RespondWithDomainError(rec, &DetailedError{Kind: ErrBadRequest, Message: "error updating user", Detail: "disk full"})

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var body ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error != "error updating user" || body.Details != "disk full" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("internal errors are masked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RespondWithDomainError(rec, errors.New("dial tcp 10.0.0.3:5432: refused"))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		var body ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error != "internal server error" {
			t.Errorf("error = %q, want masked message", body.Error)
		}
	})
}
