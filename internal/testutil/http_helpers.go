package testutil

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/auth"
)

// NewRequestWithURLParams creates an HTTP request with chi URL parameters and the test
// operator session already in its context.
// This helper simplifies testing chi handlers that use chi.URLParam() to extract path parameters.
//
// Example:
//
//	req := testutil.NewRequestWithURLParams(
//	    http.MethodGet,
//	    "/api/product/123-456",
//	    map[string]string{"uuid": "123-456"},
//	)
func NewRequestWithURLParams(method, path string, params map[string]string) *http.Request {
	return WithURLParams(httptest.NewRequest(method, path, nil), params)
}

// WithURLParams adds chi URL parameters and the test session to an existing request.
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	ctx := auth.WithSession(req.Context(), TestSession)

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	return req.WithContext(ctx)
}

// NewAuthedRequest creates a request carrying the test session.
func NewAuthedRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	return req.WithContext(auth.WithSession(req.Context(), TestSession))
}

// MultipartFile is a file part for NewMultipartRequest.
type MultipartFile struct {
	Field    string
	Filename string
	Data     []byte
}

// NewMultipartRequest builds a multipart/form-data request with the given fields and
// optional file, carrying the test session.
//
// Example:
//
//	req := testutil.NewMultipartRequest(t, http.MethodPost, "/api/product",
//	    map[string]string{"name": "Brake Pad"},
//	    &testutil.MultipartFile{Field: "image", Filename: "a.png", Data: testutil.PNGImage()},
//	)
func NewMultipartRequest(t *testing.T, method, path string, fields map[string]string, file *MultipartFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write field %s: %v", key, err)
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			t.Fatalf("Failed to create file part: %v", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			t.Fatalf("Failed to write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := NewAuthedRequest(method, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
