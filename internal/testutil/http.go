package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// HTTPResult captures HTTP response details for test assertions
type HTTPResult struct {
	Code    int
	Error   error
	Headers http.Header
	Body    []byte
}

// Header represents an HTTP header key-value pair
type Header struct {
	Key   string
	Value string
}

// BearerAuth returns an Authorization header carrying the token
func BearerAuth(token string) Header {
	return Header{
		Key:   "Authorization",
		Value: "Bearer " + token,
	}
}

// ExpectStatus validates the HTTP status code and fails the test if it
// doesn't match
func ExpectStatus(
	t *testing.T,
	expected int,
	result HTTPResult,
) {
	t.Helper()
	if result.Error != nil {
		t.Fatalf("request error: %v", result.Error)
	}
	if result.Code != expected {
		t.Fatalf("expected status %d, got %d. Body: %s", expected, result.Code, string(result.Body))
	}
}

// Get performs a GET request and optionally decodes JSON response
func Get(
	router http.Handler,
	url string,
	response any,
	headers ...Header,
) HTTPResult {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return decodeResult(res, response)
}

// PostJSON performs a POST request with a JSON body and optionally decodes
// the JSON response
func PostJSON(
	router http.Handler,
	url string,
	body string,
	response any,
	headers ...Header,
) HTTPResult {
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return decodeResult(res, response)
}

func decodeResult(res *httptest.ResponseRecorder, response any) HTTPResult {
	result := HTTPResult{
		Code:    res.Code,
		Headers: res.Header(),
		Body:    res.Body.Bytes(),
	}
	if response != nil && res.Body.Len() > 0 {
		if err := json.Unmarshal(res.Body.Bytes(), response); err != nil {
			result.Error = fmt.Errorf("couldn't decode response body: %v", err)
		}
	}
	return result
}
