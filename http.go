package rushx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerRequestID     = "X-Request-ID"
	contentTypeJSON     = "application/json"
)

// doRequest performs an HTTP request and normalizes success and failure.
//
// Any non-2xx status is converted to *Error, emitted once through the
// configured Notifier, and returned to the caller - the dual-path contract.
// An empty response body decodes to the zero value rather than failing.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerRequestID, uuid.NewString())
	// Token read freshly per call, never cached at construction.
	if token := c.tokenSource(); token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := &Error{Message: genericFailureMessage}
		c.notifyFailure(apiErr)
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("%w: %v", apiErr, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := &Error{Message: genericFailureMessage, Status: resp.StatusCode}
		c.notifyFailure(apiErr)
		return fmt.Errorf("%w: read body: %v", apiErr, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseError(resp.StatusCode, respBody)
		c.notifyFailure(apiErr)
		c.logger.Debug("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
		if err := c.validateResult(result); err != nil {
			return fmt.Errorf("invalid response for %s %s: %w", method, path, err)
		}
	}

	return nil
}

// validateResult checks decoded struct responses against their validate tags
// so malformed backend payloads fail at the gateway boundary instead of
// propagating zero values into callers.
func (c *Client) validateResult(result interface{}) error {
	v := reflect.ValueOf(result)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return c.validate.Struct(v.Interface())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			for elem.Kind() == reflect.Ptr && !elem.IsNil() {
				elem = elem.Elem()
			}
			if elem.Kind() == reflect.Ptr {
				// Nil element carries nothing to validate; the rest of
				// the slice still does.
				continue
			}
			if elem.Kind() != reflect.Struct {
				return nil
			}
			if err := c.validate.Struct(elem.Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Client) notifyFailure(apiErr *Error) {
	c.notifier.Notify(Notice{
		Title:       "Something went wrong",
		Description: apiErr.Message,
		Severity:    SeverityDestructive,
	})
}

// get performs a GET request.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, result)
}

// post performs a POST request.
func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.doRequest(ctx, http.MethodPost, path, body, result)
}

// patch performs a PATCH request.
func (c *Client) patch(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.doRequest(ctx, http.MethodPatch, path, body, result)
}

// delete performs a DELETE request.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}
