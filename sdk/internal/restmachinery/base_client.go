package restmachinery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/greenorbit/phaseout/sdk/meta"
	"github.com/pkg/errors"
)

// BaseClient provides functionality common to all of the phaseout API
// clients.
type BaseClient struct {
	APIAddress string
	HTTPClient *http.Client
}

// ExecuteRequest accepts one argument-- an outbound request-- that models all
// aspects of a request to be made to the phaseout API server, executes that
// request, and, if applicable, unmarshals the response body into the response
// object the request specified.
func (b *BaseClient) ExecuteRequest(
	ctx context.Context,
	req OutboundRequest,
) error {
	resp, err := b.SubmitRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if req.RespObj != nil {
		respBodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "error reading response body")
		}
		if err := json.Unmarshal(respBodyBytes, req.RespObj); err != nil {
			return errors.Wrap(err, "error unmarshaling response body")
		}
	}
	return nil
}

// SubmitRequest executes the provided outbound request and returns the raw
// response. Any non-2xx response is converted to an error from the meta error
// taxonomy.
func (b *BaseClient) SubmitRequest(
	ctx context.Context,
	req OutboundRequest,
) (*http.Response, error) {
	var reqBodyReader io.Reader
	if req.ReqBodyObj != nil {
		switch rb := req.ReqBodyObj.(type) {
		case []byte:
			reqBodyReader = bytes.NewBuffer(rb)
		default:
			reqBodyBytes, err := json.Marshal(req.ReqBodyObj)
			if err != nil {
				return nil, errors.Wrap(err, "error marshaling request body")
			}
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	r, err := http.NewRequestWithContext(
		ctx,
		req.Method,
		fmt.Sprintf("%s/%s", b.APIAddress, req.Path),
		reqBodyReader,
	)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error creating request %s %s",
			req.Method,
			req.Path,
		)
	}
	if len(req.QueryParams) > 0 {
		q := r.URL.Query()
		for k, v := range req.QueryParams {
			q.Set(k, v)
		}
		r.URL.RawQuery = q.Encode()
	}
	for k, v := range req.AuthHeaders {
		r.Header.Add(k, v)
	}
	for k, v := range req.Headers {
		r.Header.Add(k, v)
	}

	resp, err := b.HTTPClient.Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "error invoking API")
	}

	if (req.SuccessCode == 0 && resp.StatusCode != http.StatusOK) ||
		(req.SuccessCode != 0 && resp.StatusCode != req.SuccessCode) {
		// HTTP response code hints at what sort of error might be in the body of
		// the response
		var apiErr error
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			apiErr = &meta.ErrAuthentication{}
		case http.StatusForbidden:
			apiErr = &meta.ErrAuthorization{}
		case http.StatusBadRequest:
			apiErr = &meta.ErrBadRequest{}
		case http.StatusNotFound:
			apiErr = &meta.ErrNotFound{}
		case http.StatusConflict:
			apiErr = &meta.ErrConflict{}
		case http.StatusNotImplemented:
			apiErr = &meta.ErrNotSupported{}
		case http.StatusInternalServerError:
			apiErr = &meta.ErrInternalServer{}
		default:
			return nil, errors.Errorf("received %d from API server", resp.StatusCode)
		}
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "error reading error response body")
		}
		if err = json.Unmarshal(bodyBytes, apiErr); err != nil {
			return nil, errors.Wrap(err, "error unmarshaling error response body")
		}
		return nil, apiErr
	}
	return resp, nil
}
