package restmachinery

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

// Endpoints is an interface for any component that can register API routes
// with a router.
type Endpoints interface {
	Register(router *mux.Router)
}

// BaseEndpoints provides functionality common to all Endpoints
// implementations.
type BaseEndpoints struct {
	TokenAuthFilter Filter
	Logger          *zap.Logger
}

// InboundRequest models an inbound API request: where to read it from, how to
// validate it, the logic to invoke, and how to respond.
type InboundRequest struct {
	W                   http.ResponseWriter
	R                   *http.Request
	ReqBodySchemaLoader gojsonschema.JSONLoader
	ReqBodyObj          interface{}
	EndpointLogic       func() (interface{}, error)
	SuccessCode         int
}

func (b *BaseEndpoints) readAndValidateRequestBody(
	w http.ResponseWriter,
	r *http.Request,
	bodySchemaLoader gojsonschema.JSONLoader,
	bodyObj interface{},
) bool {
	defer r.Body.Close()
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		// Log it in case something is actually wrong...
		b.logger().Warn(
			"error reading request body",
			zap.Error(err),
		)
		// But we're going to assume this is because the request body is missing,
		// so we'll treat it as a bad request.
		b.WriteAPIResponse(
			w,
			http.StatusBadRequest,
			&meta.ErrBadRequest{
				Reason: "Could not read request body.",
			},
		)
		return false
	}
	if bodySchemaLoader != nil {
		var validationResult *gojsonschema.Result
		validationResult, err = gojsonschema.Validate(
			bodySchemaLoader,
			gojsonschema.NewBytesLoader(bodyBytes),
		)
		if err != nil {
			// As long as the schema itself was valid, the most likely scenario here
			// is that the request body wasn't valid JSON.
			b.logger().Warn(
				"error validating request body",
				zap.Error(err),
			)
			b.WriteAPIResponse(
				w,
				http.StatusBadRequest,
				&meta.ErrBadRequest{
					Reason: "Could not validate request body.",
				},
			)
			return false
		}
		if !validationResult.Valid() {
			verrStrs := make([]string, len(validationResult.Errors()))
			for i, verr := range validationResult.Errors() {
				verrStrs[i] = verr.String()
			}
			b.WriteAPIResponse(
				w,
				http.StatusBadRequest,
				&meta.ErrBadRequest{
					Reason:  "Request body failed JSON validation",
					Details: verrStrs,
				},
			)
			return false
		}
	}
	if bodyObj != nil {
		if err = json.Unmarshal(bodyBytes, bodyObj); err != nil {
			// We were already able to validate the request body, which means it was
			// valid JSON. If unmarshaling went wrong anyway, it's NOT because of a
			// bad request-- it's a real, internal problem.
			b.logger().Error(
				"error unmarshaling request body",
				zap.Error(err),
			)
			b.WriteAPIResponse(
				w,
				http.StatusInternalServerError,
				&meta.ErrInternalServer{},
			)
			return false
		}
	}
	return true
}

// ServeRequest handles an InboundRequest end to end: body validation,
// endpoint logic, and error-to-status mapping.
func (b *BaseEndpoints) ServeRequest(req InboundRequest) {
	if req.ReqBodySchemaLoader != nil || req.ReqBodyObj != nil {
		if !b.readAndValidateRequestBody(
			req.W,
			req.R,
			req.ReqBodySchemaLoader,
			req.ReqBodyObj,
		) {
			return
		}
	}
	respBodyObj, err := req.EndpointLogic()
	if err != nil {
		switch e := errors.Cause(err).(type) {
		case *meta.ErrAuthentication:
			b.WriteAPIResponse(req.W, http.StatusUnauthorized, e)
		case *meta.ErrAuthorization:
			b.WriteAPIResponse(req.W, http.StatusForbidden, e)
		case *meta.ErrBadRequest:
			b.WriteAPIResponse(req.W, http.StatusBadRequest, e)
		case *meta.ErrNotFound:
			b.WriteAPIResponse(req.W, http.StatusNotFound, e)
		case *meta.ErrConflict:
			b.WriteAPIResponse(req.W, http.StatusConflict, e)
		case *meta.ErrNotSupported:
			b.WriteAPIResponse(req.W, http.StatusNotImplemented, e)
		case *meta.ErrInternalServer:
			b.WriteAPIResponse(req.W, http.StatusInternalServerError, e)
		default:
			b.logger().Error("internal error serving request", zap.Error(err))
			b.WriteAPIResponse(
				req.W,
				http.StatusInternalServerError,
				&meta.ErrInternalServer{},
			)
		}
		return
	}
	b.WriteAPIResponse(req.W, req.SuccessCode, respBodyObj)
}

// WriteAPIResponse writes the specified response object, JSON-encoded, with
// the specified status code.
func (b *BaseEndpoints) WriteAPIResponse(
	w http.ResponseWriter,
	statusCode int,
	response interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	responseBody, ok := response.([]byte)
	if !ok {
		var err error
		if responseBody, err = json.Marshal(response); err != nil {
			b.logger().Error("error marshaling response body", zap.Error(err))
		}
	}
	if _, err := w.Write(responseBody); err != nil {
		b.logger().Error("error writing response body", zap.Error(err))
	}
}

func (b *BaseEndpoints) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}
