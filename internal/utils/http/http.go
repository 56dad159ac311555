package http

import (
	"bytes"
	"encoding/json"
	ers "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/golang/gddo/httputil/header"
	"github.com/habitflow-app/habitflow-backend/internal/logging"
	"github.com/habitflow-app/habitflow-backend/internal/utils"
	"github.com/habitflow-app/habitflow-backend/internal/utils/errors"
	rpccode "google.golang.org/genproto/googleapis/rpc/code"
)

type requestEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type errorBody struct {
	Status  int32  `json:"status"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// DecodeJSONBody decodes request body in form {"data": {...}} into dst and validates it.
// Error handling copied from https://www.alexedwards.net/blog/how-to-properly-parse-a-json-request-body
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	value, _ := header.ParseValueAndParams(r.Header, "Content-Type")
	if value != "application/json" {
		msg := "Content-Type header is not application/json"
		return &errors.MalformedRequestError{Status: http.StatusUnsupportedMediaType, Msg: msg}
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var envelope requestEnvelope

	err := dec.Decode(&envelope)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError

		switch {
		case ers.As(err, &syntaxError):
			msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
			return &errors.MalformedRequestError{Status: http.StatusBadRequest, Msg: msg}

		case ers.Is(err, io.ErrUnexpectedEOF):
			msg := "Request body contains badly-formed JSON"
			return &errors.MalformedRequestError{Status: http.StatusBadRequest, Msg: msg}

		case ers.As(err, &unmarshalTypeError):
			msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
			return &errors.MalformedRequestError{Status: http.StatusBadRequest, Msg: msg}

		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			msg := fmt.Sprintf("Request body contains unknown field %s", fieldName)
			return &errors.MalformedRequestError{Status: http.StatusBadRequest, Msg: msg}

		case ers.Is(err, io.EOF):
			msg := "Request body must not be empty"
			return &errors.MalformedRequestError{Status: http.StatusBadRequest, Msg: msg}

		case err.Error() == "http: request body too large":
			msg := "Request body must not be larger than 1MB"
			return &errors.MalformedRequestError{Status: http.StatusRequestEntityTooLarge, Msg: msg}

		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		msg := "Request body must only contain a single JSON object"
		return &errors.MalformedRequestError{Status: http.StatusBadRequest, Msg: msg}
	}

	if envelope.Data == nil {
		msg := "Request body must be wrapped in 'data' field"
		return &errors.MalformedRequestError{Status: http.StatusBadRequest, Msg: msg}
	}

	inner := json.NewDecoder(bytes.NewReader(envelope.Data))
	inner.DisallowUnknownFields()
	if err = inner.Decode(dst); err != nil {
		msg := fmt.Sprintf("Request body contains invalid 'data' field: %v", err)
		return &errors.MalformedRequestError{Status: http.StatusBadRequest, Msg: msg}
	}

	err = utils.Validate.Struct(dst)
	if err != nil {
		msg := fmt.Sprintf("Validation of the request has failed: %v", err.Error())
		return &errors.MalformedRequestError{Status: http.StatusBadRequest, Msg: msg}
	}

	return nil
}

// DecodeJSONOrReportError decodes and validates request body; on failure it reports the
// error to the client and returns false.
func DecodeJSONOrReportError(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := DecodeJSONBody(w, r, dst)
	if err == nil {
		return true
	}

	logger := logging.FromContext(r.Context())

	var mr *errors.MalformedRequestError
	if ers.As(err, &mr) {
		logger.Debugf("Cannot decode request: %+v", mr.Msg)
		SendErrorResponse(w, r, mr)
	} else {
		logger.Debugf("Cannot decode request due to unknown error: %+v", err.Error())
		SendErrorResponse(w, r, &errors.UnknownError{Msg: err.Error()})
	}

	return false
}

// SendResponse sends response wrapped in {"data": ...} envelope.
func SendResponse(w http.ResponseWriter, r *http.Request, response interface{}) {
	js, err := json.Marshal(struct {
		Data interface{} `json:"data"`
	}{Data: response})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(js); err != nil {
		logging.FromContext(r.Context()).Errorf("Error while writing response: %v", err)
	}
}

// SendEmptyResponse sends {"data":{}}.
func SendEmptyResponse(w http.ResponseWriter, r *http.Request) {
	SendResponse(w, r, struct{}{})
}

// SendErrorResponse sends response wrapped in {"error": ...} envelope. The status is
// the rpc code of the error, Code_INTERNAL for plain errors.
func SendErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := rpccode.Code_INTERNAL
	var habitflowError errors.HabitflowError
	if ers.As(err, &habitflowError) {
		code = habitflowError.Code()
	}

	js, merr := json.Marshal(errorEnvelope{Error: errorBody{Status: int32(code), Message: err.Error()}})
	if merr != nil {
		http.Error(w, merr.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, werr := w.Write(js); werr != nil {
		logging.FromContext(r.Context()).Errorf("Error while writing response: %v", werr)
	}
}
