package main

import (
	"net/http"
)

func (app *application) internalServerError(writer http.ResponseWriter, request *http.Request, err error) {
	app.logger.Errorw("internal server error", "method", request.Method, "path", request.URL.Path, "error", err.Error())
	app.slackNotifier.NotifyServerError(err, request)
	writeJSONError(writer, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func (app *application) badRequestResponse(writer http.ResponseWriter, request *http.Request, err error) {
	app.logger.Warnw("bad request error", "method", request.Method, "path", request.URL.Path, "error", err.Error())
	writeJSONError(writer, http.StatusBadRequest, err.Error())
}

func (app *application) validationErrorResponse(writer http.ResponseWriter, request *http.Request, errorsMap map[string]string) {
	app.logger.Warnw("validation error", "method", request.Method, "path", request.URL.Path, "errors", errorsMap)
	writeJSON(writer, http.StatusUnprocessableEntity, "validation failed", errorsMap)
}

func (app *application) payloadTooLargeResponse(writer http.ResponseWriter, request *http.Request, err error) {
	app.logger.Warnw("payload too large", "method", request.Method, "path", request.URL.Path, "error", err.Error())
	writeJSONError(writer, http.StatusRequestEntityTooLarge, "upload exceeds the maximum allowed size")
}

func (app *application) methodNotAllowedResponse(writer http.ResponseWriter, request *http.Request, err error) {
	app.logger.Warnw("method not allowed error", "method", request.Method, "path", request.URL.Path, "error", err.Error())
	writeJSONError(writer, http.StatusMethodNotAllowed, "method not allowed")
}

func (app *application) notFoundResponse(writer http.ResponseWriter, request *http.Request, err error) {
	app.logger.Infow("not found error", "method", request.Method, "path", request.URL.Path, "error", err.Error())
	writeJSONError(writer, http.StatusNotFound, "not found")
}

func (app *application) unauthorizedErrorResponse(writer http.ResponseWriter, request *http.Request, err error) {
	app.logger.Warnw("unauthorized error", "method", request.Method, "path", request.URL.Path, "error", err.Error())
	writeJSONError(writer, http.StatusUnauthorized, "unauthorized")
}

func (app *application) rateLimitExceededResponse(writer http.ResponseWriter, request *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit error", "method", request.Method, "path", request.URL.Path, "error", retryAfter)
	writer.Header().Set("Retry-After", retryAfter)
	writeJSONError(writer, http.StatusTooManyRequests, "rate limit exceeded")
}
