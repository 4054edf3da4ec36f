package main

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"godsendjoseph.dev/r2-gateway/internal/gateway"
	"godsendjoseph.dev/r2-gateway/internal/storage"
)

const objectsPath = "/v1/objects/"

type uploadObjectPayload struct {
	Folder string `form:"folder" validate:"omitempty,max=128,folder"`
}

func (app *application) uploadObjectHandler(writer http.ResponseWriter, request *http.Request) {
	var payload uploadObjectPayload

	files, err := readFormData(writer, request, app.config.maxUploadBytes, &payload)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			app.payloadTooLargeResponse(writer, request, err)
			return
		}
		app.badRequestResponse(writer, request, err)
		return
	}

	if errorsMap := validatePayload(payload); errorsMap != nil {
		app.validationErrorResponse(writer, request, errorsMap)
		return
	}

	fileHeaders := files["file"]
	if len(fileHeaders) == 0 {
		app.badRequestResponse(writer, request, errors.New("file is required"))
		return
	}
	fileHeader := fileHeaders[0]

	if fileHeader.Size > app.config.maxUploadBytes {
		app.payloadTooLargeResponse(writer, request, errors.New("file exceeds UPLOAD_MAX_BYTES"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		app.internalServerError(writer, request, err)
		return
	}
	defer file.Close()

	result := app.gateway.Put(request.Context(), gateway.File{
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        file,
	}, payload.Folder)

	if !result.Success {
		app.storageFailure(writer, request, result.Err, "", result.Error, result)
		return
	}

	if err := writeJSON(writer, http.StatusCreated, "object uploaded", result); err != nil {
		app.internalServerError(writer, request, err)
	}
}

func (app *application) getObjectHandler(writer http.ResponseWriter, request *http.Request) {
	key, err := objectKey(request)
	if err != nil {
		app.badRequestResponse(writer, request, err)
		return
	}

	obj := app.gateway.Get(request.Context(), key)
	if obj == nil {
		app.notFoundResponse(writer, request, errors.New("object not found"))
		return
	}
	defer obj.Body.Close()

	setObjectHeaders(writer, &obj.ObjectInfo)
	writer.WriteHeader(http.StatusOK)

	if _, err := io.Copy(writer, obj.Body); err != nil {
		// headers are already out, nothing useful to send the client
		app.logger.Warnw("object stream interrupted", "key", key, "error", err)
	}
}

func (app *application) headObjectHandler(writer http.ResponseWriter, request *http.Request) {
	key, err := objectKey(request)
	if err != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}

	info := app.gateway.Head(request.Context(), key)
	if info == nil {
		writer.WriteHeader(http.StatusNotFound)
		return
	}

	setObjectHeaders(writer, info)
	writer.WriteHeader(http.StatusOK)
}

func (app *application) deleteObjectHandler(writer http.ResponseWriter, request *http.Request) {
	key, err := objectKey(request)
	if err != nil {
		app.badRequestResponse(writer, request, err)
		return
	}

	result := app.gateway.Delete(request.Context(), key)
	if !result.Success {
		app.storageFailure(writer, request, result.Err, key, result.Error, result)
		return
	}

	if err := writeJSON(writer, http.StatusOK, "object deleted", result); err != nil {
		app.internalServerError(writer, request, err)
	}
}

func (app *application) listObjectsHandler(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	opts := gateway.ListOptions{
		Prefix: query.Get("prefix"),
		Cursor: query.Get("cursor"),
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			app.badRequestResponse(writer, request, errors.New("limit must be between 1 and 1000"))
			return
		}
		opts.Limit = limit
	}

	result, err := app.gateway.List(request.Context(), opts)
	if err != nil {
		app.storageFailure(writer, request, err, opts.Prefix, err.Error(), nil)
		return
	}

	if err := writeJSON(writer, http.StatusOK, "objects listed", result); err != nil {
		app.internalServerError(writer, request, err)
	}
}

// storageFailure answers 500 for configuration errors and 502 when the
// bucket itself failed.
func (app *application) storageFailure(writer http.ResponseWriter, request *http.Request, err error, key, message string, data any) {
	var cfgErr *gateway.ConfigurationError
	if errors.As(err, &cfgErr) {
		app.slackNotifier.NotifyServerError(err, request)
		writeJSON(writer, http.StatusInternalServerError, message, data)
		return
	}

	if err != nil {
		app.slackNotifier.NotifyStorageError(err, request, key)
	}
	writeJSON(writer, http.StatusBadGateway, message, data)
}

// objectKey decodes the key from the escaped request path exactly once.
// chi's wildcard is already decoded unless the path carried a RawPath, so it
// cannot be unescaped reliably.
func objectKey(request *http.Request) (string, error) {
	escaped, ok := strings.CutPrefix(request.URL.EscapedPath(), objectsPath)
	if !ok {
		return "", errors.New("object key is required")
	}
	key, err := url.PathUnescape(escaped)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errors.New("object key is required")
	}
	return key, nil
}

func setObjectHeaders(writer http.ResponseWriter, info *storage.ObjectInfo) {
	header := writer.Header()

	contentType := info.HTTPMetadata.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	header.Set("Content-Length", strconv.FormatInt(info.Size, 10))

	if info.HTTPMetadata.CacheControl != "" {
		header.Set("Cache-Control", info.HTTPMetadata.CacheControl)
	}
	if info.ETag != "" {
		header.Set("ETag", info.ETag)
	}
	if !info.Uploaded.IsZero() {
		header.Set("Last-Modified", info.Uploaded.UTC().Format(http.TimeFormat))
	}
	for k, v := range info.CustomMetadata {
		header.Set("X-Meta-"+k, v)
	}
}
