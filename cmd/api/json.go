package main

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

const (
	// room for multipart boundaries and the other form fields
	formOverheadBytes = 1 << 20
	maxMemoryBytes    = 32 << 20
)

var Validate *validator.Validate

var folderPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*(/[A-Za-z0-9][A-Za-z0-9._-]*)*$`)

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
	Validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
	})
	Validate.RegisterValidation("folder", func(fl validator.FieldLevel) bool {
		return folderPattern.MatchString(fl.Field().String())
	})
}

func writeJSON(writer http.ResponseWriter, status int, message string, data any) error {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	return json.NewEncoder(writer).Encode(map[string]any{
		"status":  status,
		"success": status < 399,
		"message": message,
		"data":    data,
	})
}

func writeJSONError(writer http.ResponseWriter, status int, message string) error {
	return writeJSON(writer, status, message, nil)
}

// readFormData parses a multipart (or url-encoded) form, decodes its values
// into data by `form` tag and returns the uploaded files.
func readFormData(writer http.ResponseWriter, request *http.Request, maxBytes int64, data any) (map[string][]*multipart.FileHeader, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes+formOverheadBytes)

	files := make(map[string][]*multipart.FileHeader)

	if err := request.ParseMultipartForm(maxMemoryBytes); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		if err := request.ParseForm(); err != nil {
			return nil, err
		}
	} else {
		files = request.MultipartForm.File
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           data,
		TagName:          "form",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}

	values := make(map[string]any)
	for key, val := range request.Form {
		if len(val) == 1 {
			values[key] = val[0]
		} else {
			values[key] = val
		}
	}

	if err := decoder.Decode(values); err != nil {
		return nil, err
	}

	return files, nil
}

// validatePayload returns field -> failed rule, or nil when payload is valid.
func validatePayload(payload any) map[string]string {
	err := Validate.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"payload": err.Error()}
	}

	errorsMap := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		errorsMap[fieldErr.Field()] = fieldErr.Tag()
	}
	return errorsMap
}
