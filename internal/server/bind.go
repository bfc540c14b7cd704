package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// maxBatchTexts caps the number of texts in one /tokenize/batch request.
const maxBatchTexts = 256

type textRequest struct {
	Text string `json:"text" validate:"required"`
}

type batchRequest struct {
	Texts []string `json:"texts" validate:"required,min=1,max=256,dive,required"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

// requestValidator returns the shared validator. Field names in messages use
// json tags.
func requestValidator() (*validator.Validate, ut.Translator) {
	validateOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		translator, _ = uni.GetTranslator("en")

		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(validate, translator)
	})

	return validate, translator
}

// bindError carries the HTTP status a decode or validation failure maps to.
type bindError struct {
	status int
	msg    string
}

func (e *bindError) Error() string { return e.msg }

// decodeJSON reads a single JSON document of at most maxBytes into dst and
// validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return &bindError{status: http.StatusBadRequest, msg: "request body is required"}
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &bindError{
				status: http.StatusRequestEntityTooLarge,
				msg:    fmt.Sprintf("request body exceeds maximum size of %d bytes", maxBytes),
			}
		case errors.Is(err, io.EOF):
			return &bindError{status: http.StatusBadRequest, msg: "request body is required"}
		default:
			return &bindError{status: http.StatusBadRequest, msg: "invalid JSON: " + err.Error()}
		}
	}

	if dec.More() {
		return &bindError{status: http.StatusBadRequest, msg: "unexpected trailing data"}
	}

	v, trans := requestValidator()
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &bindError{status: http.StatusBadRequest, msg: verrs[0].Translate(trans)}
		}
		return &bindError{status: http.StatusBadRequest, msg: "validation error: " + err.Error()}
	}

	return nil
}
