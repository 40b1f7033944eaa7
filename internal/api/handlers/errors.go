package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Error kinds returned to clients
const (
	KindBadInput   = "bad_input"
	KindDataSource = "data_source"
	KindInternal   = "internal"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Trace string `json:"trace,omitempty"`
}

// classify maps an error to its HTTP status and kind.
func classify(err error) (int, string) {
	var verr *domain.ValidationError
	var dsErr *domain.DataSourceError
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, KindBadInput
	case errors.As(err, &verr):
		return http.StatusBadRequest, KindBadInput
	case errors.As(err, &dsErr), errors.Is(err, domain.ErrEmptyDataset):
		return http.StatusUnprocessableEntity, KindDataSource
	default:
		return http.StatusInternalServerError, KindInternal
	}
}

// respondError writes the error envelope. Stack traces are included in debug mode only.
func respondError(c *gin.Context, err error, debug bool) {
	status, kind := classify(err)

	body := errorBody{Error: err.Error(), Kind: kind}
	if kind == KindInternal && !debug {
		body.Error = "internal server error"
	}
	if debug {
		body.Trace = trace(err)
	}

	evt := log.Warn()
	if status >= http.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Stack().Err(err).Int("status", status).Str("path", c.Request.URL.Path).Msg("request failed")

	c.AbortWithStatusJSON(status, body)
}

func trace(err error) string {
	var dsErr *domain.DataSourceError
	if errors.As(err, &dsErr) && dsErr.Err != nil {
		return fmt.Sprintf("%+v", dsErr.Err)
	}
	return fmt.Sprintf("%+v", err)
}

// bindingError turns gin binding failures into a ValidationError naming the first bad field.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ValidationError{Field: toSnake(fe.Field()), Message: validationMessage(fe)}
	}
	return &domain.ValidationError{Message: err.Error()}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be >= " + fe.Param()
	case "max":
		return "must be <= " + fe.Param()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
