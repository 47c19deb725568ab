package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/services"
)

const formKey = "_form"

// bindForm decodes the posted form into dst. Values that do not even parse,
// such as letters in a number field, become a form-level error.
func bindForm(c *gin.Context, dst any) error {
	if err := c.ShouldBindWith(dst, binding.Form); err != nil {
		return services.FieldErrors{formKey: "Please check the values you entered."}
	}
	return nil
}

// failureStatus picks the status for a re-rendered form.
func failureStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}
