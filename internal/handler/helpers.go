package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails; the
// caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if errors.Is(err, money.ErrQuantityPrecision) {
			c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"quantity": "precision"}))
			return false
		}
		if errors.Is(err, money.ErrQuantityRange) {
			c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"quantity": "range"}))
			return false
		}
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError writes the envelope for a service error. The error is also
// attached to the context so ErrorHandler logs storage and unclassified
// failures.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apierror.HTTPStatus(apierror.KindOf(err)), apierror.FromError(err))
}

// uuidParam parses a path parameter, answering 422 on malformed ids.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{name: "uuid"}))
		return uuid.Nil, false
	}
	return id, true
}

// uuidQuery parses an optional query parameter; absent yields nil.
func uuidQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{name: "uuid"}))
		return nil, false
	}
	return &id, true
}

// timeQuery accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func timeQuery(c *gin.Context, name string, loc *time.Location) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{name: "datetime"}))
		return nil, false
	}
	return &t, true
}

func pageQuery(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	return repository.Page{Page: page, Limit: limit}
}
