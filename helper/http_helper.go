package helper

import (
	"errors"
	"net/http"

	"usuarios-api/models"

	"github.com/gin-gonic/gin"
)

const (
	codeTypeSuccess            = `success`
	codeTypeCreated            = `created`
	codeTypeBadRequest         = `badRequest`
	codeTypeValidation         = `validationError`
	codeTypeConflict           = `conflict`
	codeTypeUnauthorized       = `unAuthorized`
	codeTypeNotFound           = `notFound`
	codeTypeInvalidCredentials = `invalidCredentials`
	codeTypeInternalServer     = `internalServerError`
)

// ResponseHelper ...
type ResponseHelper struct {
	C        *gin.Context
	Message  string
	Data     interface{}
	Code     int // also the http status
	CodeType string
}

// HTTPHelper writes every response in the same envelope:
// {"code", "code_type", "code_message", "data"}.
type HTTPHelper struct{}

// GetStatusCode ...
func (u *HTTPHelper) GetStatusCode(err error) int {
	status, _ := u.classify(err)
	return status
}

func (u *HTTPHelper) classify(err error) (int, string) {
	if err == nil {
		return http.StatusOK, codeTypeSuccess
	}

	var (
		validationErr  models.ErrorValidation
		conflictErr    models.ErrorConflict
		unauthorized   models.ErrorUnauthorized
		notFound       models.ErrorNotFound
		invalidCredErr models.ErrorInvalidCredentials
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, codeTypeValidation
	case errors.As(err, &conflictErr):
		return http.StatusBadRequest, codeTypeConflict
	case errors.As(err, &invalidCredErr):
		return http.StatusBadRequest, codeTypeInvalidCredentials
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, codeTypeUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound, codeTypeNotFound
	default:
		return http.StatusInternalServerError, codeTypeInternalServer
	}
}

// SetResponse ...
// Set response data.
func (u *HTTPHelper) SetResponse(c *gin.Context, message string, data interface{}, code int, codeType string) ResponseHelper {
	return ResponseHelper{c, message, data, code, codeType}
}

// SendError ...
// Translate a service error into its status and envelope. Internal causes
// are never sent to the client.
func (u *HTTPHelper) SendError(c *gin.Context, err error) {
	code, codeType := u.classify(err)

	var validationErr models.ErrorValidation
	switch {
	case errors.As(err, &validationErr):
		u.SendValidationError(c, validationErr)
		return
	case code == http.StatusInternalServerError:
		u.SendInternalServerError(c)
		return
	}

	u.SendResponse(u.SetResponse(c, err.Error(), u.EmptyJsonMap(), code, codeType))
}

// SendBadRequest ...
// Send bad request response to consumers.
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string, data interface{}) {
	u.SendResponse(u.SetResponse(c, message, data, http.StatusBadRequest, codeTypeBadRequest))
}

// SendValidationError ...
// Send the failing fields and their messages.
func (u *HTTPHelper) SendValidationError(c *gin.Context, validationErr models.ErrorValidation) {
	u.SendResponse(u.SetResponse(c, models.ErrValidation.Error(), validationErr.Fields, http.StatusBadRequest, codeTypeValidation))
}

// SendUnauthorizedError ...
// Send unauthorized response to consumers.
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string) {
	u.SendResponse(u.SetResponse(c, message, u.EmptyJsonMap(), http.StatusUnauthorized, codeTypeUnauthorized))
}

func (u *HTTPHelper) SendInternalServerError(c *gin.Context) {
	u.SendResponse(u.SetResponse(c, models.ErrInternalServer.Error(), u.EmptyJsonMap(), http.StatusInternalServerError, codeTypeInternalServer))
}

// SendSuccess ...
// Send success response to consumers.
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) {
	u.SendResponse(u.SetResponse(c, message, data, http.StatusOK, codeTypeSuccess))
}

func (u *HTTPHelper) SendCreated(c *gin.Context, message string, data interface{}) {
	u.SendResponse(u.SetResponse(c, message, data, http.StatusCreated, codeTypeCreated))
}

// SendResponse ...
// Send response
func (u *HTTPHelper) SendResponse(res ResponseHelper) {
	if len(res.Message) == 0 {
		res.Message = `success`
	}

	res.C.JSON(res.Code, map[string]interface{}{
		"code":         res.Code,
		"code_type":    res.CodeType,
		"code_message": res.Message,
		"data":         res.Data,
	})
}

func (u *HTTPHelper) EmptyJsonMap() map[string]interface{} {
	return make(map[string]interface{})
}
