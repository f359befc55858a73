package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dineflow/models"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var errInternal = errors.New("internal server error")

// StatusFor maps a domain or storage error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrUnknownStatus),
		errors.Is(err, models.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound
	case errors.Is(err, models.ErrVersionConflict),
		errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		mongo.IsDuplicateKeyError(err):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// RespondAppError writes the envelope for err. Server errors are logged and
// replaced by a generic message.
func RespondAppError(c *gin.Context, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		ErrorLogger.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("request failed")
		RespondError(c, code, errInternal)
		return
	}
	RespondError(c, code, err)
}
