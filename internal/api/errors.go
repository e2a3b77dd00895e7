package api

import (
	"encoding/json" // JSON syntax errors
	"errors"        // Error inspection
	"fmt"           // Message formatting
	"reflect"       // Struct tags for field names
	"strings"       // String manipulation

	"ecommerce_backend/internal/checkout" // Checkout errors
	"ecommerce_backend/internal/payment"  // Gateway errors
	"ecommerce_backend/internal/storage"  // Photo errors
	"ecommerce_backend/internal/utils"    // Response helpers

	"github.com/gin-gonic/gin"                   // Gin web framework
	"github.com/gin-gonic/gin/binding"           // Request binding
	"github.com/go-playground/validator/v10"     // Binding validation errors
	mysqldriver "github.com/go-sql-driver/mysql" // MySQL error numbers
	"github.com/sirupsen/logrus"                 // Structured logging
	"gorm.io/gorm"                               // GORM ORM library
)

func init() {
	// Report binding failures with the JSON field name the client sent
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// fail writes an error body using the status table
func fail(c *gin.Context, code, message string) {
	utils.AbortWithError(c, code, message)
}

// respondError classifies err and writes the matching failure body
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingPrice),
		errors.Is(err, checkout.ErrNegativePrice),
		errors.Is(err, checkout.ErrMissingNonce),
		errors.Is(err, payment.ErrInvalidAmount):
		fail(c, utils.CodeValidation, err.Error())
	case errors.Is(err, payment.ErrRejected):
		logrus.WithFields(logrus.Fields{"path": c.FullPath(), "error": err}).Warn("payment request rejected")
		fail(c, utils.CodeValidation, "Payment request was rejected by the gateway")
	case errors.Is(err, payment.ErrInvalidNonce):
		fail(c, utils.CodeInvalidNonce, "Payment method is invalid or expired")
	case errors.Is(err, payment.ErrDeclined):
		fail(c, utils.CodePaymentDeclined, "Payment was declined")
	case errors.Is(err, checkout.ErrNonceReused):
		fail(c, utils.CodeConflict, "Payment nonce was already used")
	case errors.Is(err, payment.ErrGatewayUnavailable):
		logrus.WithFields(logrus.Fields{"path": c.FullPath(), "error": err}).Error("payment gateway unreachable")
		fail(c, utils.CodeGateway, "Payment gateway is unreachable")
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, storage.ErrPhotoNotFound):
		fail(c, utils.CodeNotFound, "Resource not found")
	case isDuplicate(err):
		fail(c, utils.CodeConflict, "Resource already exists")
	default:
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err,
		}).Error("request failed")
		fail(c, utils.CodeInternal, "Internal server error")
	}
}

// bindFailed answers a binding error with a message naming the first bad field
func bindFailed(c *gin.Context, err error) {
	fail(c, utils.CodeValidation, bindMessage(err))
}

func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "email":
			return fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		default:
			return fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s has the wrong type", typeErr.Field)
	}
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "Request body is not valid JSON"
	}
	return "Invalid request"
}

// isDuplicate reports unique-constraint violations across the supported drivers
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
