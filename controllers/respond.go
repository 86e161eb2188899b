package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	config "github.com/phillip/event-registration-go/config"
	"github.com/phillip/event-registration-go/payments"
	"github.com/phillip/event-registration-go/sentinel"
)

// statusFor maps an error kind to an HTTP status. gatewayStatus is used for
// gateway failures so client-facing checkout endpoints can answer 502 while
// the webhook answers 500. An unreachable database answers 503.
func statusFor(err error, gatewayStatus int) int {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	switch payments.KindOf(err) {
	case payments.KindValidation:
		return http.StatusBadRequest
	case payments.KindNotFound:
		return http.StatusNotFound
	case payments.KindGateway:
		return gatewayStatus
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {success:false, message, error}. In production the
// error field carries only the kind label.
func respondError(c *gin.Context, cfg *config.Config, err error, gatewayStatus int, fallback string) {
	status := statusFor(err, gatewayStatus)
	body := gin.H{"success": false, "message": fallback}

	var perr *payments.Error
	if errors.As(err, &perr) {
		body["message"] = perr.Message
		if len(perr.Fields) > 0 {
			body["fields"] = perr.Fields
		}
	}

	if cfg.IsProduction() {
		if kind := payments.KindOf(err); kind != "" {
			body["error"] = string(kind)
		}
	} else {
		body["error"] = err.Error()
	}

	_ = c.Error(err)
	c.JSON(status, body)
}
