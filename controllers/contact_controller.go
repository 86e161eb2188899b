package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillip/event-registration-go/mailer"
)

type ContactSender interface {
	SendContact(ctx context.Context, msg mailer.ContactMessage) error
}

// ---------------- CONTACT ----------------
func SendContact(sender ContactSender, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input mailer.ContactMessage
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "name, email, subject and message are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		if err := sender.SendContact(ctx, input); err != nil {
			logger.ErrorContext(ctx, "contact email failed", "from", input.Email, "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur lors de l'envoi de l'email"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email envoyé avec succès"})
	}
}
