package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/phillip/event-registration-go/config"
	"github.com/phillip/event-registration-go/models"
	"github.com/phillip/event-registration-go/payments"
	utils "github.com/phillip/event-registration-go/utils"
)

// notificationForm is the gateway callback body, form-encoded or JSON.
type notificationForm struct {
	TransactionID string `form:"cpm_trans_id" json:"cpm_trans_id"`
	SiteID        string `form:"cpm_site_id" json:"cpm_site_id"`
	StatusCode    string `form:"cpm_trans_status" json:"cpm_trans_status"`
	PaymentDate   string `form:"cpm_payment_date" json:"cpm_payment_date"`
	PaymentMethod string `form:"cpm_payment_method" json:"cpm_payment_method"`
	Custom        string `form:"cpm_custom" json:"cpm_custom"`
}

// ---------------- INITIATE ----------------
func InitiatePayment(cfg *config.Config, initiator *payments.Initiator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input payments.RegistrationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		result, err := initiator.Initiate(ctx, input)
		if err != nil {
			respondError(c, cfg, err, http.StatusBadGateway, "An error occurred while initiating payment")
			return
		}

		if result.RequiresInstallments {
			c.JSON(http.StatusOK, gin.H{
				"success":               true,
				"message":               "Installment payment required",
				"requires_installments": true,
				"registration_id":       result.RegistrationID,
				"confirmation_code":     result.ConfirmationCode,
				"total_installments":    result.TotalInstallments,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"message":           "Payment session created",
			"payment_url":       result.PaymentURL,
			"registration_id":   result.RegistrationID,
			"confirmation_code": result.ConfirmationCode,
		})
	}
}

// ---------------- NOTIFY ----------------
// PaymentNotification is the gateway webhook. 400 and 404 are terminal for the
// gateway, 500 asks it to redeliver, 200 acknowledges a recorded outcome.
func PaymentNotification(cfg *config.Config, reconciler *payments.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form notificationForm
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid notification data"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		result, err := reconciler.HandleNotification(ctx, payments.Notification{
			TransactionID: form.TransactionID,
			SiteID:        form.SiteID,
			StatusCode:    form.StatusCode,
			PaymentDate:   form.PaymentDate,
			PaymentMethod: form.PaymentMethod,
			Metadata:      form.Custom,
		})
		if err != nil {
			respondError(c, cfg, err, http.StatusInternalServerError, "An error occurred while processing payment notification")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": result.Accepted,
			"message": result.Message,
			"outcome": result.Outcome,
		})
	}
}

// ---------------- VERIFY ----------------
func VerifyPayment(cfg *config.Config, query *payments.Query) gin.HandlerFunc {
	return func(c *gin.Context) {
		txID := c.Query("transaction_id")
		if txID == "" {
			txID = c.Query("cpm_trans_id")
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		progress, err := query.Verify(ctx, payments.ProgressQuery{
			RegistrationID: c.Query("registration_id"),
			TransactionID:  txID,
		})
		if err != nil {
			respondError(c, cfg, err, http.StatusInternalServerError, "An error occurred while verifying payment")
			return
		}

		// --- ETag from registration id + last update ---
		if id, err := primitive.ObjectIDFromHex(progress.RegistrationID); err == nil {
			etag := utils.GenerateETag(id, progress.UpdatedAt)
			if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
				c.Status(http.StatusNotModified)
				return
			}
			c.Header("ETag", etag)
			c.Header("Last-Modified", progress.UpdatedAt.UTC().Format(http.TimeFormat))
		}

		message := "Payment pending"
		if progress.PaymentStatus == models.StatusCompleted {
			message = "Payment verified"
		}
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      message,
			"payment_data": progress,
		})
	}
}
