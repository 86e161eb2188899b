package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	config "github.com/phillip/event-registration-go/config"
	"github.com/phillip/event-registration-go/payments"
)

// ---------------- CREATE ----------------
func CreateInstallments(cfg *config.Config, initiator *payments.Initiator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		reg, err := initiator.CreatePlan(ctx, c.Param("registrationId"))
		if err != nil {
			respondError(c, cfg, err, http.StatusBadGateway, "An error occurred while creating installments")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      "Installments created successfully",
			"installments": reg.Installments,
		})
	}
}

// ---------------- GET ----------------
// GetInstallments returns the registration with its plan, creating the plan
// when the registration has none yet.
func GetInstallments(cfg *config.Config, initiator *payments.Initiator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		reg, err := initiator.EnsurePlan(ctx, c.Param("registrationId"))
		if err != nil {
			respondError(c, cfg, err, http.StatusBadGateway, "An error occurred while retrieving installments")
			return
		}

		progress := payments.NewPaymentProgress(reg)
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"registration":  reg,
			"installments":  reg.Installments,
			"total_paid":    progress.TotalPaid,
			"is_fully_paid": progress.IsFullyPaid,
		})
	}
}

// ---------------- PAY ----------------
func PayInstallment(cfg *config.Config, initiator *payments.Initiator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		checkout, err := initiator.CheckoutInstallment(ctx, c.Param("installmentId"))
		if err != nil {
			respondError(c, cfg, err, http.StatusBadGateway, "An error occurred while initiating installment payment")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":            true,
			"message":            "Payment session created for installment",
			"payment_url":        checkout.PaymentURL,
			"registration_id":    checkout.RegistrationID,
			"installment_id":     checkout.InstallmentID,
			"installment_number": checkout.InstallmentNumber,
			"total_installments": checkout.TotalInstallments,
		})
	}
}

// ---------------- CHECK ----------------
func CheckInstallment(cfg *config.Config, query *payments.Query) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		status, err := query.CheckInstallment(ctx, c.Param("installmentId"))
		if err != nil {
			respondError(c, cfg, err, http.StatusInternalServerError, "An error occurred while checking installment status")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":            true,
			"installment":        status.Installment,
			"registration_id":    status.RegistrationID,
			"total_installments": status.TotalInstallments,
			"is_fully_paid":      status.IsFullyPaid,
			"total_paid":         status.TotalPaid,
			"total_amount":       status.TotalAmount,
		})
	}
}
