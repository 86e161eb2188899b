package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	config "github.com/phillip/event-registration-go/config"
	middleware "github.com/phillip/event-registration-go/middleware"
	"github.com/phillip/event-registration-go/models"
	"github.com/phillip/event-registration-go/payments"
	"github.com/phillip/event-registration-go/sentinel"
	"github.com/phillip/event-registration-go/store"
	utils "github.com/phillip/event-registration-go/utils"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
}

type RegistrationLister interface {
	List(ctx context.Context, f store.RegistrationFilter, now time.Time) ([]models.Registration, store.RegistrationPage, error)
}

// SeedAdmin creates the configured administrator when it does not exist yet.
func SeedAdmin(ctx context.Context, admins AdminRepository, username, password string, logger *slog.Logger) error {
	if username == "" || password == "" {
		logger.Warn("admin seed skipped, ADMIN_USERNAME or ADMIN_PASSWORD not set")
		return nil
	}
	if _, err := admins.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := admins.Create(ctx, admin); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil
		}
		return err
	}
	logger.Info("admin account seeded", "username", admin.Username)
	return nil
}

// ---------------- LOGIN ----------------
func AdminLogin(cfg *config.Config, admins AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "username and password are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		admin, err := admins.FindByUsername(ctx, input.Username)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
				return
			}
			respondError(c, cfg, payments.NewPersistenceError("failed to look up admin", err), http.StatusInternalServerError, "Server error during login")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}

		token, err := middleware.IssueToken(cfg.JWTSecret, admin.ID.Hex(), admin.Username, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error during login"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   token,
			"admin":   gin.H{"id": admin.ID.Hex(), "username": admin.Username},
		})
	}
}

// ---------------- LIST ----------------
func ListRegistrations(cfg *config.Config, lister RegistrationLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		filter := store.RegistrationFilter{
			Search:          c.Query("searchTerm"),
			PaymentStatus:   c.Query("paymentStatus"),
			ParticipantType: c.Query("participantType"),
			DateRange:       c.Query("dateRange"),
			Sort:            c.DefaultQuery("sort", "createdAt"),
			Direction:       c.DefaultQuery("direction", "desc"),
			Page:            page,
			Limit:           limit,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		regs, meta, err := lister.List(ctx, filter, time.Now())
		if err != nil {
			respondError(c, cfg, payments.NewPersistenceError("failed to list registrations", err), http.StatusInternalServerError, "Error fetching registrations")
			return
		}
		if regs == nil {
			regs = []models.Registration{}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"registrations": regs,
			"total":         meta.Total,
			"total_pages":   meta.TotalPages,
			"current_page":  meta.CurrentPage,
		})
	}
}

// ---------------- GET ----------------
func GetRegistration(cfg *config.Config, query *payments.Query) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := primitive.ObjectIDFromHex(c.Param("id")); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid registration id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		reg, err := query.Registration(ctx, c.Param("id"))
		if err != nil {
			respondError(c, cfg, err, http.StatusInternalServerError, "Error fetching registration")
			return
		}

		etag := utils.GenerateETag(reg.ID, reg.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", reg.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, gin.H{"success": true, "registration": reg})
	}
}
