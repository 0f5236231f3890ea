package api

import (
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes
	"strconv"  // Path param parsing
	"time"     // Expense date handling

	"asset_tracker/internal/domain" // Importing domain models
	"asset_tracker/internal/store"  // Persistence interface

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Request struct for creating an expense
type CreateExpenseRequest struct {
	Title    string  `json:"title" binding:"required"`       // Title must be provided
	Amount   float64 `json:"amount" binding:"required,gt=0"` // Amount must be positive
	Category string  `json:"category" binding:"required"`    // Category must be provided
	Date     string  `json:"date"`                           // Optional, defaults to now
}

// Request struct for updating an expense; absent fields are left untouched
type UpdateExpenseRequest struct {
	Title    *string  `json:"title"`    // New title
	Amount   *float64 `json:"amount"`   // New amount
	Category *string  `json:"category"` // New category
	Date     *string  `json:"date"`     // New date
}

// parseExpenseDate accepts RFC3339 or a bare calendar date
func parseExpenseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// ListExpensesHandler returns the caller's expenses, newest first by date
func ListExpensesHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		expenses, err := s.ExpensesByUser(c.Request.Context(), userID) // Fetch rows
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to list expenses")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch expenses"})
			return
		}
		if expenses == nil {
			expenses = []domain.Expense{} // Serialize as [] rather than null
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": expenses, "count": len(expenses)})
	}
}

// CreateExpenseHandler persists a new expense for the caller
func CreateExpenseHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		var req CreateExpenseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
			return
		}
		// Expense date defaults to now
		date := time.Now()
		if req.Date != "" {
			parsed, err := parseExpenseDate(req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date"})
				return
			}
			date = parsed
		}
		// Owner id comes from the token, never from the payload
		expense := domain.Expense{
			UserID:   userID,       // Authenticated owner
			Title:    req.Title,    // What the money went to
			Amount:   req.Amount,   // Amount spent
			Category: req.Category, // Free-text category
			Date:     date,         // Expense date
		}
		if err := s.CreateExpense(c.Request.Context(), &expense); err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to create expense")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create expense"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": expense})
	}
}

// UpdateExpenseHandler mutates one of the caller's expenses. The row is
// fetched scoped by owner first, so another user's row reads as missing.
func UpdateExpenseHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse path id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid expense id"})
			return
		}
		var req UpdateExpenseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
			return
		}
		// Ownership guard: fetch scoped by owner before mutating
		expense, err := s.ExpenseByID(c.Request.Context(), uint(id), userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Expense not found"})
			return
		}
		// Apply only the provided fields
		if req.Title != nil {
			expense.Title = *req.Title
		}
		if req.Amount != nil {
			expense.Amount = *req.Amount
		}
		if req.Category != nil {
			expense.Category = *req.Category
		}
		if req.Date != nil {
			parsed, err := parseExpenseDate(*req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date"})
				return
			}
			expense.Date = parsed
		}
		if err := s.UpdateExpense(c.Request.Context(), expense); err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to update expense")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update expense"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": expense})
	}
}

// DeleteExpenseHandler removes one of the caller's expenses
func DeleteExpenseHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse path id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid expense id"})
			return
		}
		// Delete is owner-scoped; a foreign row reads as missing
		if err := s.DeleteExpense(c.Request.Context(), uint(id), userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Expense not found"})
				return
			}
			logrus.WithField("error", err.Error()).Error("Failed to delete expense")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete expense"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Expense deleted"})
	}
}
