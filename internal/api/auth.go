package api

import (
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes
	"strings"  // Email normalization

	"asset_tracker/internal/domain" // Importing domain models
	"asset_tracker/internal/store"  // Persistence interface
	"asset_tracker/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// Request struct for signup
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`   // Login email must be provided
	Password string `json:"password" binding:"required,min=8"` // Password must be at least 8 chars
	Name     string `json:"name" binding:"required"`          // Display name must be provided
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// SignupHandler registers a new user and returns a bearer token
func SignupHandler(s store.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Signup failed"})
			return
		}
		// Create user with lowercase email to ensure uniqueness
		user := domain.User{
			Email:    strings.ToLower(req.Email), // Normalized login email
			Password: string(hash),               // Bcrypt hash
			Name:     req.Name,                   // Display name
			Role:     "user",                     // Default role
		}
		// Attempt to create the user in the database
		if err := s.CreateUser(c.Request.Context(), &user); err != nil {
			// Duplicate email is a conflict, everything else is opaque
			if errors.Is(err, store.ErrDuplicateEmail) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exists"})
				return
			}
			logrus.WithField("error", err.Error()).Error("Signup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Signup failed"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
			return
		}
		// Return the token and the public user projection
		c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": user.Public()})
	}
}

// LoginHandler authenticates a user and returns a bearer token.
// Unknown email and wrong password produce the identical response so the
// endpoint cannot be used to enumerate accounts.
func LoginHandler(s store.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
			return
		}
		// Fetch user from database
		user, err := s.UserByEmail(c.Request.Context(), strings.ToLower(req.Email))
		if err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": user.Public()})
	}
}

// ProfileHandler returns the authenticated user's public projection.
// Serves both GET /api/auth/me and GET /api/auth/profile.
func ProfileHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		user, err := s.UserByID(c.Request.Context(), userID) // Fetch user from database
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Public()})
	}
}

// Request struct for profile updates; absent fields are left untouched
type UpdateProfileRequest struct {
	Name     string `json:"name"`     // New display name
	Email    string `json:"email"`    // New login email
	Password string `json:"password"` // New password, re-hashed when set
}

// UpdateProfileHandler updates the provided profile fields
func UpdateProfileHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
			return
		}
		user, err := s.UserByID(c.Request.Context(), userID) // Fetch current row
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		// Apply only the provided fields
		if req.Name != "" {
			user.Name = req.Name
		}
		if req.Email != "" {
			user.Email = strings.ToLower(req.Email)
		}
		if req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Profile update failed"})
				return
			}
			user.Password = string(hash)
		}
		// Persist the update
		if err := s.UpdateUser(c.Request.Context(), user); err != nil {
			if errors.Is(err, store.ErrDuplicateEmail) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email already in use"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Profile update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Profile update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated", "user": user.Public()})
	}
}
