package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"tenantgate/internal/models"
	"tenantgate/internal/store"
)

// The user CRUD is guard-agnostic: the accessor hands back repositories
// bound to the system store or to the request's tenant store, and the
// handlers behave identically on either.

func ListUsers(repos UserRepoAccessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		rp, err := repos(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		users, err := rp.Users.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if users == nil {
			users = []models.User{}
		}
		c.JSON(http.StatusOK, users)
	}
}

// ShowUser returns the user plus the ids of its effective direct and
// role-derived grants, so a created permission set reads back intact.
func ShowUser(repos UserRepoAccessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		rp, err := repos(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, ok := findUser(c, rp)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":        user,
			"permissions": permissionIDs(user),
		})
	}
}

func CreateUser(repos UserRepoAccessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		rp, err := repos(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input struct {
			Name        string   `json:"name" binding:"required,max=255"`
			Email       string   `json:"email" binding:"required,email"`
			Password    string   `json:"password" binding:"required,min=8"`
			Permissions []uint64 `json:"permissions"`
		}
		if !bindJSON(c, &input) {
			return
		}
		input.Email = strings.TrimSpace(strings.ToLower(input.Email))

		taken, err := rp.Users.EmailTaken(c.Request.Context(), input.Email, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if taken {
			failField(c, "email", "The email has already been taken.")
			return
		}

		perms, err := rp.Perms.FindByIDs(c.Request.Context(), input.Permissions)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		user := models.User{
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: string(hash),
		}
		if err := rp.Users.Create(c.Request.Context(), &user, perms); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

func UpdateUser(repos UserRepoAccessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		rp, err := repos(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, ok := findUser(c, rp)
		if !ok {
			return
		}

		var input struct {
			Name        *string   `json:"name" binding:"omitempty,max=255"`
			Email       *string   `json:"email" binding:"omitempty,email"`
			Password    *string   `json:"password" binding:"omitempty,min=8"`
			Permissions *[]uint64 `json:"permissions"`
		}
		if !bindJSON(c, &input) {
			return
		}

		if input.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*input.Email))
			taken, err := rp.Users.EmailTaken(c.Request.Context(), email, user.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if taken {
				failField(c, "email", "The email has already been taken.")
				return
			}
			user.Email = email
		}
		if input.Name != nil {
			user.Name = *input.Name
		}
		if input.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
				return
			}
			user.PasswordHash = string(hash)
		}

		if err := rp.Users.Update(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if input.Permissions != nil {
			perms, err := rp.Perms.FindByIDs(c.Request.Context(), *input.Permissions)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if err := rp.Users.SyncPermissions(c.Request.Context(), user, perms); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		c.JSON(http.StatusOK, user)
	}
}

func DeleteUser(repos UserRepoAccessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		rp, err := repos(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, ok := findUser(c, rp)
		if !ok {
			return
		}

		if err := rp.Users.Delete(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, "Deleted")
	}
}

func findUser(c *gin.Context, rp UserRepos) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	user, err := rp.Users.FindByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return user, true
}

func permissionIDs(user *models.User) []uint64 {
	seen := make(map[uint64]struct{})
	ids := make([]uint64, 0, len(user.Permissions))
	add := func(id uint64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, perm := range user.Permissions {
		add(perm.ID)
	}
	for _, role := range user.Roles {
		for _, perm := range role.Permissions {
			add(perm.ID)
		}
	}
	return ids
}
