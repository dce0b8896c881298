package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"tenantgate/internal/models"
	"tenantgate/internal/store"
)

func ListCustomers(customers CustomerRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := customers.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if list == nil {
			list = []models.Customer{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// CreateCustomer stores the customer, grants its permission cap, and
// provisions its isolated tenant store behind the given fqdn.
func CreateCustomer(customers CustomerRepo, perms PermissionRepo, prov TenantProvisioner, hostnames HostnameRepo, audit AuditRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name        string   `json:"name" binding:"required,max=255"`
			Email       string   `json:"email" binding:"required,email"`
			FQDN        string   `json:"fqdn" binding:"required,max=255"`
			Permissions []uint64 `json:"permissions"`
		}
		if !bindJSON(c, &input) {
			return
		}
		input.Email = strings.TrimSpace(strings.ToLower(input.Email))
		input.FQDN = strings.TrimSpace(strings.ToLower(input.FQDN))

		taken, err := customers.EmailTaken(c.Request.Context(), input.Email, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if taken {
			failField(c, "email", "The email has already been taken.")
			return
		}

		fqdnTaken, err := hostnames.FQDNTaken(c.Request.Context(), input.FQDN, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if fqdnTaken {
			failField(c, "fqdn", "The fqdn has already been taken.")
			return
		}

		customer := models.Customer{Name: input.Name, Email: input.Email}
		if err := customers.Create(c.Request.Context(), &customer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if len(input.Permissions) > 0 {
			grants, err := perms.FindByIDs(c.Request.Context(), input.Permissions)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if err := customers.SyncPermissions(c.Request.Context(), &customer, grants); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		hostname, err := prov.Provision(c.Request.Context(), &customer, input.FQDN)
		if err != nil {
			// Undo the customer so a retry of the same payload is clean.
			_ = customers.Delete(c.Request.Context(), &customer)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant provisioning failed: " + err.Error()})
			return
		}
		customer.Hostname = hostname

		if audit != nil {
			meta, _ := json.Marshal(map[string]string{"fqdn": input.FQDN})
			_ = audit.Append(c.Request.Context(), &models.AuditLog{
				CustomerID:   &customer.ID,
				Action:       "customers.provision",
				ResourceType: "customer",
				ResourceID:   customer.ID,
				Metadata:     datatypes.JSON(meta),
				IP:           c.ClientIP(),
				UserAgent:    c.GetHeader("User-Agent"),
				CreatedAt:    time.Now(),
			})
		}

		c.JSON(http.StatusCreated, customer)
	}
}

func ShowCustomer(customers CustomerRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, ok := findCustomer(c, customers)
		if !ok {
			return
		}

		ids := make([]uint64, 0, len(customer.Permissions))
		for _, perm := range customer.Permissions {
			ids = append(ids, perm.ID)
		}
		c.JSON(http.StatusOK, gin.H{
			"customer":    customer,
			"permissions": ids,
		})
	}
}

func UpdateCustomer(customers CustomerRepo, perms PermissionRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, ok := findCustomer(c, customers)
		if !ok {
			return
		}

		var input struct {
			Name        *string   `json:"name" binding:"omitempty,max=255"`
			Email       *string   `json:"email" binding:"omitempty,email"`
			Permissions *[]uint64 `json:"permissions"`
		}
		if !bindJSON(c, &input) {
			return
		}

		if input.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*input.Email))
			taken, err := customers.EmailTaken(c.Request.Context(), email, customer.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if taken {
				failField(c, "email", "The email has already been taken.")
				return
			}
			customer.Email = email
		}
		if input.Name != nil {
			customer.Name = *input.Name
		}

		if err := customers.Update(c.Request.Context(), customer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if input.Permissions != nil {
			grants, err := perms.FindByIDs(c.Request.Context(), *input.Permissions)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if err := customers.SyncPermissions(c.Request.Context(), customer, grants); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		c.JSON(http.StatusOK, customer)
	}
}

// Customer deletion is deliberately absent: tearing a tenant down cascades
// into its database and hostname, and that lifecycle is not defined yet.

func findCustomer(c *gin.Context, customers CustomerRepo) (*models.Customer, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return nil, false
	}
	customer, err := customers.FindByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return customer, true
}
