package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tenantgate/internal/models"
	"tenantgate/internal/store"
)

func ListHostnames(hostnames HostnameRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := hostnames.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if list == nil {
			list = []models.Hostname{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// CreateHostname adds a directory entry without provisioning. Entries made
// here carry no website and never resolve to a tenant until provisioned.
func CreateHostname(hostnames HostnameRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			FQDN       string  `json:"fqdn" binding:"required,max=255"`
			RedirectTo *string `json:"redirect_to" binding:"omitempty,max=255"`
			ForceHTTPS bool    `json:"force_https"`
		}
		if !bindJSON(c, &input) {
			return
		}
		input.FQDN = strings.TrimSpace(strings.ToLower(input.FQDN))

		taken, err := hostnames.FQDNTaken(c.Request.Context(), input.FQDN, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if taken {
			failField(c, "fqdn", "The fqdn has already been taken.")
			return
		}

		hostname := models.Hostname{
			FQDN:       input.FQDN,
			RedirectTo: input.RedirectTo,
			ForceHTTPS: input.ForceHTTPS,
		}
		if err := hostnames.Create(c.Request.Context(), &hostname); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, hostname)
	}
}

// UpdateHostname edits redirect, https, and maintenance state.
func UpdateHostname(hostnames HostnameRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hostname not found"})
			return
		}
		hostname, err := hostnames.FindByID(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hostname not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var input struct {
			RedirectTo       *string `json:"redirect_to" binding:"omitempty,max=255"`
			ForceHTTPS       *bool   `json:"force_https"`
			UnderMaintenance *bool   `json:"under_maintenance"`
		}
		if !bindJSON(c, &input) {
			return
		}

		if input.RedirectTo != nil {
			hostname.RedirectTo = input.RedirectTo
		}
		if input.ForceHTTPS != nil {
			hostname.ForceHTTPS = *input.ForceHTTPS
		}
		if input.UnderMaintenance != nil {
			if *input.UnderMaintenance {
				if hostname.UnderMaintenanceSince == nil {
					now := time.Now()
					hostname.UnderMaintenanceSince = &now
				}
			} else {
				hostname.UnderMaintenanceSince = nil
			}
		}

		if err := hostnames.Update(c.Request.Context(), hostname); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, hostname)
	}
}
