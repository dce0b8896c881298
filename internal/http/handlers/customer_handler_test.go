package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantgate/internal/models"
)

func TestCreateCustomerProvisionsTenant(t *testing.T) {
	env := newSystemEnv(t)
	env.perms.perms = []models.Permission{
		permFixture(1, "view-users", "tenant"),
		permFixture(2, "edit-users", "tenant"),
	}
	env.addUser(t, "Admin", "admin@example.com", "password123")
	token := env.login(t, "admin@example.com", "password123")

	w := env.request(t, http.MethodPost, "/api/customers", gin.H{
		"name":        "Acme",
		"email":       "acme@example.com",
		"fqdn":        "acme.example.com",
		"permissions": []uint64{1},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, 1, env.prov.provisions)
	require.Len(t, env.hostnames.hostnames, 1)
	assert.Equal(t, "acme.example.com", env.hostnames.hostnames[1].FQDN)

	customer := env.customers.customers[1]
	require.NotNil(t, customer)
	require.Len(t, customer.Permissions, 1)
	assert.Equal(t, "view-users", customer.Permissions[0].Name)

	// Provisioning leaves a trail.
	require.NotEmpty(t, env.audit.entries)
	assert.Equal(t, "customers.provision", env.audit.entries[len(env.audit.entries)-1].Action)
}

func TestCreateCustomerValidation(t *testing.T) {
	env := newSystemEnv(t)
	env.addUser(t, "Admin", "admin@example.com", "password123")
	token := env.login(t, "admin@example.com", "password123")

	cases := []struct {
		name  string
		body  gin.H
		field string
	}{
		{"missing name", gin.H{"email": "a@example.com", "fqdn": "a.example.com"}, "name"},
		{"bad email", gin.H{"name": "A", "email": "nope", "fqdn": "a.example.com"}, "email"},
		{"missing fqdn", gin.H{"name": "A", "email": "a@example.com"}, "fqdn"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.request(t, http.MethodPost, "/api/customers", tc.body, token)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			errs := decodeBody(t, w)["errors"].(map[string]any)
			assert.Contains(t, errs, tc.field)
		})
	}
}

func TestCreateCustomerRejectsTakenEmailAndFQDN(t *testing.T) {
	env := newSystemEnv(t)
	env.addUser(t, "Admin", "admin@example.com", "password123")
	token := env.login(t, "admin@example.com", "password123")

	first := env.request(t, http.MethodPost, "/api/customers", gin.H{
		"name": "Acme", "email": "acme@example.com", "fqdn": "acme.example.com",
	}, token)
	require.Equal(t, http.StatusCreated, first.Code)

	dupEmail := env.request(t, http.MethodPost, "/api/customers", gin.H{
		"name": "Other", "email": "ACME@example.com", "fqdn": "other.example.com",
	}, token)
	require.Equal(t, http.StatusUnprocessableEntity, dupEmail.Code)
	assert.Contains(t, decodeBody(t, dupEmail)["errors"], "email")

	dupFQDN := env.request(t, http.MethodPost, "/api/customers", gin.H{
		"name": "Other", "email": "other@example.com", "fqdn": "Acme.example.com",
	}, token)
	require.Equal(t, http.StatusUnprocessableEntity, dupFQDN.Code)
	assert.Contains(t, decodeBody(t, dupFQDN)["errors"], "fqdn")

	assert.Equal(t, 1, env.prov.provisions)
}

func TestCreateCustomerProvisioningFailure(t *testing.T) {
	env := newSystemEnv(t)
	env.prov.fail = errors.New("mysql unreachable")
	env.addUser(t, "Admin", "admin@example.com", "password123")
	token := env.login(t, "admin@example.com", "password123")

	w := env.request(t, http.MethodPost, "/api/customers", gin.H{
		"name": "Acme", "email": "acme@example.com", "fqdn": "acme.example.com",
	}, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, env.hostnames.hostnames)
	assert.Empty(t, env.customers.customers, "failed provisioning must not strand the customer")

	// With nothing left behind, the same payload succeeds once the fault
	// clears.
	env.prov.fail = nil
	retry := env.request(t, http.MethodPost, "/api/customers", gin.H{
		"name": "Acme", "email": "acme@example.com", "fqdn": "acme.example.com",
	}, token)
	assert.Equal(t, http.StatusCreated, retry.Code, retry.Body.String())
}

func TestShowCustomerReturnsGrantIDs(t *testing.T) {
	env := newSystemEnv(t)
	env.addUser(t, "Admin", "admin@example.com", "password123")
	token := env.login(t, "admin@example.com", "password123")

	customer := &models.Customer{
		Name:  "Acme",
		Email: "acme@example.com",
		Permissions: []models.Permission{
			permFixture(4, "view-users", "tenant"),
			permFixture(9, "edit-users", "tenant"),
		},
	}
	require.NoError(t, env.customers.Create(context.Background(), customer))

	w := env.request(t, http.MethodGet, "/api/customers/1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)

	var ids []float64
	for _, v := range body["permissions"].([]any) {
		ids = append(ids, v.(float64))
	}
	assert.ElementsMatch(t, []float64{4, 9}, ids)

	missing := env.request(t, http.MethodGet, "/api/customers/404", nil, token)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.JSONEq(t, `{"error":"Customer not found"}`, missing.Body.String())
}

func TestUpdateCustomer(t *testing.T) {
	env := newSystemEnv(t)
	env.perms.perms = []models.Permission{
		permFixture(1, "view-users", "tenant"),
		permFixture(2, "edit-users", "tenant"),
	}
	env.addUser(t, "Admin", "admin@example.com", "password123")
	token := env.login(t, "admin@example.com", "password123")

	customer := &models.Customer{Name: "Acme", Email: "acme@example.com"}
	require.NoError(t, env.customers.Create(context.Background(), customer))

	w := env.request(t, http.MethodPut, "/api/customers/1", gin.H{
		"name":        "Acme Corp",
		"permissions": []uint64{2},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored := env.customers.customers[1]
	assert.Equal(t, "Acme Corp", stored.Name)
	require.Len(t, stored.Permissions, 1)
	assert.Equal(t, "edit-users", stored.Permissions[0].Name)
}

func TestCustomerDeletionNotRouted(t *testing.T) {
	env := newSystemEnv(t)
	env.addUser(t, "Admin", "admin@example.com", "password123")
	token := env.login(t, "admin@example.com", "password123")

	customer := &models.Customer{Name: "Acme", Email: "acme@example.com"}
	require.NoError(t, env.customers.Create(context.Background(), customer))

	w := env.request(t, http.MethodDelete, "/api/customers/1", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, env.customers.customers, customer.ID)
}
