package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tenantgate/internal/auth"
	"tenantgate/internal/models"
	"tenantgate/internal/rbac"
	"tenantgate/internal/store"
)

// In-memory fakes for the repository interfaces. They stand in for the gorm
// stores in internal/store.

type memUsers struct {
	seq   uint64
	users map[uint64]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[uint64]*models.User)}
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memUsers) FindByID(_ context.Context, id uint64) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, store.ErrNotFound
}

func (s *memUsers) List(_ context.Context) ([]models.User, error) {
	ids := make([]uint64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.users[id])
	}
	return out, nil
}

func (s *memUsers) EmailTaken(_ context.Context, email string, excludeID uint64) (bool, error) {
	for _, user := range s.users {
		if user.Email == email && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUsers) Create(_ context.Context, user *models.User, perms []models.Permission) error {
	s.seq++
	user.ID = s.seq
	user.Permissions = perms
	s.users[user.ID] = user
	return nil
}

func (s *memUsers) Update(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *memUsers) SyncPermissions(_ context.Context, user *models.User, perms []models.Permission) error {
	user.Permissions = perms
	s.users[user.ID] = user
	return nil
}

func (s *memUsers) Delete(_ context.Context, user *models.User) error {
	delete(s.users, user.ID)
	return nil
}

type memPerms struct {
	perms []models.Permission
}

func (s *memPerms) ListByGuard(_ context.Context, guard string) ([]models.Permission, error) {
	var out []models.Permission
	for _, p := range s.perms {
		if p.GuardName == guard {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memPerms) FindByIDs(_ context.Context, ids []uint64) ([]models.Permission, error) {
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	var out []models.Permission
	for _, p := range s.perms {
		if _, ok := set[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memPerms) FindByNames(_ context.Context, names []string) ([]models.Permission, error) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	var out []models.Permission
	for _, p := range s.perms {
		if _, ok := set[p.Name]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type memAudit struct {
	entries []models.AuditLog
}

func (s *memAudit) Append(_ context.Context, entry *models.AuditLog) error {
	entry.ID = uint64(len(s.entries) + 1)
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memAudit) Page(_ context.Context, afterID uint64, limit int, search string) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if afterID > 0 && entry.ID >= afterID {
			continue
		}
		if search != "" && !strings.Contains(entry.Action, search) &&
			!strings.Contains(entry.InitiatorName, search) {
			continue
		}
		out = append(out, entry)
		if len(out) == limit+1 {
			break
		}
	}
	return out, nil
}

type memCustomers struct {
	seq       uint64
	customers map[uint64]*models.Customer
}

func newMemCustomers() *memCustomers {
	return &memCustomers{customers: make(map[uint64]*models.Customer)}
}

func (s *memCustomers) List(_ context.Context) ([]models.Customer, error) {
	ids := make([]uint64, 0, len(s.customers))
	for id := range s.customers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]models.Customer, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.customers[id])
	}
	return out, nil
}

func (s *memCustomers) FindByID(_ context.Context, id uint64) (*models.Customer, error) {
	if customer, ok := s.customers[id]; ok {
		return customer, nil
	}
	return nil, store.ErrNotFound
}

func (s *memCustomers) EmailTaken(_ context.Context, email string, excludeID uint64) (bool, error) {
	for _, customer := range s.customers {
		if customer.Email == email && customer.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memCustomers) Create(_ context.Context, customer *models.Customer) error {
	s.seq++
	customer.ID = s.seq
	s.customers[customer.ID] = customer
	return nil
}

func (s *memCustomers) Update(_ context.Context, customer *models.Customer) error {
	s.customers[customer.ID] = customer
	return nil
}

func (s *memCustomers) SyncPermissions(_ context.Context, customer *models.Customer, perms []models.Permission) error {
	customer.Permissions = perms
	s.customers[customer.ID] = customer
	return nil
}

func (s *memCustomers) Delete(_ context.Context, customer *models.Customer) error {
	delete(s.customers, customer.ID)
	return nil
}

type memHostnames struct {
	seq       uint64
	hostnames map[uint64]*models.Hostname
}

func newMemHostnames() *memHostnames {
	return &memHostnames{hostnames: make(map[uint64]*models.Hostname)}
}

func (s *memHostnames) List(_ context.Context) ([]models.Hostname, error) {
	out := make([]models.Hostname, 0, len(s.hostnames))
	for _, h := range s.hostnames {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memHostnames) FindByID(_ context.Context, id uint64) (*models.Hostname, error) {
	if h, ok := s.hostnames[id]; ok {
		return h, nil
	}
	return nil, store.ErrNotFound
}

func (s *memHostnames) FQDNTaken(_ context.Context, fqdn string, excludeID uint64) (bool, error) {
	for _, h := range s.hostnames {
		if h.FQDN == fqdn && h.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memHostnames) Create(_ context.Context, hostname *models.Hostname) error {
	s.seq++
	hostname.ID = s.seq
	s.hostnames[hostname.ID] = hostname
	return nil
}

func (s *memHostnames) Update(_ context.Context, hostname *models.Hostname) error {
	s.hostnames[hostname.ID] = hostname
	return nil
}

type fakeProvisioner struct {
	hostnames  *memHostnames
	provisions int
	fail       error
}

func (p *fakeProvisioner) Provision(ctx context.Context, customer *models.Customer, fqdn string) (*models.Hostname, error) {
	if p.fail != nil {
		return nil, p.fail
	}
	p.provisions++
	websiteID := uint64(p.provisions)
	hostname := &models.Hostname{
		FQDN:       fqdn,
		WebsiteID:  &websiteID,
		CustomerID: &customer.ID,
	}
	if p.hostnames != nil {
		_ = p.hostnames.Create(ctx, hostname)
	}
	return hostname, nil
}

// testEnv assembles a gin engine over the fakes, mirroring the production
// route layout for one guard.
type testEnv struct {
	engine    *gin.Engine
	users     *memUsers
	perms     *memPerms
	customers *memCustomers
	hostnames *memHostnames
	audit     *memAudit
	prov      *fakeProvisioner
	auth      *auth.Authenticator
	rbac      *rbac.Resolver
}

func newSystemEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		users:     newMemUsers(),
		perms:     &memPerms{},
		customers: newMemCustomers(),
		hostnames: newMemHostnames(),
		audit:     &memAudit{},
	}

	env.auth = auth.New(
		auth.NewTokenIssuer("test-secret", time.Hour),
		auth.NewMemoryRevoker(),
		func(ctx context.Context) (auth.UserStore, error) { return env.users, nil },
		func(ctx context.Context) (auth.UserStore, error) { return nil, auth.ErrNoTenant },
	)
	env.rbac = rbac.New(
		func(ctx context.Context) (rbac.PermissionStore, error) { return env.perms, nil },
		func(ctx context.Context) (rbac.PermissionStore, error) { return nil, auth.ErrNoTenant },
	)

	repos := func(ctx context.Context) (UserRepos, error) {
		return UserRepos{Users: env.users, Perms: env.perms}, nil
	}
	env.prov = &fakeProvisioner{hostnames: env.hostnames}
	prov := env.prov

	r := gin.New()
	api := r.Group("/api")
	systemAuth := auth.Middleware(env.auth, auth.GuardSystem)

	api.GET("/checkTenant", CheckTenant())
	api.POST("/login", Login(env.auth, auth.GuardSystem, env.audit))
	api.POST("/user", systemAuth, Me(env.rbac, auth.GuardSystem))
	api.POST("/logout", systemAuth, Logout(env.auth, auth.GuardSystem, env.audit))
	api.POST("/refresh", systemAuth, Refresh(env.auth, auth.GuardSystem))
	api.GET("/permissions", systemAuth, ListPermissions(env.rbac))

	api.GET("/users", systemAuth, ListUsers(repos))
	api.POST("/users", systemAuth, CreateUser(repos))
	api.GET("/users/:id", systemAuth, ShowUser(repos))
	api.PUT("/users/:id", systemAuth, UpdateUser(repos))
	api.DELETE("/users/:id", systemAuth, DeleteUser(repos))

	api.GET("/customers", systemAuth, ListCustomers(env.customers))
	api.POST("/customers", systemAuth, CreateCustomer(env.customers, env.perms, prov, env.hostnames, env.audit))
	api.GET("/customers/:id", systemAuth, ShowCustomer(env.customers))
	api.PUT("/customers/:id", systemAuth, UpdateCustomer(env.customers, env.perms))

	api.GET("/hostnames", systemAuth, ListHostnames(env.hostnames))
	api.POST("/hostnames", systemAuth, CreateHostname(env.hostnames))
	api.PUT("/hostnames/:id", systemAuth, UpdateHostname(env.hostnames))

	api.GET("/audit", systemAuth, ListAudit(env.audit))

	env.engine = r
	return env
}

func (env *testEnv) addUser(t *testing.T, name, email, password string, perms ...models.Permission) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Name: name, Email: email, PasswordHash: string(hash)}
	require.NoError(t, env.users.Create(context.Background(), user, perms))
	return user
}

func (env *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	w := env.request(t, http.MethodPost, "/api/login", gin.H{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var issued auth.IssuedToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issued))
	return issued.Token
}

func (env *testEnv) request(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func requestWithHost(t *testing.T, engine *gin.Engine, method, path, host string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Host = host
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func tokenFromBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var issued auth.IssuedToken
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issued), w.Body.String())
	return issued.Token
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func permFixture(id uint64, name, guard string) models.Permission {
	return models.Permission{ID: id, Name: name, GuardName: guard}
}
