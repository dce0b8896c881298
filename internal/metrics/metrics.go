package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LoginAttempts counts logins by guard and outcome ("ok", "denied").
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantgate_login_attempts_total",
		Help: "Login attempts by guard and result.",
	}, []string{"guard", "result"})

	// TenantResolutions counts hostname lookups by outcome ("hit", "miss").
	TenantResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantgate_tenant_resolutions_total",
		Help: "Hostname-to-tenant resolutions by result.",
	}, []string{"result"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
