package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shadowbook/platform/internal/infra"
	"github.com/shadowbook/platform/internal/market"
)

// HealthHandler returns a health check endpoint. Alongside database
// reachability it reports the market snapshot age, so operators can
// spot a stalled feed before decisions go out on dead prices.
func HealthHandler(pool *pgxpool.Pool, cache *market.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := infra.HealthCheck(r.Context(), pool)
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":             "healthy",
			"market_age_seconds": cache.Age().Seconds(),
		})
	}
}
