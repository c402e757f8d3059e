// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/lockstake/api/stakes"
	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/metrics"
	"github.com/vechain/lockstake/stake"
	"github.com/vechain/lockstake/token"
)

var logger = log.WithContext("pkg", "api")

// Options tunes the assembled HTTP handler.
type Options struct {
	AllowedOrigins []string
	EnableMetrics  bool
	LogRequests    bool
}

// New assembles the API router.
func New(ledger *stake.Ledger, tokens *token.Ledger, options Options) http.Handler {
	router := mux.NewRouter()
	stakes.New(ledger, tokens).Mount(router, "/stakes")
	if options.EnableMetrics {
		router.Path("/metrics").Methods(http.MethodGet).Handler(metrics.HTTPHandler())
	}

	handler := http.Handler(router)
	if options.LogRequests {
		handler = requestLogger(handler)
	}
	origins := options.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
	)(handler)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"elapsed", time.Since(started),
		)
	})
}
