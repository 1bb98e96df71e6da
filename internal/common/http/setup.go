package http

import (
	"net/http"

	"github.com/AlibekovAA/fin-ledger/internal/common/constants"
	"github.com/AlibekovAA/fin-ledger/internal/common/httpmetrics"
	"github.com/AlibekovAA/fin-ledger/internal/common/logger"
)

// BuildBaseHandler wraps handler in the standard middleware chain. Order
// matters: security headers and recovery run outermost, metrics innermost so
// they observe the final status.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(recovery(TraceIDMiddleware(maxRequestSize(metrics.Wrap(handler)))))
}
