// Package requestid assigns every request an identifier that is echoed in the
// response and carried through logs and audit events.
package requestid

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"docverify/pkg/requestcontext"
)

// Header is the request and response header carrying the ID.
const Header = "X-Request-ID"

const maxInboundLength = 64

// Middleware reuses a well-formed inbound X-Request-ID or generates a new one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if id == "" || len(id) > maxInboundLength || strings.ContainsAny(id, "\r\n") {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), id)))
	})
}
