package auth

import (
	"net/http"

	"github.com/zishang520/socket.io/servers/socket/v3"

	"botpanel/internal/netx"
)

// TokenParam is the query parameter carrying the access token.
const TokenParam = "token"

// RequireToken is a middleware that rejects requests without a valid token
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ValidateToken(r.URL.Query().Get(TokenParam)); !ok {
			_ = netx.WriteUnauthorized(w, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTokenSocketIO is a middleware that checks the handshake token of Socket.IO clients
func RequireTokenSocketIO(client *socket.Socket, next func(*socket.ExtendedError)) {
	token := client.Handshake().Query.Query().Get(TokenParam)
	if _, ok := ValidateToken(token); ok {
		next(nil)
	} else {
		next(socket.NewExtendedError("Unauthorized", ""))
	}
}
