package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/hedgerow/hedgerow-backend/pkg/logger"
)

const cartClientHeader = "X-Cart-Client"

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// CartClientOptions configures the device cookie that scopes a cart.
type CartClientOptions struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// CartClient resolves the cart scope from the X-Cart-Client header, then the
// client cookie. A missing or malformed id is replaced by a fresh uuid and
// issued as a cookie. The scope identifies a device, not a user.
func CartClient(opts CartClientOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.Header.Get(cartClientHeader)
			if !clientIDPattern.MatchString(clientID) {
				clientID = ""
				if cookie, err := r.Cookie(opts.CookieName); err == nil && clientIDPattern.MatchString(cookie.Value) {
					clientID = cookie.Value
				}
			}

			if clientID == "" {
				clientID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     opts.CookieName,
					Value:    clientID,
					Path:     "/",
					MaxAge:   int(opts.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(cartClientHeader, clientID)

			ctx := WithCartClientID(r.Context(), clientID)
			if logg != nil {
				ctx = logg.WithClientID(ctx, clientID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
