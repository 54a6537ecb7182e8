package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"

	"github.com/yogz/colist/internal/services"
)

type contextKey string

const AuthContextKey contextKey = "authorization"

const sessionCookieName = "colist_session"

// session is the signed payload stored in the admin cookie: the event
// slug and the admin key presented when the cookie was set.
type session struct {
	Slug string
	Key  string
}

// SessionCodec signs and reads the admin-session cookie, so a browser
// that visited the plan once with `?key=` stays write-enabled without
// keeping the key in the URL.
type SessionCodec struct {
	codec *securecookie.SecureCookie
}

func NewSessionCodec(hashKey, blockKey []byte) *SessionCodec {
	return &SessionCodec{codec: securecookie.New(hashKey, blockKey)}
}

func (s *SessionCodec) SetSession(w http.ResponseWriter, slug, key string) error {
	encoded, err := s.codec.Encode(sessionCookieName, session{Slug: slug, Key: key})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *SessionCodec) sessionKey(r *http.Request, slug string) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	var stored session
	if err := s.codec.Decode(sessionCookieName, cookie.Value, &stored); err != nil {
		return ""
	}
	if stored.Slug != slug {
		return ""
	}
	return stored.Key
}

// ExtractAuth collects the caller's capabilities into the request
// context: the admin key from `key` query param, `X-Admin-Key` header or
// the signed session cookie, and the guest token from the Authorization
// bearer header or `token` query param.
func ExtractAuth(sessions *SessionCodec, slugParam func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := services.Authorization{
				Key:   r.URL.Query().Get("key"),
				Token: r.URL.Query().Get("token"),
			}
			if auth.Key == "" {
				auth.Key = r.Header.Get("X-Admin-Key")
			}
			if auth.Key == "" && sessions != nil {
				auth.Key = sessions.sessionKey(r, slugParam(r))
			}
			if auth.Token == "" {
				if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
					auth.Token = strings.TrimPrefix(header, "Bearer ")
				}
			}

			ctx := context.WithValue(r.Context(), AuthContextKey, auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAuth returns the capabilities ExtractAuth stored on the context.
func GetAuth(ctx context.Context) services.Authorization {
	auth, _ := ctx.Value(AuthContextKey).(services.Authorization)
	return auth
}

// RequestMeta captures the audit fields from the request.
func RequestMeta(r *http.Request) services.RequestMeta {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	} else if comma := strings.IndexByte(ip, ','); comma >= 0 {
		ip = strings.TrimSpace(ip[:comma])
	}
	return services.RequestMeta{
		IP:        ip,
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	}
}
