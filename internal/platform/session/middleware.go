package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CookieName is the session id cookie.
const CookieName = "auth_session"

const contextKey = "session"

// Middleware loads the request's session from the cookie (or starts a fresh
// one) and exposes it through the gin context.
//
// A dirty session is committed just before the first byte of the response
// is written. Committing that early is required because the session id can
// change mid-handler (login regenerates it) and the Set-Cookie header must
// go out before the body does.
func Middleware(store *Store, log zerolog.Logger, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *Session

		if id, err := c.Cookie(CookieName); err == nil && id != "" {
			loaded, err := store.Load(c.Request.Context(), id)
			switch {
			case err == nil:
				sess = loaded
			case errors.Is(err, ErrSessionNotFound):
				// 期限切れまたは不正なIDはそのまま新しいセッションに差し替える
			default:
				log.Error().Err(err).Msg("failed to load session")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
		}
		if sess == nil {
			sess = store.New()
		}

		cw := &commitWriter{
			ResponseWriter: c.Writer,
			gc:             c,
			sess:           sess,
			store:          store,
			secure:         secure,
			log:            log,
		}
		c.Writer = cw

		c.Set(contextKey, sess)
		c.Next()

		// Handlers that wrote nothing (pure status responses) still need the
		// session committed.
		cw.commit()
	}
}

// commitWriter saves the session and sets the cookie immediately before the
// response starts.
type commitWriter struct {
	gin.ResponseWriter
	gc        *gin.Context
	sess      *Session
	store     *Store
	secure    bool
	log       zerolog.Logger
	committed bool
}

func (w *commitWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true

	if !w.sess.Dirty() {
		return
	}
	if err := w.store.Save(w.gc.Request.Context(), w.sess); err != nil {
		w.log.Error().Err(err).Msg("failed to save session")
		return
	}
	http.SetCookie(w.ResponseWriter, &http.Cookie{
		Name:     CookieName,
		Value:    w.sess.ID,
		Path:     "/",
		Secure:   w.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (w *commitWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *commitWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

// FromContext returns the request's session. It panics when the session
// middleware is not installed, which is a routing bug, not a runtime
// condition.
func FromContext(c *gin.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		panic("session middleware not installed")
	}
	return v.(*Session)
}
