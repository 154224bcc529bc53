package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/cartsync/api/responses"
	pkgAuth "github.com/angelmondragon/cartsync/pkg/auth"
	"github.com/angelmondragon/cartsync/pkg/config"
	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/angelmondragon/cartsync/pkg/logger"
)

const (
	sessionHeader = "X-Session-ID"
	maxSessionLen = 128

	ActorDev = "dev"
)

// Actor resolves who owns the cart from the request credentials:
// Bearer JWT, Telegram Web App initData or a guest session id. Development
// environments fall back to a shared dev actor.
func Actor(cfg *config.Config, logg *logger.Logger) func(http.Handler) http.Handler {
	now := time.Now
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolveActor(cfg, r, now())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithActor(ctx, actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveActor(cfg *config.Config, r *http.Request, now time.Time) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw != "" {
		scheme, credential, _ := strings.Cut(raw, " ")
		credential = strings.TrimSpace(credential)
		if credential == "" {
			return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
		}
		switch strings.ToLower(scheme) {
		case "bearer":
			claims, err := pkgAuth.ParseActorToken(cfg.JWT, credential)
			if err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
			}
			return "user:" + claims.Subject, nil
		case "tma":
			user, err := pkgAuth.ValidateInitData(cfg.Telegram.BotToken, credential, now, cfg.Telegram.MaxAge)
			if err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid telegram init data")
			}
			return "tg:" + strconv.FormatInt(user.ID, 10), nil
		default:
			return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "unsupported authorization scheme")
		}
	}

	if session := strings.TrimSpace(r.Header.Get(sessionHeader)); session != "" {
		if len(session) > maxSessionLen {
			return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session id too long")
		}
		return "session:" + session, nil
	}

	if cfg.App.IsDev() {
		return ActorDev, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "no authentication provided")
}
