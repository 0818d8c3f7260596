package network

import (
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"github.com/ulule/limiter"
	"github.com/ulule/limiter/drivers/store/memory"

	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/metrics"
	"boscoin.io/feedback/lib/network/httputils"
)

func RecoverMiddleware(printStack bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", r)
					}
					httputils.WriteJSON(
						w,
						http.StatusInternalServerError,
						httputils.NewStatusProblem(http.StatusInternalServerError).SetDetail(err.Error()),
					)
					log.Error("recover an panic", "err", err)
					if printStack {
						debug.PrintStack()
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMiddleware counts the requests by route template, method and
// status.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		writer := NewHTTP2ResponseLog15Writer(w)
		next.ServeHTTP(writer, r)

		metrics.API.Observe(begin, endpoint, r.Method, writer.Status())
	})
}

func CORSMiddleware() mux.MiddlewareFunc {
	return mux.MiddlewareFunc(ghandlers.CORS(
		ghandlers.AllowedOrigins([]string{"*"}),
		ghandlers.AllowedMethods([]string{"GET", "POST"}),
		ghandlers.AllowedHeaders([]string{"Content-Type", "X-Requested-With", "Cache-Control", "Access-Control", HeaderKeyRequestID}),
	))
}

type rateLimiter struct {
	logger    logging.Logger
	byDefault *limiter.Limiter
	byIP      map[string]*limiter.Limiter
}

func newLimiter(rate limiter.Rate) *limiter.Limiter {
	// zero limit is unlimited
	if rate.Limit < 1 {
		return nil
	}

	return limiter.New(memory.NewStore(), rate)
}

//
// RateLimitMiddleware limits the requests per client ip. The ip addresses
// of `rule.ByIPAddress` get their own rate, the others share
// `rule.Default`. The rejected requests get `429 Too Many Requests`.
//
func RateLimitMiddleware(logger logging.Logger, rule common.RateLimitRule) mux.MiddlewareFunc {
	rl := rateLimiter{
		logger:    logger,
		byDefault: newLimiter(rule.Default),
		byIP:      map[string]*limiter.Limiter{},
	}
	for ip, rate := range rule.ByIPAddress {
		rl.byIP[ip] = newLimiter(rate)
	}

	return rl.middleware
}

func (rl rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := remoteIP(r)

		l, found := rl.byIP[ip]
		if !found {
			l = rl.byDefault
		}
		if l == nil {
			next.ServeHTTP(w, r)
			return
		}

		context, err := l.Get(r.Context(), ip)
		if err != nil {
			rl.logger.Error("failed to get rate limit", "ip", ip, "error", err)
			httputils.WriteError(w, err)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(context.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(context.Remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(context.Reset, 10))

		if context.Reached {
			rl.logger.Debug("rate limit reached", "ip", ip, "limit", context.Limit)
			httputils.WriteJSON(w, http.StatusTooManyRequests, httputils.NewStatusProblem(http.StatusTooManyRequests))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
