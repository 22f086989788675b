package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/belovedzguard/beloved-api/pkg/limiter"
	"github.com/belovedzguard/beloved-api/pkg/logger"
	"github.com/belovedzguard/beloved-api/pkg/redact"
)

// LimitExceeded is the body of a 429 from the contact limiter.
type LimitExceeded struct {
	Error      string `json:"error"`
	RetryAfter string `json:"retryAfter"`
	Limit      int    `json:"limit"`
	WindowMs   string `json:"windowMs"`
}

// ContactLimit counts every contact submission per client IP, valid or not,
// and answers 429 once the limit for the window is used up. The standard
// RateLimit-* headers are set on every response. A failing limiter backend
// lets the request through; the outage is logged at most once a minute.
func ContactLimit(l limiter.Limiter, window time.Duration, log logger.Logger) gin.HandlerFunc {
	span := describeWindow(window)
	message := "Too many contact form submissions. Please try again in " + span + "."
	if window == time.Hour {
		message = "Too many contact form submissions. Please try again in an hour."
	}

	outage := &rate.Sometimes{First: 1, Interval: time.Minute}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		d, err := l.Allow(c.Request.Context(), ip)
		if err != nil {
			outage.Do(func() {
				log.WithContext(c.Request.Context()).Error("contact rate limit check failed, allowing requests",
					logger.String("ip", redact.IP(ip)),
					logger.Error(err),
				)
			})
			c.Next()
			return
		}

		reset := ceilSeconds(d.ResetAfter)
		c.Header("RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(reset))

		if !d.Allowed {
			log.WithContext(c.Request.Context()).Warn("contact rate limit exceeded",
				logger.String("ip", redact.IP(ip)),
				logger.Int("limit", d.Limit),
			)
			c.Header("Retry-After", strconv.Itoa(max(reset, 1)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, LimitExceeded{
				Error:      message,
				RetryAfter: span,
				Limit:      d.Limit,
				WindowMs:   span,
			})
			return
		}

		c.Next()
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// describeWindow renders a window the way clients are told about it,
// e.g. "1 hour" or "30 minutes".
func describeWindow(w time.Duration) string {
	switch {
	case w >= time.Hour && w%time.Hour == 0:
		return plural(int(w/time.Hour), "hour")
	case w >= time.Minute && w%time.Minute == 0:
		return plural(int(w/time.Minute), "minute")
	default:
		return plural(ceilSeconds(w), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
