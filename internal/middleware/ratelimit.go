package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"gatepass-server/internal/utils"
)

// LoginRateLimiter limits login attempts to 100 per 15 minutes per client
// IP, using a fixed in-memory window.
func LoginRateLimiter() gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 15 * time.Minute,
		Limit:  100,
	}
	store := memory.NewStore()

	return mgin.NewMiddleware(limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			utils.TooManyRequests(c, "Too many login attempts from this IP, please try again after 15 minutes")
			c.Abort()
		}),
	)
}
