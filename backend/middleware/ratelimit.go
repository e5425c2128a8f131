package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"soroban/backend/utils"
)

// RateLimitMiddleware — лимит с фиксированным окном для дорогих эндпоинтов.
// Дашборд опрашивается клиентом в цикле, без лимита один агрессивный клиент
// съедает весь пул соединений.
func RateLimitMiddleware(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			// Лимитируем по токену, а не по IP: за одним NAT сидит вся школа
			if token := c.Get("Authorization"); token != "" {
				return token
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.TooManyRequests(c, "Rate limit exceeded, slow down")
		},
	})
}
