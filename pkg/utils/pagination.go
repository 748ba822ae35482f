package util

import "github.com/gofiber/fiber/v2"

const MaxPageLimit = 100

// ParsePagination reads page and limit from the query string. Missing or
// out of range values fall back to page 1 and defaultLimit.
func ParsePagination(c *fiber.Ctx, defaultLimit int64) (page, limit int64) {
	page = int64(c.QueryInt("page", 1))
	limit = int64(c.QueryInt("limit", int(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

func Skip(page, limit int64) int64 {
	return (page - 1) * limit
}
