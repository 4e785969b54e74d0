package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/history"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

var validate = domain.NewValidator()

// bind parses the JSON body into dst and runs its validate tags.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"error": err.Error()})
	}
	if err := validate.Struct(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", domain.ValidationDetails(err))
	}
	return nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryBool(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError("invalid date", map[string]any{key: raw})
}

func historyQuery(c *fiber.Ctx) (history.Query, error) {
	from, err := queryTime(c, "dateFrom")
	if err != nil {
		return history.Query{}, err
	}
	to, err := queryTime(c, "dateTo")
	if err != nil {
		return history.Query{}, err
	}
	return history.Query{
		Action:  domain.HistoryAction(c.Query("action")),
		ActorID: c.Query("userId"),
		From:    from,
		To:      to,
		Offset:  queryInt(c, "offset", 0),
		Limit:   queryInt(c, "limit", 0),
	}, nil
}
