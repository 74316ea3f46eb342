package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/econ-dashboard/internal/store"
	"github.com/i474232898/econ-dashboard/internal/view"
)

var validate = validator.New()

// RegisterRoutes wires the dashboard and its JSON API into the Fiber app.
// refresh is the refresh loop interval, used by the page's auto reload.
func RegisterRoutes(app *fiber.App, snapshots *store.MemoryStore, refresh time.Duration) {
	app.Get("/", func(c *fiber.Ctx) error {
		var q rawQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		snap, err := latest(snapshots)
		if err != nil {
			return err
		}
		return renderDashboard(c, snap, view.Raw(snap.Dataset, q.Page), refresh)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/chart", func(c *fiber.Ctx) error {
		snap, err := latest(snapshots)
		if err != nil {
			return err
		}
		return c.JSON(snap.Chart)
	})

	v1.Get("/latest", func(c *fiber.Ctx) error {
		snap, err := latest(snapshots)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"lastUpdated": snap.LastUpdated,
			"rows":        snap.Latest,
		})
	})

	v1.Get("/raw", func(c *fiber.Ctx) error {
		var q rawQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		snap, err := latest(snapshots)
		if err != nil {
			return err
		}
		return c.JSON(view.Raw(snap.Dataset, q.Page))
	})

	v1.Get("/events", func(c *fiber.Ctx) error {
		snap, err := latest(snapshots)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"events": snap.Events})
	})

	v1.Get("/status", func(c *fiber.Ctx) error {
		snap, err := latest(snapshots)
		if err != nil {
			return err
		}
		status := fiber.Map{
			"lastUpdated": snap.LastUpdated,
			"refreshedAt": snap.RefreshedAt,
			"rows":        len(snap.Dataset.Rows),
			"series":      len(snap.Latest),
			"events":      len(snap.Events),
			"refreshes":   snapshots.Published(),
		}
		if snap.StoreErr != nil {
			status["storeError"] = snap.StoreErr.Error()
		}
		return c.JSON(status)
	})
}

func latest(snapshots *store.MemoryStore) (store.Snapshot, error) {
	snap, err := snapshots.Latest()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return snap, fiber.NewError(fiber.StatusServiceUnavailable, "dashboard not refreshed yet")
		}
		return snap, fiber.NewError(fiber.StatusInternalServerError, "failed to read dashboard state")
	}
	return snap, nil
}

// rawQuery holds the raw table page; it defaults to the first page.
type rawQuery struct {
	Page int `validate:"gte=1"`
}

func (q *rawQuery) bind(c *fiber.Ctx) error {
	q.Page = 1
	if s := c.Query("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("page must be an integer")
		}
		q.Page = n
	}
	return validate.Struct(q)
}
