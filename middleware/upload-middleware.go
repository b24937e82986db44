package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/events"
	"github.com/rayansaffron/storefront/response"
	"github.com/rayansaffron/storefront/upload"
)

const uploadKey = "upload"

type Processor interface {
	Process(ctx context.Context, policy upload.Policy, files map[string][]upload.File) (*upload.Result, error)
}

type EventPublisher interface {
	PublishUpload(ev events.UploadEvent) error
}

// Upload runs the image pipeline over the request's multipart files before
// the route handler. The handler only runs when every file was published.
// Requests that are not multipart pass through with an empty result. The
// upload event goes out only after the handler answered with a 2xx status.
func Upload(proc Processor, policy upload.Policy, route string, bus EventPublisher, log *slog.Logger) fiber.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		const op = "middleware.Upload"

		if !isMultipart(c) {
			c.Locals(uploadKey, &upload.Result{})
			return c.Next()
		}

		form, err := c.MultipartForm()
		if err != nil {
			return response.Error(c, apperr.Errorf(apperr.KindInvalidRequest, op, "malformed multipart body: %v", err))
		}

		result, err := proc.Process(c.UserContext(), policy, upload.FromMultipart(form))
		if err != nil {
			return response.Error(c, err)
		}

		c.Locals(uploadKey, result)
		if err := c.Next(); err != nil {
			return err
		}

		// Only batches the route handler went on to persist are announced.
		if status := c.Response().StatusCode(); result.Summary.TotalFiles == 0 || status < 200 || status >= 300 {
			return nil
		}
		ev := events.UploadEvent{
			Route:     route,
			Assets:    make(map[string][]string, len(result.Assets)),
			PublicIDs: result.PublicIDs(),
			At:        time.Now().UTC(),
		}
		for field := range result.Assets {
			ev.Assets[field] = result.URLs(field)
		}
		if err := bus.PublishUpload(ev); err != nil {
			log.Warn("upload event not published", "route", route, "err", err)
		}
		return nil
	}
}

// UploadResult returns what Upload stored for this request.
func UploadResult(c *fiber.Ctx) *upload.Result {
	if r, ok := c.Locals(uploadKey).(*upload.Result); ok && r != nil {
		return r
	}
	return &upload.Result{}
}

func isMultipart(c *fiber.Ctx) bool {
	ct := strings.ToLower(string(c.Request().Header.ContentType()))
	return strings.HasPrefix(ct, fiber.MIMEMultipartForm)
}
