package http

import (
	"fmt"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// OpenAPIPath is where the OpenAPI document is read from, relative to the working directory.
var OpenAPIPath = "api/openapi.yaml"

// swaggerPage renders Swagger UI against the JSON form of the document.
const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>%s</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '/docs/openapi.json', dom_id: '#swagger-ui', tryItOutEnabled: true});
  </script>
</body>
</html>`

// loadOpenAPI reads and validates the document on every call so edits show up
// without a restart.
func loadOpenAPI(c *fiber.Ctx) ([]byte, *openapi3.T, error) {
	raw, err := os.ReadFile(OpenAPIPath)
	if err != nil {
		return nil, nil, err
	}
	doc, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", OpenAPIPath, err)
	}
	if err := doc.Validate(c.UserContext()); err != nil {
		return nil, nil, fmt.Errorf("validate %s: %w", OpenAPIPath, err)
	}
	return raw, doc, nil
}

// SetupDocs registers Swagger UI at /docs and the document at /docs/openapi.yaml
// and /docs/openapi.json.
func SetupDocs(app *fiber.App) {
	docsError := func(c *fiber.Ctx, err error) error {
		if os.IsNotExist(err) {
			return errNotFound(c, "openapi.yaml not found")
		}
		LoggerFromCtx(c.UserContext()).Error("openapi document unusable", "error", err)
		return errInternal(c, "openapi document is invalid")
	}

	app.Get("/docs", func(c *fiber.Ctx) error {
		title := "HotelMap API"
		if _, doc, err := loadOpenAPI(c); err == nil && doc.Info != nil {
			title = doc.Info.Title + " " + doc.Info.Version
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(fmt.Sprintf(swaggerPage, title))
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		raw, _, err := loadOpenAPI(c)
		if err != nil {
			return docsError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(raw)
	})

	app.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		_, doc, err := loadOpenAPI(c)
		if err != nil {
			return docsError(c, err)
		}
		return c.JSON(doc)
	})
}
