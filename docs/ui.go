package docs

import (
	"github.com/gofiber/fiber/v2"
)

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Mobile top-up gateway - API docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({ url: "/docs/openapi.json", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>`

func Register(r fiber.Router) {
	r.Get("/docs", page)
	r.Get("/docs/openapi.json", openAPIJSON)
}

func page(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(swaggerPage)
}

func openAPIJSON(c *fiber.Ctx) error {
	doc, err := OpenAPI()
	if err != nil {
		return err
	}
	c.Type("json")
	return c.Send(doc)
}
