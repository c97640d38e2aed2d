package doc

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
)

// Server is one entry of the OpenAPI servers list.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

type documentation struct {
	environment string
	servers     []Server
}

func (d *documentation) serveSwaggerJSON(c *gin.Context) {
	originalJSON, err := swag.ReadDoc()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read Swagger doc"})
		return
	}

	var swaggerData map[string]interface{}
	if err := json.Unmarshal([]byte(originalJSON), &swaggerData); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse Swagger doc"})
		return
	}

	swaggerData["servers"] = d.servers
	swaggerData["x-environment"] = d.environment

	modifiedJSON, err := json.Marshal(swaggerData)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate modified Swagger doc"})
		return
	}

	c.Data(http.StatusOK, "application/json", modifiedJSON)
}

// serversFor lists the local server plus the public one outside development.
func serversFor(environment, host, port, publicURL string) []Server {
	servers := []Server{{
		URL:         fmt.Sprintf("http://%s:%s/api/v1", host, port),
		Description: "Local Development Server",
	}}
	if environment != "development" && publicURL != "" {
		servers = append(servers, Server{
			URL:         publicURL,
			Description: fmt.Sprintf("%s server", environment),
		})
	}
	return servers
}

const elementsHTML = `
<!DOCTYPE html>
<html>
<head>
    <title>Niyenin Catalog API Documentation</title>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <script src="https://unpkg.com/@stoplight/elements/web-components.min.js"></script>
    <link rel="stylesheet" href="https://unpkg.com/@stoplight/elements/styles.min.css">
    <style>
        body { margin: 0; padding: 0; height: 100vh; }
        elements-api { height: 100%; }
    </style>
</head>
<body>
    <elements-api
        apiDescriptionUrl="/swagger/doc.json"
        router="hash"
        layout="sidebar"
        tryItCredentialsPolicy="include"
        tryItCorsProxy=""
        hideInternal="false"
    ></elements-api>
</body>
</html>`

func serveElements(c *gin.Context) {
	c.Header("Content-Type", "text/html")
	c.String(http.StatusOK, elementsHTML)
}

// Init mounts the Swagger JSON and the Stoplight Elements viewer.
func Init(r *gin.Engine, environment, host, port, publicURL string) {
	d := &documentation{
		environment: environment,
		servers:     serversFor(environment, host, port, publicURL),
	}
	r.GET("/swagger/doc.json", d.serveSwaggerJSON)
	r.GET("/docs/*any", serveElements)
}
