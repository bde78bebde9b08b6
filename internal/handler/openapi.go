package handler

import (
	_ "embed"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/labstack/echo/v4"
)

//go:embed static/docs.html
var docsPage string

var pathParam = regexp.MustCompile(`:([A-Za-z0-9_]+)`)

// OpenAPIDocument is the subset of OpenAPI 3.0 the docs page needs: one
// operation per registered route with its path parameters.
type OpenAPIDocument struct {
	OpenAPI    string                                 `json:"openapi"`
	Info       OpenAPIInfo                            `json:"info"`
	Paths      map[string]map[string]OpenAPIOperation `json:"paths"`
	Components OpenAPIComponents                      `json:"components"`
}

type OpenAPIInfo struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

type OpenAPIOperation struct {
	Tags        []string              `json:"tags,omitempty"`
	OperationID string                `json:"operationId"`
	Parameters  []OpenAPIParameter    `json:"parameters,omitempty"`
	Security    []map[string][]string `json:"security,omitempty"`
	Responses   map[string]any        `json:"responses"`
}

type OpenAPIParameter struct {
	Name     string         `json:"name"`
	In       string         `json:"in"`
	Required bool           `json:"required"`
	Schema   map[string]any `json:"schema"`
}

type OpenAPIComponents struct {
	SecuritySchemes map[string]any `json:"securitySchemes"`
}

// OpenAPIHandler serves the generated API description and the docs UI.
type OpenAPIHandler struct {
	Handler
	document *OpenAPIDocument
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler:  NewHandler(s),
		document: BuildOpenAPI(nil, nil),
	}
}

// SetRoutes rebuilds the document once the router has registered every
// route. Paths under a prefix in secured are marked as requiring a bearer
// token.
func (h *OpenAPIHandler) SetRoutes(routes []*echo.Route, secured []string) {
	h.document = BuildOpenAPI(routes, secured)
}

func (h *OpenAPIHandler) Document(c echo.Context, _ *model.EmptyRequest) (*OpenAPIDocument, error) {
	return h.document, nil
}

func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.HTML(http.StatusOK, docsPage)
}

// BuildOpenAPI describes routes. Echo internals (wildcards, HEAD/OPTIONS
// helpers) are skipped.
func BuildOpenAPI(routes []*echo.Route, secured []string) *OpenAPIDocument {
	doc := &OpenAPIDocument{
		OpenAPI: "3.0.3",
		Info:    OpenAPIInfo{Title: "Coffee Shop API", Version: "1.0.0"},
		Paths:   make(map[string]map[string]OpenAPIOperation),
		Components: OpenAPIComponents{
			SecuritySchemes: map[string]any{
				"bearerAuth": map[string]string{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
			},
		},
	}

	sorted := make([]*echo.Route, 0, len(routes))
	for _, r := range routes {
		if r.Method == echo.RouteNotFound || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			continue
		}
		if strings.Contains(r.Path, "*") {
			continue
		}
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Method < sorted[j].Method
	})

	for _, r := range sorted {
		path := pathParam.ReplaceAllString(r.Path, "{$1}")

		op := OpenAPIOperation{
			OperationID: operationID(r),
			Responses: map[string]any{
				"default": map[string]string{"description": "JSON response or errs.HTTPError"},
			},
		}
		if tag := routeTag(r.Path); tag != "" {
			op.Tags = []string{tag}
		}
		for _, m := range pathParam.FindAllStringSubmatch(r.Path, -1) {
			schemaType := "string"
			if m[1] == "id" || strings.HasSuffix(m[1], "_id") {
				schemaType = "integer"
			}
			op.Parameters = append(op.Parameters, OpenAPIParameter{
				Name:     m[1],
				In:       "path",
				Required: true,
				Schema:   map[string]any{"type": schemaType},
			})
		}
		for _, prefix := range secured {
			if strings.HasPrefix(r.Path, prefix) {
				op.Security = []map[string][]string{{"bearerAuth": {}}}
				break
			}
		}

		if doc.Paths[path] == nil {
			doc.Paths[path] = make(map[string]OpenAPIOperation)
		}
		doc.Paths[path][strings.ToLower(r.Method)] = op
	}

	return doc
}

// routeTag groups "/api/v1/<tag>/..." routes; everything else is "system".
func routeTag(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/v1/")
	if !ok {
		return "system"
	}
	tag, _, _ := strings.Cut(rest, "/")
	return tag
}

func operationID(r *echo.Route) string {
	parts := []string{strings.ToLower(r.Method)}
	for _, seg := range strings.Split(r.Path, "/") {
		seg = strings.TrimPrefix(seg, ":")
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "_")
}
