package http

import (
	_ "embed"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/swaggo/swag"
)

//go:embed swagger.json
var swaggerJSON string

type swaggerDoc struct{}

func (swaggerDoc) ReadDoc() string { return swaggerJSON }

func init() {
	swag.Register(swag.Name, swaggerDoc{})
}

// RegisterSwaggerDocs registers Swagger documentation routes
func RegisterSwaggerDocs(router *mux.Router) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler())
}

func swaggerHandler() http.Handler {
	return httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))
}
