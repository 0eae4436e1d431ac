package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title Candela API
// @version 0.1
// @description Interactive documentation for the Candela audit-scoring API surface.
// @contact.name Candela Maintainers
// @contact.url https://github.com/candelahq/candela
// @BasePath /

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// openAPIDoc is the hand-maintained fallback served until swag-generated
// docs are wired into the build. It keeps /swagger usable from a plain
// checkout.
const openAPIDoc = `{
  "swagger": "2.0",
  "info": {"title": "Candela API", "version": "0.1"},
  "basePath": "/",
  "paths": {
    "/audits": {
      "post": {"summary": "Submit a scanner results document for confidence scoring"},
      "get": {"summary": "List stored audits, newest first"}
    },
    "/audits/{auditID}": {"get": {"summary": "Get one stored audit envelope"}},
    "/audits/{auditID}/violations": {"get": {"summary": "Get the scored violations of an audit"}},
    "/audits/{auditID}/summary": {"get": {"summary": "Get the aggregate summary of an audit"}},
    "/audits/{baseID}/compare/{headID}": {"get": {"summary": "Compare the summaries of two audits"}},
    "/jobs": {"get": {"summary": "List jobs"}},
    "/jobs/{jobID}": {
      "get": {"summary": "Get a job"},
      "delete": {"summary": "Cancel a job"}
    }
  }
}`

func (s *Server) mountSwagger() {
	s.router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openAPIDoc))
	})
	s.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
