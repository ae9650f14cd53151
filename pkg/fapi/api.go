// Package fapi assembles the HTTP API: a chi router with huma on top.
package fapi

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	Title   = "fina API"
	Version = "1.0.0"
)

type Api struct {
	Api    huma.API
	Router *chi.Mux
}

// NewApi builds the router. With corsOrigins set, browser clients from those
// origins ("*" for any) may call the API with credentials.
func NewApi(corsOrigins ...string) *Api {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	if len(corsOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	return &Api{Api: humachi.New(router, Config()), Router: router}
}

// Config is the huma configuration shared by the server and the openapi
// command, so both describe the same document.
func Config() huma.Config {
	config := huma.DefaultConfig(Title, Version)

	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "Access token from /auth/login, /auth/signup or the OAuth callback",
		},
	}
	return config
}
