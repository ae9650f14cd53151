package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/fina/pkg/ferr"
	"github.com/quatton/fina/pkg/flog"
)

// toHTTP maps a service error onto the response the client sees. Server side
// failures only expose a generic message; the cause goes to the log.
func toHTTP(logger *flog.Logger, op string, err error) error {
	switch ferr.CodeOf(err) {
	case ferr.CodeConflict:
		return huma.Error400BadRequest(ferr.MessageOf(err, "Conflict"))
	case ferr.CodeBadRequest:
		return huma.Error400BadRequest(ferr.MessageOf(err, "Bad request"))
	case ferr.CodeUnauthorized:
		return huma.Error401Unauthorized(ferr.MessageOf(err, "Unauthorized"))
	case ferr.CodeNotFound:
		return huma.Error404NotFound(ferr.MessageOf(err, "Not found"))
	case ferr.CodeUpstream:
		logger.Error("request failed", "op", op, "error", err)
		return huma.Error500InternalServerError(ferr.MessageOf(err, "Internal server error"))
	default:
		logger.Error("request failed", "op", op, "error", err)
		return huma.Error500InternalServerError("Internal server error")
	}
}
