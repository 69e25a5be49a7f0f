package api

import (
	"net/http"

	"github.com/vytor/cosmosquiz/internal/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleError renders err as {"error":{"code","message"}} with the status of
// its AppError. Unknown errors become internal errors.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else {
		log.Warn("client error: %v", appErr)
	}

	writeJSON(w, appErr.Status, map[string]errorBody{
		"error": {Code: appErr.Code, Message: appErr.Message},
	})
}
