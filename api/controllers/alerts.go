package controllers

import (
	"net/http"
	"time"

	"github.com/awisniewski/tiredepot-backend/api/responses"
	"github.com/awisniewski/tiredepot-backend/internal/alerts"
	"github.com/awisniewski/tiredepot-backend/pkg/logger"
)

// AlertsPending runs the trigger evaluator on demand so the counter UI can
// show the current report without waiting for the next sweep.
func AlertsPending(evaluator alerts.Evaluator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := evaluator.Evaluate(r.Context(), time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
