package controllers

import (
	"net/http"

	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/internal/notices"
)

// NoticeDrainer hands out pending notices exactly once.
type NoticeDrainer interface {
	Drain() []notices.Notice
}

// NoticeDrain returns and clears the pending user-facing notices.
func NoticeDrain(drainer NoticeDrainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := []notices.Notice{}
		if drainer != nil {
			items = append(items, drainer.Drain()...)
		}
		responses.WriteSuccess(w, items)
	}
}
