package controllers

import (
	"net/http"

	"github.com/meridianprocure/storefront-backend/api/responses"
	"github.com/meridianprocure/storefront-backend/internal/locations"
)

// ListLocations returns the closed set of serviced delivery locations.
func ListLocations() http.HandlerFunc {
	type locationView struct {
		Slug  string `json:"slug"`
		City  string `json:"city"`
		State string `json:"state"`
		Label string `json:"label"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		all := locations.All()
		views := make([]locationView, 0, len(all))
		for _, loc := range all {
			views = append(views, locationView{
				Slug:  loc.Slug,
				City:  loc.City,
				State: loc.State,
				Label: loc.Label(),
			})
		}
		responses.WriteSuccess(w, views)
	}
}
