package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/store"
)

// GetActivity handles listing past workflow outcomes, newest first
func GetActivity(activity *store.ActivityRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		results, err := activity.List(limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.ActivityListResponse{
			Activity:   results,
			TotalCount: len(results),
		})
	}
}
