package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cbodonnell/codenames/pkg/game"
	"github.com/cbodonnell/codenames/pkg/log"
	"github.com/gorilla/mux"
)

func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func HandleCreateGame(gameService *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := gameService.CreateGame()
		if err != nil {
			log.Error("failed to create game: %v", err)
			http.Error(w, "Failed to create game", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"game_id": g.ID})
	}
}

// HandleGetGame returns the unprivileged projection of a game. Hidden
// card types are never served over REST.
func HandleGetGame(gameService *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := mux.Vars(r)["gameID"]
		view, ok := gameService.View(gameID, "")
		if !ok {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func HandleGameExists(gameService *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := mux.Vars(r)["gameID"]
		writeJSON(w, http.StatusOK, map[string]bool{"exists": gameService.Exists(gameID)})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
