package handler

import (
	"net/http"

	"github.com/turingcompletejeff/blogsite/internal/utils"
)

type rconCommandRequest struct {
	Command string `json:"command" validate:"required"`
}

type rconResponse struct {
	Response string `json:"response"`
}

// RconCommandHandler runs one console command against the game server.
// JSON in, JSON out; the dashboard calls it from script.
func (h *Handler) RconCommandHandler(w http.ResponseWriter, r *http.Request) {
	var body rconCommandRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response, err := h.Console.Command(body.Command)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, rconResponse{Response: response})
}

func (h *Handler) RconStatusHandler(w http.ResponseWriter, r *http.Request) {
	response, err := h.Console.Status()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, rconResponse{Response: response})
}
