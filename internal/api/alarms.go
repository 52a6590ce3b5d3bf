package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type upsertAlarmRequest struct {
	User      string `json:"user"`
	Threshold int    `json:"threshold"`
}

type upsertAlarmResponse struct {
	Overrode bool `json:"overrode"`
}

func (a *api) upsertAlarmHandler(w http.ResponseWriter, r *http.Request) {
	var req upsertAlarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if req.User == "" || req.Threshold < 1 {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, "user and a positive threshold are required")
		return
	}

	overrode := a.alarms.Register(req.User, req.Threshold)
	a.jsonResponse(w, r, upsertAlarmResponse{Overrode: overrode})
}

func (a *api) deleteAlarmHandler(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]

	if !a.alarms.Remove(user) {
		a.errorResponse(w, r, http.StatusNotFound, "no alarm registered for user")
		return
	}

	w.WriteHeader(http.StatusOK)
}
