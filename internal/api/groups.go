package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

func (a *api) listGroupsHandler(w http.ResponseWriter, r *http.Request) {
	a.jsonResponse(w, r, a.groups.Groups())
}

func (a *api) listFlightsHandler(w http.ResponseWriter, r *http.Request) {
	a.jsonResponse(w, r, a.groups.Flights())
}

type createGroupRequest struct {
	Owner  string `json:"owner"`
	Name   string `json:"name"`
	Needed int    `json:"needed"`
}

func (a *api) createGroupHandler(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	g, err := a.lfg.CreateGroup(r.Context(), req.Owner, req.Name, req.Needed)
	if err != nil {
		a.errorResponse(w, r, matcherStatus(err), err.Error())
		return
	}

	a.jsonResponse(w, r, g)
}

type createFlightRequest struct {
	Owner     string    `json:"owner"`
	Game      string    `json:"game"`
	Details   string    `json:"details"`
	DepartsAt time.Time `json:"departs_at"`
}

func (a *api) createFlightHandler(w http.ResponseWriter, r *http.Request) {
	var req createFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	f, err := a.lfg.CreateFlight(r.Context(), req.Owner, req.Game, req.Details, req.DepartsAt)
	if err != nil {
		a.errorResponse(w, r, matcherStatus(err), err.Error())
		return
	}

	a.jsonResponse(w, r, f)
}

type joinRequest struct {
	User string `json:"user"`
}

func (a *api) joinGroupHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	g, err := a.lfg.JoinGroup(r.Context(), id, req.User)
	if err != nil {
		a.errorResponse(w, r, matcherStatus(err), err.Error())
		return
	}

	a.jsonResponse(w, r, g)
}

func (a *api) joinFlightHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	f, err := a.lfg.JoinFlight(r.Context(), id, req.User)
	if err != nil {
		a.errorResponse(w, r, matcherStatus(err), err.Error())
		return
	}

	a.jsonResponse(w, r, f)
}

type deleteRequest struct {
	Requester string `json:"requester"`
}

func (a *api) deleteGroupHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := a.lfg.DeleteGroup(r.Context(), id, req.Requester); err != nil {
		a.errorResponse(w, r, matcherStatus(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (a *api) deleteFlightHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := a.lfg.DeleteFlight(r.Context(), id, req.Requester); err != nil {
		a.errorResponse(w, r, matcherStatus(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
}

func pathID(r *http.Request) (int64, error) {
	vars := mux.Vars(r)
	return strconv.ParseInt(vars["id"], 10, 64)
}

func matcherStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyLooking):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
