package api

import (
	"net/http"
)

type statsResponse struct {
	Events  int `json:"events"`
	Polls   int `json:"polls"`
	Groups  int `json:"groups"`
	Flights int `json:"flights"`
	Alarms  int `json:"alarms"`
}

// statsHandler reports how many records each registry currently tracks.
func (a *api) statsHandler(w http.ResponseWriter, r *http.Request) {
	data := statsResponse{
		Events:  len(a.events.List()),
		Polls:   len(a.polls.List()),
		Groups:  len(a.groups.Groups()),
		Flights: len(a.groups.Flights()),
		Alarms:  a.alarms.Count(),
	}

	a.jsonResponse(w, r, data)
}

func (a *api) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	a.jsonResponse(w, r, a.events.List())
}

func (a *api) listPollsHandler(w http.ResponseWriter, r *http.Request) {
	a.jsonResponse(w, r, a.polls.List())
}
