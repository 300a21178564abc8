package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"parklot/internal/domain"
	"parklot/internal/models"
	"parklot/internal/service"
)

func (s *Server) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no authenticated client")
	}
	return actor, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return 0, false
	}
	return id, true
}

func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req service.CreateReservationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reservation, err := s.reservations.Create(r.Context(), actor, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

func (s *Server) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	reservation, err := s.reservations.Get(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (s *Server) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	reservation, err := s.reservations.Cancel(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	holderID := r.URL.Query().Get("holder_id")
	reservations, err := s.reservations.ListForHolder(r.Context(), actor, holderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (s *Server) handleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start and end are required in RFC3339 format")
		return
	}

	var floorID int64
	if raw := r.URL.Query().Get("floor_id"); raw != "" {
		floorID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid floor_id")
			return
		}
	}

	slots, err := s.catalog.AvailableSlots(r.Context(), start, end, floorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.catalog.Slots(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

func (s *Server) handleCreateSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var slot models.Slot
	if err := json.NewDecoder(r.Body).Decode(&slot); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	slot.IsActive = true

	if err := s.catalog.CreateSlot(r.Context(), actor, &slot); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (s *Server) handleListFloors(w http.ResponseWriter, r *http.Request) {
	floors, err := s.catalog.Floors(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"floors": floors})
}

func (s *Server) handleCreateFloor(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var floor models.Floor
	if err := json.NewDecoder(r.Body).Decode(&floor); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.catalog.CreateFloor(r.Context(), actor, &floor); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, floor)
}

// handleReservationReport renders an Excel export of reservations whose
// window starts inside [from, to]. Admin only.
func (s *Server) handleReservationReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	if !actor.Admin {
		writeDomainError(w, domain.ErrForbidden)
		return
	}

	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from is required in YYYY-MM-DD format")
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to is required in YYYY-MM-DD format")
		return
	}
	// The upper bound covers the whole last day.
	to = to.AddDate(0, 0, 1)

	path, err := s.reporter.Generate(r.Context(), from.UTC(), to.UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, path)
}
