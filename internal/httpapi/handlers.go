package httpapi

import (
	"net/http"

	"github.com/julianstephens/habitd/internal/counters"
	"github.com/julianstephens/habitd/internal/habits"
)

// Habits

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	in, err := decodePayload[habits.Input](r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	habit, err := s.habits.Create(r.Context(), OwnerFromContext(r.Context()), in)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, habit)
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	list, err := s.habits.List(r.Context(), OwnerFromContext(r.Context()))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) handleHabitTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.habits.ListTree(r.Context(), OwnerFromContext(r.Context()))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tree)
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	habit, err := s.habits.Get(r.Context(), OwnerFromContext(r.Context()), pathID(r))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, habit)
}

func (s *Server) handleEditHabit(w http.ResponseWriter, r *http.Request) {
	in, err := decodePayload[habits.Input](r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	habit, err := s.habits.Edit(r.Context(), OwnerFromContext(r.Context()), pathID(r), in)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, habit)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := s.habits.Delete(r.Context(), OwnerFromContext(r.Context()), pathID(r)); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkDone(w http.ResponseWriter, r *http.Request) {
	completion, err := s.habits.MarkDone(r.Context(), OwnerFromContext(r.Context()), pathID(r))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, completion)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	current, err := s.habits.CurrentStreak(r.Context(), OwnerFromContext(r.Context()), id)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"habit_id": id, "current_streak": current})
}

// Interests

type selectRequest struct {
	Names []string `json:"names"`
}

type manageRequest struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

type customRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"categories": s.interests.Catalog(),
		"areas":      s.interests.Areas(),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.interests.Options())
}

func (s *Server) handleListInterests(w http.ResponseWriter, r *http.Request) {
	list, err := s.interests.List(r.Context(), OwnerFromContext(r.Context()))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) handleSelectInterests(w http.ResponseWriter, r *http.Request) {
	req, err := decodePayload[selectRequest](r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	list, err := s.interests.Select(r.Context(), OwnerFromContext(r.Context()), req.Names)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, list)
}

func (s *Server) handleManageInterests(w http.ResponseWriter, r *http.Request) {
	req, err := decodePayload[manageRequest](r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	list, err := s.interests.Manage(r.Context(), OwnerFromContext(r.Context()), req.Add, req.Remove)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddCustomInterest(w http.ResponseWriter, r *http.Request) {
	req, err := decodePayload[customRequest](r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	interest, err := s.interests.AddCustom(r.Context(), OwnerFromContext(r.Context()), req.Name, req.Icon)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, interest)
}

func (s *Server) handleRemoveInterest(w http.ResponseWriter, r *http.Request) {
	if err := s.interests.Remove(r.Context(), OwnerFromContext(r.Context()), pathID(r)); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Counters

func (s *Server) handleCreateCounter(w http.ResponseWriter, r *http.Request) {
	in, err := decodePayload[counters.Input](r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	c, err := s.counters.Create(r.Context(), OwnerFromContext(r.Context()), in)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCounters(w http.ResponseWriter, r *http.Request) {
	list, err := s.counters.List(r.Context(), OwnerFromContext(r.Context()))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetCounter(w http.ResponseWriter, r *http.Request) {
	c, err := s.counters.Get(r.Context(), OwnerFromContext(r.Context()), pathID(r))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCounter(w http.ResponseWriter, r *http.Request) {
	in, err := decodePayload[counters.Input](r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	c, err := s.counters.Update(r.Context(), OwnerFromContext(r.Context()), pathID(r), in)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (s *Server) handleResetCounter(w http.ResponseWriter, r *http.Request) {
	c, err := s.counters.Reset(r.Context(), OwnerFromContext(r.Context()), pathID(r))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCounter(w http.ResponseWriter, r *http.Request) {
	if err := s.counters.Delete(r.Context(), OwnerFromContext(r.Context()), pathID(r)); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
