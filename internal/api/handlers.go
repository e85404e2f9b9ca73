package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ghndrx/hearth-mobile-sub001/internal/search"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIssueSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Every combination of query and filters is well-formed input;
	// there is nothing to validate. The search outlives this request,
	// so detach it from the request's cancellation.
	seq := s.session.Issue(context.WithoutCancel(r.Context()), req.Query, search.Filters{
		ChannelID: req.ChannelID,
		AuthorID:  req.AuthorID,
		HasFile:   req.HasFile,
	})
	writeJSON(w, http.StatusAccepted, IssueResponse{Sequence: seq, Status: string(search.StatusSearching)})
}

func (s *Server) handleRefreshSearch(w http.ResponseWriter, r *http.Request) {
	seq := s.session.Refresh(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusAccepted, IssueResponse{Sequence: seq, Status: string(search.StatusSearching)})
}

func (s *Server) handleSearchState(w http.ResponseWriter, _ *http.Request) {
	snap := s.session.Snapshot()
	resp := StateResponse{
		Status:    string(snap.Status),
		Sequence:  snap.Sequence,
		Query:     snap.Query,
		ChannelID: snap.Filters.ChannelID,
		AuthorID:  snap.Filters.AuthorID,
		HasFile:   snap.Filters.HasFile,
		Results:   make([]Result, 0, len(snap.Results)),
	}
	for _, r := range snap.Results {
		resp.Results = append(resp.Results, toWireResult(r))
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFetchMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.db.FetchMessages(r.Context())
	if err != nil {
		s.logger.Error("fetch messages", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "fetch messages")
		return
	}
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toWireMessage(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleIngestMessage(w http.ResponseWriter, r *http.Request) {
	var m Message
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg := fromWireMessage(m)
	if err := s.ingest.IngestMessage(r.Context(), &msg); err != nil {
		s.logger.Error("ingest message", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "ingest message")
		return
	}
	writeJSON(w, http.StatusCreated, toWireMessage(msg))
}

func (s *Server) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	var wire []Message
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msgs := make([]*search.Message, 0, len(wire))
	for _, m := range wire {
		sm := fromWireMessage(m)
		msgs = append(msgs, &sm)
	}
	if err := s.ingest.IngestBatch(r.Context(), msgs); err != nil {
		s.logger.Error("ingest batch", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "ingest batch")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"ingested": len(msgs)})
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.db.ListChannels(r.Context())
	if err != nil {
		s.logger.Error("list channels", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list channels")
		return
	}
	out := make([]Channel, 0, len(channels))
	for _, c := range channels {
		out = append(out, Channel(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	c, err := s.db.LookupChannel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Error("lookup channel", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup channel")
		return
	}
	writeJSON(w, http.StatusOK, Channel(c))
}

func (s *Server) handleIngestChannel(w http.ResponseWriter, r *http.Request) {
	var c Channel
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sc := search.Channel(c)
	if err := s.ingest.IngestChannel(r.Context(), &sc); err != nil {
		s.logger.Error("ingest channel", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "ingest channel")
		return
	}
	writeJSON(w, http.StatusCreated, Channel(sc))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.db.LookupUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Error("lookup user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup user")
		return
	}
	writeJSON(w, http.StatusOK, User(u))
}

func (s *Server) handleIngestUser(w http.ResponseWriter, r *http.Request) {
	var u User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	su := search.User(u)
	if err := s.ingest.IngestUser(r.Context(), &su); err != nil {
		s.logger.Error("ingest user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "ingest user")
		return
	}
	writeJSON(w, http.StatusCreated, User(su))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
