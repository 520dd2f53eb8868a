package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/cryptopicks/internal/market"
	"github.com/rickgao/cryptopicks/internal/model"
	"github.com/rickgao/cryptopicks/internal/odds"
	"github.com/rickgao/cryptopicks/internal/payout"
	"github.com/rickgao/cryptopicks/internal/selection"
	"github.com/rickgao/cryptopicks/internal/session"
	"github.com/rickgao/cryptopicks/internal/version"
)

// assetView is an asset with its display strings and live flag.
type assetView struct {
	model.Asset
	PriceDisplay  string       `json:"price_display"`
	VolumeDisplay string       `json:"volume_display"`
	Flash         string       `json:"flash,omitempty"`
	Odds          *odds.Quote  `json:"odds,omitempty"`
	Targets       []targetView `json:"targets,omitempty"`
}

// targetView quotes one predicate's target price.
type targetView struct {
	Predicate     string  `json:"predicate"`
	Multiplier    float64 `json:"multiplier"`
	Target        float64 `json:"target"`
	TargetDisplay string  `json:"target_display"`
	Probability   float64 `json:"probability"` // Chance the predicate's side finishes past Target
	AmericanLine  string  `json:"american_line,omitempty"`
}

type sessionView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Stake     float64   `json:"stake"`
}

type picksView struct {
	Picks []model.Pick `json:"picks"`
	Stake float64      `json:"stake"`
}

type toggleRequest struct {
	AssetID   int    `json:"asset_id"`
	Predicate string `json:"predicate"`
}

type toggleView struct {
	Outcome selection.Outcome `json:"outcome"`
	Valid   bool              `json:"valid"` // False when the predicate fell back to 1x
	Picks   []model.Pick      `json:"picks"`
}

type payoutView struct {
	model.PayoutResult
	Picks         int    `json:"picks"`
	PayoutDisplay string `json:"payout_display"`
}

type stakeRequest struct {
	Stake decimal.Decimal `json:"stake"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := struct {
		Status     string            `json:"status"`
		Build      version.BuildInfo `json:"build"`
		Components map[string]any    `json:"components"`
	}{
		Status: "healthy",
		Build:  version.Info(),
		Components: map[string]any{
			"feed": map[string]any{
				"running": s.engine.Running(),
				"ticks":   s.engine.Ticks(),
			},
			"flash":    s.engine.Signal().Stats(),
			"assets":   s.engine.Registry().Len(),
			"sessions": s.sessions.Len(),
			"streams":  s.engine.Hub().Len(),
		},
	}
	if !s.engine.Running() {
		health.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets := s.engine.Registry().List()
	flags := s.engine.Signal().Flags()

	views := make([]assetView, len(assets))
	for i, a := range assets {
		views[i] = newAssetView(a, flags[a.ID])
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "asset id must be an integer")
		return
	}

	a, err := s.engine.Registry().Get(id)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	dir, _ := s.engine.Signal().Current(id)
	view := newAssetView(a, dir)
	q := odds.ForAsset(a, s.cfg.OddsHorizon)
	view.Odds = &q
	view.Targets = s.targets(a)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleFlags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Signal().Flags())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sessionView{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		Stake:     sess.Store().Stake(),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPicks(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, picksView{
		Picks: sess.Store().List(),
		Stake: sess.Store().Stake(),
	})
}

func (s *Server) handleTogglePick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := sess.Store().Toggle(req.AssetID, req.Predicate)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleView{
		Outcome: outcome,
		Valid:   selection.ParsePredicate(req.Predicate).Valid,
		Picks:   sess.Store().List(),
	})
}

func (s *Server) handleRemovePick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	assetID, err := strconv.Atoi(r.PathValue("assetID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "asset id must be an integer")
		return
	}
	if err := sess.Store().Remove(assetID); err != nil {
		s.writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, picksView{
		Picks: sess.Store().List(),
		Stake: sess.Store().Stake(),
	})
}

func (s *Server) handlePayout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	stake := sess.Store().Stake()
	if raw := r.URL.Query().Get("stake"); raw != "" {
		v, err := parseStake(raw)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		stake = v
	}

	picks := sess.Store().List()
	res := payout.Compute(picks, stake)
	if err := checkPayout(res); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payoutView{
		PayoutResult:  res,
		Picks:         len(picks),
		PayoutDisplay: money(res.Payout),
	})
}

func (s *Server) handleSetStake(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req stakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "stake must be a number")
		return
	}
	v, err := checkStake(req.Stake)
	if err == nil {
		err = checkPayout(payout.Compute(sess.Store().List(), v))
	}
	if err == nil {
		err = sess.Store().SetStake(v)
	}
	if err != nil {
		s.writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess.Payout())
}

// targets quotes every predicate in the vocabulary against its own target.
func (s *Server) targets(a model.Asset) []targetView {
	preds := selection.Predicates()
	views := make([]targetView, 0, len(preds))
	for _, pred := range preds {
		target, ok := selection.Target(a, pred)
		if !ok {
			continue
		}
		p := selection.ParsePredicate(pred)
		q := odds.ForLine(a, target, s.cfg.OddsHorizon)

		tv := targetView{
			Predicate:     pred,
			Multiplier:    p.Multiplier,
			Target:        target,
			TargetDisplay: market.FormatPrice(target),
			Probability:   q.Over,
			AmericanLine:  q.OverLine,
		}
		if p.Side == selection.Under {
			tv.Probability = q.Under
			tv.AmericanLine = q.UnderLine
		}
		views = append(views, tv)
	}
	return views
}

// session resolves the {id} path value, writing a 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return nil, false
	}
	return sess, true
}

func newAssetView(a model.Asset, dir model.Direction) assetView {
	return assetView{
		Asset:         a,
		PriceDisplay:  market.FormatPrice(a.BasePrice),
		VolumeDisplay: market.FormatVolume(a.Volume24h),
		Flash:         string(dir),
	}
}

// writeErr maps domain errors to status codes.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrNotFound), errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, selection.ErrInvalidStake):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON encodes v before touching w, so an encode failure is reported as
// a 500 instead of a truncated body under a success status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"internal error"}` + "\n")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
