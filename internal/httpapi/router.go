package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/andrewkomo/moon-chess/internal/game"
	"github.com/andrewkomo/moon-chess/internal/match"
	"github.com/andrewkomo/moon-chess/internal/notation"
	"github.com/andrewkomo/moon-chess/internal/rules"
)

const maxBodyBytes = 1 << 16

// Handler serves the game API.
type Handler struct {
	mgr *match.Manager
	log zerolog.Logger
}

// NewRouter creates the HTTP router for the game API.
func NewRouter(log zerolog.Logger, mgr *match.Manager) http.Handler {
	h := &Handler{
		mgr: mgr,
		log: log.With().Str("component", "httpapi").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(AccessLog(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Route("/v1/games", func(r chi.Router) {
		r.Get("/", h.listGames)
		r.Post("/", h.createGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getGame)
			r.Post("/moves", h.move)
			r.Post("/resign", h.resign)
			r.Post("/draw", h.draw)
			r.Post("/timeout", h.timeout)
			r.Get("/pgn", h.pgn)
			r.Get("/ws", h.watch)
		})
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type createRequest struct {
	Name  string `json:"name"`
	White string `json:"white"`
	Black string `json:"black"`
	FEN   string `json:"fen"`

	// Seconds; zero takes the server default.
	WhiteTime  float64 `json:"white_time"`
	BlackTime  float64 `json:"black_time"`
	WhiteBonus float64 `json:"white_bonus"`
	BlackBonus float64 `json:"black_bonus"`
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func (h *Handler) createGame(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	for _, v := range []float64{req.WhiteTime, req.BlackTime, req.WhiteBonus, req.BlackBonus} {
		if v < 0 {
			writeError(w, http.StatusBadRequest, "clock values must not be negative")
			return
		}
	}
	if req.FEN != "" {
		if _, _, err := rules.ParseFEN(req.FEN); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	g, err := h.mgr.Create(r.Context(), game.Options{
		Name:       req.Name,
		White:      req.White,
		Black:      req.Black,
		FEN:        req.FEN,
		WhiteTime:  seconds(req.WhiteTime),
		BlackTime:  seconds(req.BlackTime),
		WhiteBonus: seconds(req.WhiteBonus),
		BlackBonus: seconds(req.BlackBonus),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ToGameResponse(g, h.mgr.Now()))
}

func (h *Handler) listGames(w http.ResponseWriter, r *http.Request) {
	ids, err := h.mgr.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": ids})
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.mgr.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToGameResponse(g, h.mgr.Now()))
}

// moveRequest carries exactly one of a packed move code, a UCI move or a
// SAN move.
type moveRequest struct {
	Code *uint16 `json:"code"`
	UCI  string  `json:"uci"`
	SAN  string  `json:"san"`
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	given := 0
	for _, set := range []bool{req.Code != nil, req.UCI != "", req.SAN != ""} {
		if set {
			given++
		}
	}
	if given != 1 {
		writeError(w, http.StatusBadRequest, "give exactly one of code, uci or san")
		return
	}

	id := chi.URLParam(r, "id")
	var (
		g   *game.Game
		res game.Result
		err error
	)
	switch {
	case req.Code != nil:
		g, res, err = h.mgr.Move(r.Context(), id, rules.Move(*req.Code))
	case req.UCI != "":
		g, res, err = h.mgr.MoveUCI(r.Context(), id, req.UCI)
	default:
		g, res, err = h.mgr.MoveSAN(r.Context(), id, req.SAN)
	}
	h.respond(w, r, g, res, err)
}

type colorRequest struct {
	Color string `json:"color"`
	Offer *bool  `json:"offer"`
}

func parseColor(s string) (rules.Color, bool) {
	switch s {
	case "white", "w":
		return rules.White, true
	case "black", "b":
		return rules.Black, true
	}
	return rules.White, false
}

func (h *Handler) resign(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := parseColor(req.Color)
	if !ok {
		writeError(w, http.StatusBadRequest, "color must be white or black")
		return
	}
	g, res, err := h.mgr.Resign(r.Context(), chi.URLParam(r, "id"), c)
	h.respond(w, r, g, res, err)
}

func (h *Handler) draw(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if !decode(w, r, &req) {
		return
	}
	c, ok := parseColor(req.Color)
	if !ok {
		writeError(w, http.StatusBadRequest, "color must be white or black")
		return
	}
	offer := true
	if req.Offer != nil {
		offer = *req.Offer
	}
	g, res, err := h.mgr.UpdateDraw(r.Context(), chi.URLParam(r, "id"), c, offer)
	h.respond(w, r, g, res, err)
}

func (h *Handler) timeout(w http.ResponseWriter, r *http.Request) {
	g, res, err := h.mgr.ClaimTimeout(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, g, res, err)
}

func (h *Handler) pgn(w http.ResponseWriter, r *http.Request) {
	g, err := h.mgr.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-chess-pgn")
	if err := notation.WritePGN(w, g); err != nil {
		h.log.Error().Err(err).Str("game", g.ID).Msg("write pgn")
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, g *game.Game, res game.Result, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MoveResult{
		Outcome: res.String(),
		Game:    ToGameResponse(g, h.mgr.Now()),
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Msg("request failed")
	}
	writeError(w, status, err.Error())
}

// decode reads a JSON body into v. An empty body leaves v zeroed.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}
