package farms

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"herd-registry/internal/domain/movements"
	"herd-registry/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/farms", func(fr chi.Router) {
		fr.Post("/", createFarmHandler(svc))
		fr.Get("/{farmID}", getFarmHandler(svc))
		fr.Post("/{farmID}/members", addMemberHandler(svc))
		fr.Get("/{farmID}/members", listMembersHandler(svc))
		fr.Post("/{farmID}/paddocks", createPaddockHandler(svc))
		fr.Get("/{farmID}/paddocks", listPaddocksHandler(svc))
	})

	r.Route("/paddocks/{paddockID}/lots", func(pr chi.Router) {
		pr.Post("/", createLotHandler(svc))
		pr.Get("/", listLotsHandler(svc))
	})

	r.Route("/lots/{lotID}", func(lr chi.Router) {
		lr.Patch("/status", setLotStatusHandler(svc))
		lr.Post("/move", moveLotHandler(svc))
	})
}

type farmResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type memberResponse struct {
	FarmID    string    `json:"farm_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type paddockResponse struct {
	ID        string    `json:"id"`
	FarmID    string    `json:"farm_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type lotResponse struct {
	ID        string    `json:"id"`
	PaddockID string    `json:"paddock_id"`
	Name      string    `json:"name"`
	Status    LotStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type lotMovementResponse struct {
	ID      string    `json:"id"`
	LotID   string    `json:"lot_id"`
	FromID  *string   `json:"from_id,omitempty"`
	ToID    string    `json:"to_id"`
	MovedAt time.Time `json:"moved_at"`
	Reason  string    `json:"reason,omitempty"`
	MovedBy string    `json:"moved_by"`
}

func createFarmHandler(svc *Service) http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		f, err := svc.CreateFarm(r.Context(), claims.UserID, req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toFarmResponse(f))
	}
}

func getFarmHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		farmID := chi.URLParam(r, "farmID")
		if err := svc.AuthorizeMember(r.Context(), farmID, claims.UserID); err != nil {
			writeError(w, err)
			return
		}
		f, err := svc.GetFarm(r.Context(), farmID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFarmResponse(f))
	}
}

func addMemberHandler(svc *Service) http.HandlerFunc {
	type request struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.AddMember(r.Context(), claims.UserID, chi.URLParam(r, "farmID"), req.UserID, Role(req.Role))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, memberResponse(m))
	}
}

func listMembersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListMembers(r.Context(), claims.UserID, chi.URLParam(r, "farmID"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]memberResponse, 0, len(items))
		for _, m := range items {
			out = append(out, memberResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createPaddockHandler(svc *Service) http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.CreatePaddock(r.Context(), claims.UserID, chi.URLParam(r, "farmID"), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPaddockResponse(p))
	}
}

func listPaddocksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListPaddocks(r.Context(), claims.UserID, chi.URLParam(r, "farmID"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]paddockResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPaddockResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createLotHandler(svc *Service) http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		l, err := svc.CreateLot(r.Context(), claims.UserID, chi.URLParam(r, "paddockID"), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toLotResponse(l))
	}
}

func listLotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListLots(r.Context(), claims.UserID, chi.URLParam(r, "paddockID"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]lotResponse, 0, len(items))
		for _, l := range items {
			out = append(out, toLotResponse(l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func setLotStatusHandler(svc *Service) http.HandlerFunc {
	type request struct {
		Status string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		l, err := svc.SetLotStatus(r.Context(), claims.UserID, chi.URLParam(r, "lotID"), LotStatus(req.Status))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLotResponse(l))
	}
}

func moveLotHandler(svc *Service) http.HandlerFunc {
	type request struct {
		ToPaddockID string `json:"to_paddock_id"`
		Reason      string `json:"reason"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		mov, err := svc.MoveLot(r.Context(), claims.UserID, chi.URLParam(r, "lotID"), req.ToPaddockID, req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toLotMovementResponse(mov))
	}
}

func toFarmResponse(f Farm) farmResponse {
	return farmResponse{ID: f.ID, Name: f.Name, CreatedBy: f.CreatedBy, CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt}
}

func toPaddockResponse(p Paddock) paddockResponse {
	return paddockResponse{ID: p.ID, FarmID: p.FarmID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

func toLotResponse(l Lot) lotResponse {
	return lotResponse{ID: l.ID, PaddockID: l.PaddockID, Name: l.Name, Status: l.Status, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt}
}

func toLotMovementResponse(m movements.Movement) lotMovementResponse {
	return lotMovementResponse{
		ID:      m.ID,
		LotID:   m.EntityID,
		FromID:  m.FromID,
		ToID:    m.ToID,
		MovedAt: m.MovedAt,
		Reason:  m.Reason,
		MovedBy: m.MovedBy,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, movements.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
