package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"herd-registry/internal/domain/farms"
	"herd-registry/internal/domain/movements"
	"herd-registry/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, recorder *movements.Recorder, gate *farms.Service) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", createAnimalHandler(svc))
		ar.Get("/{animalID}", getAnimalHandler(svc, gate))
		ar.Patch("/{animalID}", updateAnimalHandler(svc))
		ar.Post("/{animalID}/move", moveAnimalHandler(svc))
		ar.Get("/{animalID}/genealogy", genealogyHandler(svc, gate))
		ar.Get("/{animalID}/movements", animalHistoryHandler(svc, recorder, gate))
	})

	r.Get("/farms/{farmID}/animals", listAnimalsHandler(svc, gate))
}

type ownerShareRequest struct {
	OwnerID      string  `json:"owner_id"`
	SharePercent float64 `json:"share_percent"`
}

type createAnimalRequest struct {
	LotID     string `json:"lot_id"`
	CUIA      string `json:"cuia"`
	VisualTag string `json:"visual_tag"`
	Name      string `json:"name"`
	Sex       string `json:"sex"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD opcional

	MotherID *string `json:"mother_id"`
	FatherID *string `json:"father_id"`

	ProductionStatus   string `json:"production_status"`
	ReproductiveStatus string `json:"reproductive_status"`
	HealthStatus       string `json:"health_status"`

	Owners []ownerShareRequest `json:"owners"`

	PhotoURL string `json:"photo_url"`
}

type updateAnimalRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	CUIA      *string `json:"cuia"`
	VisualTag *string `json:"visual_tag"`
	Name      *string `json:"name"`
	BirthDate *string `json:"birth_date"` // YYYY-MM-DD

	MotherID *string `json:"mother_id"` // "" limpia la referencia
	FatherID *string `json:"father_id"`

	LifeStatus         *string `json:"life_status"`
	ProductionStatus   *string `json:"production_status"`
	ReproductiveStatus *string `json:"reproductive_status"`
	HealthStatus       *string `json:"health_status"`

	Owners []ownerShareRequest `json:"owners"` // reemplazo completo

	PhotoURL *string `json:"photo_url"`
}

type moveAnimalRequest struct {
	ToLotID string `json:"to_lot_id"`
	Reason  string `json:"reason"`
}

type animalResponse struct {
	ID        string     `json:"id"`
	FarmID    string     `json:"farm_id"`
	LotID     string     `json:"lot_id"`
	CUIA      string     `json:"cuia,omitempty"`
	VisualTag string     `json:"visual_tag"`
	Name      string     `json:"name"`
	Sex       Sex        `json:"sex"`
	BirthDate *time.Time `json:"birth_date,omitempty"`

	MotherID *string `json:"mother_id,omitempty"`
	FatherID *string `json:"father_id,omitempty"`

	LifeStatus         LifeStatus         `json:"life_status"`
	ProductionStatus   ProductionStatus   `json:"production_status"`
	ReproductiveStatus ReproductiveStatus `json:"reproductive_status"`
	HealthStatus       HealthStatus       `json:"health_status"`

	Owners []ownerShareRequest `json:"owners"`

	PhotoURL string `json:"photo_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type detailResponse struct {
	animalResponse

	LotName    string      `json:"lot_name,omitempty"`
	MotherTag  *string     `json:"mother_tag,omitempty"`
	FatherTag  *string     `json:"father_tag,omitempty"`
	OwnerViews []ownerView `json:"owner_views"`
}

type ownerView struct {
	OwnerID      string  `json:"owner_id"`
	Name         string  `json:"name,omitempty"`
	SharePercent float64 `json:"share_percent"`
}

type movementResponse struct {
	ID         string               `json:"id"`
	EntityType movements.EntityType `json:"entity_type"`
	EntityID   string               `json:"entity_id"`
	FromID     *string              `json:"from_id,omitempty"`
	ToID       string               `json:"to_id"`
	MovedAt    time.Time            `json:"moved_at"`
	Reason     string               `json:"reason,omitempty"`
	MovedBy    string               `json:"moved_by"`
}

func toMovementResponse(m movements.Movement) movementResponse {
	return movementResponse{
		ID:         m.ID,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		FromID:     m.FromID,
		ToID:       m.ToID,
		MovedAt:    m.MovedAt,
		Reason:     m.Reason,
		MovedBy:    m.MovedBy,
	}
}

type genealogyResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	VisualTag string     `json:"visual_tag,omitempty"`
	CUIA      string     `json:"cuia,omitempty"`
	Sex       Sex        `json:"sex"`
	BirthDate *time.Time `json:"birth_date,omitempty"`

	Mother   *genealogyResponse  `json:"mother,omitempty"`
	Father   *genealogyResponse  `json:"father,omitempty"`
	Children []genealogyResponse `json:"children"`
}

func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		bd, err := parseDate(req.BirthDate)
		if err != nil {
			http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			LotID:              req.LotID,
			CUIA:               req.CUIA,
			VisualTag:          req.VisualTag,
			Name:               req.Name,
			Sex:                Sex(req.Sex),
			BirthDate:          bd,
			MotherID:           req.MotherID,
			FatherID:           req.FatherID,
			ProductionStatus:   ProductionStatus(req.ProductionStatus),
			ReproductiveStatus: ReproductiveStatus(req.ReproductiveStatus),
			HealthStatus:       HealthStatus(req.HealthStatus),
			Owners:             toOwnerShares(req.Owners),
			PhotoURL:           req.PhotoURL,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

func getAnimalHandler(svc *Service, gate *farms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := gate.AuthorizeMember(r.Context(), a.FarmID, claims.UserID); err != nil {
			writeError(w, err)
			return
		}

		d, err := svc.Detail(r.Context(), a.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := detailResponse{
			animalResponse: toAnimalResponse(d.Animal),
			LotName:        d.LotName,
			MotherTag:      d.MotherTag,
			FatherTag:      d.FatherTag,
			OwnerViews:     make([]ownerView, 0, len(d.Owners)),
		}
		for _, o := range d.Owners {
			resp.OwnerViews = append(resp.OwnerViews, ownerView(o))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func updateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateAnimalRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			CUIA:      req.CUIA,
			VisualTag: req.VisualTag,
			Name:      req.Name,
			MotherID:  req.MotherID,
			FatherID:  req.FatherID,
			PhotoURL:  req.PhotoURL,
		}
		if req.BirthDate != nil {
			bd, err := parseDate(*req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.BirthDate = bd
		}
		if req.LifeStatus != nil {
			v := LifeStatus(*req.LifeStatus)
			in.LifeStatus = &v
		}
		if req.ProductionStatus != nil {
			v := ProductionStatus(*req.ProductionStatus)
			in.ProductionStatus = &v
		}
		if req.ReproductiveStatus != nil {
			v := ReproductiveStatus(*req.ReproductiveStatus)
			in.ReproductiveStatus = &v
		}
		if req.HealthStatus != nil {
			v := HealthStatus(*req.HealthStatus)
			in.HealthStatus = &v
		}
		if req.Owners != nil {
			in.Owners = toOwnerShares(req.Owners)
		}

		a, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "animalID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func moveAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req moveAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		mov, err := svc.Move(r.Context(), claims.UserID, chi.URLParam(r, "animalID"), req.ToLotID, req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMovementResponse(mov))
	}
}

func genealogyHandler(svc *Service, gate *farms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := gate.AuthorizeMember(r.Context(), a.FarmID, claims.UserID); err != nil {
			writeError(w, err)
			return
		}

		tree, err := svc.Genealogy(r.Context(), a.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toGenealogyResponse(tree))
	}
}

func animalHistoryHandler(svc *Service, recorder *movements.Recorder, gate *farms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := gate.AuthorizeMember(r.Context(), a.FarmID, claims.UserID); err != nil {
			writeError(w, err)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, err := recorder.AnimalHistory(r.Context(), a.ID, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]movementResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMovementResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listAnimalsHandler(svc *Service, gate *farms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		farmID := chi.URLParam(r, "farmID")
		if err := gate.AuthorizeMember(r.Context(), farmID, claims.UserID); err != nil {
			writeError(w, err)
			return
		}

		filter := ListFilter{
			LotID: r.URL.Query().Get("lot_id"),
			Query: r.URL.Query().Get("q"),
		}
		if v := r.URL.Query().Get("life_status"); v != "" {
			ls := LifeStatus(v)
			filter.LifeStatus = &ls
		}
		filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
		filter.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

		items, err := svc.ListByFarm(r.Context(), farmID, filter)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toOwnerShares(in []ownerShareRequest) []OwnerShare {
	if in == nil {
		return nil
	}
	out := make([]OwnerShare, 0, len(in))
	for _, s := range in {
		out = append(out, OwnerShare{OwnerID: s.OwnerID, SharePercent: s.SharePercent})
	}
	return out
}

func toAnimalResponse(a Animal) animalResponse {
	ownersOut := make([]ownerShareRequest, 0, len(a.Owners))
	for _, s := range a.Owners {
		ownersOut = append(ownersOut, ownerShareRequest{OwnerID: s.OwnerID, SharePercent: s.SharePercent})
	}
	return animalResponse{
		ID:                 a.ID,
		FarmID:             a.FarmID,
		LotID:              a.LotID,
		CUIA:               a.CUIA,
		VisualTag:          a.VisualTag,
		Name:               a.Name,
		Sex:                a.Sex,
		BirthDate:          a.BirthDate,
		MotherID:           a.MotherID,
		FatherID:           a.FatherID,
		LifeStatus:         a.LifeStatus,
		ProductionStatus:   a.ProductionStatus,
		ReproductiveStatus: a.ReproductiveStatus,
		HealthStatus:       a.HealthStatus,
		Owners:             ownersOut,
		PhotoURL:           a.PhotoURL,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func toGenealogyResponse(n GenealogyNode) genealogyResponse {
	resp := genealogyResponse{
		ID:        n.ID,
		Name:      n.Name,
		VisualTag: n.VisualTag,
		CUIA:      n.CUIA,
		Sex:       n.Sex,
		BirthDate: n.BirthDate,
		Children:  make([]genealogyResponse, 0, len(n.Children)),
	}
	if n.Mother != nil {
		m := toGenealogyResponse(*n.Mother)
		resp.Mother = &m
	}
	if n.Father != nil {
		f := toGenealogyResponse(*n.Father)
		resp.Father = &f
	}
	for _, c := range n.Children {
		resp.Children = append(resp.Children, toGenealogyResponse(c))
	}
	return resp
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, farms.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, farms.ErrInvalidInput), errors.Is(err, movements.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound), errors.Is(err, farms.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// (animals/farms/owners/movements) para no crear helpers compartidos antes
// de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
