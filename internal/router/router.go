package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"herd-registry/internal/adapters/storage/memory"
	"herd-registry/internal/adapters/storage/postgres"
	"herd-registry/internal/domain/animals"
	"herd-registry/internal/domain/farms"
	"herd-registry/internal/domain/movements"
	"herd-registry/internal/domain/owners"
	"herd-registry/internal/middleware"
	"herd-registry/internal/platform/logger"
	"herd-registry/internal/ports/auth"
	"herd-registry/internal/ports/uow"
)

// Deps agrupa lo que el router necesita del main. DB nil => repos
// in-memory (modo dev). Verifier nil => solo header X-Debug-User-ID.
type Deps struct {
	Log      *logger.Logger
	DB       *sql.DB
	Verifier auth.AuthVerifier
}

func New(deps Deps) http.Handler {
	var (
		animalsRepo   animals.Repository
		farmsRepo     farms.Repository
		ownersRepo    owners.Repository
		movementsRepo movements.Repository
		unit          uow.UnitOfWork
	)

	if deps.DB != nil {
		animalsRepo = postgres.NewAnimalsRepo(deps.DB)
		farmsRepo = postgres.NewFarmsRepo(deps.DB)
		ownersRepo = postgres.NewOwnersRepo(deps.DB)
		movementsRepo = postgres.NewMovementsRepo(deps.DB)
		unit = postgres.NewUnitOfWork(deps.DB)
	} else {
		ar := memory.NewAnimalsRepo()
		fr := memory.NewFarmsRepo()
		or := memory.NewOwnersRepo()
		mr := memory.NewMovementsRepo()
		animalsRepo, farmsRepo, ownersRepo, movementsRepo = ar, fr, or, mr
		unit = memory.NewUnitOfWork(ar, fr, or, mr)
	}

	recorder := movements.NewRecorder(movementsRepo)
	farmsSvc := farms.NewService(farmsRepo, recorder, unit)
	ownersSvc := owners.NewService(ownersRepo)
	animalsSvc := animals.NewService(animalsRepo, farmsSvc, ownersSvc, recorder, unit)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if deps.Log != nil {
		r.Use(middleware.RequestLog(deps.Log))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.AuthContext(deps.Verifier))

		farms.RegisterRoutes(api, farmsSvc)
		owners.RegisterRoutes(api, ownersSvc)
		animals.RegisterRoutes(api, animalsSvc, recorder, farmsSvc)
	})

	return r
}
