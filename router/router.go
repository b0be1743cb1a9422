package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	handler "github.com/shortedge/handler/v1/images"
	"github.com/shortedge/model"
	"github.com/shortedge/web/downloader"
)

// New returns new router.
func New(logger zerolog.Logger, rsz handler.Resizer, opRepo model.OperationsRepository, downloadSvc downloader.Service, maxBodyBytes int64) *mux.Router {
	router := mux.NewRouter()
	router.Use(hlog.NewHandler(logger), accessLog())

	imgSvcV1 := handler.NewService(rsz, opRepo, downloadSvc, maxBodyBytes)

	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	apiV1.HandleFunc("/images/resize", imgSvcV1.Resize).Methods("POST")
	apiV1.HandleFunc("/images/resize/url", imgSvcV1.ResizeFromURL).Methods("POST")

	apiV1.HandleFunc("/operations", imgSvcV1.All).Methods("GET")
	apiV1.HandleFunc("/operations/{id:[0-9]+}", imgSvcV1.GetOne).Methods("GET")
	return router
}

func accessLog() mux.MiddlewareFunc {
	return hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})
}
