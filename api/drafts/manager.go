package drafts

import (
	"shopadmin_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// uploadField is the multipart field carrying image files
const uploadField = "file"

type DraftRoutesManager struct {
	logger         *gecho.Logger
	draftService   *services.DraftService
	imageBaseURL   string
	maxUploadBytes int64
}

func NewDraftRoutesManager(logger *gecho.Logger, draftService *services.DraftService, imageBaseURL string, maxUploadBytes int64) *DraftRoutesManager {
	return &DraftRoutesManager{
		logger:         logger,
		draftService:   draftService,
		imageBaseURL:   imageBaseURL,
		maxUploadBytes: maxUploadBytes,
	}
}

func (d *DraftRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", d.CreateDraft)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", d.GetDraft)
			r.Delete("/", d.DiscardDraft)
			r.Post("/actions", d.ApplyAction)
			r.Post("/images/variant/{index}", d.UploadImage)
			r.Post("/images/{slot}", d.UploadImage)
			r.Get("/previews/{preview}", d.GetPreview)
			r.Post("/submit", d.SubmitDraft)
		})
	})
}
