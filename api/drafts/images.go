package drafts

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"shopadmin_server/form"
	"shopadmin_server/handling"
	"shopadmin_server/services"
	"strconv"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

const multipartMemory = 8 << 20

type uploadedPreview struct {
	PreviewID string `json:"preview_id"`
	Filename  string `json:"filename"`
}

// UploadImage handles POST /drafts/{id}/images/{slot} and
// /drafts/{id}/images/variant/{index}. The gallery takes several files per
// request, the other slots exactly one.
func (d *DraftRoutesManager) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	slotName, index := chi.URLParam(r, "slot"), chi.URLParam(r, "index")
	if index != "" {
		slotName = string(services.SlotVariant)
	}
	slot, err := handling.ParseImageSlot(slotName, index)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.drafts.invalidImageSlot"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		d.logger.Warn("Invalid multipart upload", gecho.Field("draft_id", id), gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("error.drafts.invalidUpload"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 || (slot.Kind != services.SlotGallery && len(files) > 1) {
		gecho.BadRequest(w,
			gecho.WithMessage("error.drafts.invalidUpload"),
			gecho.WithData("expected "+describeFileCount(slot)+" in field "+uploadField),
			gecho.Send(),
		)
		return
	}

	uploads := make([]form.Upload, 0, len(files))
	for _, fh := range files {
		upload, err := d.readUpload(fh)
		if err != nil {
			handling.HandleError(err, "error.drafts.invalidUpload", d.logger, w)
			return
		}
		uploads = append(uploads, upload)
	}

	draft, previewIDs, err := d.draftService.AddUploads(id, slot, uploads)
	if err != nil {
		handling.HandleError(err, "error.drafts.invalidUpload", d.logger, w)
		return
	}
	previews := make([]uploadedPreview, len(uploads))
	for i := range uploads {
		previews[i] = uploadedPreview{PreviewID: previewIDs[i], Filename: uploads[i].Filename}
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"draft":    d.view(id, draft),
			"previews": previews,
		}),
		gecho.Send(),
	)
}

// GetPreview serves an upload of the draft before it is submitted
func (d *DraftRoutesManager) GetPreview(w http.ResponseWriter, r *http.Request) {
	upload, err := d.draftService.Preview(chi.URLParam(r, "id"), chi.URLParam(r, "preview"))
	if err != nil {
		handling.HandleError(err, "error.drafts.previewNotFound", d.logger, w)
		return
	}

	w.Header().Set("Content-Type", upload.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(upload.Data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(upload.Data)
}

// readUpload reads one file part, one byte past the limit so the service can
// reject oversized content
func (d *DraftRoutesManager) readUpload(fh *multipart.FileHeader) (form.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return form.Upload{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	var r io.Reader = f
	if d.maxUploadBytes > 0 {
		r = io.LimitReader(f, d.maxUploadBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return form.Upload{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return form.Upload{Filename: fh.Filename, Data: data}, nil
}

func describeFileCount(slot services.ImageSlot) string {
	if slot.Kind == services.SlotGallery {
		return "one or more files"
	}
	return "exactly one file"
}
