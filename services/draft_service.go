package services

import (
	"context"
	"fmt"
	"shopadmin_server/form"
	"shopadmin_server/lib"
	"shopadmin_server/structs"
	"strings"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type SlotKind string

const (
	SlotPrimary SlotKind = "primary"
	SlotGallery SlotKind = "gallery"
	SlotVariant SlotKind = "variant"
)

// ImageSlot is where an uploaded image goes. Index only applies to variants.
type ImageSlot struct {
	Kind  SlotKind
	Index int
}

type draftEntry struct {
	draft   form.Draft
	touched time.Time
	// set while a submission is in flight; the draft is frozen until it ends
	submitting bool
}

// DraftService keeps product drafts between requests. Drafts live in memory
// only and expire after the configured TTL without edits.
type DraftService struct {
	logger  *gecho.Logger
	backend ProductBackend
	catalog *CatalogService
	cfg     *structs.DraftConfig

	mu     sync.Mutex
	drafts map[string]*draftEntry
	now    func() time.Time
}

func NewDraftService(logger *gecho.Logger, cfg *structs.DraftConfig, backend ProductBackend, catalog *CatalogService) *DraftService {
	return &DraftService{
		logger:  logger,
		backend: backend,
		catalog: catalog,
		cfg:     cfg,
		drafts:  make(map[string]*draftEntry),
		now:     time.Now,
	}
}

// Create opens a draft. productID zero starts an empty product, anything else
// loads the product for editing.
func (ds *DraftService) Create(ctx context.Context, productID int64) (string, form.Draft, error) {
	d := form.New()
	if productID != 0 {
		product, err := ds.backend.GetProduct(ctx, productID)
		if err != nil {
			ds.logger.Error("Failed to load product for editing", gecho.Field("product_id", productID), gecho.Field("error", err))
			return "", form.Draft{}, fmt.Errorf("load product %d: %w", productID, err)
		}
		d = form.FromProduct(*product)
		// the single-product endpoint may omit the id
		d.ProductID = productID
	}

	id := uuid.NewString()
	ds.mu.Lock()
	ds.drafts[id] = &draftEntry{draft: d, touched: ds.now()}
	OpenDrafts.Set(float64(len(ds.drafts)))
	ds.mu.Unlock()

	ds.logger.Debug("Draft created", gecho.Field("draft_id", id), gecho.Field("product_id", productID))
	return id, d, nil
}

func (ds *DraftService) Get(id string) (form.Draft, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	entry, err := ds.entry(id)
	if err != nil {
		return form.Draft{}, err
	}
	return entry.draft, nil
}

// Apply runs one edit against the stored draft. A failed edit leaves the
// draft as it was.
func (ds *DraftService) Apply(id string, action form.Action) (form.Draft, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	entry, err := ds.mutableEntry(id)
	if err != nil {
		return form.Draft{}, err
	}
	next, err := form.Apply(entry.draft, action)
	if err != nil {
		return entry.draft, err
	}
	entry.draft = next
	return next, nil
}

// AddUpload stores uploaded image content in the given slot and returns the
// preview handle it can be fetched back with before submission.
func (ds *DraftService) AddUpload(id string, slot ImageSlot, upload form.Upload) (form.Draft, string, error) {
	d, previewIDs, err := ds.AddUploads(id, slot, []form.Upload{upload})
	if err != nil {
		return d, "", err
	}
	return d, previewIDs[0], nil
}

// AddUploads checks every upload before touching the draft and then applies
// them as one edit, so a rejected file leaves the draft unchanged. Only the
// gallery takes more than one upload.
func (ds *DraftService) AddUploads(id string, slot ImageSlot, uploads []form.Upload) (form.Draft, []string, error) {
	if len(uploads) == 0 {
		return form.Draft{}, nil, fmt.Errorf("%w: no file", lib.ErrUnsupportedImage)
	}
	if slot.Kind != SlotGallery && len(uploads) > 1 {
		return form.Draft{}, nil, fmt.Errorf("%w: slot %s takes one file, got %d", lib.ErrUnsupportedImage, slot.Kind, len(uploads))
	}

	refs := make([]form.ImageRef, 0, len(uploads))
	previewIDs := make([]string, 0, len(uploads))
	for i := range uploads {
		upload, err := ds.checkUpload(uploads[i])
		if err != nil {
			return form.Draft{}, nil, err
		}
		refs = append(refs, form.UploadedImage(upload))
		previewIDs = append(previewIDs, upload.PreviewID)
	}

	var action form.Action
	switch slot.Kind {
	case SlotPrimary:
		action = form.SetPrimaryImage{Image: refs[0]}
	case SlotGallery:
		action = form.AppendGalleryImages{Images: refs}
	case SlotVariant:
		action = form.SetVariantImage{Index: slot.Index, Image: refs[0]}
	default:
		return form.Draft{}, nil, fmt.Errorf("unknown image slot %q", slot.Kind)
	}

	d, err := ds.Apply(id, action)
	if err != nil {
		return d, nil, err
	}
	return d, previewIDs, nil
}

// checkUpload sniffs the content and stamps the upload with its type and a
// preview handle
func (ds *DraftService) checkUpload(upload form.Upload) (*form.Upload, error) {
	if ds.cfg.MaxUploadBytes > 0 && int64(len(upload.Data)) > ds.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", lib.ErrUnsupportedImage, upload.Filename, len(upload.Data), ds.cfg.MaxUploadBytes)
	}
	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", lib.ErrUnsupportedImage, upload.Filename)
	}

	detected := mimetype.Detect(upload.Data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, fmt.Errorf("%w: %s is %s", lib.ErrUnsupportedImage, upload.Filename, detected.String())
	}
	upload.ContentType = detected.String()
	upload.PreviewID = uuid.NewString()
	return &upload, nil
}

// Preview returns a not yet submitted upload of the draft
func (ds *DraftService) Preview(id, previewID string) (*form.Upload, error) {
	d, err := ds.Get(id)
	if err != nil {
		return nil, err
	}
	upload, ok := d.FindUpload(previewID)
	if !ok {
		return nil, fmt.Errorf("preview %s: %w", previewID, lib.ErrNotFound)
	}
	return upload, nil
}

// Submit validates and sends the draft as a create or an update. The draft is
// frozen while the request is in flight and dropped only on success, so a
// failed submission can be retried as is.
func (ds *DraftService) Submit(ctx context.Context, id string) (*structs.Product, error) {
	ds.mu.Lock()
	entry, err := ds.mutableEntry(id)
	if err != nil {
		ds.mu.Unlock()
		return nil, err
	}
	d := entry.draft
	if err := form.Validate(d); err != nil {
		ds.mu.Unlock()
		return nil, err
	}
	entry.submitting = true
	ds.mu.Unlock()

	product, mode, err := ds.send(ctx, d)

	ds.mu.Lock()
	if err != nil {
		entry.submitting = false
		ds.mu.Unlock()
		ds.logger.Error("Failed to submit product",
			gecho.Field("draft_id", id),
			gecho.Field("mode", mode),
			gecho.Field("error", err),
		)
		return nil, fmt.Errorf("%s product: %w", mode, err)
	}
	delete(ds.drafts, id)
	OpenDrafts.Set(float64(len(ds.drafts)))
	ds.mu.Unlock()

	if ds.catalog != nil {
		ds.catalog.Invalidate()
	}

	ds.logger.Info("Product submitted", gecho.Field("draft_id", id), gecho.Field("mode", mode), gecho.Field("product_id", d.ProductID))
	return product, nil
}

func (ds *DraftService) send(ctx context.Context, d form.Draft) (*structs.Product, string, error) {
	mode := "create"
	if d.ProductID != 0 {
		mode = "update"
	}

	payload, err := form.Encode(d)
	if err != nil {
		return nil, mode, fmt.Errorf("encode draft: %w", err)
	}

	var product *structs.Product
	if d.ProductID == 0 {
		product, err = ds.backend.CreateProduct(ctx, payload)
	} else {
		product, err = ds.backend.UpdateProduct(ctx, d.ProductID, payload)
	}
	if err != nil {
		DraftSubmissions.WithLabelValues(mode, "error").Inc()
		return nil, mode, err
	}
	DraftSubmissions.WithLabelValues(mode, "ok").Inc()
	return product, mode, nil
}

func (ds *DraftService) Discard(id string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if _, err := ds.mutableEntry(id); err != nil {
		return err
	}
	delete(ds.drafts, id)
	OpenDrafts.Set(float64(len(ds.drafts)))
	return nil
}

// Sweep drops drafts left untouched for longer than the TTL and returns how
// many went
func (ds *DraftService) Sweep() int {
	if ds.cfg.TTL <= 0 {
		return 0
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()

	cutoff := ds.now().Add(-ds.cfg.TTL)
	removed := 0
	for id, entry := range ds.drafts {
		if !entry.submitting && entry.touched.Before(cutoff) {
			delete(ds.drafts, id)
			removed++
		}
	}
	OpenDrafts.Set(float64(len(ds.drafts)))
	return removed
}

// RunSweeper sweeps on an interval until ctx is done
func (ds *DraftService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := ds.Sweep(); n > 0 {
				ds.logger.Info("Expired drafts removed", gecho.Field("count", n))
			}
		}
	}
}

// entry expects ds.mu to be held; it refreshes the draft's TTL
func (ds *DraftService) entry(id string) (*draftEntry, error) {
	entry, ok := ds.drafts[id]
	if !ok {
		return nil, lib.ErrDraftNotFound
	}
	entry.touched = ds.now()
	return entry, nil
}

// mutableEntry is entry for edits; a draft under submission is refused
func (ds *DraftService) mutableEntry(id string) (*draftEntry, error) {
	entry, err := ds.entry(id)
	if err != nil {
		return nil, err
	}
	if entry.submitting {
		return nil, lib.ErrDraftBusy
	}
	return entry, nil
}
