package services

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"shopadmin_server/form"
	"shopadmin_server/lib"
	"shopadmin_server/structs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newDrafts(backend *fakeBackend) (*DraftService, *CatalogService) {
	catalog := NewCatalogService(testLogger(), backend)
	cfg := &structs.DraftConfig{TTL: time.Hour, MaxUploadBytes: 1024}
	return NewDraftService(testLogger(), cfg, backend, catalog), catalog
}

func fillRequired(t *testing.T, ds *DraftService, id string) {
	t.Helper()
	for _, a := range []form.Action{
		form.SetField{Field: form.FieldName, Value: "Mug"},
		form.SetField{Field: form.FieldPrice, Value: "250"},
		form.SetField{Field: form.FieldStock, Value: "4"},
		form.SetField{Field: form.FieldCategory, Value: "Home"},
	} {
		_, err := ds.Apply(id, a)
		require.NoError(t, err)
	}
}

func TestDraftCreate_EmptyAndFromProduct(t *testing.T) {
	mrp := 600.0
	backend := &fakeBackend{product: &structs.Product{
		Name: "Tee", Price: 499, MRP: &mrp, Stock: 3,
		Variants: []structs.Variant{{ID: 5, VariantName: "M", MRP: &mrp, Price: 499, Stock: 3}},
	}}
	ds, _ := newDrafts(backend)

	_, d, err := ds.Create(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "0", d.BasePricing().ShippingRate)
	assert.Zero(t, d.ProductID)

	id, d, err := ds.Create(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), d.ProductID)
	assert.True(t, d.Variants[0].IsDefault)
	assert.Equal(t, "600", d.BasePricing().MRP)

	stored, err := ds.Get(id)
	require.NoError(t, err)
	assert.Equal(t, d, stored)
}

func TestDraftCreate_UnknownProduct(t *testing.T) {
	ds, _ := newDrafts(&fakeBackend{productErr: lib.ErrNotFound})
	_, _, err := ds.Create(context.Background(), 3)
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestDraftApply_FailedActionKeepsDraft(t *testing.T) {
	ds, _ := newDrafts(&fakeBackend{})
	id, _, err := ds.Create(context.Background(), 0)
	require.NoError(t, err)

	_, err = ds.Apply(id, form.SetField{Field: form.FieldName, Value: "Mug"})
	require.NoError(t, err)

	_, err = ds.Apply(id, form.RemoveVariant{Index: 0})
	assert.ErrorIs(t, err, lib.ErrIndexOutOfRange)

	d, err := ds.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Mug", d.Name)

	_, err = ds.Apply("missing", form.AddVariant{})
	assert.ErrorIs(t, err, lib.ErrDraftNotFound)
}

func TestDraftUploads(t *testing.T) {
	ds, _ := newDrafts(&fakeBackend{})
	id, _, err := ds.Create(context.Background(), 0)
	require.NoError(t, err)

	d, previewID, err := ds.AddUpload(id, ImageSlot{Kind: SlotPrimary}, form.Upload{Filename: "a.png", Data: pngBytes})
	require.NoError(t, err)
	require.NotEmpty(t, previewID)
	assert.Equal(t, "image/png", d.Image.Upload.ContentType)

	upload, err := ds.Preview(id, previewID)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, upload.Data)

	_, _, err = ds.AddUpload(id, ImageSlot{Kind: SlotGallery}, form.Upload{Data: pngBytes})
	require.NoError(t, err)

	_, _, err = ds.AddUpload(id, ImageSlot{Kind: SlotVariant, Index: 0}, form.Upload{Data: pngBytes})
	assert.ErrorIs(t, err, lib.ErrIndexOutOfRange)

	_, _, err = ds.AddUpload(id, ImageSlot{Kind: SlotGallery}, form.Upload{Data: []byte("just some text")})
	assert.ErrorIs(t, err, lib.ErrUnsupportedImage)

	big := append(append([]byte(nil), pngBytes...), make([]byte, 2048)...)
	_, _, err = ds.AddUpload(id, ImageSlot{Kind: SlotGallery}, form.Upload{Data: big})
	assert.ErrorIs(t, err, lib.ErrUnsupportedImage)

	_, err = ds.Preview(id, "nope")
	assert.ErrorIs(t, err, lib.ErrNotFound)

	d, err = ds.Get(id)
	require.NoError(t, err)
	assert.Len(t, d.Gallery, 1)
}

func TestDraftUploads_RejectedFileLeavesGalleryUntouched(t *testing.T) {
	ds, _ := newDrafts(&fakeBackend{})
	id, _, err := ds.Create(context.Background(), 0)
	require.NoError(t, err)

	_, previewIDs, err := ds.AddUploads(id, ImageSlot{Kind: SlotGallery}, []form.Upload{
		{Filename: "a.png", Data: pngBytes},
		{Filename: "notes.txt", Data: []byte("just some text")},
		{Filename: "b.png", Data: pngBytes},
	})
	assert.ErrorIs(t, err, lib.ErrUnsupportedImage)
	assert.Nil(t, previewIDs)

	d, err := ds.Get(id)
	require.NoError(t, err)
	assert.Empty(t, d.Gallery)

	d, previewIDs, err = ds.AddUploads(id, ImageSlot{Kind: SlotGallery}, []form.Upload{
		{Filename: "a.png", Data: pngBytes},
		{Filename: "b.png", Data: pngBytes},
	})
	require.NoError(t, err)
	assert.Len(t, previewIDs, 2)
	assert.Len(t, d.Gallery, 2)

	_, _, err = ds.AddUploads(id, ImageSlot{Kind: SlotPrimary}, []form.Upload{
		{Filename: "a.png", Data: pngBytes},
		{Filename: "b.png", Data: pngBytes},
	})
	assert.ErrorIs(t, err, lib.ErrUnsupportedImage)
}

func TestDraftSubmit_ValidationBeforeNetwork(t *testing.T) {
	backend := &fakeBackend{}
	ds, _ := newDrafts(backend)
	id, _, err := ds.Create(context.Background(), 0)
	require.NoError(t, err)

	_, err = ds.Submit(context.Background(), id)
	var ve *lib.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Empty(t, backend.submissions)

	_, err = ds.Get(id)
	assert.NoError(t, err, "draft must survive a validation failure")
}

func TestDraftSubmit_Create(t *testing.T) {
	backend := &fakeBackend{products: []structs.Product{{ID: 1}}}
	ds, catalog := newDrafts(backend)
	require.NoError(t, catalog.Load(context.Background()))

	id, _, err := ds.Create(context.Background(), 0)
	require.NoError(t, err)
	fillRequired(t, ds, id)

	product, err := ds.Submit(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, int64(100), product.ID)

	require.Len(t, backend.submissions, 1)
	sub := backend.submissions[0]
	assert.Zero(t, sub.productID)

	mediaType, params, err := mime.ParseMediaType(sub.payload.ContentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)
	r := multipart.NewReader(sub.payload.Reader(), params["boundary"])
	f, err := r.ReadForm(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mug"}, f.Value["name"])
	assert.Equal(t, []string{"250"}, f.Value["price"])

	_, err = ds.Get(id)
	assert.ErrorIs(t, err, lib.ErrDraftNotFound)
	assert.False(t, catalog.Loaded(), "catalog is stale after a submission")
}

func TestDraftSubmit_UpdateFailureKeepsDraft(t *testing.T) {
	backend := &fakeBackend{
		product:   &structs.Product{Name: "Mug", Price: 250, Stock: 4, Category: "Home"},
		submitErr: errors.New("500"),
	}
	ds, _ := newDrafts(backend)

	id, _, err := ds.Create(context.Background(), 8)
	require.NoError(t, err)

	_, err = ds.Submit(context.Background(), id)
	require.Error(t, err)
	require.Len(t, backend.submissions, 1)
	assert.Equal(t, int64(8), backend.submissions[0].productID)

	d, err := ds.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Mug", d.Name)
}

func TestDraftSubmit_FrozenWhileInFlight(t *testing.T) {
	backend := &fakeBackend{
		submitStarted: make(chan struct{}),
		submitRelease: make(chan struct{}),
	}
	ds, _ := newDrafts(backend)
	id, _, err := ds.Create(context.Background(), 0)
	require.NoError(t, err)
	fillRequired(t, ds, id)

	done := make(chan error, 1)
	go func() {
		_, err := ds.Submit(context.Background(), id)
		done <- err
	}()
	<-backend.submitStarted

	_, err = ds.Apply(id, form.SetField{Field: form.FieldName, Value: "Bowl"})
	assert.ErrorIs(t, err, lib.ErrDraftBusy)
	_, _, err = ds.AddUpload(id, ImageSlot{Kind: SlotGallery}, form.Upload{Filename: "a.png", Data: pngBytes})
	assert.ErrorIs(t, err, lib.ErrDraftBusy)
	assert.ErrorIs(t, ds.Discard(id), lib.ErrDraftBusy)
	_, err = ds.Submit(context.Background(), id)
	assert.ErrorIs(t, err, lib.ErrDraftBusy)

	d, err := ds.Get(id)
	require.NoError(t, err, "reads still work during a submission")
	assert.Equal(t, "Mug", d.Name)

	close(backend.submitRelease)
	require.NoError(t, <-done)
	assert.Len(t, backend.submissions, 1)

	_, err = ds.Get(id)
	assert.ErrorIs(t, err, lib.ErrDraftNotFound)
}

func TestDraftSubmit_FailureUnfreezes(t *testing.T) {
	backend := &fakeBackend{submitErr: errors.New("502")}
	ds, _ := newDrafts(backend)
	id, _, err := ds.Create(context.Background(), 0)
	require.NoError(t, err)
	fillRequired(t, ds, id)

	_, err = ds.Submit(context.Background(), id)
	require.Error(t, err)

	d, err := ds.Apply(id, form.SetField{Field: form.FieldName, Value: "Bowl"})
	require.NoError(t, err)
	assert.Equal(t, "Bowl", d.Name)
}

func TestDraftDiscardAndSweep(t *testing.T) {
	ds, _ := newDrafts(&fakeBackend{})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ds.now = func() time.Time { return now }

	stale, _, err := ds.Create(context.Background(), 0)
	require.NoError(t, err)

	now = now.Add(50 * time.Minute)
	fresh, _, err := ds.Create(context.Background(), 0)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, ds.Sweep())

	_, err = ds.Get(stale)
	assert.ErrorIs(t, err, lib.ErrDraftNotFound)
	_, err = ds.Get(fresh)
	assert.NoError(t, err)

	require.NoError(t, ds.Discard(fresh))
	assert.ErrorIs(t, ds.Discard(fresh), lib.ErrDraftNotFound)
}
