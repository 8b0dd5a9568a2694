package annotate

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"fleetlens/internal/entity"
	"fleetlens/internal/storage"
)

func newTestAnnotator(t *testing.T) (*Annotator, *storage.ImageStore) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	store, err := storage.NewImageStore(t.TempDir())
	require.NoError(t, err)
	return New(store, log), store
}

func savePNG(t *testing.T, store *storage.ImageStore, inspectionID string, index, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	rel, err := store.Save(storage.RoleAfter, inspectionID, index, buf.Bytes(), "after.png")
	require.NoError(t, err)
	return rel
}

func localizedItem(severity entity.Severity, imageIndex int) entity.DamageItem {
	return entity.DamageItem{
		CarPart:          "hood",
		DamageType:       "dent",
		Severity:         severity,
		EstimatedCostUSD: 100,
		ImageIndex:       imageIndex,
		BoundingBox: &entity.BoundingBox{
			XMinPct: 0.25, YMinPct: 0.25,
			XMaxPct: 0.75, YMaxPct: 0.75,
		},
	}
}

func TestAnnotateDrawsBoundedImage(t *testing.T) {
	a, store := newTestAnnotator(t)
	rel := savePNG(t, store, "insp-1", 1, 400, 300)

	report := entity.NewDamageReport([]entity.DamageItem{
		localizedItem(entity.SeverityMajor, 1),
		{CarPart: "door", Severity: entity.SeverityMinor, EstimatedCostUSD: 50}, // no box, drawn nowhere
	}, "one localized damage")

	bounded, err := a.Annotate("insp-1", []string{rel}, report)
	require.NoError(t, err)
	require.Len(t, bounded, 1)

	data, err := store.Read(bounded[0])
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 400, img.Bounds().Dx())
	require.Equal(t, 300, img.Bounds().Dy())

	// top border of the box runs through (200, 75) in major red
	r, g, b, _ := img.At(200, 75).RGBA()
	require.Greater(t, r>>8, g>>8)
	require.Greater(t, r>>8, b>>8)
}

func TestAnnotateNoLocalizedItems(t *testing.T) {
	a, store := newTestAnnotator(t)
	rel := savePNG(t, store, "insp-2", 1, 100, 100)

	report := entity.NewDamageReport([]entity.DamageItem{
		{CarPart: "bumper", Severity: entity.SeverityModerate, EstimatedCostUSD: 200},
	}, "nothing localized")

	bounded, err := a.Annotate("insp-2", []string{rel}, report)
	require.NoError(t, err)
	require.Empty(t, bounded)
}

func TestAnnotateIndexOutOfRangeSkipped(t *testing.T) {
	a, store := newTestAnnotator(t)
	rel := savePNG(t, store, "insp-3", 1, 100, 100)

	report := entity.NewDamageReport([]entity.DamageItem{
		localizedItem(entity.SeverityMinor, 3), // only one after image exists
	}, "index past the end")

	bounded, err := a.Annotate("insp-3", []string{rel}, report)
	require.NoError(t, err)
	require.Empty(t, bounded)
}

func TestAnnotateUnreadableImageSkipped(t *testing.T) {
	a, store := newTestAnnotator(t)
	rel := savePNG(t, store, "insp-4", 1, 100, 100)
	broken, err := store.Save(storage.RoleAfter, "insp-4", 2, []byte("not an image"), "after.jpg")
	require.NoError(t, err)

	report := entity.NewDamageReport([]entity.DamageItem{
		localizedItem(entity.SeverityMinor, 1),
		localizedItem(entity.SeverityMajor, 2),
	}, "second image is corrupt")

	bounded, err := a.Annotate("insp-4", []string{rel, broken}, report)
	require.NoError(t, err)
	require.Len(t, bounded, 1)
}

func TestAnnotateGroupsItemsPerImage(t *testing.T) {
	a, store := newTestAnnotator(t)
	rel1 := savePNG(t, store, "insp-5", 1, 200, 200)
	rel2 := savePNG(t, store, "insp-5", 2, 200, 200)

	report := entity.NewDamageReport([]entity.DamageItem{
		localizedItem(entity.SeverityMinor, 2),
		localizedItem(entity.SeverityModerate, 1),
		localizedItem(entity.SeverityMajor, 2),
	}, "two images, three boxes")

	bounded, err := a.Annotate("insp-5", []string{rel1, rel2}, report)
	require.NoError(t, err)
	require.Len(t, bounded, 2)
}
