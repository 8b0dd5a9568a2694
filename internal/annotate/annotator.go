// Package annotate draws damage highlights onto copies of AFTER images.
package annotate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"fleetlens/internal/entity"
	"fleetlens/internal/storage"
)

var severityColors = map[entity.Severity]color.RGBA{
	entity.SeverityMinor:    {R: 0x10, G: 0xB9, B: 0x81, A: 0xFF},
	entity.SeverityModerate: {R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
	entity.SeverityMajor:    {R: 0xEF, G: 0x44, B: 0x44, A: 0xFF},
}

// Annotator renders severity-colored rectangles and labels for localized
// damage items. Originals are never touched; each bounded image is a fresh
// file saved through the image store.
type Annotator struct {
	store *storage.ImageStore
	log   *logrus.Logger
}

func New(store *storage.ImageStore, log *logrus.Logger) *Annotator {
	return &Annotator{store: store, log: log}
}

// Annotate produces one bounded image per AFTER image that has at least one
// localized damage item. Items without a usable box stay in the report but
// draw nothing, so the returned slice may be empty. A failure on a single
// image is logged and skipped; the remaining images are still produced.
func (a *Annotator) Annotate(inspectionID string, afterRel []string, report *entity.DamageReport) ([]string, error) {
	byImage := make(map[int][]entity.DamageItem)
	for _, item := range report.NewDamage {
		if !item.Localized() || item.ImageIndex > len(afterRel) {
			continue
		}
		byImage[item.ImageIndex] = append(byImage[item.ImageIndex], item)
	}

	indexes := make([]int, 0, len(byImage))
	for idx := range byImage {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	bounded := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		rel, err := a.annotateOne(inspectionID, afterRel[idx-1], idx, byImage[idx])
		if err != nil {
			a.log.WithError(err).WithField("image_index", idx).Warn("skipping bounded image")
			continue
		}
		bounded = append(bounded, rel)
	}
	return bounded, nil
}

func (a *Annotator) annotateOne(inspectionID, srcRel string, index int, items []entity.DamageItem) (string, error) {
	data, err := a.store.Read(srcRel)
	if err != nil {
		return "", err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", srcRel, err)
	}

	canvas := image.NewRGBA(src.Bounds())
	draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)

	w := canvas.Bounds().Dx()
	h := canvas.Bounds().Dy()
	thickness := maxInt(3, minInt(w, h)/200)

	for n, item := range items {
		box := item.BoundingBox
		rect := image.Rect(
			int(box.XMinPct*float64(w)),
			int(box.YMinPct*float64(h)),
			int(box.XMaxPct*float64(w)),
			int(box.YMaxPct*float64(h)),
		)
		col, ok := severityColors[item.Severity]
		if !ok {
			col = severityColors[entity.SeverityMajor]
		}
		drawRect(canvas, rect, col, thickness)
		label := fmt.Sprintf("%d. %s (%s)", n+1, item.CarPart, item.Severity)
		drawLabel(canvas, rect, label, col)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 95}); err != nil {
		return "", fmt.Errorf("encode bounded image: %w", err)
	}
	return a.store.Save(storage.RoleBounded, inspectionID, index, buf.Bytes(), "bounded.jpg")
}

// drawRect paints the four borders of rect, clipped to the canvas.
func drawRect(img *image.RGBA, rect image.Rectangle, col color.RGBA, thickness int) {
	b := img.Bounds()
	fill := func(r image.Rectangle) {
		draw.Draw(img, r.Intersect(b), &image.Uniform{C: col}, image.Point{}, draw.Src)
	}
	fill(image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thickness))
	fill(image.Rect(rect.Min.X, rect.Max.Y-thickness, rect.Max.X, rect.Max.Y))
	fill(image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thickness, rect.Max.Y))
	fill(image.Rect(rect.Max.X-thickness, rect.Min.Y, rect.Max.X, rect.Max.Y))
}

// drawLabel renders text on a solid background above the box, or inside its
// top edge when there is no room above.
func drawLabel(img *image.RGBA, rect image.Rectangle, label string, col color.RGBA) {
	face := basicfont.Face7x13
	textW := font.MeasureString(face, label).Ceil()
	textH := face.Metrics().Height.Ceil()

	x := rect.Min.X + 4
	y := rect.Min.Y - 6
	if rect.Min.Y < textH+10 {
		y = rect.Min.Y + textH + 4
	}
	if x+textW+8 > img.Bounds().Max.X {
		x = img.Bounds().Max.X - textW - 8
	}
	if x < img.Bounds().Min.X {
		x = img.Bounds().Min.X
	}

	bg := image.Rect(x-4, y-textH, x+textW+4, y+4).Intersect(img.Bounds())
	draw.Draw(img, bg, &image.Uniform{C: col}, image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
