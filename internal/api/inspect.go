package api

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fleetlens/internal/ai"
	"fleetlens/internal/apperr"
	"fleetlens/internal/entity"
	"fleetlens/internal/storage"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type inspectForm struct {
	CarName   string `form:"car_name" binding:"required"`
	CarModel  string `form:"car_model" binding:"required"`
	CarYear   int    `form:"car_year" binding:"required,gte=1900,lte=2100"`
	BookingID *uint  `form:"booking_id"`
}

type savedImages struct {
	Before  []string `json:"before"`
	After   []string `json:"after"`
	Bounded []string `json:"bounded"`
}

type inspectData struct {
	entity.Inspection
	SavedImages savedImages `json:"saved_images"`
}

// inspect runs the assessment pipeline: validate, store images, analyze,
// annotate, persist, respond. The first failing step aborts the rest; a
// failed analysis never leaves an inspection row behind. Image files already
// written by an aborted request are not cleaned up.
func (s *Server) inspect(c *gin.Context) {
	var form inspectForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, bindingError(err))
		return
	}

	mf, err := c.MultipartForm()
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, err, "expected multipart form data"))
		return
	}
	beforeFiles := mf.File["before_images"]
	afterFiles := mf.File["after_images"]

	if len(beforeFiles) == 0 {
		respondError(c, apperr.New(apperr.KindValidation, "at least one before image is required"))
		return
	}
	if len(afterFiles) == 0 {
		respondError(c, apperr.New(apperr.KindValidation, "at least one after image is required"))
		return
	}
	for _, fh := range append(append([]*multipart.FileHeader{}, beforeFiles...), afterFiles...) {
		if err := s.validateImageFile(fh); err != nil {
			respondError(c, err)
			return
		}
	}
	// The booking must exist before any file is written or the model called.
	if form.BookingID != nil {
		if _, err := s.bookings.Get(*form.BookingID); err != nil {
			respondError(c, err)
			return
		}
	}

	inspectionID := uuid.New().String()
	log := s.log.WithField("inspection_id", inspectionID)

	beforeRel, beforeAbs, err := s.saveUploads(storage.RoleBefore, inspectionID, beforeFiles)
	if err != nil {
		respondError(c, err)
		return
	}
	afterRel, afterAbs, err := s.saveUploads(storage.RoleAfter, inspectionID, afterFiles)
	if err != nil {
		respondError(c, err)
		return
	}
	log.WithFields(logrus.Fields{"before": len(beforeRel), "after": len(afterRel)}).Info("images stored")

	car := ai.CarMeta{Name: form.CarName, Model: form.CarModel, Year: form.CarYear}
	report, err := s.analyzer.Analyze(c.Request.Context(), beforeAbs, afterAbs, car)
	if err != nil {
		log.WithError(err).Error("damage analysis failed")
		respondError(c, err)
		return
	}

	bounded, err := s.annotator.Annotate(inspectionID, afterRel, report)
	if err != nil {
		respondError(c, err)
		return
	}

	insp := entity.Inspection{
		ID:              inspectionID,
		CarName:         form.CarName,
		CarModel:        form.CarModel,
		CarYear:         form.CarYear,
		BookingID:       form.BookingID,
		BeforeImages:    beforeRel,
		AfterImages:     afterRel,
		BoundedImages:   bounded,
		DamageReport:    *report,
		TotalDamageCost: report.TotalEstimatedCostUSD,
	}
	if err := s.inspections.Create(&insp); err != nil {
		respondError(c, err)
		return
	}

	if form.BookingID != nil {
		if err := s.bookings.SetInspection(*form.BookingID, inspectionID); err != nil {
			respondError(c, err)
			return
		}
	}

	stored, err := s.inspections.Get(inspectionID)
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithField("total_cost", report.TotalEstimatedCostUSD).Info("inspection recorded")
	respondOK(c, http.StatusOK, "Inspection completed successfully", inspectData{
		Inspection: *stored,
		SavedImages: savedImages{
			Before:  beforeRel,
			After:   afterRel,
			Bounded: bounded,
		},
	})
}

func (s *Server) listInspections(c *gin.Context) {
	skip := parseQueryInt(c, "skip", 0)
	limit := parseQueryInt(c, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}

	items, total, err := s.inspections.List(skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]entity.InspectionSummary, 0, len(items))
	for _, it := range items {
		summaries = append(summaries, it.Summary())
	}

	respondOK(c, http.StatusOK, "Inspections retrieved successfully", gin.H{
		"total":       total,
		"inspections": summaries,
	})
}

func (s *Server) getInspection(c *gin.Context) {
	insp, err := s.inspections.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Inspection retrieved successfully", insp)
}

// validateImageFile enforces the extension whitelist and the per-file size
// cap before anything touches disk.
func (s *Server) validateImageFile(fh *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExts[ext] {
		return apperr.New(apperr.KindValidation,
			"invalid file type %q: allowed types are .jpg, .jpeg, .png, .webp", fh.Filename)
	}
	if s.maxUploadBytes > 0 && fh.Size > s.maxUploadBytes {
		return apperr.New(apperr.KindValidation,
			"file %q is too large: %d bytes (limit %d)", fh.Filename, fh.Size, s.maxUploadBytes)
	}
	return nil
}

// saveUploads writes each upload through the image store and returns both
// the relative paths (for the response and the database) and the absolute
// paths (for the analyzer).
func (s *Server) saveUploads(role storage.Role, inspectionID string, files []*multipart.FileHeader) ([]string, []string, error) {
	rels := make([]string, 0, len(files))
	abss := make([]string, 0, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, nil, apperr.Wrap(apperr.KindStorage, err, "open upload %q", fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, nil, apperr.Wrap(apperr.KindStorage, err, "read upload %q", fh.Filename)
		}

		rel, err := s.store.Save(role, inspectionID, i+1, data, fh.Filename)
		if err != nil {
			return nil, nil, err
		}
		rels = append(rels, rel)
		abss = append(abss, s.store.Abs(rel))
	}
	return rels, abss, nil
}

func parseQueryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}
