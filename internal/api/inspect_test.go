package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fleetlens/internal/apperr"
	"fleetlens/internal/entity"
)

func sampleReport() *entity.DamageReport {
	return entity.NewDamageReport([]entity.DamageItem{
		{
			CarPart:           "rear bumper",
			DamageType:        "dent",
			Severity:          entity.SeverityModerate,
			RecommendedAction: "repair",
			EstimatedCostUSD:  350,
			Description:       "dent on rear bumper",
			ImageIndex:        1,
			BoundingBox: &entity.BoundingBox{
				XMinPct: 0.2, YMinPct: 0.2,
				XMaxPct: 0.6, YMaxPct: 0.6,
			},
		},
		{
			CarPart:          "left door",
			DamageType:       "scratch",
			Severity:         entity.SeverityMinor,
			EstimatedCostUSD: 120,
			Description:      "scratch near handle",
		},
	}, "two new damages")
}

func inspectRequest(t *testing.T, beforeN, afterN int) *multipartBuilder {
	t.Helper()
	b := newMultipart().
		field("car_name", "Toyota Camry").
		field("car_model", "XLE").
		field("car_year", "2022")
	img := pngBytes(t, 64, 64)
	for i := 1; i <= beforeN; i++ {
		b.file("before_images", fmt.Sprintf("before_%d.png", i), img)
	}
	for i := 1; i <= afterN; i++ {
		b.file("after_images", fmt.Sprintf("after_%d.png", i), img)
	}
	return b
}

func TestInspect(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{report: sampleReport()})

	w := ts.do(t, inspectRequest(t, 2, 1).request("/api/inspect"))
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	env := decodeEnvelope(t, w)
	require.True(t, env.Status)

	var data struct {
		entity.Inspection
		SavedImages savedImages `json:"saved_images"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	require.NotEmpty(t, data.ID)
	require.Equal(t, "Toyota Camry", data.CarName)
	require.Equal(t, 2022, data.CarYear)
	require.Len(t, data.BeforeImages, 2)
	require.Len(t, data.AfterImages, 1)
	require.Len(t, data.BoundedImages, 1)
	require.Equal(t, 470.0, data.TotalDamageCost)
	require.Equal(t, data.DamageReport.TotalEstimatedCostUSD, data.TotalDamageCost)
	require.Equal(t, data.BeforeImages, data.SavedImages.Before)
	require.Equal(t, data.BoundedImages, data.SavedImages.Bounded)

	require.Equal(t, 2, ts.analyzer.gotBefore)
	require.Equal(t, 1, ts.analyzer.gotAfter)
	require.Equal(t, "Toyota Camry", ts.analyzer.gotCar.Name)

	stored, err := ts.inspections.Get(data.ID)
	require.NoError(t, err)
	require.Len(t, stored.DamageReport.NewDamage, 2)
	require.Equal(t, 470.0, stored.TotalDamageCost)
}

func TestInspectMissingBeforeImages(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{report: sampleReport()})

	w := ts.do(t, inspectRequest(t, 0, 1).request("/api/inspect"))
	requireErrorEnvelope(t, w, http.StatusBadRequest, "ValidationError")

	_, total, err := ts.inspections.List(0, 10)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestInspectMissingAfterImages(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{report: sampleReport()})

	w := ts.do(t, inspectRequest(t, 1, 0).request("/api/inspect"))
	requireErrorEnvelope(t, w, http.StatusBadRequest, "ValidationError")
}

func TestInspectMissingCarFields(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{report: sampleReport()})

	b := newMultipart().field("car_name", "Camry")
	b.file("before_images", "b.png", pngBytes(t, 8, 8))
	b.file("after_images", "a.png", pngBytes(t, 8, 8))

	w := ts.do(t, b.request("/api/inspect"))
	requireErrorEnvelope(t, w, http.StatusBadRequest, "ValidationError")
}

func TestInspectRejectsBadExtension(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{report: sampleReport()})

	b := inspectRequest(t, 1, 0)
	b.file("after_images", "report.pdf", []byte("%PDF-1.4"))

	w := ts.do(t, b.request("/api/inspect"))
	requireErrorEnvelope(t, w, http.StatusBadRequest, "ValidationError")
}

func TestInspectRejectsOversizeFile(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{report: sampleReport()})

	b := newMultipart().
		field("car_name", "Camry").
		field("car_model", "XLE").
		field("car_year", "2022")
	b.file("before_images", "b.jpg", bytes.Repeat([]byte{0xFF}, (10<<20)+1))
	b.file("after_images", "a.png", pngBytes(t, 8, 8))

	w := ts.do(t, b.request("/api/inspect"))
	requireErrorEnvelope(t, w, http.StatusBadRequest, "ValidationError")
}

func TestInspectAIServiceFailure(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{
		err: apperr.New(apperr.KindAIService, "vision model call failed"),
	})

	w := ts.do(t, inspectRequest(t, 1, 1).request("/api/inspect"))
	requireErrorEnvelope(t, w, http.StatusServiceUnavailable, "AIServiceError")

	_, total, err := ts.inspections.List(0, 10)
	require.NoError(t, err)
	require.Zero(t, total, "a failed analysis must not leave an inspection behind")
}

func TestInspectAIResponseFailure(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{
		err: apperr.New(apperr.KindAIResponse, "vision model reply is not JSON"),
	})

	w := ts.do(t, inspectRequest(t, 1, 1).request("/api/inspect"))
	requireErrorEnvelope(t, w, http.StatusBadGateway, "AIResponseError")
}

func TestInspectLinksBooking(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{report: sampleReport()})

	car := entity.Car{Name: "Camry", Make: "Toyota", Model: "XLE", Year: 2022, Status: entity.CarStatusAvailable}
	require.NoError(t, ts.cars.Create(&car))
	booking := entity.Booking{CarID: car.ID, BookingStartDate: time.Now(), Status: entity.BookingStatusActive}
	require.NoError(t, ts.bookings.Create(&booking))

	b := inspectRequest(t, 1, 1).field("booking_id", fmt.Sprintf("%d", booking.ID))
	w := ts.do(t, b.request("/api/inspect"))
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var data struct {
		ID string `json:"id"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))

	linked, err := ts.bookings.Get(booking.ID)
	require.NoError(t, err)
	require.Equal(t, data.ID, linked.InspectionID)
}

func TestInspectUnknownBooking(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{report: sampleReport()})

	b := inspectRequest(t, 1, 1).field("booking_id", "9999")
	w := ts.do(t, b.request("/api/inspect"))
	requireErrorEnvelope(t, w, http.StatusNotFound, "NotFoundError")

	// Rejected during validation: no model call, no inspection row.
	require.Zero(t, ts.analyzer.gotAfter)
	_, total, err := ts.inspections.List(0, 10)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestListInspections(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{report: sampleReport()})

	for i := 0; i < 3; i++ {
		w := ts.do(t, inspectRequest(t, 1, 1).request("/api/inspect"))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/inspections", nil))
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var data struct {
		Total       int64                      `json:"total"`
		Inspections []entity.InspectionSummary `json:"inspections"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.EqualValues(t, 3, data.Total)
	require.Len(t, data.Inspections, 3)
	for _, s := range data.Inspections {
		require.Equal(t, 470.0, s.TotalDamageCost)
	}
}

func TestListInspectionsPagination(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{report: sampleReport()})

	for i := 0; i < 5; i++ {
		w := ts.do(t, inspectRequest(t, 1, 1).request("/api/inspect"))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/inspections?skip=3&limit=10", nil))
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var data struct {
		Total       int64                      `json:"total"`
		Inspections []entity.InspectionSummary `json:"inspections"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.EqualValues(t, 5, data.Total)
	require.Len(t, data.Inspections, 2)
}

func TestGetInspection(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{report: sampleReport()})

	w := ts.do(t, inspectRequest(t, 1, 1).request("/api/inspect"))
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/inspections/"+created.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	env = decodeEnvelope(t, w)
	var got entity.Inspection
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, created.ID, got.ID)
	require.Len(t, got.DamageReport.NewDamage, 2)
}

func TestGetInspectionNotFound(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{})

	w := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/inspections/no-such-id", nil))
	requireErrorEnvelope(t, w, http.StatusNotFound, "NotFoundError")
}
