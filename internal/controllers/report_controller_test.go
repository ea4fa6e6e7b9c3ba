package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lending-system/internal/authz"
	"lending-system/internal/entities"
	"lending-system/pkg/constants"
	apperrors "lending-system/pkg/errors"
	"lending-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type stubReportService struct {
	report *entities.MonthlyReport
}

func (s stubReportService) Monthly(_ context.Context, actor authz.Actor, month, year int) (*entities.MonthlyReport, error) {
	if !authz.Can(actor, authz.ReportsView) {
		return nil, apperrors.ErrForbidden
	}
	r := *s.report
	r.Month, r.Year = month, year
	return &r, nil
}

func sampleReport() *entities.MonthlyReport {
	return &entities.MonthlyReport{
		Total: 2, Approved: 1, Finalized: 1, DevicesRequested: 25,
		TopRacks: []entities.NamedCount{{Name: "Rack A", Count: 20}},
		Items: []entities.ReportItem{
			{
				ReservationID: 1, UsageDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
				StartTime: "08:00", EndTime: "10:00", RequesterName: "Ana Teacher",
				ProgramName: "Software", SubjectName: "Redes", BuildingName: "A", RoomName: "101",
				Quantity: 20, ResponsibleName: "ANA", ContactPhone: "0991234567", Status: constants.ReservationFinalized,
			},
		},
	}
}

func newReportRequest(t *testing.T, query string, actor authz.Actor) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/monthly?"+query, nil)
	req = req.WithContext(utils.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

var reportAdmin = authz.Actor{UserID: 1, RoleCode: constants.RoleAdmin}

func TestReportController_JSON(t *testing.T) {
	ctrl := NewReportController(stubReportService{report: sampleReport()}, time.UTC, zap.NewNop())
	ctx, rec := newReportRequest(t, "month=3&year=2026", reportAdmin)

	require.NoError(t, ctrl.Monthly(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status bool                   `json:"status"`
		Body   entities.MonthlyReport `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Status)
	assert.Equal(t, 3, resp.Body.Month)
	assert.Equal(t, 2, resp.Body.Total)
}

func TestReportController_XLSX(t *testing.T) {
	ctrl := NewReportController(stubReportService{report: sampleReport()}, time.UTC, zap.NewNop())
	ctx, rec := newReportRequest(t, "month=3&year=2026&format=xlsx", reportAdmin)

	require.NoError(t, ctrl.Monthly(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "reporte_2026_03.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	assert.Contains(t, rows[0][0], "03.2026")

	var header, item []string
	for i, r := range rows {
		if len(r) > 0 && r[0] == reportHeaders[0] {
			header = r
			require.Greater(t, len(rows), i+1)
			item = rows[i+1]
		}
	}
	assert.Equal(t, reportHeaders, header)
	require.Len(t, item, 12)
	assert.Equal(t, "10.03.2026", item[0])
	assert.Equal(t, "20", item[8])
	assert.Equal(t, constants.ReservationStatusNames[constants.ReservationFinalized], item[11])

	width, err := f.GetColWidth(reportSheet, "E")
	require.NoError(t, err)
	assert.Equal(t, 35.0, width)
}

func TestReportController_BadParams(t *testing.T) {
	ctrl := NewReportController(stubReportService{report: sampleReport()}, time.UTC, zap.NewNop())

	ctx, rec := newReportRequest(t, "year=2026", reportAdmin)
	require.NoError(t, ctrl.Monthly(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ctx, rec = newReportRequest(t, "month=3&year=2026", authz.Actor{UserID: 2, RoleCode: constants.RoleTeacher})
	require.NoError(t, ctrl.Monthly(ctx))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
