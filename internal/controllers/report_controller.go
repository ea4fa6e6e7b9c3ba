package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lending-system/internal/entities"
	"lending-system/internal/services"
	"lending-system/pkg/constants"
	apperrors "lending-system/pkg/errors"
	"lending-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const reportSheet = "Отчет"

type ReportController struct {
	reportService services.ReportServiceInterface
	loc           *time.Location
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, loc *time.Location, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, loc: loc, logger: logger}
}

// Monthly отдает отчет за месяц в JSON, с format=xlsx - файлом.
func (c *ReportController) Monthly(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	month, err := strconv.Atoi(ctx.QueryParam("month"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Параметр month обязателен", err, nil), c.logger)
	}
	year, err := strconv.Atoi(ctx.QueryParam("year"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Параметр year обязателен", err, nil), c.logger)
	}

	report, err := c.reportService.Monthly(ctx.Request().Context(), actor, month, year)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if strings.ToLower(ctx.QueryParam("format")) == "xlsx" {
		return c.respondWithXLSX(ctx, report)
	}
	return utils.SuccessResponse(ctx, report, "Отчет сформирован", http.StatusOK)
}

var reportHeaders = []string{
	"Дата", "Начало", "Конец", "Заявитель", "Программа", "Предмет",
	"Корпус", "Аудитория", "Кол-во", "Ответственный", "Телефон", "Статус",
}

var reportColumnWidths = []float64{12, 12, 12, 30, 35, 30, 10, 15, 10, 35, 15, 15}

func reportRow(item entities.ReportItem) []interface{} {
	status := constants.ReservationStatusNames[item.Status]
	if status == "" {
		status = item.Status
	}
	return []interface{}{
		item.UsageDate.Format("02.01.2006"), item.StartTime, item.EndTime,
		item.RequesterName, item.ProgramName, item.SubjectName,
		item.BuildingName, item.RoomName, item.Quantity,
		item.ResponsibleName, item.ContactPhone, status,
	}
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(reportSheet, cell, &values)
}

// buildMonthlyWorkbook: заголовок, время формирования, статистика, стойки, затем таблица заявок.
func buildMonthlyWorkbook(report *entities.MonthlyReport, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	row := 1
	title := fmt.Sprintf("Отчет по выдаче оборудования за %02d.%d", report.Month, report.Year)
	if err := setRow(f, row, []interface{}{title}); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(reportSheet, "A1", "A1", bold)
	row++
	if err := setRow(f, row, []interface{}{"Сформирован: " + generatedAt.Format("02.01.2006 15:04")}); err != nil {
		return nil, err
	}
	row += 2

	stats := [][]interface{}{
		{"Всего заявок", report.Total},
		{"На рассмотрении", report.Pending},
		{"Одобрено", report.Approved},
		{"Отклонено", report.Rejected},
		{"Отменено заявителем", report.CancelledByRequester},
		{"Завершено", report.Finalized},
		{"Запрошено устройств", report.DevicesRequested},
		{"Устройств в использовании", report.DevicesInUse},
	}
	if err := setRow(f, row, []interface{}{"Статистика"}); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(reportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), bold)
	row++
	for _, s := range stats {
		if err := setRow(f, row, s); err != nil {
			return nil, err
		}
		row++
	}
	row++

	if err := setRow(f, row, []interface{}{"Самые используемые стойки"}); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(reportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), bold)
	row++
	for _, r := range report.TopRacks {
		if err := setRow(f, row, []interface{}{r.Name, r.Count}); err != nil {
			return nil, err
		}
		row++
	}
	row++

	headers := make([]interface{}, len(reportHeaders))
	for i, h := range reportHeaders {
		headers[i] = h
	}
	if err := setRow(f, row, headers); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(reportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("L%d", row), bold)
	row++
	for _, item := range report.Items {
		if err := setRow(f, row, reportRow(item)); err != nil {
			return nil, err
		}
		row++
	}

	for i, w := range reportColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(reportSheet, col, col, w); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, report *entities.MonthlyReport) error {
	f, err := buildMonthlyWorkbook(report, time.Now().In(c.loc))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer f.Close()

	fileName := fmt.Sprintf("reporte_%d_%02d.xlsx", report.Year, report.Month)
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
