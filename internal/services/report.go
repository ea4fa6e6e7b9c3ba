package services

import (
	"context"
	"time"

	"lending-system/internal/authz"
	"lending-system/internal/entities"
	"lending-system/internal/repositories"
	"lending-system/pkg/utils"

	"go.uber.org/zap"
)

type ReportServiceInterface interface {
	Monthly(ctx context.Context, actor authz.Actor, month, year int) (*entities.MonthlyReport, error)
}

type ReportService struct {
	reportRepo repositories.ReportRepositoryInterface
	loc        *time.Location
	logger     *zap.Logger
}

func NewReportService(reportRepo repositories.ReportRepositoryInterface, loc *time.Location, logger *zap.Logger) ReportServiceInterface {
	return &ReportService{reportRepo: reportRepo, loc: loc, logger: logger}
}

func (s *ReportService) Monthly(ctx context.Context, actor authz.Actor, month, year int) (*entities.MonthlyReport, error) {
	if err := authorize(actor, authz.ReportsView, nil); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, badRequest("Месяц должен быть от 1 до 12", map[string]interface{}{"month": month})
	}
	if year < 2000 || year > 2100 {
		return nil, badRequest("Неверный год", map[string]interface{}{"year": year})
	}

	from, to := utils.MonthRange(year, month, s.loc)
	report, err := s.reportRepo.Monthly(ctx, from, to)
	if err != nil {
		return nil, err
	}
	report.Month = month
	report.Year = year

	s.logger.Debug("Сформирован месячный отчет", zap.Int("month", month), zap.Int("year", year), zap.Int("total", report.Total))
	return report, nil
}
