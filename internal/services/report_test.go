package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"lending-system/internal/authz"
	"lending-system/internal/entities"
	"lending-system/pkg/constants"
	apperrors "lending-system/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingReportRepo struct {
	from, to time.Time
	calls    int
}

func (c *capturingReportRepo) Monthly(_ context.Context, from, to time.Time) (*entities.MonthlyReport, error) {
	c.from, c.to = from, to
	c.calls++
	return &entities.MonthlyReport{Total: 4}, nil
}

func TestReportService_Monthly(t *testing.T) {
	repo := &capturingReportRepo{}
	svc := NewReportService(repo, time.UTC, zap.NewNop())

	report, err := svc.Monthly(context.Background(), inventoryAdmin, 2, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Month)
	assert.Equal(t, 2026, report.Year)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), repo.to)
}

func TestReportService_Monthly_Validation(t *testing.T) {
	repo := &capturingReportRepo{}
	svc := NewReportService(repo, time.UTC, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Monthly(ctx, inventoryAdmin, 13, 2026)
	requireHTTPCode(t, err, http.StatusBadRequest)
	_, err = svc.Monthly(ctx, inventoryAdmin, 0, 2026)
	requireHTTPCode(t, err, http.StatusBadRequest)
	_, err = svc.Monthly(ctx, inventoryAdmin, 5, 1999)
	requireHTTPCode(t, err, http.StatusBadRequest)

	_, err = svc.Monthly(ctx, authz.Actor{UserID: 1, RoleCode: constants.RoleSupervisor}, 5, 2026)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Zero(t, repo.calls)
}
