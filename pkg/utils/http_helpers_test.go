package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	apperrors "lending-system/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseFilterFromQuery(t *testing.T) {
	values, err := url.ParseQuery("search=+Dell+&filter[status]=AVAILABLE&filter[rack_id]=2&sort[name]=DESC&limit=10&page=3&withPagination=true")
	require.NoError(t, err)

	f := ParseFilterFromQuery(values)

	assert.Equal(t, "Dell", f.Search)
	assert.Equal(t, "AVAILABLE", f.StringFilter("status"))
	assert.Equal(t, "2", f.StringFilter("rack_id"))
	assert.Equal(t, "desc", f.Sort["name"])
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 20, f.Offset)
	assert.True(t, f.WithPagination)
}

func TestParseFilterFromQuery_Defaults(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{"limit": {"100000"}, "page": {"-1"}})

	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 0, f.Offset)
	assert.False(t, f.WithPagination)
}

func newTestContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccessResponse_WithPagination(t *testing.T) {
	ctx, rec := newTestContext("/?withPagination=true&limit=10")

	require.NoError(t, SuccessResponse(ctx, []int{1, 2}, "ok", http.StatusOK, 21))

	body := decode(t, rec)
	assert.Equal(t, true, body["status"])
	pagination := body["body"].(map[string]interface{})["pagination"].(map[string]interface{})
	assert.EqualValues(t, 21, pagination["total_count"])
	assert.EqualValues(t, 3, pagination["total_pages"])
}

func TestErrorResponse(t *testing.T) {
	logger := zap.NewNop()

	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"http error", apperrors.NewHttpError(http.StatusConflict, "Устройство недоступно", nil, nil), http.StatusConflict, "Устройство недоступно"},
		{"wrapped not found", fmt.Errorf("поиск заявки: %w", apperrors.ErrNotFound), http.StatusNotFound, apperrors.ErrNotFound.Error()},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, apperrors.ErrForbidden.Error()},
		{"invalid input", apperrors.NewInvalidInputError("месяц должен быть от 1 до 12"), http.StatusBadRequest, "месяц должен быть от 1 до 12"},
		{"unknown error is hidden", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "Внутренняя ошибка сервера"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, rec := newTestContext("/")
			require.NoError(t, ErrorResponse(ctx, tc.err, logger))

			assert.Equal(t, tc.code, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["status"])
			assert.Equal(t, tc.message, body["message"])
		})
	}
}
