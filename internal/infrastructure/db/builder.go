package db

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// ApplySort добавляет ORDER BY по полям из запроса. Поля вне allowed пропускаются.
// fallback дописывается в конец, чтобы порядок страниц был стабильным.
func ApplySort(builder sq.SelectBuilder, sortBy map[string]string, allowed map[string]string, fallback ...string) sq.SelectBuilder {
	fields := make([]string, 0, len(sortBy))
	for field := range sortBy {
		if _, ok := allowed[field]; ok {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	for _, field := range fields {
		dir := "ASC"
		if strings.EqualFold(sortBy[field], "desc") {
			dir = "DESC"
		}
		builder = builder.OrderBy(fmt.Sprintf("%s %s", allowed[field], dir))
	}
	return builder.OrderBy(fallback...)
}

// ApplyPage ограничивает выборку; нулевой limit означает "без ограничения".
func ApplyPage(builder sq.SelectBuilder, limit, offset uint64) sq.SelectBuilder {
	if limit == 0 {
		return builder
	}
	return builder.Limit(limit).Offset(offset)
}
