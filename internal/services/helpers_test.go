package services

import (
	"lending-system/pkg/types"
)

func validFilter(values map[string]interface{}) types.Filter {
	if values == nil {
		values = map[string]interface{}{}
	}
	return types.Filter{Filter: values, Sort: map[string]string{}, Limit: 200, Page: 1}
}
