package api

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"designghar-service/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// productSortFields whitelists the sort keys a client may use.
var productSortFields = map[string]bool{
	"name":               true,
	"sku":                true,
	"basePrice":          true,
	"finalPrice":         true,
	"discountPercentage": true,
	"viewCount":          true,
	"createdAt":          true,
	"updatedAt":          true,
	"isFeatured":         true,
	"isActive":           true,
}

type pagination struct {
	Page  int
	Limit int
}

func (p pagination) offset() int {
	return (p.Page - 1) * p.Limit
}

func parsePagination(q url.Values) (pagination, error) {
	p := pagination{Page: 1, Limit: defaultPageLimit}
	if s := q.Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 1 {
			return p, errors.New("page must be a positive integer")
		}
		p.Page = page
	}
	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > maxPageLimit {
			return p, fmt.Errorf("limit must be between 1 and %d", maxPageLimit)
		}
		p.Limit = limit
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return p, errors.New("page is too large")
	}
	return p, nil
}

func parseBoolParam(q url.Values, name string) (*bool, error) {
	s := q.Get(name)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("Invalid %s value: must be true or false", name)
	}
	return &b, nil
}

func parsePriceParam(q url.Values, name string) (*float64, error) {
	s := q.Get(name)
	if s == "" {
		return nil, nil
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("Invalid %s: must be a non-negative number", name)
	}
	return &price, nil
}

// parseSort reads "field:ASC,field2:DESC". The direction defaults to ASC.
func parseSort(raw string) ([]store.SortField, error) {
	if raw == "" {
		return nil, nil
	}
	seen := make(map[string]bool)
	var fields []store.SortField
	for _, part := range strings.Split(raw, ",") {
		name, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
		if !productSortFields[name] {
			return nil, fmt.Errorf("Invalid sort field: %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("Duplicate sort field: %q", name)
		}
		seen[name] = true

		sf := store.SortField{Field: name}
		switch strings.ToUpper(dir) {
		case "", "ASC":
		case "DESC":
			sf.Desc = true
		default:
			return nil, fmt.Errorf("Invalid sort direction for %s: must be ASC or DESC", name)
		}
		fields = append(fields, sf)
	}
	return fields, nil
}

// parseProductListQuery validates the product list query string. isActive
// defaults to true so the storefront never sees inactive products by accident.
func parseProductListQuery(q url.Values) (store.ListProductsParams, pagination, error) {
	var params store.ListProductsParams

	page, err := parsePagination(q)
	if err != nil {
		return params, page, err
	}
	params.Limit = page.Limit
	params.Offset = page.offset()

	if s := q.Get("categoryId"); s != "" {
		if !primitive.IsValidObjectID(s) {
			return params, page, fmt.Errorf("Invalid categoryId: %s", s)
		}
		params.CategoryID = &s
	}

	if tags := splitList(q["tags"]); len(tags) > 0 {
		for _, t := range tags {
			if t == "" {
				return params, page, errors.New("tags must not contain empty values")
			}
		}
		params.Tags = tags
	}

	if s := strings.TrimSpace(q.Get("search")); s != "" {
		params.SearchQuery = &s
	}

	if params.MinPrice, err = parsePriceParam(q, "minPrice"); err != nil {
		return params, page, err
	}
	if params.MaxPrice, err = parsePriceParam(q, "maxPrice"); err != nil {
		return params, page, err
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		return params, page, errors.New("minPrice cannot exceed maxPrice")
	}

	if params.IsFeatured, err = parseBoolParam(q, "isFeatured"); err != nil {
		return params, page, err
	}
	if params.IsActive, err = parseBoolParam(q, "isActive"); err != nil {
		return params, page, err
	}
	if params.IsActive == nil {
		active := true
		params.IsActive = &active
	}

	if params.Sort, err = parseSort(q.Get("sort")); err != nil {
		return params, page, err
	}
	return params, page, nil
}
