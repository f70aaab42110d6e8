package report

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

var ErrInvalidFilter = errors.New("invalid report filter")

const DefaultPageSize = 20

// Filters are the report query parameters as the client sent them. Period, when set,
// overrides From and To; the originals are kept so page links reproduce the request.
type Filters struct {
	CategoryID *int64
	From       *int64
	To         *int64
	Period     *string
	PageSize   int
	Page       int
}

// ParseFilters reads filters from a query string. Page sizes above maxPageSize are rejected.
func ParseFilters(q url.Values, defaultPageSize, maxPageSize int) (Filters, error) {
	f := Filters{PageSize: defaultPageSize, Page: 1}

	var err error

	if f.CategoryID, err = optionalInt(q, "category_id"); err != nil {
		return Filters{}, err
	}

	if f.From, err = optionalInt(q, "from"); err != nil {
		return Filters{}, err
	}

	if f.To, err = optionalInt(q, "to"); err != nil {
		return Filters{}, err
	}

	if q.Has("period") {
		f.Period = new(q.Get("period"))
	}

	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageSize {
			return Filters{}, fmt.Errorf("%w: page_size must be between 1 and %d", ErrInvalidFilter, maxPageSize)
		}

		f.PageSize = n
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Filters{}, fmt.Errorf("%w: page must be a positive integer", ErrInvalidFilter)
		}

		f.Page = n
	}

	return f, nil
}

func optionalInt(q url.Values, key string) (*int64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidFilter, key)
	}

	return &n, nil
}

// Values encodes the filters with the given page number.
func (f Filters) Values(page int) url.Values {
	v := url.Values{}

	if f.CategoryID != nil {
		v.Set("category_id", strconv.FormatInt(*f.CategoryID, 10))
	}

	if f.From != nil {
		v.Set("from", strconv.FormatInt(*f.From, 10))
	}

	if f.To != nil {
		v.Set("to", strconv.FormatInt(*f.To, 10))
	}

	if f.Period != nil {
		v.Set("period", *f.Period)
	}

	v.Set("page_size", strconv.Itoa(f.PageSize))
	v.Set("page", strconv.Itoa(page))

	return v
}
