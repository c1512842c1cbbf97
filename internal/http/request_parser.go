package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"spending/internal/analytics"
)

var errEmptyBody = errors.New("request body is empty")

// MonthParams holds month and year query values. Zero means omitted.
type MonthParams struct {
	Month int
	Year  int
}

// parseIntParam reads an optional integer query value. present is false
// when the value is absent or blank.
func parseIntParam(query url.Values, key string) (n int, present bool, err error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, true, nil
}

// ParseMonthParams extracts month and year, leaving defaults to the engine.
// A value that is present must be in range; only omission defaults.
func ParseMonthParams(query url.Values) (MonthParams, error) {
	month, ok, err := parseIntParam(query, "month")
	if err != nil {
		return MonthParams{}, err
	}
	if ok {
		if err := analytics.ValidateMonth(month); err != nil {
			return MonthParams{}, err
		}
	}
	year, ok, err := parseIntParam(query, "year")
	if err != nil {
		return MonthParams{}, err
	}
	if ok {
		if err := analytics.ValidateYear(year); err != nil {
			return MonthParams{}, err
		}
	}
	return MonthParams{Month: month, Year: year}, nil
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if dec.More() {
		return errors.New("request body must hold a single JSON object")
	}
	return nil
}
