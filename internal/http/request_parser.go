package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"expcat/internal/core"
)

// Query parameters of the transaction table filter.
const (
	paramCategory = "category"
	// paramCategorySet marks that the category checkboxes were submitted, so
	// an absent category list means "none selected" rather than "no filter".
	paramCategorySet = "category_set"
	paramFrom        = "from"
	paramTo          = "to"
	paramType        = "type"

	dateParamLayout = "2006-01-02"
	uploadField     = "file"
)

// FilterError names the query parameter that could not be parsed.
type FilterError struct {
	Param string
	Value string
	Err   error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *FilterError) Unwrap() error { return e.Err }

// ParseFilter reads the dashboard table filter from query values. Repeated
// category values select several labels.
func ParseFilter(q url.Values) (core.Filter, error) {
	var f core.Filter

	vals, submitted := q[paramCategory]
	if submitted || q.Has(paramCategorySet) {
		f.Categories = make([]core.Category, 0, len(vals))
		for _, v := range vals {
			if strings.TrimSpace(v) == "" {
				continue
			}
			c, err := core.ParseCategory(v)
			if err != nil {
				return core.Filter{}, &FilterError{Param: paramCategory, Value: v, Err: err}
			}
			f.Categories = append(f.Categories, c)
		}
	}

	var err error
	if f.From, err = parseDateParam(q, paramFrom); err != nil {
		return core.Filter{}, err
	}
	if f.To, err = parseDateParam(q, paramTo); err != nil {
		return core.Filter{}, err
	}

	f.Type = core.TypeAll
	if v := strings.TrimSpace(q.Get(paramType)); v != "" {
		t, err := core.ParseTxType(v)
		if err != nil {
			return core.Filter{}, &FilterError{Param: paramType, Value: v, Err: err}
		}
		f.Type = t
	}
	return f, nil
}

func parseDateParam(q url.Values, name string) (time.Time, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateParamLayout, v)
	if err != nil {
		return time.Time{}, &FilterError{Param: name, Value: v, Err: core.ErrInvalidDate}
	}
	return t, nil
}

// EncodeFilter is the inverse of ParseFilter.
func EncodeFilter(f core.Filter) url.Values {
	q := url.Values{}
	if f.Categories != nil {
		q.Set(paramCategorySet, "1")
		for _, c := range f.Categories {
			q.Add(paramCategory, c.String())
		}
	}
	if !f.From.IsZero() {
		q.Set(paramFrom, f.From.Format(dateParamLayout))
	}
	if !f.To.IsZero() {
		q.Set(paramTo, f.To.Format(dateParamLayout))
	}
	if f.Type != "" && f.Type != core.TypeAll {
		q.Set(paramType, string(f.Type))
	}
	return q
}

// ParseUploadOrFail extracts the uploaded CSV, capping the body at maxBytes.
// The caller closes the returned file.
func ParseUploadOrFail(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, string, *HTMXResponseBuilder) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", ErrorResponse(http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File too large (limit %d MB)", tooLarge.Limit>>20))
		}
		return nil, "", BadRequestError("Invalid upload request")
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, "", BadRequestError("Choose a CSV file to upload")
	}
	name := sanitizeFileName(header.Filename)
	if !strings.EqualFold(path.Ext(name), ".csv") {
		_ = file.Close()
		return nil, "", BadRequestError("Only .csv files are accepted")
	}
	return file, name, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET also admits HEAD.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
