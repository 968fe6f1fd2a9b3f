package recommend

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Clark-Hu/filmrec/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Query is the raw, unvalidated request for recommendations.
type Query struct {
	FilmID string
	Offset string
	Limit  string
}

// ParsedQuery is a validated Query.
type ParsedQuery struct {
	FilmID int
	Page   domain.Pagination
}

// ParseQuery validates q. Failures are *Error with OutcomeInvalidInput.
func ParseQuery(q Query) (ParsedQuery, error) {
	id, err := strconv.Atoi(q.FilmID)
	if err != nil {
		return ParsedQuery{}, invalidInput("Unexpected id %s, is not a number.", q.FilmID)
	}
	page, err := ParsePagination(q.Offset, q.Limit)
	if err != nil {
		return ParsedQuery{}, err
	}
	return ParsedQuery{FilmID: id, Page: page}, nil
}

// ParsePagination parses offset and limit query values. Empty values take the
// defaults; anything else must be a non-negative base-10 integer.
func ParsePagination(offset, limit string) (domain.Pagination, error) {
	page := domain.DefaultPagination()

	if offset != "" {
		v, err := strconv.Atoi(offset)
		if err != nil {
			return domain.Pagination{}, invalidInput("Unexpected offset %s, is not a number.", offset)
		}
		page.Offset = v
	}
	if limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil {
			return domain.Pagination{}, invalidInput("Unexpected limit %s, is not a number.", limit)
		}
		page.Limit = v
	}

	if err := validate.Struct(page); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return domain.Pagination{}, invalidInput("Unexpected %s %v, must not be negative.", strings.ToLower(fe.Field()), fe.Value())
		}
		return domain.Pagination{}, internal(err)
	}
	return page, nil
}
