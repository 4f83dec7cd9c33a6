package echoapi

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ecurie/core"
)

var orderingParam = "ordering"

// Ordering binds the "ordering" query param, e.g. `?ordering=level,-price`.
type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind fills the orderings, rejecting fields isValid does not accept.
func (ord *Ordering) Bind(ctx echo.Context, isValid func(field string) bool) error {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return nil
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		if !isValid(field) {
			return core.NewFieldValidationError(orderingParam, fmt.Sprintf("cannot order by %q", field))
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
	return nil
}
