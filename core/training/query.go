package training

import (
	"sort"
	"strings"

	"github.com/trezcool/ecurie/core"
)

// Orderable fields
var OrderingFields = []string{"name", "type", "level", "location", "price", "trainer", "createdAt", "updatedAt"}

// IsOrderingField reports whether classes can be ordered by field.
func IsOrderingField(field string) bool {
	for _, f := range OrderingFields {
		if f == field {
			return true
		}
	}
	return false
}

// Match applies AND operation on available QueryFilter fields.
// Search does a case-insensitive match on one of Name, Type or Location.
func (qf *QueryFilter) Match(tc TrainingClass) bool {
	if qf == nil {
		return true
	}
	if qf.Trainer != "" && tc.Trainer != qf.Trainer {
		return false
	}
	if qf.Level != "" && tc.Level != qf.Level {
		return false
	}
	if qf.Type != "" && !strings.EqualFold(tc.Type, qf.Type) {
		return false
	}
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(tc.Name), s) &&
			!strings.Contains(strings.ToLower(tc.Type), s) &&
			!strings.Contains(strings.ToLower(tc.Location), s) {
			return false
		}
	}
	return true
}

// FilterClasses returns the classes matching filter.
func FilterClasses(classes []TrainingClass, filter *QueryFilter) []TrainingClass {
	res := make([]TrainingClass, 0, len(classes))
	for _, tc := range classes {
		if filter.Match(tc) {
			res = append(res, tc)
		}
	}
	return res
}

// compare returns -1, 0 or 1 comparing a and b on field.
func compare(a, b TrainingClass, field string) int {
	cmpStr := func(x, y string) int { return strings.Compare(strings.ToLower(x), strings.ToLower(y)) }
	switch field {
	case "name":
		return cmpStr(a.Name, b.Name)
	case "type":
		return cmpStr(a.Type, b.Type)
	case "level":
		return cmpStr(a.Level, b.Level)
	case "location":
		return cmpStr(a.Location, b.Location)
	case "trainer":
		return strings.Compare(a.Trainer, b.Trainer)
	case "price":
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		}
	case "createdAt":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
	case "updatedAt":
		switch {
		case a.UpdatedAt.Before(b.UpdatedAt):
			return -1
		case a.UpdatedAt.After(b.UpdatedAt):
			return 1
		}
	}
	return 0
}

// SortClasses orders classes in place. Without ordering, newest classes come first.
func SortClasses(classes []TrainingClass, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "createdAt", Ascending: false}}
	}
	sort.SliceStable(classes, func(i, j int) bool {
		for _, ord := range ordering {
			c := compare(classes[i], classes[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}
