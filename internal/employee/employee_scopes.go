package employee

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchScope matches term case-insensitively against name, email,
// department and phone. An empty term matches everything.
func SearchScope(term string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		pattern := "%" + strings.ToLower(likeEscaper.Replace(term)) + "%"
		return db.Where(
			"LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\' OR LOWER(department) LIKE ? ESCAPE '\\' OR LOWER(phone) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern, pattern,
		)
	}
}

// NewestFirst orders by creation time, ties broken by id so pages are stable.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func Paginate(q ListQuery) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.Limit)
	}
}
