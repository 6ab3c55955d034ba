package types

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is the spending category of a transaction or budget.
//
// The set is closed: user input is parsed into one of the known values
// instead of being stored verbatim.
type Category string

const (
	CategoryGroceries     Category = "Groceries"
	CategoryRent          Category = "Rent"
	CategoryUtilities     Category = "Utilities"
	CategoryDining        Category = "Dining"
	CategoryEntertainment Category = "Entertainment"
	CategoryTravel        Category = "Travel"
	CategoryHealth        Category = "Health"
	CategoryOther         Category = "Other"

	// CategorySettlement is reserved for transactions created by the
	// settlement engine.
	CategorySettlement Category = "Settlement"
)

// Categories returns all categories users can record transactions for.
// CategorySettlement is not included since it is reserved.
func Categories() []Category {
	return []Category{
		CategoryGroceries,
		CategoryRent,
		CategoryUtilities,
		CategoryDining,
		CategoryEntertainment,
		CategoryTravel,
		CategoryHealth,
		CategoryOther,
	}
}

var categoryCaser = cases.Title(language.English)

// ParseCategory parses a string into a Category. Parsing is case-insensitive
// and returns the canonical casing.
func ParseCategory(s string) (Category, error) {
	c := Category(categoryCaser.String(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%q is not a valid category", s)
	}

	return c, nil
}

// Valid reports whether the category is part of the closed set, including
// the reserved Settlement category.
func (c Category) Valid() bool {
	if c == CategorySettlement {
		return true
	}

	for _, known := range Categories() {
		if c == known {
			return true
		}
	}

	return false
}

func (c Category) String() string {
	return string(c)
}

// Scan reads the value from the database.
func (c *Category) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*c = Category(v)
	case []byte:
		*c = Category(v)
	default:
		return fmt.Errorf("cannot scan %T into Category", value)
	}

	return nil
}

// Value returns the value for the SQL driver to write to the database.
func (c Category) Value() (driver.Value, error) {
	return string(c), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Category) GormDataType() string {
	return "text"
}
