package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultCategoryColor = "#808080"

// Category belongs to a user, or to nobody when it is a global category.
type Category struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id"`
	Name      string     `db:"name" json:"name"`
	Color     string     `db:"color" json:"color"`
	Icon      *string    `db:"icon" json:"icon"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type CategoryInput struct {
	Name  string
	Color string
	Icon  *string
}

// CategoryPatch lists the fields of a partial category update. A nil pointer
// leaves the column untouched; IconSet with a nil Icon clears the icon.
type CategoryPatch struct {
	Name    *string
	Color   *string
	Icon    *string
	IconSet bool
}

func (p CategoryPatch) Empty() bool {
	return p.Name == nil && p.Color == nil && !p.IconSet
}

// DefaultCategories are created for every new user.
var DefaultCategories = []CategoryInput{
	{Name: "Genel", Color: "#808080", Icon: strPtr("list")},
	{Name: "İş", Color: "#007BFF", Icon: strPtr("briefcase")},
	{Name: "Kişisel", Color: "#28A745", Icon: strPtr("person")},
}

func strPtr(s string) *string { return &s }
