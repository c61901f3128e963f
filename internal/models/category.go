package models

import (
	"strings"

	"github.com/google/uuid"
)

// Category titles are content-addressed: "Food" and "food" are the same row.
// NormalizeCategoryTitle is the single place casing is decided.
func NormalizeCategoryTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

type Category struct {
	BaseModel
	Title string `json:"title" gorm:"type:varchar(100);uniqueIndex;not null"`

	Groups []CategoryGroup `json:"-" gorm:"foreignKey:CategoryID"`
}

// CategoryGroup links a shared category into one group and carries that
// group's styling for it. A category is usable inside a group only once this
// link exists.
type CategoryGroup struct {
	BaseModel
	CategoryID uuid.UUID `json:"categoryID" gorm:"type:uuid;not null;index;uniqueIndex:idx_category_group"`
	GroupID    uuid.UUID `json:"groupID" gorm:"type:uuid;not null;index;uniqueIndex:idx_category_group"`
	IconURL    string    `json:"iconURL" gorm:"type:text;not null"`
	ColorCode  string    `json:"colorCode" gorm:"type:varchar(20);not null"`

	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Group    Group    `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}
