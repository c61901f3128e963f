package models

type User struct {
	BaseModel
	Email        string  `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string  `json:"-" gorm:"type:text"`
	FirstName    string  `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName     string  `json:"lastName" gorm:"type:varchar(100);not null"`
	AvatarURL    *string `json:"avatarURL,omitempty" gorm:"type:text"`
	AuthProvider *string `json:"authProvider,omitempty" gorm:"type:varchar(20)"`

	Memberships    []Membership    `json:"-" gorm:"foreignKey:UserID"`
	Expenses       []Expense       `json:"-" gorm:"foreignKey:UserID"`
	Replenishments []Replenishment `json:"-" gorm:"foreignKey:UserID"`
}
