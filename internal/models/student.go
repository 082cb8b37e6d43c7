package models

// Theme is the UI theme preference stored per student.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Student represents a registered account in the database
type Student struct {
	Base
	Username         string  `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email            string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash     string  `gorm:"not null" json:"-"`
	FullName         string  `gorm:"size:150;not null" json:"full_name"`
	Bio              string  `json:"bio"`
	ProfilePicture   *string `json:"profile_picture"`
	ThemePreference  Theme   `gorm:"size:10;not null;default:light" json:"theme_preference"`
	MonthlyAllowance float64 `gorm:"type:decimal(12,2);not null;default:0" json:"monthly_allowance"`

	Tasks    []Task    `gorm:"foreignKey:StudentID" json:"-"`
	Expenses []Expense `gorm:"foreignKey:StudentID" json:"-"`
}
