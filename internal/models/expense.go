package models

// Expense records money spent by a student.
type Expense struct {
	Base
	StudentID   uint    `gorm:"not null;index" json:"-"`
	Amount      float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category    string  `gorm:"size:100;not null" json:"category"`
	Description string  `gorm:"size:255;not null" json:"description"`
	ExpenseDate Date    `gorm:"not null;index" json:"date"`
}
