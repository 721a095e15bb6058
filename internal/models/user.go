package models

// User represents a registered account. Accounts start inactive and become
// active once the emailed activation code is confirmed.
type User struct {
	BaseModel
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `gorm:"uniqueIndex" json:"email"`
	DisplayName    string `json:"display_name"`
	PasswordHash   string `json:"-"`
	IsActive       bool   `json:"is_active"`
	IsAdmin        bool   `json:"is_admin"`
	ActivationCode string `gorm:"index" json:"-"`

	Products []Product `json:"products,omitempty"`
	Comments []Comment `json:"comments,omitempty"`
	Ratings  []Rating  `json:"ratings,omitempty"`
}
