package model

// Company is the tenant boundary. Every business record below it carries a
// CompanyID and is only visible to users of that company (ADMIN spans all).
type Company struct {
	BaseModel
	Name    string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Email   string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Phone   string `gorm:"type:varchar(20)" json:"phone"`
	Address string `gorm:"type:text" json:"address"`

	Users    []User    `json:"users,omitempty"`
	Products []Product `json:"products,omitempty"`
}
