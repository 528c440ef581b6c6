package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Role codes as constants
const (
	RoleAdmin    = "ADMIN"
	RoleDirector = "COMPANY_DIRECTOR"
	RoleUser     = "USER"
)

// User represents an authenticated user in the system. ADMIN users have no
// company; everyone else belongs to exactly one.
type User struct {
	BaseModel
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName    string     `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	PhoneNumber string     `gorm:"type:varchar(20)" json:"phone_number"`
	Role        string     `gorm:"type:varchar(30);not null;default:'USER'" json:"role" validate:"required,oneof=ADMIN COMPANY_DIRECTOR USER"`
	CompanyID   *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Company     *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`

	// Internal purchase credit. CreditUsed <= CreditLimit is enforced when
	// orders reserve credit.
	CreditLimit decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"credit_limit"`
	CreditUsed  decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"credit_used"`

	TokenVersion string     `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`                // For user presence
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// IsDirector reports whether the user may manage company resources.
func (u *User) IsDirector() bool {
	return u.Role == RoleDirector || u.Role == RoleAdmin
}

// SameCompany reports whether the user belongs to the given company.
// ADMIN users pass for any company.
func (u *User) SameCompany(companyID uuid.UUID) bool {
	if u.Role == RoleAdmin {
		return true
	}
	return u.CompanyID != nil && *u.CompanyID == companyID
}

// CreditAvailable returns the credit headroom left for new orders.
func (u *User) CreditAvailable() decimal.Decimal {
	return u.CreditLimit.Sub(u.CreditUsed)
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	FullName    string          `json:"full_name"`
	PhoneNumber string          `json:"phone_number"`
	Role        string          `json:"role"`
	CompanyID   *uuid.UUID      `json:"company_id,omitempty"`
	Company     *Company        `json:"company,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	CreditUsed  decimal.Decimal `json:"credit_used"`
	LastSeenAt  *time.Time      `json:"last_seen_at,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		CompanyID:   u.CompanyID,
		Company:     u.Company,
		IsActive:    u.IsActive,
		CreditLimit: u.CreditLimit,
		CreditUsed:  u.CreditUsed,
		LastSeenAt:  u.LastSeenAt,
	}
}
