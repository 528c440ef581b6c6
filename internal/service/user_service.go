package service

import (
	"errors"
	"fmt"

	"go-stockcredit/internal/apperr"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/repository"
	"go-stockcredit/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCompanyInput bundles a new tenant with its first director.
type CreateCompanyInput struct {
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	DirectorName     string `json:"director_name" validate:"required"`
	DirectorEmail    string `json:"director_email" validate:"required,email"`
	DirectorPassword string `json:"director_password" validate:"required,min=6"`
}

// UserService manages tenants and their members. ADMIN creates companies
// (together with their first director); directors manage their own
// company's users.
type UserService interface {
	CreateCompanyWithDirector(actor *model.User, input CreateCompanyInput) (*model.Company, *model.User, error)
	GetCompanies(actor *model.User) ([]model.Company, error)
	CreateUser(actor *model.User, user *model.User, password string) error
	UpdateUser(actor *model.User, id uuid.UUID, update *model.User) (*model.User, error)
	DeactivateUser(actor *model.User, id uuid.UUID) error
	GetCompanyUsers(actor *model.User) ([]model.User, error)
}

type userService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	db          *gorm.DB
}

func NewUserService(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, db *gorm.DB) UserService {
	return &userService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		db:          db,
	}
}

// CreateCompanyWithDirector creates the tenant and its first
// COMPANY_DIRECTOR atomically.
func (s *userService) CreateCompanyWithDirector(actor *model.User, input CreateCompanyInput) (*model.Company, *model.User, error) {
	if actor.Role != model.RoleAdmin {
		return nil, nil, fmt.Errorf("%w: only admins may create companies", apperr.ErrUnauthorized)
	}
	if errs := validator.ValidateStruct(&input); len(errs) > 0 {
		firstErr := errs[0]
		return nil, nil, fmt.Errorf("%w: field '%s' failed on '%s'", apperr.ErrInvalidInput, firstErr.FailedField, firstErr.Tag)
	}

	if existing, _ := s.userRepo.FindByEmail(input.DirectorEmail); existing != nil {
		return nil, nil, fmt.Errorf("%w: director email already in use", apperr.ErrInvalidInput)
	}

	var company *model.Company
	var director *model.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		c := &model.Company{
			Name:    input.Name,
			Email:   input.Email,
			Phone:   input.Phone,
			Address: input.Address,
		}
		c.CreatedBy = actor.ID.String()
		c.UpdatedBy = actor.ID.String()
		if err := s.companyRepo.Create(tx, c); err != nil {
			return err
		}

		d := &model.User{
			Email:     input.DirectorEmail,
			FullName:  input.DirectorName,
			Role:      model.RoleDirector,
			CompanyID: &c.ID,
			IsActive:  true,
		}
		d.CreatedBy = actor.ID.String()
		d.UpdatedBy = actor.ID.String()
		if err := d.SetPassword(input.DirectorPassword); err != nil {
			return err
		}
		if err := tx.Create(d).Error; err != nil {
			return err
		}

		company = c
		director = d
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return company, director, nil
}

func (s *userService) GetCompanies(actor *model.User) ([]model.Company, error) {
	if actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may list companies", apperr.ErrUnauthorized)
	}
	return s.companyRepo.FindAll()
}

// CreateUser lets a director add a USER to their own company.
func (s *userService) CreateUser(actor *model.User, user *model.User, password string) error {
	if !actor.IsDirector() || actor.CompanyID == nil {
		return fmt.Errorf("%w: only directors may create users", apperr.ErrUnauthorized)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", apperr.ErrInvalidInput)
	}

	user.Role = model.RoleUser
	user.CompanyID = actor.CompanyID
	user.IsActive = true
	if errs := validator.ValidateStruct(user); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("%w: field '%s' failed on '%s'", apperr.ErrInvalidInput, firstErr.FailedField, firstErr.Tag)
	}

	if existing, _ := s.userRepo.FindByEmail(user.Email); existing != nil {
		return fmt.Errorf("%w: email already in use", apperr.ErrInvalidInput)
	}

	if err := user.SetPassword(password); err != nil {
		return err
	}
	user.CreatedBy = actor.ID.String()
	user.UpdatedBy = actor.ID.String()
	return s.userRepo.Create(user)
}

func (s *userService) UpdateUser(actor *model.User, id uuid.UUID, update *model.User) (*model.User, error) {
	user, err := s.findCompanyUser(actor, id)
	if err != nil {
		return nil, err
	}

	user.FullName = update.FullName
	user.PhoneNumber = update.PhoneNumber
	user.IsActive = update.IsActive
	user.UpdatedBy = actor.ID.String()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeactivateUser(actor *model.User, id uuid.UUID) error {
	user, err := s.findCompanyUser(actor, id)
	if err != nil {
		return err
	}
	user.IsActive = false
	user.UpdatedBy = actor.ID.String()
	return s.userRepo.Update(user)
}

func (s *userService) GetCompanyUsers(actor *model.User) ([]model.User, error) {
	if !actor.IsDirector() || actor.CompanyID == nil {
		return nil, fmt.Errorf("%w: only directors may list users", apperr.ErrUnauthorized)
	}
	return s.userRepo.FindByCompany(*actor.CompanyID)
}

func (s *userService) findCompanyUser(actor *model.User, id uuid.UUID) (*model.User, error) {
	if !actor.IsDirector() {
		return nil, fmt.Errorf("%w: directors only", apperr.ErrUnauthorized)
	}
	user, err := s.userRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if user.CompanyID == nil || !actor.SameCompany(*user.CompanyID) {
		return nil, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	return user, nil
}
