package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
)

// Supplier represents a supplier company or one of its contact entities.
// Large suppliers route orders through multiple contacts under a parent
// company; ParentID links a contact to that parent. The hierarchy is a
// single level deep: a supplier with a parent cannot itself be a parent.
type Supplier struct {
	shared.BaseAggregateRoot
	Code     string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string         `gorm:"type:varchar(200);not null"`
	Status   SupplierStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ParentID *uuid.UUID     `gorm:"type:uuid;index"`
	Email    string         `gorm:"type:varchar(200);index"`
	Phone    string         `gorm:"type:varchar(50)"`
	Notes    string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier with required fields
func NewSupplier(code, name string) (*Supplier, error) {
	if err := validateSupplierCode(code); err != nil {
		return nil, err
	}
	if err := validateSupplierName(name); err != nil {
		return nil, err
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            SupplierStatusActive,
	}, nil
}

// NewContact creates a contact entity under a parent supplier
func NewContact(parent *Supplier, code, name string) (*Supplier, error) {
	if parent.ParentID != nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Contacts cannot be nested under another contact")
	}
	contact, err := NewSupplier(code, name)
	if err != nil {
		return nil, err
	}
	parentID := parent.ID
	contact.ParentID = &parentID
	return contact, nil
}

// Update updates the supplier's basic information
func (s *Supplier) Update(name string) error {
	if err := validateSupplierName(name); err != nil {
		return err
	}

	s.Name = name
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetContactInfo sets the supplier's contact information
func (s *Supplier) SetContactInfo(email, phone string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	s.Email = email
	s.Phone = phone
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Deactivate deactivates the supplier
func (s *Supplier) Deactivate() error {
	if s.Status == SupplierStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Supplier is already inactive")
	}

	s.Status = SupplierStatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// IsActive returns true if the supplier is active
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

// IsContact returns true if the supplier is a contact under a parent company
func (s *Supplier) IsContact() bool {
	return s.ParentID != nil
}

// DisplayName renders the supplier as "Parent / Contact" when it has a
// parent, or just the name otherwise.
func (s *Supplier) DisplayName(parent *Supplier) string {
	if s.ParentID != nil && parent != nil {
		return parent.Name + " / " + s.Name
	}
	return s.Name
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateSupplierCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Supplier code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Supplier code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Supplier code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateSupplierName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 || !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	return nil
}
