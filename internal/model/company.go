package model

import "time"

// Company — companies, one profile per vendor principal
type Company struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement"                    json:"id"`
	UserID              string    `gorm:"type:varchar(64);not null;uniqueIndex"       json:"user_id"`
	CompanyName         string    `gorm:"type:varchar(255);not null"                  json:"company_name"`
	RegistrationNo      string    `gorm:"type:varchar(100);not null;default:''"       json:"registration_no"`
	ContactPerson       string    `gorm:"type:varchar(255);not null;default:''"       json:"contact_person"`
	ContactEmail        string    `gorm:"type:varchar(255);not null;default:''"       json:"contact_email"`
	ContactPhone        string    `gorm:"type:varchar(50);not null;default:''"        json:"contact_phone"`
	CertificationStatus string    `gorm:"type:varchar(50);not null;default:'pending'" json:"certification_status"`
	CreatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"updated_at"`
}

func (Company) TableName() string { return "companies" }

// VendorApplication — vendor_applications, interest registration
// distinct from a full proposal
type VendorApplication struct {
	ID                int64     `gorm:"primaryKey;autoIncrement"                      json:"id"`
	TenderID          int64     `gorm:"not null"                                      json:"tender_id"`
	VendorID          string    `gorm:"type:varchar(64);not null"                     json:"vendor_id"`
	CompanyName       string    `gorm:"type:varchar(255);not null"                    json:"company_name"`
	CompanyRegNo      string    `gorm:"type:varchar(100);not null;default:''"         json:"company_reg_no"`
	ContactPerson     string    `gorm:"type:varchar(255);not null"                    json:"contact_person"`
	ContactEmail      string    `gorm:"type:varchar(255);not null;default:''"         json:"contact_email"`
	ContactPhone      string    `gorm:"type:varchar(50);not null;default:''"          json:"contact_phone"`
	AdditionalNotes   string    `gorm:"type:text;not null;default:''"                 json:"additional_notes"`
	ApplicationStatus string    `gorm:"type:varchar(20);not null;default:'submitted'" json:"application_status"`
	SubmittedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"            json:"submitted_at"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"            json:"updated_at"`
}

func (VendorApplication) TableName() string { return "vendor_applications" }
