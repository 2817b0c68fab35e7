package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan tiers and their monthly report quotas.
const (
	PlanProfessional = "professional"
	PlanClinic       = "clinic"

	ProfessionalQuota = 100
	ClinicQuota       = 150
)

// Profile is the billing/quota record for one therapist account.
type Profile struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email            string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	FullName         string         `gorm:"size:255" json:"full_name"`
	Plan             string         `gorm:"size:20;default:'professional'" json:"plan"`
	ReportsRemaining int            `gorm:"not null;default:100;check:reports_remaining >= 0" json:"reports_remaining"`
	LowQuotaNotified bool           `gorm:"not null;default:false" json:"low_quota_notified"`
	SheetID          *string        `gorm:"size:100" json:"sheet_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

// PlanQuota returns the monthly report quota for a plan tier.
func PlanQuota(plan string) int {
	if plan == PlanClinic {
		return ClinicQuota
	}
	return ProfessionalQuota
}
