// Package schema provides database models for the benefits application
// whose records gyadmin clones and reports on. The models exist for the
// `gyadmin init` bootstrap of non-production environments; the clone
// engine itself works from live catalog metadata, not from these types.
package schema

import (
	"database/sql"
	"time"
)

// User is an applicant account. Cloning rewrites Email, Password and
// PhoneNumber; extracts filter on IsArchived and reset IsUpdated.
type User struct {
	ID        int64  `gorm:"primaryKey"`
	Email     string `gorm:"size:254;uniqueIndex;not null"`
	Password  string `gorm:"size:128;not null"`
	FirstName string `gorm:"size:150"`
	LastName  string `gorm:"size:150"`

	// PhoneNumber is E.164. Clones receive a placeholder so the app never
	// notifies a real person about a cloned account.
	PhoneNumber string `gorm:"size:17"`

	DateJoined         time.Time
	LastLogin          sql.NullTime
	LastCompletedAt    sql.NullTime
	LastRenewedAt      sql.NullTime
	IsArchived         bool `gorm:"not null;default:false"`
	IsUpdated          bool `gorm:"not null;default:false"`
	HasViewedDashboard bool `gorm:"not null;default:false"`
}

func (User) TableName() string { return "app_user" }

// AddressRD is the shared address reference table, deduplicated by the
// SHA-1 of the normalized address content.
type AddressRD struct {
	ID       int64  `gorm:"primaryKey"`
	Address1 string `gorm:"size:200"`
	Address2 string `gorm:"size:200"`
	City     string `gorm:"size:64"`
	State    string `gorm:"size:2"`
	ZipCode  string `gorm:"size:10"`

	// AddressSHA1 is the content hash; at most one row per hash.
	AddressSHA1 string `gorm:"size:40;uniqueIndex;not null"`

	IsInGMA       bool `gorm:"not null;default:false"`
	IsCityCovered bool `gorm:"not null;default:false"`
	HasConnexion  bool `gorm:"not null;default:false"`
	IsVerified    bool `gorm:"not null;default:false"`
	Created       time.Time
	Modified      time.Time
}

func (AddressRD) TableName() string { return "app_addressrd" }

// Address links a user to their eligibility and mailing addresses.
type Address struct {
	ID                   int64 `gorm:"primaryKey"`
	UserID               int64 `gorm:"index;not null"`
	EligibilityAddressID int64 `gorm:"not null"`
	MailingAddressID     int64 `gorm:"not null"`
	IsVerified           bool  `gorm:"not null;default:false"`
	IsUpdated            bool  `gorm:"not null;default:false"`
	Created              time.Time
	Modified             time.Time
}

func (Address) TableName() string { return "app_address" }

// Household holds per-user household financials.
type Household struct {
	ID                int64  `gorm:"primaryKey"`
	UserID            int64  `gorm:"index;not null"`
	DurationAtAddress string `gorm:"size:64"`
	NumberPersons     int    `gorm:"column:number_persons_in_household"`
	IncomeAsFraction  sql.NullFloat64 `gorm:"column:income_as_fraction_of_ami"`
	IsIncomeVerified  bool   `gorm:"not null;default:false"`
	IsUpdated         bool   `gorm:"not null;default:false"`
	Created           time.Time
	Modified          time.Time
}

func (Household) TableName() string { return "app_household" }

// HouseholdMembers stores the individuals in a household as a JSON
// document (persons_in_household list with per-person identification
// paths).
type HouseholdMembers struct {
	ID            int64  `gorm:"primaryKey"`
	UserID        int64  `gorm:"index;not null"`
	HouseholdInfo string `gorm:"type:jsonb"`
	IsUpdated     bool   `gorm:"not null;default:false"`
	Created       time.Time
	Modified      time.Time
}

func (HouseholdMembers) TableName() string { return "app_householdmembers" }

// EligibilityProgram records one income-qualification document upload
// per user and program.
type EligibilityProgram struct {
	ID           int64  `gorm:"primaryKey"`
	UserID       int64  `gorm:"index;not null"`
	ProgramID    int64  `gorm:"not null"`
	DocumentPath string `gorm:"size:512"`
	Created      time.Time
	Modified     time.Time
}

func (EligibilityProgram) TableName() string { return "app_eligibilityprogram" }

// IQProgram records a user's application to an income-qualified program.
type IQProgram struct {
	ID         int64 `gorm:"primaryKey"`
	UserID     int64 `gorm:"index;not null"`
	ProgramID  int64 `gorm:"not null"`
	IsEnrolled bool  `gorm:"not null;default:false"`
	AppliedAt  time.Time
	EnrolledAt sql.NullTime
}

func (IQProgram) TableName() string { return "app_iqprogram" }

// histRecord is the shape shared by all history tables: a JSON snapshot
// of the live row before a change.
type histRecord struct {
	ID               int64  `gorm:"primaryKey"`
	UserID           int64  `gorm:"index;not null"`
	HistoricalValues string `gorm:"type:jsonb"`
	Created          time.Time
}

type UserHist struct{ histRecord }

func (UserHist) TableName() string { return "app_userhist" }

type AddressHist struct{ histRecord }

func (AddressHist) TableName() string { return "app_addresshist" }

type HouseholdHist struct{ histRecord }

func (HouseholdHist) TableName() string { return "app_householdhist" }

type HouseholdMembersHist struct{ histRecord }

func (HouseholdMembersHist) TableName() string { return "app_householdmembershist" }

type EligibilityProgramHist struct{ histRecord }

func (EligibilityProgramHist) TableName() string { return "app_eligibilityprogramhist" }

type IQProgramHist struct{ histRecord }

func (IQProgramHist) TableName() string { return "app_iqprogramhist" }

// IQProgramRD is the reference table of income-qualified programs.
type IQProgramRD struct {
	ID           int64  `gorm:"primaryKey"`
	ProgramName  string `gorm:"size:64;uniqueIndex;not null"`
	FriendlyName string `gorm:"size:128"`
	AMIThreshold sql.NullFloat64 `gorm:"column:ami_threshold"`
	IsActive     bool   `gorm:"not null;default:false"`
}

func (IQProgramRD) TableName() string { return "app_iqprogramrd" }

// EligibilityProgramRD is the reference table of accepted
// income-qualification document types.
type EligibilityProgramRD struct {
	ID           int64  `gorm:"primaryKey"`
	ProgramName  string `gorm:"size:64;uniqueIndex;not null"`
	FriendlyName string `gorm:"size:128"`
	IsActive     bool   `gorm:"not null;default:false"`
}

func (EligibilityProgramRD) TableName() string { return "app_eligibilityprogramrd" }

// Feedback is dashboard feedback; it is not linked to a user.
type Feedback struct {
	ID               int64 `gorm:"primaryKey"`
	StarRating       int
	FeedbackComments string `gorm:"type:text"`
	Modified         time.Time
}

func (Feedback) TableName() string { return "app_feedback" }
