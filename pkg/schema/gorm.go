package schema

import (
	"gorm.io/gorm"
)

// AllModels returns every application model for GORM AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&AddressRD{},
		&Address{},
		&Household{},
		&HouseholdMembers{},
		&EligibilityProgramRD{},
		&EligibilityProgram{},
		&IQProgramRD{},
		&IQProgram{},
		&UserHist{},
		&AddressHist{},
		&HouseholdHist{},
		&HouseholdMembersHist{},
		&EligibilityProgramHist{},
		&IQProgramHist{},
		&Feedback{},
	}
}

// Migrate runs GORM AutoMigrate to create or update the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
