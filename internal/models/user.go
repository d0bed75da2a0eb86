package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name     string
	Email    string `gorm:"unique"`
	Password string
	Age      int
	// Preferred display unit for glucose values: "mg/dL" or "mmol/L".
	// Internal computation always uses mg/dL.
	GlucoseUnit string  `gorm:"default:'mg/dL'" json:"glucose_unit"`
	TargetMin   float64 `json:"target_min"`
	TargetMax   float64 `json:"target_max"`
	Verified    bool    `gorm:"default:false"`
}
