package model

import (
	"fmt"
	"strings"
)

// Category identifies which patient log table a record came from.
type Category string

// Categories
const (
	CategoryInsulin  Category = "insulin"
	CategoryMeal     Category = "meal"
	CategoryActivity Category = "activity"
	CategorySleep    Category = "sleep"
	CategoryStress   Category = "stress"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryInsulin,
	CategoryMeal,
	CategoryActivity,
	CategorySleep,
	CategoryStress,
}

// Store table names, as the patient-side application writes them.
const (
	TableInsulin       = "insulin"
	TableMeals         = "meals"
	TableActivities    = "activities"
	TableSleep         = "sleep"
	TableStress        = "stress"
	TableDoctorReports = "doctor_reports"
)

// Raw field names
const (
	FieldPatientID    = "patient_id"
	FieldCreatedAt    = "created_at"
	FieldDosage       = "dosage"
	FieldCBG          = "cbg"
	FieldCBGPreMeal   = "cbg_pre_meal"
	FieldCBGPostMeal  = "cbg_post_meal"
	FieldDuration     = "duration"
	FieldActivityType = "activity_type"
	FieldStartTime    = "start_time"
	FieldEndTime      = "end_time"
	FieldMealType     = "meal_type"
	FieldCalories     = "calories"
	FieldRiceCups     = "rice_cups"
	FieldDish         = "dish"
	FieldDrinks       = "drinks"
	FieldSleepHours   = "sleep_hours"
	FieldStressScore  = "stress_score"
	FieldNotes        = "notes"
)

// Meal types
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnacks    = "snacks"

	// SubtypeAll disables the subtype filter.
	SubtypeAll = "all"
)

// MealTypes lists the meal types that get their own count series.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnacks}

// Table returns the store table holding records of this category.
func (c Category) Table() string {
	switch c {
	case CategoryMeal:
		return TableMeals
	case CategoryActivity:
		return TableActivities
	default:
		return string(c)
	}
}

// NumericFields returns the raw fields the normalizer extracts as numbers.
func (c Category) NumericFields() []string {
	switch c {
	case CategoryInsulin:
		return []string{FieldDosage, FieldCBG, FieldCBGPreMeal, FieldCBGPostMeal}
	case CategoryMeal:
		return []string{FieldCalories, FieldRiceCups}
	case CategoryActivity:
		return []string{FieldDuration}
	case CategorySleep:
		return []string{FieldSleepHours}
	case CategoryStress:
		return []string{FieldStressScore}
	}
	return nil
}

// HasSubtype reports whether records of this category carry a subtype.
func (c Category) HasSubtype() bool {
	return c == CategoryMeal
}

// MealType canonicalizes a meal_type value: trimmed, lower case, with
// "snack" counted as "snacks".
func MealType(subtype string) string {
	t := strings.ToLower(strings.TrimSpace(subtype))
	if t == "snack" {
		return MealSnacks
	}
	return t
}

// ParseCategory accepts a category name or its store table name.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insulin", "glucose":
		return CategoryInsulin, nil
	case "meal", "meals":
		return CategoryMeal, nil
	case "activity", "activities":
		return CategoryActivity, nil
	case "sleep":
		return CategorySleep, nil
	case "stress":
		return CategoryStress, nil
	}
	return "", fmt.Errorf("unknown category %q (valid: insulin, meal, activity, sleep, stress)", s)
}
