package models

import "slices"

// XP and level rules
const (
	XPPerLevel     = 100
	TeamXPPerLevel = 1000

	BarrierReportXP = 10
	PraiseReportXP  = 15
	VerificationXP  = 5

	InitialConfidenceScore = 100
	ConfidencePerConfirm   = 10
	MaxConfidenceScore     = 100

	MaxTeamNameLength = 50
)

// Quest trigger actions
const (
	ActionReportCreated   = "report_created"
	ActionPraiseCreated   = "praise_created"
	ActionReportVerified  = "report_verified"
	ActionBarrierResolved = "barrier_resolved"
)

// BarrierCategories are the categories allowed for barrier reports
var BarrierCategories = []string{
	"blocked_sidewalk",
	"no_ramp",
	"damaged_ramp",
	"damaged_tactile_paving",
	"restroom_issue",
	"high_threshold",
	"elevator_issue",
	"signage_issue",
	"kiosk_accessibility",
	"other",
}

// PraiseCategories are the categories allowed for praise reports
var PraiseCategories = []string{
	"good_ramp",
	"clean_restroom",
	"friendly_staff",
	"good_voice_guide",
	"wide_passage",
	"other",
}

// LevelForXP returns floor(xp/100)+1
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// TeamLevelForXP returns floor(xp/1000)+1
func TeamLevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/TeamXPPerLevel + 1
}

// ConfidenceForConfirms returns the saturating confidence score after n confirms
func ConfidenceForConfirms(n int) int {
	return ClampConfidence(n * ConfidencePerConfirm)
}

// ClampConfidence clamps a score to [0,100]
func ClampConfidence(score int) int {
	return max(0, min(MaxConfidenceScore, score))
}

// ReportXP returns the XP granted for creating a report of the given type
func ReportXP(reportType string) int {
	if reportType == ReportTypePraise {
		return PraiseReportXP
	}
	return BarrierReportXP
}

// ReportAction returns the quest action for creating a report of the given type
func ReportAction(reportType string) string {
	if reportType == ReportTypePraise {
		return ActionPraiseCreated
	}
	return ActionReportCreated
}

// VerificationAction returns the quest action for a verification kind
func VerificationAction(kind string) string {
	if kind == VerificationResolved {
		return ActionBarrierResolved
	}
	return ActionReportVerified
}

// CategoriesFor returns the category set of a report type
func CategoriesFor(reportType string) []string {
	switch reportType {
	case ReportTypeBarrier:
		return BarrierCategories
	case ReportTypePraise:
		return PraiseCategories
	default:
		return nil
	}
}

// ValidCategory reports whether category belongs to the set of reportType
func ValidCategory(reportType, category string) bool {
	return slices.Contains(CategoriesFor(reportType), category)
}

// ValidReportType reports whether t is a known report type
func ValidReportType(t string) bool {
	return t == ReportTypeBarrier || t == ReportTypePraise
}

// ValidAction reports whether a is a known quest trigger action
func ValidAction(a string) bool {
	switch a {
	case ActionReportCreated, ActionPraiseCreated, ActionReportVerified, ActionBarrierResolved:
		return true
	default:
		return false
	}
}

// ValidProvider reports whether p is a supported identity provider
func ValidProvider(p string) bool {
	switch p {
	case ProviderGoogle, ProviderKakao, ProviderNaver:
		return true
	default:
		return false
	}
}
