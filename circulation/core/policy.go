package core

import (
	"time"
)

// CirculationPolicy holds the limits and windows the workflows enforce.
type CirculationPolicy struct {
	BorrowAmountOnceTime      int
	LoanPeriod                time.Duration
	MaxBorrowExtension        int
	ExtensionPeriod           time.Duration
	RequestExpiry             time.Duration
	PickupWindow              time.Duration
	OverdueOrLostHandleInDays int
	TotalMissedPickUpAllow    int
	ReservationAgeBucket      time.Duration
	DefaultBorrowDurationDays int
	DigitalExtensionDays      int
	MaxDigitalExtensions      int
	DigitalExtensionFee       Money
	Conditions                []ConditionGrade
	Fines                     FinePolicyBook
}

// ConditionGrade describes the physical condition of a copy.
// A higher Rank is a better condition; unusable copies leave circulation on return.
type ConditionGrade struct {
	Code             string
	Rank             int
	DamagePercentage Percentage
	Usable           bool
}

// FinePolicyBook holds one policy per fine kind. A nil policy fails every assessment of its kind.
type FinePolicyBook struct {
	Overdue *OverdueFinePolicy
	Damage  *DamageFinePolicy
	Lost    *LostFinePolicy
}

// OverdueFinePolicy charges DailyRate per started day late, capped at
// MaxOverduePercentage of the estimated price if that is positive.
type OverdueFinePolicy struct {
	PolicyID             string
	DailyRate            Money
	MaxOverduePercentage Percentage
}

// DamageFinePolicy selects the first tier containing the damage percentage.
type DamageFinePolicy struct {
	PolicyID string
	Tiers    []DamageTier
}

// DamageTier covers [MinDamagePercentage, MaxDamagePercentage], both inclusive.
type DamageTier struct {
	MinDamagePercentage Percentage
	MaxDamagePercentage Percentage
	ChargePercentage    Percentage
	ProcessingFee       Money
}

// LostFinePolicy charges ReplacementFeePercentage of the estimated price.
type LostFinePolicy struct {
	PolicyID                 string
	ReplacementFeePercentage Percentage
}

// DefaultCirculationPolicy returns the policy used when no policy file is configured.
func DefaultCirculationPolicy() CirculationPolicy {
	return CirculationPolicy{
		BorrowAmountOnceTime:      5,
		LoanPeriod:                14 * 24 * time.Hour,
		MaxBorrowExtension:        2,
		ExtensionPeriod:           7 * 24 * time.Hour,
		RequestExpiry:             3 * 24 * time.Hour,
		PickupWindow:              3 * 24 * time.Hour,
		OverdueOrLostHandleInDays: 30,
		TotalMissedPickUpAllow:    3,
		ReservationAgeBucket:      24 * time.Hour,
		DefaultBorrowDurationDays: 14,
		DigitalExtensionDays:      7,
		MaxDigitalExtensions:      2,
		DigitalExtensionFee:       500,
		Conditions: []ConditionGrade{
			{Code: "new", Rank: 5, DamagePercentage: 0, Usable: true},
			{Code: "good", Rank: 4, DamagePercentage: 10, Usable: true},
			{Code: "fair", Rank: 3, DamagePercentage: 30, Usable: true},
			{Code: "poor", Rank: 2, DamagePercentage: 60, Usable: true},
			{Code: "damaged", Rank: 1, DamagePercentage: 100, Usable: false},
		},
		Fines: FinePolicyBook{
			Overdue: &OverdueFinePolicy{PolicyID: "overdue-default", DailyRate: 50, MaxOverduePercentage: 100},
			Damage: &DamageFinePolicy{
				PolicyID: "damage-default",
				Tiers: []DamageTier{
					{MinDamagePercentage: 0, MaxDamagePercentage: 25, ChargePercentage: 20, ProcessingFee: 200},
					{MinDamagePercentage: 25, MaxDamagePercentage: 60, ChargePercentage: 50, ProcessingFee: 200},
					{MinDamagePercentage: 60, MaxDamagePercentage: 100, ChargePercentage: 100, ProcessingFee: 200},
				},
			},
			Lost: &LostFinePolicy{PolicyID: "lost-default", ReplacementFeePercentage: 100},
		},
	}
}

// ConditionGrade looks up a grade by its code.
func (p CirculationPolicy) ConditionGrade(code string) (ConditionGrade, error) {
	for _, grade := range p.Conditions {
		if grade.Code == code {
			return grade, nil
		}
	}

	return ConditionGrade{}, PolicyResolutionError("unknown condition grade " + code)
}

// OverdueOrLostAfter is the time after the due date at which an overdue loan counts as lost.
func (p CirculationPolicy) OverdueOrLostAfter() time.Duration {
	return time.Duration(p.OverdueOrLostHandleInDays) * 24 * time.Hour
}

// DigitalBorrowDuration is the lease duration of a new digital borrow.
func (p CirculationPolicy) DigitalBorrowDuration() time.Duration {
	return time.Duration(p.DefaultBorrowDurationDays) * 24 * time.Hour
}

// DigitalExtension is the lease extension granted per paid extension.
func (p CirculationPolicy) DigitalExtension() time.Duration {
	return time.Duration(p.DigitalExtensionDays) * 24 * time.Hour
}
