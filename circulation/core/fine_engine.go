package core

import (
	"fmt"
	"time"
)

// FineAssessment is the outcome of a fine policy evaluation.
type FineAssessment struct {
	Kind     FineKind
	PolicyID string
	Amount   Money
}

// AssessOverdue charges the daily rate for every started day between dueDate and returnedAt.
func AssessOverdue(book FinePolicyBook, estimatedPrice Money, dueDate time.Time, returnedAt time.Time) (FineAssessment, error) {
	if book.Overdue == nil {
		return FineAssessment{}, PolicyResolutionError("no overdue fine policy configured")
	}

	late := returnedAt.Sub(dueDate)
	if late <= 0 {
		return FineAssessment{}, PolicyResolutionError("item was not returned late")
	}

	daysLate := int64(late / (24 * time.Hour))
	if late%(24*time.Hour) != 0 {
		daysLate++
	}

	amount := book.Overdue.DailyRate * Money(daysLate)

	if book.Overdue.MaxOverduePercentage > 0 {
		if ceiling := PercentOf(estimatedPrice, book.Overdue.MaxOverduePercentage); amount > ceiling {
			amount = ceiling
		}
	}

	return FineAssessment{Kind: FineKindOverdue, PolicyID: book.Overdue.PolicyID, Amount: amount}, nil
}

// AssessDamage charges for the degradation between the pickup and the return grade.
func AssessDamage(book FinePolicyBook, estimatedPrice Money, atPickup ConditionGrade, atReturn ConditionGrade) (FineAssessment, error) {
	if book.Damage == nil {
		return FineAssessment{}, PolicyResolutionError("no damage fine policy configured")
	}

	damage := atReturn.DamagePercentage - atPickup.DamagePercentage
	if damage < 0 {
		damage = 0
	}

	for _, tier := range book.Damage.Tiers {
		if damage >= tier.MinDamagePercentage && damage <= tier.MaxDamagePercentage {
			return FineAssessment{
				Kind:     FineKindDamage,
				PolicyID: book.Damage.PolicyID,
				Amount:   PercentOf(estimatedPrice, tier.ChargePercentage) + tier.ProcessingFee,
			}, nil
		}
	}

	return FineAssessment{}, PolicyResolutionError(fmt.Sprintf("no damage tier covers %.2f%%", damage))
}

// AssessLost charges the replacement fee.
func AssessLost(book FinePolicyBook, estimatedPrice Money) (FineAssessment, error) {
	if book.Lost == nil {
		return FineAssessment{}, PolicyResolutionError("no lost fine policy configured")
	}

	return FineAssessment{
		Kind:     FineKindLost,
		PolicyID: book.Lost.PolicyID,
		Amount:   PercentOf(estimatedPrice, book.Lost.ReplacementFeePercentage),
	}, nil
}
