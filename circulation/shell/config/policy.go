package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// ErrInvalidPolicy is returned when the policy file or its overrides are inconsistent.
var ErrInvalidPolicy = errors.New("invalid circulation policy")

// PolicyFile is the YAML representation of the circulation policy.
// Zero scalar values keep the default; present lists replace the default lists.
type PolicyFile struct {
	BorrowAmountOnceTime      int                `yaml:"borrowAmountOnceTime"`
	LoanPeriod                string             `yaml:"loanPeriod"`
	MaxBorrowExtension        int                `yaml:"maxBorrowExtension"`
	ExtensionPeriod           string             `yaml:"extensionPeriod"`
	RequestExpiry             string             `yaml:"requestExpiry"`
	PickupWindow              string             `yaml:"pickupWindow"`
	OverdueOrLostHandleInDays int                `yaml:"overdueOrLostHandleInDays"`
	TotalMissedPickUpAllow    int                `yaml:"totalMissedPickUpAllow"`
	ReservationAgeBucket      string             `yaml:"reservationAgeBucket"`
	DefaultBorrowDurationDays int                `yaml:"defaultBorrowDurationDays"`
	DigitalExtensionDays      int                `yaml:"digitalExtensionDays"`
	MaxDigitalExtensions      int                `yaml:"maxDigitalExtensions"`
	DigitalExtensionFee       int64              `yaml:"digitalExtensionFee"`
	Conditions                []ConditionFile    `yaml:"conditions"`
	Fines                     FinePolicyBookFile `yaml:"fines"`
}

type ConditionFile struct {
	Code             string  `yaml:"code"`
	Rank             int     `yaml:"rank"`
	DamagePercentage float64 `yaml:"damagePercentage"`
	Usable           bool    `yaml:"usable"`
}

type FinePolicyBookFile struct {
	Overdue *struct {
		PolicyID             string  `yaml:"policyID"`
		DailyRate            int64   `yaml:"dailyRate"`
		MaxOverduePercentage float64 `yaml:"maxOverduePercentage"`
	} `yaml:"overdue"`
	Damage *struct {
		PolicyID string `yaml:"policyID"`
		Tiers    []struct {
			Min              float64 `yaml:"min"`
			Max              float64 `yaml:"max"`
			ChargePercentage float64 `yaml:"chargePercentage"`
			ProcessingFee    int64   `yaml:"processingFee"`
		} `yaml:"tiers"`
	} `yaml:"damage"`
	Lost *struct {
		PolicyID                 string  `yaml:"policyID"`
		ReplacementFeePercentage float64 `yaml:"replacementFeePercentage"`
	} `yaml:"lost"`
}

// LoadPolicy reads the policy file at path on top of the defaults, applies environment
// overrides and validates the result. An empty path yields the defaults plus overrides.
func LoadPolicy(path string) (core.CirculationPolicy, error) {
	policy := core.DefaultCirculationPolicy()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return policy, fmt.Errorf("read policy file: %w", err)
		}

		if policy, err = ParsePolicy(data); err != nil {
			return policy, err
		}
	}

	policy.BorrowAmountOnceTime = envInt("BORROW_AMOUNT_ONCE_TIME", policy.BorrowAmountOnceTime)
	policy.MaxBorrowExtension = envInt("MAX_BORROW_EXTENSION", policy.MaxBorrowExtension)
	policy.TotalMissedPickUpAllow = envInt("TOTAL_MISSED_PICKUP_ALLOW", policy.TotalMissedPickUpAllow)
	policy.OverdueOrLostHandleInDays = envInt("OVERDUE_OR_LOST_HANDLE_IN_DAYS", policy.OverdueOrLostHandleInDays)
	policy.LoanPeriod = envDur("LOAN_PERIOD", policy.LoanPeriod)
	policy.PickupWindow = envDur("PICKUP_WINDOW", policy.PickupWindow)
	policy.RequestExpiry = envDur("REQUEST_EXPIRY", policy.RequestExpiry)

	if err := ValidatePolicy(policy); err != nil {
		return policy, err
	}

	return policy, nil
}

// ParsePolicy decodes a YAML policy document on top of the defaults.
func ParsePolicy(data []byte) (core.CirculationPolicy, error) { //nolint:gocognit,gocyclo,funlen
	policy := core.DefaultCirculationPolicy()

	var file PolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return policy, fmt.Errorf("parse policy file: %w", err)
	}

	setInt(&policy.BorrowAmountOnceTime, file.BorrowAmountOnceTime)
	setInt(&policy.MaxBorrowExtension, file.MaxBorrowExtension)
	setInt(&policy.OverdueOrLostHandleInDays, file.OverdueOrLostHandleInDays)
	setInt(&policy.TotalMissedPickUpAllow, file.TotalMissedPickUpAllow)
	setInt(&policy.DefaultBorrowDurationDays, file.DefaultBorrowDurationDays)
	setInt(&policy.DigitalExtensionDays, file.DigitalExtensionDays)
	setInt(&policy.MaxDigitalExtensions, file.MaxDigitalExtensions)

	if file.DigitalExtensionFee != 0 {
		policy.DigitalExtensionFee = core.Money(file.DigitalExtensionFee)
	}

	durations := []struct {
		name  string
		value string
		into  *time.Duration
	}{
		{"loanPeriod", file.LoanPeriod, &policy.LoanPeriod},
		{"extensionPeriod", file.ExtensionPeriod, &policy.ExtensionPeriod},
		{"requestExpiry", file.RequestExpiry, &policy.RequestExpiry},
		{"pickupWindow", file.PickupWindow, &policy.PickupWindow},
		{"reservationAgeBucket", file.ReservationAgeBucket, &policy.ReservationAgeBucket},
	}

	for _, d := range durations {
		if d.value == "" {
			continue
		}

		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return policy, fmt.Errorf("%w: %s: %w", ErrInvalidPolicy, d.name, err)
		}

		*d.into = parsed
	}

	if len(file.Conditions) > 0 {
		policy.Conditions = make([]core.ConditionGrade, 0, len(file.Conditions))
		for _, c := range file.Conditions {
			policy.Conditions = append(policy.Conditions, core.ConditionGrade{
				Code:             c.Code,
				Rank:             c.Rank,
				DamagePercentage: c.DamagePercentage,
				Usable:           c.Usable,
			})
		}
	}

	if o := file.Fines.Overdue; o != nil {
		policy.Fines.Overdue = &core.OverdueFinePolicy{
			PolicyID:             o.PolicyID,
			DailyRate:            core.Money(o.DailyRate),
			MaxOverduePercentage: o.MaxOverduePercentage,
		}
	}

	if d := file.Fines.Damage; d != nil {
		tiers := make([]core.DamageTier, 0, len(d.Tiers))
		for _, tier := range d.Tiers {
			tiers = append(tiers, core.DamageTier{
				MinDamagePercentage: tier.Min,
				MaxDamagePercentage: tier.Max,
				ChargePercentage:    tier.ChargePercentage,
				ProcessingFee:       core.Money(tier.ProcessingFee),
			})
		}

		policy.Fines.Damage = &core.DamageFinePolicy{PolicyID: d.PolicyID, Tiers: tiers}
	}

	if l := file.Fines.Lost; l != nil {
		policy.Fines.Lost = &core.LostFinePolicy{PolicyID: l.PolicyID, ReplacementFeePercentage: l.ReplacementFeePercentage}
	}

	return policy, nil
}

// ValidatePolicy rejects policies the workflows cannot operate with.
func ValidatePolicy(p core.CirculationPolicy) error {
	switch {
	case p.BorrowAmountOnceTime <= 0:
		return fmt.Errorf("%w: borrowAmountOnceTime must be positive", ErrInvalidPolicy)
	case p.LoanPeriod <= 0, p.ExtensionPeriod <= 0, p.RequestExpiry <= 0, p.PickupWindow <= 0:
		return fmt.Errorf("%w: periods and windows must be positive", ErrInvalidPolicy)
	case p.MaxBorrowExtension < 0, p.MaxDigitalExtensions < 0:
		return fmt.Errorf("%w: extension limits must not be negative", ErrInvalidPolicy)
	case p.TotalMissedPickUpAllow <= 0:
		return fmt.Errorf("%w: totalMissedPickUpAllow must be positive", ErrInvalidPolicy)
	case p.OverdueOrLostHandleInDays <= 0, p.DefaultBorrowDurationDays <= 0:
		return fmt.Errorf("%w: day counts must be positive", ErrInvalidPolicy)
	case len(p.Conditions) == 0:
		return fmt.Errorf("%w: at least one condition grade is required", ErrInvalidPolicy)
	}

	seen := map[string]bool{}
	for _, c := range p.Conditions {
		if c.Code == "" || seen[c.Code] {
			return fmt.Errorf("%w: condition codes must be unique and not empty", ErrInvalidPolicy)
		}

		if !validPercentage(c.DamagePercentage) {
			return fmt.Errorf("%w: damage percentage of %q out of range", ErrInvalidPolicy, c.Code)
		}

		seen[c.Code] = true
	}

	if p.Fines.Damage != nil {
		for _, tier := range p.Fines.Damage.Tiers {
			if tier.MinDamagePercentage > tier.MaxDamagePercentage ||
				!validPercentage(tier.MinDamagePercentage) || !validPercentage(tier.MaxDamagePercentage) {
				return fmt.Errorf("%w: damage tier [%.2f, %.2f] is invalid",
					ErrInvalidPolicy, tier.MinDamagePercentage, tier.MaxDamagePercentage)
			}
		}
	}

	return nil
}

func validPercentage(p float64) bool {
	return p >= 0 && p <= 100
}

func setInt(into *int, value int) {
	if value != 0 {
		*into = value
	}
}
