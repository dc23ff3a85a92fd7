package utils

import (
	"fmt"
	"math"
	"time"
)

// DateDifference represents the difference between two dates
type DateDifference struct {
	Months int
	Days   int
}

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year, month int) int {
	if month == 2 {
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}

	// Months with 30 days: April, June, September, November
	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}

	return 31
}

// CalculateDateDifference computes the calendar difference between two dates.
func CalculateDateDifference(start, end time.Time) (DateDifference, error) {
	if end.Before(start) {
		return DateDifference{}, fmt.Errorf("end date must be >= start date")
	}

	years := end.Year() - start.Year()
	months := int(end.Month()) - int(start.Month())
	days := end.Day() - start.Day()

	// If days < 0, borrow from months
	if days < 0 {
		months -= 1
		prevMonth := int(end.Month()) - 1
		prevYear := end.Year()
		if prevMonth < 1 {
			prevMonth = 12
			prevYear -= 1
		}
		days += DaysInMonth(prevYear, prevMonth)
	}

	if months < 0 {
		years -= 1
		months += 12
	}

	months += 12 * years

	return DateDifference{Months: months, Days: days}, nil
}

// RentMonths returns the number of billable months for a rental period.
// Partial months round up to the next full month; the minimum is one month.
func RentMonths(start, end time.Time) (int32, error) {
	diff, err := CalculateDateDifference(start, end)
	if err != nil {
		return 0, err
	}

	months := int32(diff.Months)
	if diff.Days > 0 {
		months += 1
	}
	if months < 1 {
		months = 1
	}
	return months, nil
}

// RentCostCents returns the rent for the period at the given monthly price
// snapshot.
func RentCostCents(start, end time.Time, monthlyPriceCents int64) (int64, error) {
	months, err := RentMonths(start, end)
	if err != nil {
		return 0, err
	}
	return int64(months) * monthlyPriceCents, nil
}

// PlatformFeeCents computes the platform's cut of an amount at the given
// commission rate, rounded to the nearest minor unit. The net amount is
// always amount minus the fee, so fee + net == amount exactly.
func PlatformFeeCents(amountCents int64, ratePercent float64) int64 {
	return int64(math.Round(float64(amountCents) * ratePercent / 100))
}
