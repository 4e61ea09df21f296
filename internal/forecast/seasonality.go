package forecast

import "time"

// Seasonality patterns
const (
	PatternWeekly  = "weekly"
	PatternMonthly = "monthly"
	PatternNone    = "none"
)

// Thresholds on the coefficient of variation across buckets.
const (
	weeklyCVThreshold  = 0.6
	monthlyCVThreshold = 0.5
)

// minSeasonalityObs is the smallest sample worth bucketing.
const minSeasonalityObs = 14

// SeasonalityResult reports at most one detected pattern; weekly is checked
// first and wins when both exceed their thresholds.
type SeasonalityResult struct {
	Detected bool    `json:"detected"`
	Pattern  string  `json:"pattern"`
	CV       float64 `json:"cv"`

	// PeakDays and LowDays are weekday names at least 10% above or below
	// the overall mean. Only set for the weekly pattern.
	PeakDays []string `json:"peak_days,omitempty"`
	LowDays  []string `json:"low_days,omitempty"`

	// PeriodAverages are the early/mid/late window averages. Only set for
	// the monthly pattern.
	PeriodAverages []float64 `json:"period_averages,omitempty"`

	// InsufficientData marks a sample too small to bucket. Not an error;
	// sparse history is a normal input.
	InsufficientData bool `json:"insufficient_data,omitempty"`
}

// DetectSeasonality buckets daily usage by day-of-week and by window thirds
// and reports the stronger pattern, if any.
func DetectSeasonality(usage []DayUsage) SeasonalityResult {
	if len(usage) < minSeasonalityObs {
		return SeasonalityResult{Pattern: PatternNone, InsufficientData: true}
	}

	if res, ok := weeklyPattern(usage); ok {
		return res
	}
	if res, ok := monthlyPattern(usage); ok {
		return res
	}
	return SeasonalityResult{Pattern: PatternNone}
}

func weeklyPattern(usage []DayUsage) (SeasonalityResult, bool) {
	var sums, counts [7]float64
	for _, u := range usage {
		d := u.Date.Weekday()
		sums[d] += u.Qty
		counts[d]++
	}

	averages := make([]float64, 0, 7)
	for d := 0; d < 7; d++ {
		if counts[d] > 0 {
			averages = append(averages, sums[d]/counts[d])
		}
	}

	m := mean(averages)
	if m <= 0 {
		return SeasonalityResult{}, false
	}
	cv := stddev(averages) / m
	if cv <= weeklyCVThreshold {
		return SeasonalityResult{}, false
	}

	res := SeasonalityResult{Detected: true, Pattern: PatternWeekly, CV: cv}
	for d := 0; d < 7; d++ {
		if counts[d] == 0 {
			continue
		}
		avg := sums[d] / counts[d]
		name := time.Weekday(d).String()
		if avg >= m*1.1 {
			res.PeakDays = append(res.PeakDays, name)
		} else if avg <= m*0.9 {
			res.LowDays = append(res.LowDays, name)
		}
	}
	return res, true
}

func monthlyPattern(usage []DayUsage) (SeasonalityResult, bool) {
	third := len(usage) / 3
	if third == 0 {
		return SeasonalityResult{}, false
	}

	periods := []float64{
		meanUsage(usage[:third]),
		meanUsage(usage[third : 2*third]),
		meanUsage(usage[2*third:]),
	}

	m := mean(periods)
	if m <= 0 {
		return SeasonalityResult{}, false
	}
	cv := stddev(periods) / m
	if cv <= monthlyCVThreshold {
		return SeasonalityResult{}, false
	}

	return SeasonalityResult{
		Detected:       true,
		Pattern:        PatternMonthly,
		CV:             cv,
		PeriodAverages: periods,
	}, true
}

func meanUsage(usage []DayUsage) float64 {
	if len(usage) == 0 {
		return 0
	}
	var sum float64
	for _, u := range usage {
		sum += u.Qty
	}
	return sum / float64(len(usage))
}
