package models

import "time"

// PowerSample is one instantaneous AC output reading for a plant.
type PowerSample struct {
	Time  time.Time `json:"time"`
	Watts float64   `json:"watts"`
}

// EnergySample is one day's produced energy for a plant.
type EnergySample struct {
	Time          time.Time `json:"time"`
	KilowattHours float64   `json:"kilowatt_hours"`
}

// powerInterval is the spacing of the day chart series returned by the
// Growatt API (288 slots per day).
const powerInterval = 5 * time.Minute

// ExpandDayPower turns a day chart series into timestamped samples,
// starting at midnight of the given day and stepping 5 minutes per value.
func ExpandDayPower(day time.Time, watts []float64) []PowerSample {
	midnight := Midnight(day)
	samples := make([]PowerSample, 0, len(watts))
	for i, w := range watts {
		samples = append(samples, PowerSample{
			Time:  midnight.Add(time.Duration(i) * powerInterval),
			Watts: w,
		})
	}
	return samples
}

// ExpandMonthEnergy turns a month chart series into per-day samples,
// starting at the first day of the month the given time falls in.
func ExpandMonthEnergy(month time.Time, kwh []float64) []EnergySample {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	samples := make([]EnergySample, 0, len(kwh))
	for i, v := range kwh {
		samples = append(samples, EnergySample{
			Time:          first.AddDate(0, 0, i),
			KilowattHours: v,
		})
	}
	return samples
}

// Midnight truncates a time to the start of its day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
