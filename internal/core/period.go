package core

import "fmt"

// Months are the twelve statement months, in calendar order. Raw data rows
// store the month by name, not by number.
var Months = []string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthAbbreviations maps a month name to its three-letter label.
var MonthAbbreviations = map[string]string{
	"Janeiro": "Jan", "Fevereiro": "Fev", "Março": "Mar",
	"Abril": "Abr", "Maio": "Mai", "Junho": "Jun",
	"Julho": "Jul", "Agosto": "Ago", "Setembro": "Set",
	"Outubro": "Out", "Novembro": "Nov", "Dezembro": "Dez",
}

// Period is one (month, year) bucket.
type Period struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
}

// Key returns the "Month-Year" form used to index per-period maps.
func (p Period) Key() string {
	return fmt.Sprintf("%s-%d", p.Month, p.Year)
}

// Label returns the short display form, e.g. "Mar/24".
func (p Period) Label() string {
	return fmt.Sprintf("%s/%02d", MonthAbbreviations[p.Month], p.Year%100)
}

// MonthIndex returns the zero-based calendar index of a month name.
func MonthIndex(month string) (int, error) {
	for i, m := range Months {
		if m == month {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown month %q", ErrInvalidArgument, month)
}

// LastTwelveMonths returns the trailing twelve periods ending at the given
// reference month and year inclusive, oldest first. Months wrap around the
// year boundary, decrementing the year once per wrap.
func LastTwelveMonths(month string, year int) ([]Period, error) {
	ref, err := MonthIndex(month)
	if err != nil {
		return nil, err
	}

	periods := make([]Period, 0, 12)
	for i := 11; i >= 0; i-- {
		idx := ref - i
		y := year
		if idx < 0 {
			idx += 12
			y--
		}
		periods = append(periods, Period{Month: Months[idx], Year: y})
	}
	return periods, nil
}

// PreviousPeriod returns the period one month before the reference.
func PreviousPeriod(month string, year int) (Period, error) {
	ref, err := MonthIndex(month)
	if err != nil {
		return Period{}, err
	}
	idx := ref - 1
	if idx < 0 {
		idx += 12
		year--
	}
	return Period{Month: Months[idx], Year: year}, nil
}
