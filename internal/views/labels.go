package views

import (
	"fmt"
	"time"
)

// ChildAgeLabel renders the age in Portuguese from whole calendar months:
// "5 meses", "1 ano", "2a 3m". The day of month is ignored, so a child born
// on the 31st reads one month older on the 1st.
func ChildAgeLabel(dob, now time.Time) string {
	months := (now.Year()-dob.Year())*12 + int(now.Month()) - int(dob.Month())
	if months < 0 {
		months = 0
	}
	if months < 12 {
		if months == 1 {
			return "1 mês"
		}
		return fmt.Sprintf("%d meses", months)
	}
	years, rem := months/12, months%12
	if rem == 0 {
		if years == 1 {
			return "1 ano"
		}
		return fmt.Sprintf("%d anos", years)
	}
	return fmt.Sprintf("%da %dm", years, rem)
}

// ReminderWhenLabel renders a reminder time relative to now, in now's
// location.
func ReminderWhenLabel(t, now time.Time) string {
	t = t.In(now.Location())
	clock := t.Format("15:04")

	ty, tm, td := t.Date()
	switch {
	case sameDay(ty, tm, td, now):
		return "Hoje às " + clock
	case sameDay(ty, tm, td, now.AddDate(0, 0, 1)):
		return "Amanhã às " + clock
	}
	return t.Format("02/01/2006") + " às " + clock
}

func sameDay(y int, m time.Month, d int, ref time.Time) bool {
	ry, rm, rd := ref.Date()
	return y == ry && m == rm && d == rd
}
