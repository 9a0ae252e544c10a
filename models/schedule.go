package models

type Period string

const (
	PeriodMorning   Period = "Manhã"
	PeriodAfternoon Period = "Tarde"
	PeriodNight     Period = "Noite"
)

var Periods = []Period{PeriodMorning, PeriodAfternoon, PeriodNight}

func (p Period) Valid() bool {
	switch p {
	case PeriodMorning, PeriodAfternoon, PeriodNight:
		return true
	}
	return false
}

// PrayerSchedule is one slot of a user's daily plan. A period may hold any
// number of slots.
type PrayerSchedule struct {
	Schedule_ID string `json:"id"`
	Period      Period `json:"time"`
	Prayer_ID   string `json:"prayerId"`
	Completed   bool   `json:"completed"`
}

type ScheduleSlotCreate struct {
	Period    Period `json:"time" binding:"required"`
	Prayer_ID string `json:"prayerId" binding:"required"`
}

type ScheduleSlotUpdate struct {
	Prayer_ID string `json:"prayerId" binding:"required"`
}

// CirculoScheduleItem is a recurring circle event; Time is free text such as
// "Toda Terça-feira, 20h".
type CirculoScheduleItem struct {
	Item_ID   string `json:"id"`
	Title     string `json:"title"`
	Time      string `json:"time"`
	Prayer_ID string `json:"prayerId"`
}

type ScheduleItemInput struct {
	Title     string `json:"title"`
	Time      string `json:"time"`
	Prayer_ID string `json:"prayerId"`
}
