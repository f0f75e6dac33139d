package domain

const (
	MailTypeCreateUser        = "create_user"
	MailTypeSchedulePublished = "schedule_published"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ScheduleMailSlot struct {
	Day       string  `json:"day"`
	Shift     string  `json:"shift"`
	Hours     float64 `json:"hours"`
	Preferred bool    `json:"preferred"`
}

type SchedulePublishedMailData struct {
	FullName          string             `json:"fullName"`
	PlanName          string             `json:"planName"`
	Slots             []ScheduleMailSlot `json:"slots"`
	HoursWorked       float64            `json:"hoursWorked"`
	NewRemainingHours float64            `json:"newRemainingHours"`
}
