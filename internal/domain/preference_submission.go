package domain

import "time"

type PreferenceSubmission struct {
	ID             int64        `json:"id"`
	SchedulePlanID int64        `json:"schedulePlanID"`
	UserID         int64        `json:"userID"`
	Preferences    []Preference `json:"preferences"`
	CreatedAt      time.Time    `json:"createdAt"`
	Version        int32        `json:"-"`
}
