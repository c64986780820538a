package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ShiftAlertMailData struct {
	EventType        string `json:"eventType"`
	ShiftName        string `json:"shiftName"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
	ThresholdMinutes int    `json:"thresholdMinutes"`
	At               string `json:"at"`
}
