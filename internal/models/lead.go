package models

import "time"

// Статусы лида. converted — терминальный: повторная конвертация запрещена.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQuoted    = "quoted"
	LeadStatusConverted = "converted"
	LeadStatusClosed    = "closed"
)

var leadStatuses = map[string]struct{}{
	LeadStatusNew:       {},
	LeadStatusContacted: {},
	LeadStatusQuoted:    {},
	LeadStatusConverted: {},
	LeadStatusClosed:    {},
}

func IsLeadStatus(s string) bool {
	_, ok := leadStatuses[s]
	return ok
}

type Lead struct {
	ID        uint64
	Name      string
	Contact   string
	Details   *string
	Status    string
	ClientID  *uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LeadCreateInput struct {
	Name     string
	Contact  string
	Details  *string
	ClientID *uint64
}
