package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCRMSyncLead = "crm.sync.lead"

// CRMSyncLeadPayload carries everything the worker needs to push a lead
// to the CRM without re-reading the submission.
type CRMSyncLeadPayload struct {
	LeadID    string            `json:"leadId,omitempty"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName,omitempty"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone,omitempty"`
	Message   string            `json:"message,omitempty"`
	Route     string            `json:"route"`
	Score     int               `json:"score"`
	ListingID string            `json:"listingId,omitempty"`
	Address   string            `json:"address,omitempty"`
	SourceURL string            `json:"sourceUrl,omitempty"`
	UTM       map[string]string `json:"utm,omitempty"`
}

func NewCRMSyncLeadTask(payload CRMSyncLeadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCRMSyncLead, data), nil
}

func ParseCRMSyncLeadPayload(task *asynq.Task) (CRMSyncLeadPayload, error) {
	var payload CRMSyncLeadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CRMSyncLeadPayload{}, err
	}
	return payload, nil
}
