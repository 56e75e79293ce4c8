package scheduler

import (
	"context"
	"fmt"

	"realty_leads_backend/internal/crm"
	"realty_leads_backend/platform/config"
	"realty_leads_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// CRMPusher pushes one lead to the CRM. Implemented by crm.Client.
type CRMPusher interface {
	PushLead(ctx context.Context, lead crm.Lead) (string, error)
}

// LeadMarker records the remote CRM id against a stored lead.
type LeadMarker interface {
	MarkCRMSynced(ctx context.Context, leadID, remoteID string) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	crm    CRMPusher
	leads  LeadMarker
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, crmClient CRMPusher, leads LeadMarker, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		crm:    crmClient,
		leads:  leads,
		log:    log,
	}

	mux.HandleFunc(TaskCRMSyncLead, w.handleCRMSyncLead)

	return w, nil
}

// handleCRMSyncLead pushes the lead to FollowUp Boss. Returning an error
// lets asynq retry with backoff, so transient CRM outages self-heal.
func (w *Worker) handleCRMSyncLead(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCRMSyncLeadPayload(task)
	if err != nil {
		return err
	}

	remoteID, err := w.crm.PushLead(ctx, crm.Lead{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Message:   payload.Message,
		Route:     payload.Route,
		Score:     payload.Score,
		ListingID: payload.ListingID,
		Address:   payload.Address,
		SourceURL: payload.SourceURL,
		UTM:       payload.UTM,
	})
	if err != nil {
		return err
	}

	w.log.Info("lead synced to crm", "lead_id", payload.LeadID, "remote_id", remoteID)

	if payload.LeadID == "" || w.leads == nil {
		return nil
	}
	if err := w.leads.MarkCRMSynced(ctx, payload.LeadID, remoteID); err != nil {
		// The CRM already has the lead; losing the back-reference is not
		// worth a duplicate push on retry.
		w.log.Error("mark crm synced failed", "lead_id", payload.LeadID, "error", err)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
