package service

import (
	"time"

	"lifelog-coach/internal/crm"
	"lifelog-coach/internal/model"
)

const crmReadyMessage = "CRM sync is ready"

func (s *Service) checkExport(userID string, r *crm.DateRange) error {
	if userID == "" {
		return invalid("userId", "a user ID is required")
	}
	if r != nil {
		if err := r.Validate(); err != nil {
			return invalid("dateRange", "%v", err)
		}
	}
	return nil
}

// ExportCRM derives the per-day summaries of the stored records, newest first.
func (s *Service) ExportCRM(userID string, r *crm.DateRange) ([]model.DaySummaryRecord, error) {
	if err := s.checkExport(userID, r); err != nil {
		return nil, err
	}
	snap := s.store.Snapshot()
	return s.summarize(userID, snap.Records, snap.Feedbacks, r), nil
}

// SummarizeDays derives the per-day summaries of caller-supplied records and feedback,
// leaving the store untouched.
func (s *Service) SummarizeDays(userID string, records []model.EventRecord, feedbacks []model.Feedback, r *crm.DateRange) ([]model.DaySummaryRecord, error) {
	if err := s.checkExport(userID, r); err != nil {
		return nil, err
	}
	return s.summarize(userID, records, feedbacks, r), nil
}

func (s *Service) summarize(userID string, records []model.EventRecord, feedbacks []model.Feedback, r *crm.DateRange) []model.DaySummaryRecord {
	return crm.BuildDaySummaries(userID, records, feedbacks, crm.Options{
		Now:      s.opts.Now(),
		Location: s.store.Location(),
		Range:    r,
	})
}

// SyncResult is the reply of a CRM sync. Nothing is transmitted; the records are only shaped.
type SyncResult struct {
	Success        bool                     `json:"success"`
	RecordsCreated int                      `json:"recordsCreated"`
	Records        []model.DaySummaryRecord `json:"records"`
	SyncedAt       time.Time                `json:"syncedAt"`
}

func (s *Service) CRMSync(userID string, r *crm.DateRange) (SyncResult, error) {
	records, err := s.ExportCRM(userID, r)
	if err != nil {
		return SyncResult{}, err
	}
	return s.syncResult(records), nil
}

func (s *Service) syncResult(records []model.DaySummaryRecord) SyncResult {
	return SyncResult{
		Success:        true,
		RecordsCreated: len(records),
		Records:        records,
		SyncedAt:       s.opts.Now(),
	}
}

// CRMSyncRecords shapes caller-supplied records, as the stateless sync endpoint does.
func (s *Service) CRMSyncRecords(userID string, records []model.EventRecord, feedbacks []model.Feedback, r *crm.DateRange) (SyncResult, error) {
	days, err := s.SummarizeDays(userID, records, feedbacks, r)
	if err != nil {
		return SyncResult{}, err
	}
	return s.syncResult(days), nil
}

type SyncStatus struct {
	UserID     string     `json:"userId"`
	LastSyncAt *time.Time `json:"lastSyncAt"`
	Status     string     `json:"status"`
	Message    string     `json:"message"`
}

func (s *Service) CRMStatus(userID string) (SyncStatus, error) {
	if userID == "" {
		return SyncStatus{}, invalid("userId", "a user ID is required")
	}
	return SyncStatus{UserID: userID, Status: "ready", Message: crmReadyMessage}, nil
}

// RawExport is the downloadable copy of everything stored locally.
type RawExport struct {
	Profile    *model.UserProfile  `json:"profile"`
	Records    []model.EventRecord `json:"records"`
	Feedbacks  []model.Feedback    `json:"feedbacks"`
	ExportedAt time.Time           `json:"exportedAt"`
}

func (s *Service) ExportRawData() RawExport {
	snap := s.store.Snapshot()
	return RawExport{
		Profile:    snap.Profile,
		Records:    snap.Records,
		Feedbacks:  snap.Feedbacks,
		ExportedAt: s.opts.Now(),
	}
}

// ExportFileName is the suggested download name of a raw export.
func (s *Service) ExportFileName() string {
	return "lifelog-export-" + s.Today() + ".json"
}
