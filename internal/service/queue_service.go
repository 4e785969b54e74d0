package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/history"
	"github.com/spec-kit/callcenter-service/internal/observability"
	"github.com/spec-kit/callcenter-service/internal/queue"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// QueueService serves the telephoniste's next-contact requests.
type QueueService struct {
	contacts repository.ContactRepository
	statuses repository.StatusRepository
	selector *queue.Selector
	history  *history.Reader
	location *time.Location
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// QueueDependencies bundles collaborators for the queue service.
type QueueDependencies struct {
	ContactRepo repository.ContactRepository
	StatusRepo  repository.StatusRepository
	Selector    *queue.Selector
	History     *history.Reader
	Location    *time.Location
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewQueueService constructs the service.
func NewQueueService(deps QueueDependencies) *QueueService {
	s := &QueueService{
		contacts: deps.ContactRepo,
		statuses: deps.StatusRepo,
		selector: deps.Selector,
		history:  deps.History,
		location: deps.Location,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		now:      deps.Now,
	}
	if s.selector == nil {
		s.selector = queue.NewSelector(nil)
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// NextContact picks the caller's next contact. An empty queue is not an error.
func (s *QueueService) NextContact(ctx context.Context, p *auth.Principal) (queue.Result, error) {
	if !p.IsTelephoniste() {
		return queue.Result{}, apperrors.NewForbidden("telephoniste access required")
	}
	contacts, err := s.contacts.ListAssignedTo(ctx, p.UserID())
	if err != nil {
		return queue.Result{}, apperrors.NewPersistenceError(err)
	}
	statuses, err := s.statuses.Table(ctx)
	if err != nil {
		return queue.Result{}, apperrors.NewPersistenceError(err)
	}

	result := s.selector.Select(p.UserID(), contacts, statuses, s.now().In(s.location))
	s.metrics.RecordQueueSelection(result.Found, result.TotalAvailable)
	s.logger.Debug("next contact selected",
		zap.String("telephoniste_id", p.UserID()),
		zap.Bool("found", result.Found),
		zap.Int("total_available", result.TotalAvailable))
	return result, nil
}

// ActivityStats sums a telephoniste's work for the day.
type ActivityStats struct {
	ContactsWorked int `json:"contactsWorked"`
	CallsMade      int `json:"callsMade"`
	Conversions    int `json:"conversions"`
	NotesAdded     int `json:"notesAdded"`
}

// ActivityReport lists the contacts a telephoniste worked today, most
// recently updated first.
type ActivityReport struct {
	Stats    ActivityStats     `json:"stats"`
	Contacts []*domain.Contact `json:"contacts"`
}

// ActivityToday reports the contacts the caller called, annotated, moved
// to another status or converted since local midnight.
func (s *QueueService) ActivityToday(ctx context.Context, p *auth.Principal) (ActivityReport, error) {
	if !p.IsTelephoniste() {
		return ActivityReport{}, apperrors.NewForbidden("telephoniste access required")
	}
	if s.history == nil {
		return ActivityReport{}, apperrors.NewInternalError(errors.New("history reader not configured"))
	}
	midnight := queue.StartOfDay(s.now().In(s.location))
	entries, err := s.history.ForActor(ctx, p.UserID(), history.Query{From: &midnight})
	if err != nil {
		return ActivityReport{}, err
	}

	report := ActivityReport{Contacts: []*domain.Contact{}}
	seen := map[string]bool{}
	for _, entry := range entries {
		if entry.EntityType != domain.EntityContact || seen[entry.EntityID] {
			continue
		}
		seen[entry.EntityID] = true

		contact, err := s.contacts.GetByID(ctx, entry.EntityID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return ActivityReport{}, apperrors.NewPersistenceError(err)
		}
		activity := contact.ActivityBy(p.UserID(), midnight)
		if !activity.Any() {
			continue
		}
		report.Contacts = append(report.Contacts, contact)
		report.Stats.CallsMade += activity.Calls
		report.Stats.NotesAdded += activity.Notes
		if activity.Converted {
			report.Stats.Conversions++
		}
	}
	report.Stats.ContactsWorked = len(report.Contacts)
	sort.SliceStable(report.Contacts, func(i, j int) bool {
		return report.Contacts[i].UpdatedAt.After(report.Contacts[j].UpdatedAt)
	})
	return report, nil
}
