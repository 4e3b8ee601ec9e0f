package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/wmmalith63/credence-tender-management/internal/policy"
	"github.com/wmmalith63/credence-tender-management/internal/repository"
)

const (
	calendarProductID = "-//Credence//Tender Deadlines//EN"
	calendarMaxEvents = 200
)

// CalendarService renders upcoming submission deadlines as an iCalendar
// feed that vendors can subscribe to. The visibility rules match the
// dashboard deadline list.
type CalendarService interface {
	DeadlinesCalendar(ctx context.Context, p policy.Principal, now time.Time) (string, error)
}

type calendarService struct {
	repo    *repository.Repository
	logger  *zap.Logger
	baseURL string
}

// NewCalendarService creates a CalendarService
func NewCalendarService(repo *repository.Repository, logger *zap.Logger, baseURL string) CalendarService {
	return &calendarService{repo: repo, logger: logger, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *calendarService) DeadlinesCalendar(ctx context.Context, p policy.Principal, now time.Time) (string, error) {
	tenders, err := upcomingTenders(ctx, s.repo, p, now, calendarMaxEvents)
	if err != nil {
		return "", storageFailure(s.logger, "list upcoming deadlines", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("Tender submission deadlines")

	for _, t := range tenders {
		if t.SubmissionDeadline == nil {
			continue
		}
		deadline := t.SubmissionDeadline.UTC()

		event := cal.AddEvent(fmt.Sprintf("tender-%d@%s", t.ID, s.uidHost()))
		event.SetDtStampTime(now.UTC())
		event.SetStartAt(deadline)
		event.SetEndAt(deadline)
		event.SetSummary(fmt.Sprintf("Submission deadline: %s (%s)", t.Title, t.TenderNumber))
		if t.Description != "" {
			event.SetDescription(t.Description)
		}
		if s.baseURL != "" {
			event.SetURL(fmt.Sprintf("%s/api/v1/tenders/%s", s.baseURL, url.PathEscape(t.TenderNumber)))
		}
	}

	return cal.Serialize(), nil
}

// uidHost the host part of event UIDs, stable for a deployment
func (s *calendarService) uidHost() string {
	if u, err := url.Parse(s.baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return "credence.local"
}
