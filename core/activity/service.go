package activity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/openlab-uninorte/aula/core"
	"github.com/openlab-uninorte/aula/core/group"
)

var (
	// errors
	ErrNotFound         = errors.New("activity not found")
	ErrNotActivated     = errors.New("assessment has not been activated")
	ErrAlreadyActivated = errors.New("assessment has already been activated")
	ErrExpired          = errors.New("assessment has expired")
	ErrAlreadySubmitted = errors.New("assessment has already been submitted")

	// NowFunc returns the current time; mockable in tests.
	NowFunc = time.Now
)

// IncompleteSubmissionError is returned when a submission does not cover
// exactly the set of required peers.
type IncompleteSubmissionError struct {
	MissingPeers []string
	ExtraPeers   []string
}

func (e *IncompleteSubmissionError) Error() string {
	var parts []string
	if len(e.MissingPeers) > 0 {
		parts = append(parts, "missing peers: "+strings.Join(e.MissingPeers, ", "))
	}
	if len(e.ExtraPeers) > 0 {
		parts = append(parts, "unexpected peers: "+strings.Join(e.ExtraPeers, ", "))
	}
	return "incomplete submission: " + strings.Join(parts, "; ")
}

// InvalidRatingError identifies an out-of-range rating in a submission.
type InvalidRatingError struct {
	Peer     string
	Category string
	Value    int
}

func (e *InvalidRatingError) Error() string {
	return fmt.Sprintf("invalid rating %d for %s/%s: must be an integer between %d and %d",
		e.Value, e.Peer, e.Category, MinRating, MaxRating)
}

type (
	Repository interface {
		QueryActivitiesByCourse(ctx context.Context, courseID string) ([]Activity, error)
		GetActivityByID(ctx context.Context, id string) (Activity, error)
		CreateActivity(ctx context.Context, act Activity) (Activity, error)
		UpdateActivity(ctx context.Context, id, name, description string) error
		DeleteActivityByID(ctx context.Context, id string) error
		// ActivateAssessment sets the assessment attributes on an activity.
		ActivateAssessment(ctx context.Context, id, label string, isPublic bool, deadline time.Time) error
		// ReplaceScores overwrites the activity's whole score map in one write.
		ReplaceScores(ctx context.Context, id string, scores ScoreMap) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		log     core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, log: logger}
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID string) ([]Activity, error) {
	return svc.repo.QueryActivitiesByCourse(ctx, courseID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Activity, error) {
	return svc.repo.GetActivityByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, na NewActivity) (Activity, error) {
	act := Activity{
		Name:         na.Name,
		Description:  na.Description,
		CourseID:     na.CourseID,
		CategoryID:   na.CategoryID,
		IsAssessment: na.IsAssessment,
		Scores:       ScoreMap{},
	}
	return svc.repo.CreateActivity(ctx, act)
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateActivity) error {
	return svc.repo.UpdateActivity(ctx, id, ua.Name, ua.Description)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteActivityByID(ctx, id)
}

// Activate opens the assessment window on an activity: the deadline is
// computed from the moment of the call plus the requested duration, and is
// final; there is no pause, extension or retraction path. Group members
// with a recognizable email address are notified.
func (svc *Service) Activate(ctx context.Context, act Activity, aa ActivateAssessment, roster []string) (Activity, error) {
	if act.IsAssessment && act.Deadline != nil {
		return Activity{}, ErrAlreadyActivated
	}

	deadline := NowFunc().Add(aa.Window())
	if err := svc.repo.ActivateAssessment(ctx, act.ID, aa.Label, aa.IsPublic, deadline); err != nil {
		return Activity{}, pkgerrors.Wrap(err, "activating assessment")
	}

	act.IsAssessment = true
	act.AssessmentLabel = aa.Label
	act.IsPublic = aa.IsPublic
	act.Deadline = &deadline
	if act.Scores == nil {
		act.Scores = ScoreMap{}
	}

	svc.notifyRoster(act, roster)
	return act, nil
}

// Submit records one evaluator's ratings of their peers. All preconditions
// are checked before any write; a violation aborts with no partial effect.
// On success the whole updated score map is handed to the repository as a
// single replace-style write, and persistence failures surface unchanged.
func (svc *Service) Submit(
	ctx context.Context,
	act Activity,
	grp group.Group,
	evaluator Evaluator,
	ratings map[string]Rating,
) (Activity, error) {
	switch act.StatusFor(evaluator.Name, NowFunc()) {
	case StatusNotActivated:
		return Activity{}, ErrNotActivated
	case StatusExpired:
		return Activity{}, ErrExpired
	case StatusCompleted:
		return Activity{}, ErrAlreadySubmitted
	}

	required := grp.RequiredPeers(evaluator.Name, evaluator.Email)
	if err := checkCoverage(required, ratings); err != nil {
		return Activity{}, err
	}
	for _, peer := range required {
		for i, score := range ratings[peer] {
			if score < MinRating || score > MaxRating {
				return Activity{}, &InvalidRatingError{Peer: peer, Category: Categories[i], Value: score}
			}
		}
	}

	scores := act.Scores.With(evaluator.Name, ratings)
	if err := svc.repo.ReplaceScores(ctx, act.ID, scores); err != nil {
		return Activity{}, pkgerrors.Wrap(err, "replacing scores")
	}
	act.Scores = scores
	return act, nil
}

// checkCoverage verifies that ratings holds exactly one entry per required peer.
func checkCoverage(required []string, ratings map[string]Rating) error {
	var missing []string
	seen := make(map[string]bool, len(required))
	for _, peer := range required {
		seen[peer] = true
		if _, ok := ratings[peer]; !ok {
			missing = append(missing, peer)
		}
	}
	var extra []string
	for peer := range ratings {
		if !seen[peer] {
			extra = append(extra, peer)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		sort.Strings(extra)
		return &IncompleteSubmissionError{MissingPeers: missing, ExtraPeers: extra}
	}
	return nil
}

// StudentAverages aggregates received scores for every roster member.
func (svc *Service) StudentAverages(act Activity, roster []string) map[string]CategoryAverages {
	averages := make(map[string]CategoryAverages, len(roster))
	for _, member := range roster {
		averages[member] = act.AggregateFor(member)
	}
	return averages
}

func (svc *Service) notifyRoster(act Activity, roster []string) {
	if svc.mailSvc == nil {
		return
	}
	msgs := make([]*core.EmailMessage, 0, len(roster))
	for _, member := range roster {
		addr, ok := memberAddress(member)
		if !ok {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{addr},
			Subject:      "New assessment: " + act.AssessmentLabel,
			TemplateName: "assessment-opened",
			TemplateData: struct {
				Label    string
				Activity string
				Deadline time.Time
			}{act.AssessmentLabel, act.Name, *act.Deadline},
		})
	}
	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}
}

// memberAddress extracts an email address from a free-form roster entry,
// tolerating "Name (email)" style strings.
func memberAddress(member string) (mail.Address, bool) {
	fields := strings.FieldsFunc(member, func(r rune) bool {
		switch r {
		case ' ', '(', ')', '<', '>', ',', ';':
			return true
		}
		return false
	})
	for _, f := range fields {
		if strings.Count(f, "@") == 1 && !strings.HasPrefix(f, "@") && !strings.HasSuffix(f, "@") {
			return mail.Address{Address: f}, true
		}
	}
	return mail.Address{}, false
}
