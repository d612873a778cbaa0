package activity

import (
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/openlab-uninorte/aula/core"
)

// Rating categories, in submission order.
const (
	CategoryPunctuality   = "punctuality"
	CategoryContributions = "contributions"
	CategoryCommitment    = "commitment"
	CategoryAttitude      = "attitude"

	NumCategories = 4

	MinRating = 2
	MaxRating = 5
)

// Categories lists the rating categories in the order ratings are recorded.
var Categories = [NumCategories]string{
	CategoryPunctuality,
	CategoryContributions,
	CategoryCommitment,
	CategoryAttitude,
}

// Rating is one evaluator's scores for one peer; one entry per category, in
// Categories order. Each entry must be in [MinRating, MaxRating].
type Rating [NumCategories]int

// ScoreMap maps evaluator name -> evaluated peer name -> Rating. It is the
// sole source of truth for who has submitted and what they submitted; an
// evaluator appears as a key at most once.
type ScoreMap map[string]map[string]Rating

// With returns a copy of the map extended with one evaluator's submission.
// The receiver is left untouched.
func (s ScoreMap) With(evaluator string, ratings map[string]Rating) ScoreMap {
	scores := make(ScoreMap, len(s)+1)
	for eval, peers := range s {
		scores[eval] = peers
	}
	entry := make(map[string]Rating, len(ratings))
	for peer, r := range ratings {
		entry[peer] = r
	}
	scores[evaluator] = entry
	return scores
}

// Activity is a unit of coursework within a course category. Once activated
// as an assessment it carries a submission deadline and a score map.
type Activity struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CourseID     string `json:"course_id"`
	CategoryID   string `json:"category_id"`
	IsAssessment bool   `json:"is_assessment"`

	// assessment attributes; zero-valued until activation
	AssessmentLabel string     `json:"assessment_label,omitempty"`
	IsPublic        bool       `json:"is_public,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	Scores          ScoreMap   `json:"scores,omitempty"`
}

// Already returns the sorted names of evaluators who have submitted,
// derived from Scores.
func (a Activity) Already() []string {
	names := make([]string, 0, len(a.Scores))
	for evaluator := range a.Scores {
		names = append(names, evaluator)
	}
	sort.Strings(names)
	return names
}

// Status is the assessment window state as seen by a given viewer.
type Status int

const (
	StatusNotActivated Status = iota
	StatusActive
	StatusExpired
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	case StatusCompleted:
		return "completed"
	default:
		return "not_activated"
	}
}

// StatusFor returns the assessment window state for viewer at the given
// instant. A viewer with a recorded submission is Completed regardless of
// the deadline; expiry is inclusive (now == deadline is Expired).
func (a Activity) StatusFor(viewer string, now time.Time) Status {
	if !a.IsAssessment || a.Deadline == nil {
		return StatusNotActivated
	}
	if _, ok := a.Scores[viewer]; ok {
		return StatusCompleted
	}
	if !now.Before(*a.Deadline) {
		return StatusExpired
	}
	return StatusActive
}

// CategoryAverages holds the per-category averages a student received, plus
// the overall mean. All averages are 0 when Evaluators is 0; callers must
// check Evaluators rather than treat 0 as a score (valid scores are >= MinRating).
type CategoryAverages struct {
	Punctuality   float64 `json:"punctuality"`
	Contributions float64 `json:"contributions"`
	Commitment    float64 `json:"commitment"`
	Attitude      float64 `json:"attitude"`
	Overall       float64 `json:"overall"`
	Evaluators    int     `json:"evaluators"`
}

// AggregateFor computes the averages student received across all evaluators.
// Self-scores are excluded. Each category average is the mean of that
// category across evaluators, rounded to 2 decimals (half away from zero);
// the overall average is the mean of the four rounded category averages,
// rounded the same way. Pure and order-independent.
func (a Activity) AggregateFor(student string) CategoryAverages {
	var sums [NumCategories]int
	var count int

	for evaluator, peers := range a.Scores {
		if evaluator == student {
			continue
		}
		r, ok := peers[student]
		if !ok {
			continue
		}
		for i, score := range r {
			sums[i] += score
		}
		count++
	}

	if count == 0 {
		return CategoryAverages{}
	}

	var avgs [NumCategories]float64
	var total float64
	for i, sum := range sums {
		avgs[i] = round2(float64(sum) / float64(count))
		total += avgs[i]
	}
	return CategoryAverages{
		Punctuality:   avgs[0],
		Contributions: avgs[1],
		Commitment:    avgs[2],
		Attitude:      avgs[3],
		Overall:       round2(total / NumCategories),
		Evaluators:    count,
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Evaluator identifies the student submitting ratings. The email is used
// alongside the name to recognize the evaluator in free-form roster strings.
type Evaluator struct {
	Name  string
	Email string
}

// NewActivity contains information needed to create a new Activity.
type NewActivity struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	CourseID     string `json:"course_id" validate:"required"`
	CategoryID   string `json:"category_id" validate:"required"`
	IsAssessment bool   `json:"is_assessment"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

// UpdateActivity defines what information may be provided to modify an existing Activity.
type UpdateActivity struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (ua *UpdateActivity) Validate(validate *validator.Validate) error {
	ua.Name = core.CleanString(ua.Name)
	ua.Description = core.CleanString(ua.Description)
	return validate.Struct(ua)
}

// ActivateAssessment turns an activity into a live assessment for a fixed
// time window starting at the moment of the call.
type ActivateAssessment struct {
	Label    string `json:"label" validate:"required"`
	IsPublic bool   `json:"is_public"`
	Duration int    `json:"duration" validate:"required,min=1"`
	TimeUnit string `json:"time_unit" validate:"required,oneof=minutes hours"`
}

func (aa *ActivateAssessment) Validate(validate *validator.Validate) error {
	aa.Label = core.CleanString(aa.Label)
	aa.TimeUnit = core.CleanString(aa.TimeUnit, true /* lower */)
	return validate.Struct(aa)
}

// Window returns the assessment duration as a time.Duration.
func (aa ActivateAssessment) Window() time.Duration {
	if aa.TimeUnit == "hours" {
		return time.Duration(aa.Duration) * time.Hour
	}
	return time.Duration(aa.Duration) * time.Minute
}
