package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/openlab-uninorte/aula/core"
	"github.com/openlab-uninorte/aula/core/activity"
	"github.com/openlab-uninorte/aula/core/course"
	"github.com/openlab-uninorte/aula/core/group"
	"github.com/openlab-uninorte/aula/core/user"
)

type activityApi struct {
	svc        *activity.Service
	courseSvc  *course.Service
	groupSvc   *group.Service
	userSvc    *user.Service
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := activityApi{
		svc:        deps.ActivitySvc,
		courseSvc:  deps.CourseSvc,
		groupSvc:   deps.GroupSvc,
		userSvc:    deps.UserSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
		logger:     deps.Logger,
	}

	ag := g.Group("/activities", jwt)
	ag.POST("", api.create, teacherMiddleware())
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update, teacherMiddleware())
	ag.DELETE("/:id", api.destroy, teacherMiddleware())
	ag.POST("/:id/activate", api.activate, teacherMiddleware())
	ag.POST("/:id/submit", api.submit)
	ag.GET("/:id/my-results", api.myResults)
	ag.GET("/:id/results", api.results)

	g.GET("/courses/:id/activities", api.queryByCourse, jwt)
}

type (
	// ActivityResponse augments an activity with the caller's view of the
	// assessment window.
	ActivityResponse struct {
		activity.Activity
		Status  string   `json:"status"`
		Already []string `json:"already"`
	}

	SubmitRequest struct {
		GroupID string                     `json:"group_id" validate:"required"`
		Ratings map[string]activity.Rating `json:"ratings" validate:"required"`
	}

	ResultsResponse struct {
		ActivityID string                               `json:"activity_id"`
		Label      string                               `json:"label"`
		Averages   map[string]activity.CategoryAverages `json:"averages"`
	}
)

func (sr *SubmitRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}

func (api *activityApi) response(act activity.Activity, viewer string) ActivityResponse {
	return ActivityResponse{
		Activity: act,
		Status:   act.StatusFor(viewer, activity.NowFunc()).String(),
		Already:  act.Already(),
	}
}

// Handlers

func (api *activityApi) queryByCourse(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	acts, err := api.svc.QueryByCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}

	resp := make([]ActivityResponse, 0, len(acts))
	for _, act := range acts {
		resp = append(resp, api.response(act, usr.Name))
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *activityApi) create(ctx echo.Context) error {
	var data activity.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	act, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, act)
}

func (api *activityApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	act, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.response(act, usr.Name))
}

func (api *activityApi) update(ctx echo.Context) error {
	var data activity.UpdateActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivity")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *activityApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// activate opens the assessment window. The deadline is fixed at
// now + duration and cannot be retracted afterwards.
func (api *activityApi) activate(ctx echo.Context) error {
	var data activity.ActivateAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ActivateAssessment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	act, err := api.svc.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	// notify the course roster; activation proceeds without it
	var roster []string
	if crs, cErr := api.courseSvc.GetByID(rctx, act.CourseID); cErr != nil {
		api.logger.Warn(fmt.Sprintf("skipping activation notification: loading course %s: %v", act.CourseID, cErr))
	} else {
		roster = crs.Students
	}

	act, err = api.svc.Activate(rctx, act, data, roster)
	if err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, api.response(act, usr.Name))
}

// submit records the caller's ratings of their group peers.
func (api *activityApi) submit(ctx echo.Context) error {
	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	act, err := api.svc.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	grp, err := api.groupSvc.GetByID(rctx, data.GroupID)
	if err != nil {
		return err
	}

	evaluator := activity.Evaluator{Name: usr.Name, Email: usr.Email}
	act, err = api.svc.Submit(rctx, act, grp, evaluator, data.Ratings)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.response(act, usr.Name))
}

// myResults returns the caller's own received averages. Students can only
// see them once the teacher has made the assessment public.
func (api *activityApi) myResults(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	act, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if !act.IsPublic && !(usr.IsTeacher() || usr.IsAdmin()) {
		return errHttpForbidden
	}

	return ctx.JSON(http.StatusOK, ResultsResponse{
		ActivityID: act.ID,
		Label:      act.AssessmentLabel,
		Averages:   map[string]activity.CategoryAverages{usr.Name: act.AggregateFor(usr.Name)},
	})
}

// results returns every roster member's received averages. Reserved for the
// teacher portal unless the assessment has been made public.
func (api *activityApi) results(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rctx := ctx.Request().Context()

	act, err := api.svc.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if !act.IsPublic && !(usr.IsTeacher() || usr.IsAdmin()) {
		return errHttpForbidden
	}

	crs, err := api.courseSvc.GetByID(rctx, act.CourseID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, ResultsResponse{
		ActivityID: act.ID,
		Label:      act.AssessmentLabel,
		Averages:   api.svc.StudentAverages(act, crs.Students),
	})
}
