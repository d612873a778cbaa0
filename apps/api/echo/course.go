package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/openlab-uninorte/aula/core/course"
	"github.com/openlab-uninorte/aula/core/group"
	"github.com/openlab-uninorte/aula/core/user"
)

type courseApi struct {
	svc        *course.Service
	groupSvc   *group.Service
	userSvc    *user.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:        deps.CourseSvc,
		groupSvc:   deps.GroupSvc,
		userSvc:    deps.UserSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, teacherMiddleware())
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, teacherMiddleware())
	cg.DELETE("/:id", api.destroy, teacherMiddleware())
	cg.POST("/:id/join", api.join)
	cg.GET("/:id/categories", api.queryCategories)
	cg.POST("/:id/categories", api.createCategory, teacherMiddleware())

	catg := g.Group("/categories", jwt)
	catg.GET("/:id", api.retrieveCategory)
	catg.PUT("/:id", api.updateCategory, teacherMiddleware())
	catg.DELETE("/:id", api.destroyCategory, teacherMiddleware())
	catg.POST("/:id/generate-groups", api.generateGroups, teacherMiddleware())
}

// Handlers

// query lists courses for the caller's portal: teachers see the courses they
// run, students the courses they joined, admins everything.
func (api *courseApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rctx := ctx.Request().Context()

	var courses []course.Course
	switch {
	case usr.IsAdmin():
		courses, err = api.svc.QueryAll(rctx)
	case usr.IsTeacher():
		courses, err = api.svc.QueryByTeacher(rctx, usr.Name)
	default:
		courses, err = api.svc.QueryByStudent(rctx, usr.Name)
	}
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err := api.svc.Create(ctx.Request().Context(), usr.Name, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// join enrolls the caller into the course roster.
func (api *courseApi) join(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err := api.svc.Join(ctx.Request().Context(), ctx.Param("id"), usr.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.QueryCategories(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if cats == nil {
		cats = []course.Category{}
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *courseApi) createCategory(ctx echo.Context) error {
	var data course.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	data.CourseID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *courseApi) retrieveCategory(ctx echo.Context) error {
	cat, err := api.svc.GetCategoryByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *courseApi) updateCategory(ctx echo.Context) error {
	var data course.UpdateCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.UpdateCategory(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *courseApi) destroyCategory(ctx echo.Context) error {
	if err := api.svc.DeleteCategory(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// generateGroups randomly partitions the course roster into groups of the
// category's configured size.
func (api *courseApi) generateGroups(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	cat, err := api.svc.GetCategoryByID(rctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	crs, err := api.svc.GetByID(rctx, cat.CourseID)
	if err != nil {
		return err
	}

	groups, err := api.groupSvc.GenerateForCategory(rctx, cat, crs.Students)
	if err != nil {
		return errors.Wrap(err, "generating groups")
	}
	return ctx.JSON(http.StatusCreated, groups)
}
