package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ecurie/core/training"
	sheetsvc "github.com/trezcool/ecurie/services/sheets"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type trainingApi struct {
	svc      training.Service
	validate *validator.Validate
}

func registerTrainingAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc training.Service,
	validate *validator.Validate,
) {
	api := trainingApi{
		svc:      svc,
		validate: validate,
	}
	staff := rolesMiddleware(training.RoleAdmin, training.RoleTrainer)

	cg := g.Group("/classes", jwt)
	cg.POST("", api.create, staff)
	cg.GET("", api.query)

	// detail endpoints
	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staff)
	dg.DELETE("", api.destroy, staff)
	dg.GET("/attendance.xlsx", api.exportAttendance, staff)

	dg.POST("/enrollments", api.enroll)
	dg.DELETE("/enrollments/:trainee", api.withdraw)
	dg.PUT("/sessions/:session/attendance", api.recordAttendance, staff)

	sg := g.Group("/schedules", jwt)
	sg.POST("/preview", api.previewSessions)
}

// Handlers

func (api *trainingApi) create(ctx echo.Context) error {
	var data training.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	tc, err := api.svc.CreateClass(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating training class")
	}

	return ctx.JSON(http.StatusCreated, tc)
}

func (api *trainingApi) query(ctx echo.Context) error {
	var filter training.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	var ord Ordering
	if err := ord.Bind(ctx, training.IsOrderingField); err != nil {
		return err
	}

	classes, err := api.svc.QueryClasses(ctx.Request().Context(), &filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying training classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *trainingApi) retrieve(ctx echo.Context) error {
	tc, err := api.svc.GetClass(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting training class")
	}
	return ctx.JSON(http.StatusOK, tc)
}

func (api *trainingApi) update(ctx echo.Context) error {
	var data training.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	tc, err := api.svc.UpdateClass(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating training class")
	}
	return ctx.JSON(http.StatusOK, tc)
}

func (api *trainingApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteClass(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting training class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *trainingApi) enroll(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data training.EnrollRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	// trainees enroll themselves by default
	if data.Trainee == "" && actor.IsTrainee() {
		data.Trainee = actor.ID
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	tc, err := api.svc.Enroll(ctx.Request().Context(), actor, ctx.Param("id"), data.Trainee, data.Horse)
	if err != nil {
		return errors.Wrap(err, "enrolling trainee")
	}
	return ctx.JSON(http.StatusCreated, tc)
}

func (api *trainingApi) withdraw(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	tc, err := api.svc.Withdraw(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("trainee"))
	if err != nil {
		return errors.Wrap(err, "withdrawing trainee")
	}
	return ctx.JSON(http.StatusOK, tc)
}

func (api *trainingApi) recordAttendance(ctx echo.Context) error {
	var data training.AttendanceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttendanceRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	tc, err := api.svc.RecordAttendance(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("session"), data.Updates)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusOK, tc)
}

func (api *trainingApi) exportAttendance(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	tc, err := api.svc.GetClass(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting training class")
	}
	if !actor.CanManage(tc) {
		return errHttpForbidden
	}

	var buf bytes.Buffer
	if err = sheetsvc.WriteAttendance(&buf, tc); err != nil {
		return errors.Wrap(err, "writing attendance workbook")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="attendance-%s.xlsx"`, tc.ID))
	return ctx.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (api *trainingApi) previewSessions(ctx echo.Context) error {
	var data training.Schedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Schedule")
	}
	sessions, err := training.PreviewSessions(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sessions)
}
