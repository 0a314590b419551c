package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

type scheduleApi struct {
	svc      *schedule.Service
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *schedule.Service, validate *validator.Validate) {
	api := scheduleApi{svc: svc, validate: validate}

	sg := g.Group("/schedule", jwt)
	sg.GET("/day", api.day)

	rg := sg.Group("/rules", teacherMiddleware())
	rg.GET("", api.queryRules)
	rg.POST("", api.createRule)
	rg.DELETE("", api.destroyRules)
	rg.GET("/:id", api.retrieveRule)
	rg.PUT("/:id", api.updateRule)
	rg.DELETE("/:id", api.destroyRule)

	cg := sg.Group("/cancellations", teacherMiddleware())
	cg.GET("", api.queryCancellations)
	cg.POST("", api.createCancellation)
	cg.DELETE("", api.destroyCancellations)
	cg.PUT("/:id", api.updateCancellation)
	cg.DELETE("/:id", api.destroyCancellation)
}

// Handlers

// day resolves the timetable for one date. Both `date` and `now` query params
// are optional and default to the current day and wall clock.
func (api *scheduleApi) day(ctx echo.Context) error {
	now := time.Now()
	date := now

	if raw := ctx.QueryParam("date"); raw != "" {
		parsed, err := schedule.ParseDate(raw)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "invalid date"})
		}
		date = parsed
	}
	if raw := ctx.QueryParam("now"); raw != "" {
		tod, err := schedule.ParseTimeOfDay(raw)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "now", Error: "invalid time"})
		}
		now = tod.At(date)
	}

	slots, err := api.svc.ResolveDay(date, now)
	if err != nil {
		return errors.Wrap(err, "resolving day")
	}
	return ctx.JSON(http.StatusOK, newDayResponse(date, slots))
}

func (api *scheduleApi) queryRules(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	rules, err := api.svc.QueryRulesByOwner(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying rules")
	}
	return ctx.JSON(http.StatusOK, rules)
}

func (api *scheduleApi) createRule(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data schedule.NewRule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rule, conflict, err := api.svc.CreateRule(claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating rule")
	}
	return ctx.JSON(http.StatusCreated, newRuleResponse(rule, conflict))
}

func (api *scheduleApi) retrieveRule(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	rule, err := api.svc.GetRule(id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rule)
}

func (api *scheduleApi) updateRule(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data schedule.UpdateRule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rule, conflict, err := api.svc.UpdateRule(id, claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newRuleResponse(rule, conflict))
}

func (api *scheduleApi) destroyRule(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.DeleteRules(claims.Subject, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusNoContent, nil)
}

func (api *scheduleApi) destroyRules(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	ids, err := bindDestroyIDs(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteRules(claims.Subject, ids...); err != nil {
		return err
	}
	return ctx.JSON(http.StatusNoContent, nil)
}

func (api *scheduleApi) queryCancellations(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	recs, err := api.svc.QueryCancellationsByOwner(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying cancellations")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *scheduleApi) createCancellation(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data schedule.NewCancellation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCancellation")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.CreateCancellation(claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating cancellation")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *scheduleApi) updateCancellation(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data schedule.NewCancellation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCancellation")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.UpdateCancellation(id, claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *scheduleApi) destroyCancellation(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.DeleteCancellations(claims.Subject, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusNoContent, nil)
}

func (api *scheduleApi) destroyCancellations(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	ids, err := bindDestroyIDs(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteCancellations(claims.Subject, ids...); err != nil {
		return err
	}
	return ctx.JSON(http.StatusNoContent, nil)
}

func newRuleResponse(rule schedule.Rule, conflict *schedule.Conflict) RuleResponse {
	resp := RuleResponse{Rule: rule}
	if conflict != nil {
		resp.ConflictWarning = conflict.Description()
	}
	return resp
}

func bindDestroyIDs(ctx echo.Context) ([]uuid.UUID, error) {
	var data DestroyMultipleRequest
	if err := ctx.Bind(&data); err != nil {
		return nil, errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	ids := make([]uuid.UUID, 0, len(data.IDs))
	for _, raw := range data.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "id", Error: "invalid ID"})
		}
		ids = append(ids, id)
	}
	return ids, nil
}
