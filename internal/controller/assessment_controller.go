package controller

import (
	"errors"
	"strconv"

	"skillverify_backend/internal/service"
	"skillverify_backend/internal/session"
	"skillverify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// @Summary Start an assessment
// @Tags assessments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.StartRequest true "skill, difficulty, kind"
// @Success 201 {object} util.Response
// @Router /api/assessments [post]
func (c *AssessmentController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.StartRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.Service.Start(ctx.Request.Context(), service.Identity{UserID: claims.UserID, Name: claims.Name}, req)
	if err != nil {
		if errors.Is(err, util.ErrMalformedSubmission) {
			util.BadRequest(ctx, "skill is required")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, resp)
}

// @Summary Submit answers or code for grading
// @Tags assessments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.SubmitRequest true "sessionId, answers or code, telemetry"
// @Success 200 {object} util.Response
// @Failure 410 {object} util.Response
// @Router /api/assessments/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.Submit(ctx.Request.Context(), service.Identity{UserID: claims.UserID, Name: claims.Name}, req)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			util.Gone(ctx, "assessment session expired or not found, restart the assessment")
		case errors.Is(err, util.ErrMalformedSubmission):
			util.BadRequest(ctx, "submission is missing a required field")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// @Summary List the caller's graded attempts
// @Tags assessments
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page"
// @Param limit query int false "limit"
// @Success 200 {object} util.Response
// @Router /api/assessments/history [get]
func (c *AssessmentController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	attempts, total, err := c.Service.History(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"list":  attempts,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
