package controller

import (
	"errors"

	"skillverify_backend/internal/service"
	"skillverify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CredentialController struct {
	Service *service.CredentialService
}

func NewCredentialController(svc *service.CredentialService) *CredentialController {
	return &CredentialController{Service: svc}
}

// @Summary Publicly resolve a credential by its id
// @Tags credentials
// @Produce json
// @Param credentialId path string true "public credential identifier"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/credentials/verify/{credentialId} [get]
func (c *CredentialController) Verify(ctx *gin.Context) {
	cred, err := c.Service.Resolve(ctx.Param("credentialId"))
	if err != nil {
		if errors.Is(err, util.ErrCredentialNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, cred)
}

// @Summary List the caller's credentials
// @Tags credentials
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/credentials [get]
func (c *CredentialController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	creds, err := c.Service.ListForUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, creds)
}

// @Summary Record a share of a credential
// @Tags credentials
// @Produce json
// @Security ApiKeyAuth
// @Param credentialId path string true "public credential identifier"
// @Success 200 {object} util.Response
// @Router /api/credentials/{credentialId}/share [post]
func (c *CredentialController) Share(ctx *gin.Context) {
	err := c.Service.RecordShare(ctx.Param("credentialId"))
	if err != nil {
		if errors.Is(err, util.ErrCredentialNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary Revoke a credential
// @Tags credentials
// @Produce json
// @Security ApiKeyAuth
// @Param credentialId path string true "public credential identifier"
// @Success 200 {object} util.Response
// @Router /api/admin/credentials/{credentialId}/revoke [post]
func (c *CredentialController) Revoke(ctx *gin.Context) {
	err := c.Service.Revoke(ctx.Param("credentialId"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCredentialNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrCredentialRevoked):
			util.BadRequest(ctx, "credential is already revoked")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}
