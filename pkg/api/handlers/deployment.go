package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wolfhost/botpanel-backend/pkg/api/dtos"
	"github.com/wolfhost/botpanel-backend/pkg/domain/errs"
	"github.com/wolfhost/botpanel-backend/pkg/services"
)

type DeploymentHandler struct {
	DeploymentService *services.DeploymentService
}

func NewDeploymentHandler(service *services.DeploymentService) *DeploymentHandler {
	return &DeploymentHandler{DeploymentService: service}
}

// Deploy godoc
// @Summary  Create a deployment
// @Tags     deployments
// @Accept   json
// @Produce  json
// @Param    request body dtos.CreateDeploymentRequest true "deployment request"
// @Success  201 {object} dtos.DeploymentResponse
// @Router   /deployments [post]
func (h *DeploymentHandler) Deploy(c *gin.Context) {
	var request dtos.CreateDeploymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.DeploymentService.Deploy(c.Request.Context(), services.DeployRequest{
		CatalogID: request.CatalogID,
		Name:      request.Name,
		UserID:    request.UserID,
		Config:    request.Config,
	})
	if err != nil {
		var validationErr *errs.ValidationError
		var notFoundErr *errs.NotFoundError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":       validationErr.Error(),
				"missingKeys": validationErr.MissingKeys,
			})
		case errors.As(err, &notFoundErr):
			c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"deployment": dtos.NewDeploymentResponse(record)})
}

// List godoc
// @Summary  List deployments, newest first
// @Tags     deployments
// @Produce  json
// @Success  200 {array} dtos.DeploymentResponse
// @Router   /deployments [get]
func (h *DeploymentHandler) List(c *gin.Context) {
	records := h.DeploymentService.List()
	c.JSON(http.StatusOK, gin.H{"deployments": dtos.NewDeploymentResponses(records)})
}

// Get godoc
// @Summary  Get one deployment with its logs and metrics
// @Tags     deployments
// @Produce  json
// @Param    id path string true "deployment id"
// @Success  200 {object} dtos.DeploymentResponse
// @Router   /deployments/{id} [get]
func (h *DeploymentHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	record, err := h.DeploymentService.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deployment": dtos.NewDeploymentResponse(record)})
}

// Stop godoc
// @Summary  Request graceful termination of a deployment
// @Tags     deployments
// @Produce  json
// @Param    id path string true "deployment id"
// @Success  200 {object} dtos.DeploymentResponse
// @Router   /deployments/{id}/stop [post]
func (h *DeploymentHandler) Stop(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	record, err := h.DeploymentService.Stop(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deployment": dtos.NewDeploymentResponse(record)})
}

// Delete godoc
// @Summary  Terminate and remove a deployment
// @Tags     deployments
// @Produce  json
// @Param    id path string true "deployment id"
// @Success  200 {object} map[string]string
// @Router   /deployments/{id} [delete]
func (h *DeploymentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if removed := h.DeploymentService.Remove(id); !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "deployment " + id.String() + " not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deployment id"})
		return uuid.Nil, false
	}
	return id, true
}
