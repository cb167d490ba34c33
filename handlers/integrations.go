// File: handlers/integrations.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	integrationRepo "meetbridge/database/repository/integration"
	"meetbridge/middleware"
	"meetbridge/models"
	"meetbridge/services/oauth"
	"meetbridge/utils"
)

// IntegrationHandler manages an organization's platform connections.
type IntegrationHandler struct {
	Repo   integrationRepo.IntegrationRepository
	OAuth  oauth.Service
	Logger *zap.Logger
}

func NewIntegrationHandler(repo integrationRepo.IntegrationRepository, oauthSvc oauth.Service, logger *zap.Logger) *IntegrationHandler {
	return &IntegrationHandler{Repo: repo, OAuth: oauthSvc, Logger: logger}
}

// StoreZoomCredentials saves Server-to-Server OAuth credentials; Zoom needs no
// browser flow, so storing them marks the integration connected immediately.
func (h *IntegrationHandler) StoreZoomCredentials(c *gin.Context) {
	var req struct {
		AccountID    string `json:"account_id" binding:"required"`
		ClientID     string `json:"client_id" binding:"required"`
		ClientSecret string `json:"client_secret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	h.storeStaticCredentials(c, models.Integration{
		Name:     "Zoom Meetings",
		Type:     models.IntegrationTypeMeeting,
		Provider: models.ProviderZoom,
	}, map[string]string{
		"account_id":    req.AccountID,
		"client_id":     req.ClientID,
		"client_secret": req.ClientSecret,
	})
}

// StoreGmailCredentials saves the SMTP sender identity used for booking
// confirmation emails.
func (h *IntegrationHandler) StoreGmailCredentials(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		AppPassword string `json:"app_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	h.storeStaticCredentials(c, models.Integration{
		Name:     "Gmail",
		Type:     models.IntegrationTypeEmail,
		Provider: models.ProviderGmail,
	}, map[string]string{
		"email":        req.Email,
		"app_password": req.AppPassword,
	})
}

func (h *IntegrationHandler) storeStaticCredentials(c *gin.Context, integ models.Integration, creds map[string]string) {
	orgID := middleware.OrgID(c)

	encrypted, err := utils.EncryptCredentials(creds)
	if err != nil {
		h.Logger.Error("failed to encrypt credentials", zap.String("provider", integ.Provider), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to store credentials", "")
		return
	}

	integ.OrganizationID = orgID
	integ.Config = encrypted
	integ.IsActive = true
	integ.IsConnected = true

	saved, err := h.Repo.Upsert(c.Request.Context(), integ)
	if err != nil {
		h.Logger.Error("failed to save integration", zap.String("provider", integ.Provider), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to store credentials", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"integration": saved.Status(),
		"message":     saved.Name + " credentials stored successfully",
	})
}

// ListIntegrations returns the secret-free status of every integration.
func (h *IntegrationHandler) ListIntegrations(c *gin.Context) {
	orgID := middleware.OrgID(c)

	integrations, err := h.Repo.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list integrations", "")
		return
	}

	statuses := make([]models.IntegrationStatus, 0, len(integrations))
	for _, integ := range integrations {
		statuses = append(statuses, integ.Status())
	}
	c.JSON(http.StatusOK, gin.H{"integrations": statuses})
}

// Disconnect marks a provider as disconnected for the organization.
func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	orgID := middleware.OrgID(c)
	provider := c.Param("provider")

	if err := h.Repo.Disconnect(c.Request.Context(), orgID, provider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.JSONError(c, http.StatusNotFound, "integration not found", provider)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to disconnect integration", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": provider + " disconnected"})
}

// OAuthConnect starts the authorization-code flow for Calendly, Google
// Calendar or Zoho Bookings and returns the authorization URL.
func (h *IntegrationHandler) OAuthConnect(c *gin.Context) {
	orgID := middleware.OrgID(c)
	provider := c.Param("provider")

	var req struct {
		ClientID     string `json:"client_id" binding:"required"`
		ClientSecret string `json:"client_secret" binding:"required"`

		// Zoho-specific connection parameters.
		AccountsServer string `json:"accounts_server,omitempty"`
		APIDomain      string `json:"api_domain,omitempty"`
		WorkspaceID    string `json:"workspace_id,omitempty"`
		ServiceID      string `json:"service_id,omitempty"`
		StaffID        string `json:"staff_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	extra := map[string]string{}
	for key, value := range map[string]string{
		"accounts_server": req.AccountsServer,
		"api_domain":      req.APIDomain,
		"workspace_id":    req.WorkspaceID,
		"service_id":      req.ServiceID,
		"staff_id":        req.StaffID,
	} {
		if value != "" {
			extra[key] = value
		}
	}

	authURL, err := h.OAuth.Connect(c.Request.Context(), orgID, provider, req.ClientID, req.ClientSecret, extra)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to start oauth flow", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorization_url": authURL,
		"message":           "Visit the authorization URL to grant access, then complete the callback",
	})
}

// OAuthCallback finishes the authorization-code flow with the code and state
// relayed from the provider redirect.
func (h *IntegrationHandler) OAuthCallback(c *gin.Context) {
	orgID := middleware.OrgID(c)
	provider := c.Param("provider")

	var req struct {
		Code  string `json:"code" binding:"required"`
		State string `json:"state" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	status, err := h.OAuth.Complete(c.Request.Context(), orgID, provider, req.Code, req.State)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to complete oauth flow", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"integration": status,
		"message":     status.Name + " connected successfully",
	})
}
