package handlers

import (
	"log"
	"net/http"

	"github.com/vedran77/konekt/internal/service"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Dashboard returns the admin aggregate view. Routed behind the admin-only
// middleware; by the time we get here the token is an admin token.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.adminService.Dashboard(r.Context())
	if err != nil {
		log.Printf("ERROR admin dashboard: %v", err)
		writeError(w, storageStatus(err), "Error fetching admin dashboard")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"data": data})
}
