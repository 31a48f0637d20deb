package inventory

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zombor/bcmagic/internal/bcmagic"
)

// Router mounts authenticated routes
type Router interface {
	Handle(pattern string, handler http.HandlerFunc)
}

// Handler serves the inventory routes
type Handler struct {
	service *Service
}

// NewHandler creates a Handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the inventory routes on r
func (h *Handler) RegisterRoutes(r Router) {
	r.Handle("GET /inventory/data/items/{$}", h.handleDataItems)
	r.Handle("POST /inventory/items/{$}", h.handleCreateItem)
	r.Handle("GET /inventory/lts/{flowcell}/{$}", h.handleGetStorage)
	r.Handle("POST /inventory/lts/link/{$}", h.handleLinkForm)
	r.Handle("GET /inventory/printer/status/{$}", h.handlePrinterStatus)
	r.Handle("GET /inventory/lts/link/{flowcell}/{serial}/{$}", h.handleLinkPath)
	r.Handle("POST /inventory/{id}/print/{$}", h.handlePrint)
	r.Handle("GET /inventory/{id}/{$}", h.handleGetItem)
	r.Handle("DELETE /inventory/{id}/{$}", h.handleDeleteItem)
}

// handleDataItems returns item records for tabular display
func (h *Handler) handleDataItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.URL.Query().Get("type"))
	if err != nil {
		slog.Error("Error listing items", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	bcmagic.WriteJSON(w, http.StatusOK, items)
}

// handleCreateItem creates an item from a JSON body
func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var item Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateItem(&item)
	if err != nil {
		slog.Error("Error creating item", "error", err)
		bcmagic.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}
	bcmagic.WriteJSON(w, http.StatusCreated, created)
}

// handleGetItem returns an item by UUID or barcode id
func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, "Item", err)
		return
	}
	bcmagic.WriteJSON(w, http.StatusOK, item)
}

// handleDeleteItem deletes an item
func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.PathValue("id")); err != nil {
		writeLookupError(w, "Item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePrint prints an item's label
func (h *Handler) handlePrint(w http.ResponseWriter, r *http.Request) {
	err := h.service.PrintLabel(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrNoPrinter):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "Item not found", http.StatusNotFound)
	default:
		slog.Error("Error printing label", "id", r.PathValue("id"), "error", err)
		http.Error(w, "Error printing label", http.StatusBadGateway)
	}
}

// handlePrinterStatus reports whether the label printer accepts connections
func (h *Handler) handlePrinterStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.PrinterStatus(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	bcmagic.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}

// handleGetStorage returns the storage record for a flowcell
func (h *Handler) handleGetStorage(w http.ResponseWriter, r *http.Request) {
	lts, err := h.service.GetStorage(r.PathValue("flowcell"))
	if err != nil {
		writeLookupError(w, "Storage", err)
		return
	}
	bcmagic.WriteJSON(w, http.StatusOK, lts)
}

// handleLinkForm links the flowcell and storage_device form values
func (h *Handler) handleLinkForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	h.link(w, r.PostForm.Get("flowcell"), r.PostForm.Get("storage_device"))
}

// handleLinkPath links the flowcell and serial path values
func (h *Handler) handleLinkPath(w http.ResponseWriter, r *http.Request) {
	h.link(w, r.PathValue("flowcell"), r.PathValue("serial"))
}

func (h *Handler) link(w http.ResponseWriter, flowcell, serial string) {
	result, err := h.service.Link(flowcell, serial)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		slog.Error("Error linking flowcell", "flowcell", flowcell, "serial", serial, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(result.Message()))
}

func writeLookupError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, what+" not found", http.StatusNotFound)
		return
	}
	slog.Error("Error loading record", "what", what, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
