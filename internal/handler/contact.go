package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contactdir/contact-server-go/internal/audit"
	"github.com/contactdir/contact-server-go/internal/auth"
	apperrors "github.com/contactdir/contact-server-go/internal/errors"
	"github.com/contactdir/contact-server-go/internal/model"
	"github.com/contactdir/contact-server-go/internal/service"
	"github.com/contactdir/contact-server-go/internal/util"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/search", h.Search)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// contactRequest is the client-editable contact payload. Any owner field
// sent by the client is ignored.
type contactRequest struct {
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Title         *string `json:"title"`
	EmailWork     *string `json:"emailWork"`
	EmailPersonal *string `json:"emailPersonal"`
	PhoneWork     *string `json:"phoneWork"`
	PhoneHome     *string `json:"phoneHome"`
	PhonePersonal *string `json:"phonePersonal"`
}

func (c contactRequest) fields() model.ContactFields {
	return model.ContactFields{
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Title:         c.Title,
		EmailWork:     c.EmailWork,
		EmailPersonal: c.EmailPersonal,
		PhoneWork:     c.PhoneWork,
		PhoneHome:     c.PhoneHome,
		PhonePersonal: c.PhonePersonal,
	}
}

// GET /api/contacts?page=&size=
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := h.contactService.List(r.Context(), params.Page, params.Size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GET /api/contacts/search?query=
func (h *ContactHandler) Search(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contactService.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

// POST /api/contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	contact, err := h.contactService.Create(r.Context(), req.fields())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// GET /api/contacts/{id}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.contactService.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// PUT /api/contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	contact, err := h.contactService.Update(r.Context(), id, req.fields())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// DELETE /api/contacts/{id}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	if err := h.contactService.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// fail writes err, auditing ownership violations first.
func (h *ContactHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeOwnershipViolation {
		event := audit.Event{
			Type:    audit.EventOwnershipViolated,
			Details: map[string]interface{}{"contact_id": chi.URLParam(r, "id")},
		}
		if id, ok := auth.IdentityFrom(r.Context()); ok {
			event.Email = id.Email
		}
		if details, ok := appErr.Details.(map[string]string); ok {
			event.Details["action"] = details["action"]
		}
		audit.LogFromRequest(r, event)
	}
	writeError(w, err)
}

// contactID reads the {id} path parameter. Ids that are not UUIDs cannot
// exist and are reported as not found.
func contactID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !util.IsValidUUID(id) {
		writeError(w, apperrors.NotFound("Contact"))
		return "", false
	}
	return id, true
}
