package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/borrowez/borrowez/internal/catalog"
	domainerrors "github.com/borrowez/borrowez/internal/errors"
	"github.com/borrowez/borrowez/internal/identity"
)

// multipartMemory is how much of a multipart body is held in memory.
const multipartMemory = 256 << 10

// handleListItems handles GET /api/items.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// handleGetItem handles GET /api/items/{id}.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// handleCreateItem handles POST /api/items.
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())
	if caller.IsZero() {
		jsonError(w, domainerrors.ErrUnauthenticated)
		return
	}

	fields, img, err := parseItemForm(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.catalog.Create(r.Context(), caller, fields, img)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// handleUpdateItem handles PUT /api/items/{id}.
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())
	if caller.IsZero() {
		jsonError(w, domainerrors.ErrUnauthenticated)
		return
	}

	itemID := chi.URLParam(r, "id")
	if err := s.catalog.Authorize(r.Context(), caller, itemID); err != nil {
		s.writeError(w, r, err)
		return
	}

	fields, img, err := parseItemForm(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.catalog.Update(r.Context(), caller, itemID, fields, img)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// handleDeleteItem handles DELETE /api/items/{id}.
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())
	if err := s.catalog.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// handleItemImage handles GET /api/items/{id}/image.
func (s *Server) handleItemImage(w http.ResponseWriter, r *http.Request) {
	thumb := r.URL.Query().Get("variant") == "thumb"

	img, err := s.catalog.Image(r.Context(), chi.URLParam(r, "id"), thumb)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

// parseItemForm reads item fields and an optional image from a multipart
// or URL-encoded form.
func parseItemForm(w http.ResponseWriter, r *http.Request) (catalog.Fields, *catalog.ImageUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return catalog.Fields{}, nil, domainerrors.InvalidUpload("request body too large")
		}
		return catalog.Fields{}, nil, domainerrors.InvalidInput("invalid form data")
	}

	fields := catalog.Fields{
		Name:        r.PostFormValue("name"),
		Category:    r.PostFormValue("category"),
		RentPerHour: r.PostFormValue("rent_per_hour"),
		Location:    r.PostFormValue("location"),
		Phone:       r.PostFormValue("phone"),
	}
	if values, ok := r.PostForm["status"]; ok && len(values) > 0 {
		status := values[0]
		fields.Status = &status
	}

	img, err := formImage(r)
	if err != nil {
		return catalog.Fields{}, nil, err
	}
	return fields, img, nil
}

// formImage returns the uploaded "image" part, or nil when none was sent.
func formImage(r *http.Request) (*catalog.ImageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, domainerrors.InvalidUpload("invalid image upload")
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, domainerrors.InvalidUpload(fmt.Sprintf("reading image: %v", err))
	}
	return &catalog.ImageUpload{Filename: header.Filename, Data: data}, nil
}
