package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/borrowez/borrowez/internal/errors"
	"github.com/borrowez/borrowez/internal/identity"
	"github.com/borrowez/borrowez/internal/model"
)

type borrowRequest struct {
	BorrowerLocation string `json:"borrower_location"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type historyResponse struct {
	MyItems        []model.Item         `json:"my_items"`
	BorrowHistory  []model.BorrowRecord `json:"borrow_history"`
	LendingHistory []model.BorrowRecord `json:"lending_history"`
}

// handleRequestBorrow handles POST /api/items/{id}/borrow.
func (s *Server) handleRequestBorrow(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())

	var req borrowRequest
	if !caller.IsZero() {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	rec, err := s.ledger.Request(r.Context(), caller, chi.URLParam(r, "id"), req.BorrowerLocation)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, rec)
}

// handleGetBorrow handles GET /api/borrows/{id}.
func (s *Server) handleGetBorrow(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ledger.Get(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

// handleAdvanceBorrow handles PUT /api/borrows/{id}/status.
func (s *Server) handleAdvanceBorrow(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())

	var req statusRequest
	if !caller.IsZero() {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	rec, err := s.ledger.Advance(r.Context(), caller, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

// handleMyItems handles GET /api/me/items.
func (s *Server) handleMyItems(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	items, err := s.catalog.ListByOwner(r.Context(), caller.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// handleMyBorrows handles GET /api/me/borrows.
func (s *Server) handleMyBorrows(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	records, err := s.ledger.ListForBorrower(r.Context(), caller.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, records)
}

// handleMyLendings handles GET /api/me/lendings.
func (s *Server) handleMyLendings(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	records, err := s.ledger.ListForOwner(r.Context(), caller.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, records)
}

// handleMyHistory handles GET /api/me/history.
func (s *Server) handleMyHistory(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	var resp historyResponse
	var err error
	if resp.MyItems, err = s.catalog.ListByOwner(r.Context(), caller.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if resp.BorrowHistory, err = s.ledger.ListForBorrower(r.Context(), caller.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	if resp.LendingHistory, err = s.ledger.ListForOwner(r.Context(), caller.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

// requireIdentity writes a 401 and reports false when the request is
// anonymous.
func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	caller := identity.FromContext(r.Context())
	if caller.IsZero() {
		jsonError(w, domainerrors.ErrUnauthenticated)
		return caller, false
	}
	return caller, true
}
