package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"qrkot/internal/domain"
	"qrkot/internal/service"
)

func (a *App) ProjectsList(w http.ResponseWriter, r *http.Request) {
	projects, err := a.Charity.ListProjects(r.Context())
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	items := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, toProjectResponse(p))
	}
	a.json(w, http.StatusOK, items)
}

func (a *App) ProjectsCreate(w http.ResponseWriter, r *http.Request) {
	var req projectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}
	project, err := a.Charity.CreateProject(r.Context(), service.ProjectCreate{
		Name:        req.Name,
		Description: req.Description,
		FullAmount:  req.FullAmount,
	})
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toProjectResponse(project))
}

func (a *App) ProjectsUpdate(w http.ResponseWriter, r *http.Request) {
	var req projectUpdateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}

	var in service.ProjectUpdate
	if req.Name.Set {
		name := req.Name.Value
		in.Name = &name
	}
	if req.Description.Set {
		description := req.Description.Value
		in.Description = &description
	}
	if req.FullAmount.Set {
		if req.FullAmount.Null {
			a.domainError(w, r, fmt.Errorf("%w: full_amount cannot be null", domain.ErrValidation))
			return
		}
		amount := req.FullAmount.Value
		in.FullAmount = &amount
	}

	project, err := a.Charity.UpdateProject(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProjectResponse(project))
}

func (a *App) ProjectsDelete(w http.ResponseWriter, r *http.Request) {
	project, err := a.Charity.DeleteProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProjectResponse(project))
}
