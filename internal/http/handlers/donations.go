package handlers

import (
	"encoding/json"
	"net/http"

	"qrkot/internal/middleware"
	"qrkot/internal/service"
)

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationCreateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}
	donation, err := a.Charity.CreateDonation(r.Context(), middleware.UserIDFromContext(r.Context()), service.DonationCreate{
		FullAmount: req.FullAmount,
		Comment:    req.Comment,
	})
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toMyDonationResponse(donation))
}

// DonationsList returns every donation with allocation details.
func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	donations, err := a.Charity.ListDonations(r.Context())
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	items := make([]donationResponse, 0, len(donations))
	for _, d := range donations {
		items = append(items, toDonationResponse(d))
	}
	a.json(w, http.StatusOK, items)
}

func (a *App) DonationsMine(w http.ResponseWriter, r *http.Request) {
	donations, err := a.Charity.ListUserDonations(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	items := make([]myDonationResponse, 0, len(donations))
	for _, d := range donations {
		items = append(items, toMyDonationResponse(d))
	}
	a.json(w, http.StatusOK, items)
}
