package handlers

import (
	"bytes"
	"encoding/json"
	"time"

	"qrkot/internal/domain"
)

type projectResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	FullAmount     int64      `json:"full_amount"`
	InvestedAmount int64      `json:"invested_amount"`
	FullyInvested  bool       `json:"fully_invested"`
	CreateDate     time.Time  `json:"create_date"`
	CloseDate      *time.Time `json:"close_date,omitempty"`
}

type donationResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	FullAmount     int64      `json:"full_amount"`
	Comment        string     `json:"comment,omitempty"`
	InvestedAmount int64      `json:"invested_amount"`
	FullyInvested  bool       `json:"fully_invested"`
	CreateDate     time.Time  `json:"create_date"`
	CloseDate      *time.Time `json:"close_date,omitempty"`
}

// myDonationResponse hides allocation details from donors.
type myDonationResponse struct {
	ID         string    `json:"id"`
	FullAmount int64     `json:"full_amount"`
	Comment    string    `json:"comment,omitempty"`
	CreateDate time.Time `json:"create_date"`
}

func toProjectResponse(p domain.Project) projectResponse {
	return projectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		FullAmount:     p.Amount,
		InvestedAmount: p.AllocatedAmount,
		FullyInvested:  p.Closed,
		CreateDate:     p.CreatedAt,
		CloseDate:      p.ClosedAt,
	}
}

func toDonationResponse(d domain.Donation) donationResponse {
	return donationResponse{
		ID:             d.ID,
		UserID:         d.UserID,
		FullAmount:     d.Amount,
		Comment:        d.Comment,
		InvestedAmount: d.AllocatedAmount,
		FullyInvested:  d.Closed,
		CreateDate:     d.CreatedAt,
		CloseDate:      d.ClosedAt,
	}
}

func toMyDonationResponse(d domain.Donation) myDonationResponse {
	return myDonationResponse{ID: d.ID, FullAmount: d.Amount, Comment: d.Comment, CreateDate: d.CreatedAt}
}

// optional tells an absent JSON field apart from an explicit null.
type optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

type projectCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	FullAmount  int64  `json:"full_amount"`
}

type projectUpdateRequest struct {
	Name        optional[string] `json:"name"`
	Description optional[string] `json:"description"`
	FullAmount  optional[int64]  `json:"full_amount"`
}

type donationCreateRequest struct {
	FullAmount int64  `json:"full_amount"`
	Comment    string `json:"comment"`
}
