package controllers

import (
	"net/http"
	"strings"

	"github.com/artisanmarket/storefront/api/responses"
	"github.com/artisanmarket/storefront/api/validators"
	"github.com/artisanmarket/storefront/internal/reviews"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/logger"
)

type createReviewRequest struct {
	ProductID     int64  `json:"productId"`
	Rating        int    `json:"rating"`
	Title         string `json:"title"`
	Comment       string `json:"comment"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
}

type updateReviewRequest struct {
	Rating       *int    `json:"rating"`
	Title        *string `json:"title"`
	Comment      *string `json:"comment"`
	CustomerName *string `json:"customerName"`
}

// ReviewListByProduct returns a product's reviews, newest first.
func ReviewListByProduct(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "review")
			return
		}
		productID, err := validators.URLParamID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, items)
	}
}

// ReviewEligibility reports whether ?email= may review the product and
// whether the review would count as a verified purchase.
func ReviewEligibility(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "review")
			return
		}
		productID, err := validators.URLParamID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.CanReview(r.Context(), productID, strings.TrimSpace(r.URL.Query().Get("email")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, result)
	}
}

// ReviewCreate stores a new review.
func ReviewCreate(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "review")
			return
		}
		var payload createReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), reviews.CreateInput{
			ProductID:     payload.ProductID,
			Rating:        payload.Rating,
			Title:         validators.SanitizeString(payload.Title, 200),
			Comment:       payload.Comment,
			CustomerName:  validators.SanitizeString(payload.CustomerName, maxNameLength),
			CustomerEmail: payload.CustomerEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(r.Context(), w, http.StatusCreated, created)
	}
}

// ReviewUpdate edits rating, title, comment or display name.
func ReviewUpdate(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "review")
			return
		}
		id, err := validators.URLParamID(r, "reviewId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Rating == nil && payload.Title == nil && payload.Comment == nil && payload.CustomerName == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update"))
			return
		}
		updated, err := svc.Update(r.Context(), id, reviews.UpdateInput{
			Rating:       payload.Rating,
			Title:        payload.Title,
			Comment:      payload.Comment,
			CustomerName: payload.CustomerName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, updated)
	}
}

// ReviewDelete removes a review.
func ReviewDelete(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "review")
			return
		}
		id, err := validators.URLParamID(r, "reviewId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReviewHelpful increments a review's helpful count.
func ReviewHelpful(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "review")
			return
		}
		id, err := validators.URLParamID(r, "reviewId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.MarkHelpful(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(r.Context(), w, updated)
	}
}
