// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/refcatalog/internal/platform/apperr"
	requestutil "github.com/taibuivan/refcatalog/internal/platform/request"
	"github.com/taibuivan/refcatalog/internal/platform/respond"
)

// Handler implements the HTTP layer for references.
// It translates web requests into engine calls and renders [View]s.
type Handler struct {
	service *Service
}

// NewHandler constructs a new reference [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the reference endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listReferences)
	router.Post("/", handler.createReference)
	router.Get("/{id}", handler.getReference)
	router.Patch("/{id}", handler.updateReference)
	router.Delete("/{id}", handler.deleteReference)

	return router
}

/*
GET /api/v1/references.

Description: Lists every reference. Associations are loaded per the include flags.

Request:
  - include: comma-separated association names, or "all"
  - authors, tags, publisher, series, magazineIssue, magazine, featureTags: bool

Response:
  - 200: []View: Success
*/
func (handler *Handler) listReferences(writer http.ResponseWriter, request *http.Request) {
	refs, err := handler.service.GetAllReferences(request.Context(), loadOptionsFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, SerializeAll(refs))
}

/*
POST /api/v1/references.

Description: Creates a reference with its sub-type and associations.

Request:
  - body: CreateInput

Response:
  - 201: View: Created aggregate, every association loaded
  - 400: MISSING_REQUIRED_DATA / INVALID_COMBINATION / EMPTY_REQUIRED_COLLECTION / VALIDATION_ERROR
  - 404: NOT_FOUND: A referenced id does not exist
  - 409: CONFLICTING_ASSOCIATION / CONSTRAINT_VIOLATION
*/
func (handler *Handler) createReference(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ref, err := handler.service.CreateReference(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, Serialize(ref))
}

/*
GET /api/v1/references/{id}.

Response:
  - 200: View: Success
  - 404: NOT_FOUND
*/
func (handler *Handler) getReference(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.GetReferenceView(request.Context(), id, loadOptionsFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
PATCH /api/v1/references/{id}.

Description: Applies a partial update. An empty body changes nothing.

Request:
  - id: int64
  - body: UpdateInput

Response:
  - 200: View: Updated aggregate, every association loaded
  - 404: NOT_FOUND
*/
func (handler *Handler) updateReference(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeOptionalJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ref, err := handler.service.UpdateReferenceByID(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if ref == nil {
		respond.Error(writer, request, apperr.NotFound(fmt.Sprintf("Reference %d", id)))
		return
	}

	respond.OK(writer, Serialize(ref))
}

/*
DELETE /api/v1/references/{id}.

Response:
  - 204: No Content: Success
  - 404: NOT_FOUND
*/
func (handler *Handler) deleteReference(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	count, err := handler.service.DeleteReferenceByID(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if count == 0 {
		respond.Error(writer, request, apperr.NotFound(fmt.Sprintf("Reference %d", id)))
		return
	}

	respond.NoContent(writer)
}

// loadOptionsFromRequest reads eager-load flags from ?include=a,b and per-association booleans.
func loadOptionsFromRequest(request *http.Request) LoadOptions {
	opts := LoadOptions{
		Authors:       requestutil.BoolQuery(request, "authors"),
		Tags:          requestutil.BoolQuery(request, "tags"),
		Publisher:     requestutil.BoolQuery(request, "publisher"),
		Series:        requestutil.BoolQuery(request, "series"),
		MagazineIssue: requestutil.BoolQuery(request, "magazineIssue"),
		Magazine:      requestutil.BoolQuery(request, "magazine"),
		FeatureTags:   requestutil.BoolQuery(request, "featureTags"),
	}

	for _, name := range strings.Split(request.URL.Query().Get("include"), ",") {
		switch strings.TrimSpace(name) {
		case "all":
			return All()
		case "authors":
			opts.Authors = true
		case "tags":
			opts.Tags = true
		case "publisher":
			opts.Publisher = true
		case "series":
			opts.Series = true
		case "magazineIssue":
			opts.MagazineIssue = true
		case "magazine":
			opts.Magazine = true
		case "featureTags":
			opts.FeatureTags = true
		}
	}

	return opts
}
