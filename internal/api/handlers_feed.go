// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package api

import (
	"net/http"

	"github.com/wikwok/wikwok/internal/logging"
)

// feedRequest is the validated query surface of the feed endpoint.
type feedRequest struct {
	Lang  string `validate:"required,langtag"`
	Page  int    `validate:"min=0"`
	Limit int    `validate:"min=1"`
}

// Feed serves one page of the discovery feed as a bare JSON array of
// validated items. An empty array is the explicit end-of-feed signal for
// the requested language.
//
// The page index is accepted for boundary compatibility but acquisition
// is stateless on the server: every call assembles a fresh batch, and the
// consumer's pagination controller handles cross-page dedup.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	req := feedRequest{
		Lang:  getStringParam(r, "lang", h.cfg.Feed.DefaultLang),
		Page:  getIntParam(r, "page", 0),
		Limit: getIntParam(r, "limit", h.cfg.Feed.DefaultPageSize),
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	items := h.acquirer.Acquire(r.Context(), req.Lang, req.Limit)

	logging.Debug().
		Str("lang", req.Lang).
		Int("page", req.Page).
		Int("limit", req.Limit).
		Int("returned", len(items)).
		Msg("Feed page served")

	respondJSON(w, http.StatusOK, items)
}
