package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/meridianprocure/storefront-backend/api/responses"
	"github.com/meridianprocure/storefront-backend/api/validators"
	"github.com/meridianprocure/storefront-backend/internal/quotes"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
)

// SubmitQuote accepts a quote-request lead and forwards it to the CRM.
func SubmitQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	type quoteRequestBody struct {
		quotes.QuoteRequest
		PageURI  string `json:"pageUri"`
		PageName string `json:"pageName"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body quoteRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		subCtx := quotes.SubmissionContext{
			PageURI:   body.PageURI,
			PageName:  body.PageName,
			IPAddress: requestIP(r),
		}

		if err := svc.Submit(ctx, body.QuoteRequest, subCtx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{
			"message": "quote submitted successfully",
		})
	}
}

func requestIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
