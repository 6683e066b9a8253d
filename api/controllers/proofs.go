package controllers

import (
	"net/http"
	"strconv"

	"github.com/angelmondragon/leadfunnel-backend/api/responses"
	"github.com/angelmondragon/leadfunnel-backend/api/validators"
	"github.com/angelmondragon/leadfunnel-backend/internal/proofs"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
	"github.com/angelmondragon/leadfunnel-backend/pkg/logger"
)

const proofField = "comprovante"

// UploadLeadProof attaches (or replaces) the payment proof of a lead.
func UploadLeadProof(svc proofs.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proof service unavailable"))
			return
		}

		leadID, err := pathParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.ParseMultipart(w, r, maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		upload, ok, err := validators.ReadFormFile(r, proofField, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "comprovante is required"))
			return
		}

		proof, err := svc.Attach(r.Context(), leadID, toProofFile(upload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, proof)
	}
}

func GetLeadProof(svc proofs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proof service unavailable"))
			return
		}

		leadID, err := pathParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		proof, err := svc.Get(r.Context(), leadID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeProof(w, r, proof, logg)
	}
}

func DeleteLeadProof(svc proofs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proof service unavailable"))
			return
		}

		leadID, err := pathParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), leadID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"lead_id": leadID, "status": "deleted"})
	}
}

// writeProof returns the proof envelope, or the raw file when ?download=true.
func writeProof(w http.ResponseWriter, r *http.Request, proof *proofs.Proof, logg *logger.Logger) {
	download, err := validators.ParseQueryBool(r, "download")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	if download {
		w.Header().Set("Content-Type", proof.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(proof.Data)))
		w.Header().Set("Cache-Control", "private, no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(proof.Data)
		return
	}
	responses.WriteSuccess(w, proof)
}

func toProofFile(upload *validators.FormFile) proofs.File {
	return proofs.File{
		Name:        upload.Name,
		ContentType: upload.ContentType,
		Data:        upload.Data,
	}
}
