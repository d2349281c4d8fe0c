package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/services"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/wallet"
)

// maxMintUpload bounds the multipart mint form, image included
const maxMintUpload = 32 << 20

// BuyItem handles purchasing a listed item
func BuyItem(workflowService *services.WorkflowService, walletService *services.WalletService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.BuyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		signer, ok := signerForRequest(w, r, walletService, req.Passphrase)
		if !ok {
			return
		}

		result := workflowService.Buy(r.Context(), signer, req.TokenID)
		writeWorkflowResult(w, result)
	}
}

// MintItem handles minting and listing a new item. The request is a
// multipart form carrying name, description, price, passphrase and the
// image file.
func MintItem(workflowService *services.WorkflowService, walletService *services.WalletService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxMintUpload); err != nil {
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}

		req := models.MintRequest{
			Name:        r.FormValue("name"),
			Description: r.FormValue("description"),
			Price:       r.FormValue("price"),
			Passphrase:  r.FormValue("passphrase"),
		}

		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			req.Image = file
			req.ImageName = header.Filename
		}

		signer, ok := signerForRequest(w, r, walletService, req.Passphrase)
		if !ok {
			return
		}

		result := workflowService.Mint(r.Context(), signer, req)
		writeWorkflowResult(w, result)
	}
}

// ResellItem handles relisting a previously purchased item
func ResellItem(workflowService *services.WorkflowService, walletService *services.WalletService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ResellRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		signer, ok := signerForRequest(w, r, walletService, req.Passphrase)
		if !ok {
			return
		}

		result := workflowService.Resell(r.Context(), signer, req)
		writeWorkflowResult(w, result)
	}
}

// signerForRequest resolves a signer for the request's session. External
// sessions hold no key material on this host, so write calls need the
// local wallet.
func signerForRequest(w http.ResponseWriter, r *http.Request, walletService *services.WalletService, passphrase string) (wallet.Signer, bool) {
	session := SessionFromContext(r.Context())

	signer, err := walletService.SignerFor(session, passphrase)
	if err != nil {
		if errors.Is(err, wallet.ErrNoSigner) {
			http.Error(w, "No signing key is available for this session", http.StatusPreconditionFailed)
			return nil, false
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return signer, true
}

// writeWorkflowResult maps the settled outcome onto an HTTP status.
// Settled chain outcomes, including reverts and declined signatures,
// are 200s carrying the result body.
func writeWorkflowResult(w http.ResponseWriter, result models.WorkflowResult) {
	w.Header().Set("Content-Type", "application/json")
	switch result.Status {
	case models.StatusValidationError:
		w.WriteHeader(http.StatusBadRequest)
	case models.StatusPreconditionError:
		w.WriteHeader(http.StatusPreconditionFailed)
	}
	json.NewEncoder(w).Encode(result)
}
