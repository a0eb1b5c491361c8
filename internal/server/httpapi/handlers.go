package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/bizdesk/internal/api"
	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/server/auth"
	"github.com/dmitrijs2005/bizdesk/internal/server/transport"
)

// decode reads a JSON request body into dst. Failures are reported as
// common.ErrInvalidInput.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body too large", common.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed request body", common.ErrInvalidInput)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.PingResponse{Status: "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.identity.Register(r.Context(), transport.RegistrationFromAPI(&req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "account_id", session.Account.ID)
	writeJSON(w, http.StatusCreated, transport.SessionToAPI(session))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.identity.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, transport.SessionToAPI(session))
}

func (s *Server) handleFederatedLogin(w http.ResponseWriter, r *http.Request) {
	var req api.FederatedLoginRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.identity.FederatedLogin(r.Context(), req.Credential)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, transport.SessionToAPI(session))
}

func (s *Server) handleRequestResetCode(w http.ResponseWriter, r *http.Request) {
	var req api.ResetCodeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.identity.RequestResetCode(r.Context(), req.Identifier); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "reset code sent"})
}

func (s *Server) handleRedeemResetCode(w http.ResponseWriter, r *http.Request) {
	var req api.RedeemResetCodeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.identity.RedeemResetCode(r.Context(), req.Identifier, req.Code, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "password updated"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrUnauthenticated)
		return
	}

	info, err := s.identity.Me(r.Context(), claims.AccountID())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.AccountResponse{Account: transport.AccountToAPI(info)})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrUnauthenticated)
		return
	}

	var req api.UpdateProfileRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	info, err := s.identity.UpdateProfile(r.Context(), claims.AccountID(), transport.ProfileFromAPI(req.Profile))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.AccountResponse{Account: transport.AccountToAPI(info)})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.identity.ListAccounts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.AccountListResponse{Accounts: transport.AccountsToAPI(accounts)})
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req api.ComposeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	answer, err := s.composer.Compose(r.Context(), req.Prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, transport.AnswerToAPI(answer))
}
