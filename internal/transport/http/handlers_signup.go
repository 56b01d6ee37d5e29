package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"gatehouse/internal/signup"
	"gatehouse/pkg/domain"
	"gatehouse/pkg/domerr"
	"gatehouse/pkg/httputil"
)

// SignUpHandler exposes the sign-up flow machine over HTTP. Every response
// carries the full attempt view so the shell can render from it directly.
type SignUpHandler struct {
	svc    *signup.Service
	logger *slog.Logger
}

func NewSignUpHandler(svc *signup.Service, logger *slog.Logger) *SignUpHandler {
	return &SignUpHandler{svc: svc, logger: logger}
}

type beginRequest struct {
	CurrentPath string            `json:"current_path"`
	Fields      map[string]string `json:"fields"`
}

type fieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

type navigationRequest struct {
	Path string `json:"path"`
}

type attemptCodeRequest struct {
	Code string `json:"code"`
}

type authRedirectRequest struct {
	Provider            string `json:"provider"`
	RedirectURL         string `json:"redirect_url"`
	RedirectURLComplete string `json:"redirect_url_complete"`
}

type flowErrorView struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type fieldErrorView struct {
	Field   string `json:"field"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// attemptView is the render model for one attempt.
type attemptView struct {
	ID               string   `json:"id"`
	State            string   `json:"state"`
	Tags             []string `json:"tags,omitempty"`
	Terminal         bool     `json:"terminal"`
	Status           string   `json:"status,omitempty"`
	MissingFields    []string `json:"missing_fields,omitempty"`
	UnverifiedFields []string `json:"unverified_fields,omitempty"`
	Strategy         string   `json:"strategy,omitempty"`
	CreatedSessionID string   `json:"created_session_id,omitempty"`
	Providers        []string `json:"providers,omitempty"`

	Error       *flowErrorView   `json:"error,omitempty"`
	FieldErrors []fieldErrorView `json:"field_errors,omitempty"`
	GlobalError string           `json:"global_error,omitempty"`

	// Navigation the shell must perform; cleared once returned.
	Navigation string `json:"navigation,omitempty"`
}

func (h *SignUpHandler) handleBegin(w http.ResponseWriter, r *http.Request) {
	var req beginRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	fields, err := parseFields(req.Fields)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	id, at, err := h.svc.Begin(r.Context(), req.CurrentPath, fields)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, buildView(id, at, h.svc.Providers()))
}

func (h *SignUpHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, nil)
}

func (h *SignUpHandler) handleContinue(w http.ResponseWriter, r *http.Request) {
	var req fieldsRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	fields, err := parseFields(req.Fields)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.respond(w, r, http.StatusOK, func(ctx context.Context, id domain.AttemptID) error {
		return h.svc.Submit(ctx, id, fields)
	})
}

func (h *SignUpHandler) handleVerifyAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptCodeRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.respond(w, r, http.StatusOK, func(ctx context.Context, id domain.AttemptID) error {
		return h.svc.AttemptCode(ctx, id, req.Code)
	})
}

func (h *SignUpHandler) handleVerifyRestart(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, func(ctx context.Context, id domain.AttemptID) error {
		return h.svc.Restart(ctx, id)
	})
}

// handleNavigation reports a browser navigation. The location update lands
// on the router first so path guards see it before the event does.
func (h *SignUpHandler) handleNavigation(w http.ResponseWriter, r *http.Request) {
	var req navigationRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, at, err := h.lookup(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Path != "" {
		at.Router.Replace(req.Path)
	}
	if err := h.svc.NotifyNavigation(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, buildView(id, at, h.svc.Providers()))
}

func (h *SignUpHandler) handleAuthRedirect(w http.ResponseWriter, r *http.Request) {
	var req authRedirectRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Provider == "" {
		httputil.WriteError(w, domerr.New(domerr.CodeInvalidInput, "provider is required"))
		return
	}
	h.respond(w, r, http.StatusOK, func(ctx context.Context, id domain.AttemptID) error {
		return h.svc.AuthRedirect(ctx, id, signup.RedirectParams{
			Provider:            req.Provider,
			RedirectURL:         req.RedirectURL,
			RedirectURLComplete: req.RedirectURLComplete,
		})
	})
}

func (h *SignUpHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := attemptIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.svc.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SignUpHandler) respond(w http.ResponseWriter, r *http.Request, status int, op func(ctx context.Context, id domain.AttemptID) error) {
	id, at, err := h.lookup(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if op != nil {
		if err := op(r.Context(), id); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	httputil.WriteJSON(w, status, buildView(id, at, h.svc.Providers()))
}

func (h *SignUpHandler) lookup(r *http.Request) (domain.AttemptID, *signup.Attempt, error) {
	id, err := attemptIDFrom(r)
	if err != nil {
		return domain.AttemptID{}, nil, err
	}
	at, err := h.svc.Get(id)
	if err != nil {
		return domain.AttemptID{}, nil, err
	}
	return id, at, nil
}

func attemptIDFrom(r *http.Request) (domain.AttemptID, error) {
	return domain.ParseAttemptID(chi.URLParam(r, "attemptID"))
}

// parseFields validates client input before it reaches the flow machine.
func parseFields(raw map[string]string) (map[signup.FieldName]string, error) {
	if raw == nil {
		return nil, nil
	}
	fields := make(map[signup.FieldName]string, len(raw))
	for name, value := range raw {
		switch field := signup.FieldName(name); field {
		case signup.FieldEmailAddress:
			if value != "" && !govalidator.IsEmail(value) {
				return nil, domerr.New(domerr.CodeInvalidInput, "invalid email address")
			}
			fields[field] = value
		case signup.FieldPhoneNumber, signup.FieldUsername, signup.FieldPassword,
			signup.FieldFirstName, signup.FieldLastName:
			fields[field] = value
		default:
			return nil, domerr.New(domerr.CodeInvalidInput, "unknown field: "+name)
		}
	}
	return fields, nil
}

func buildView(id domain.AttemptID, at *signup.Attempt, providers []string) attemptView {
	state := at.Machine.State()
	view := attemptView{
		ID:        id.String(),
		State:     state.String(),
		Tags:      state.Tags(),
		Terminal:  state.Terminal(),
		Strategy:  string(state.Strategy),
		Providers: providers,
	}

	if snap := at.Machine.Snapshot(); snap != nil {
		view.Status = string(snap.Status)
		for _, f := range snap.MissingFields {
			view.MissingFields = append(view.MissingFields, string(f))
		}
		for _, f := range snap.UnverifiedFields {
			view.UnverifiedFields = append(view.UnverifiedFields, string(f))
		}
		if !snap.CreatedSessionID.IsZero() {
			view.CreatedSessionID = snap.CreatedSessionID.String()
		}
	}

	if flowErr := at.Machine.Err(); flowErr != nil {
		view.Error = &flowErrorView{Reason: string(flowErr.Reason), Message: flowErr.Message}
	}
	for _, fe := range at.Form.FieldErrors() {
		view.FieldErrors = append(view.FieldErrors, fieldErrorView{
			Field: string(fe.Field), Code: fe.Code, Message: fe.Message,
		})
	}
	view.GlobalError = at.Form.GlobalError()

	if path, ok := at.Router.ConsumePending(); ok {
		view.Navigation = path
	}
	return view
}
