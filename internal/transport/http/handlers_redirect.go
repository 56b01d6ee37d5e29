package httptransport

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/redirect"
	"gatehouse/pkg/domerr"
	"gatehouse/pkg/httputil"
)

// RedirectHandler evaluates the flow guard rules for the shell. Each flow
// instance gets its own coordinator so the first-evaluation latch is scoped
// to one mounted screen, identified by the client-supplied instance id.
type RedirectHandler struct {
	engine            *redirect.Engine
	logger            *slog.Logger
	signIn            redirect.FlowPaths
	signUp            redirect.FlowPaths
	singleSessionMode bool
	debug             bool

	mu           sync.Mutex
	coordinators map[string]*instanceCoordinator
}

type instanceCoordinator struct {
	coord *redirect.Coordinator
	nav   *recordingNavigator
}

// recordingNavigator captures navigation decisions so the response can carry
// them back instead of driving a browser.
type recordingNavigator struct {
	mu       sync.Mutex
	lastNav  string
	replaced string
}

func (n *recordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastNav = path
}

func (n *recordingNavigator) Replace(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replaced = path
}

func (n *recordingNavigator) consume() (nav, replaced string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	nav, replaced = n.lastNav, n.replaced
	n.lastNav, n.replaced = "", ""
	return nav, replaced
}

type RedirectHandlerConfig struct {
	Engine            *redirect.Engine
	Logger            *slog.Logger
	SignIn            redirect.FlowPaths
	SignUp            redirect.FlowPaths
	SingleSessionMode bool
	Debug             bool
}

func NewRedirectHandler(cfg RedirectHandlerConfig) *RedirectHandler {
	return &RedirectHandler{
		engine:            cfg.Engine,
		logger:            cfg.Logger,
		signIn:            cfg.SignIn,
		signUp:            cfg.SignUp,
		singleSessionMode: cfg.SingleSessionMode,
		debug:             cfg.Debug,
		coordinators:      make(map[string]*instanceCoordinator),
	}
}

type evaluateRequest struct {
	InstanceID           string            `json:"instance_id"`
	IsSignedIn           bool              `json:"is_signed_in"`
	SessionCount         int               `json:"session_count"`
	SignedInSessionCount int               `json:"signed_in_session_count"`
	CurrentPath          string            `json:"current_path"`
	Query                map[string]string `json:"query,omitempty"`
	AfterPath            string            `json:"after_path,omitempty"`
	Ticket               string            `json:"ticket,omitempty"`
}

type evaluateResponse struct {
	Matched        bool   `json:"matched"`
	Destination    string `json:"destination,omitempty"`
	Reason         string `json:"reason,omitempty"`
	SkipNavigation bool   `json:"skip_navigation,omitempty"`
	Navigation     string `json:"navigation,omitempty"`
	ReplacePath    string `json:"replace_path,omitempty"`
	Redirecting    bool   `json:"redirecting"`
}

func (h *RedirectHandler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	flow := chi.URLParam(r, "flow")
	if flow != "sign-in" && flow != "sign-up" {
		httputil.WriteError(w, domerr.New(domerr.CodeNotFound, "unknown flow: "+flow))
		return
	}

	var req evaluateRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.InstanceID == "" {
		httputil.WriteError(w, domerr.New(domerr.CodeInvalidInput, "instance_id is required"))
		return
	}

	inst := h.instance(flow, req.InstanceID)
	res := inst.coord.Evaluate(redirect.Context{
		IsSignedIn:           req.IsSignedIn,
		SingleSessionMode:    h.singleSessionMode,
		SessionCount:         req.SessionCount,
		SignedInSessionCount: req.SignedInSessionCount,
		CurrentPath:          req.CurrentPath,
		Query:                req.Query,
		AfterPath:            req.AfterPath,
		Ticket:               req.Ticket,
	})

	resp := evaluateResponse{Redirecting: inst.coord.Redirecting()}
	if res != nil {
		resp.Matched = true
		resp.Destination = res.Destination
		resp.Reason = res.Reason
		resp.SkipNavigation = res.SkipNavigation
	}
	resp.Navigation, resp.ReplacePath = inst.nav.consume()
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *RedirectHandler) instance(flow, instanceID string) *instanceCoordinator {
	key := flow + ":" + instanceID
	h.mu.Lock()
	defer h.mu.Unlock()
	if inst, ok := h.coordinators[key]; ok {
		return inst
	}

	nav := &recordingNavigator{}
	var rules []redirect.Rule
	var paths redirect.FlowPaths
	if flow == "sign-in" {
		paths = h.signIn
		rules = redirect.SignInRules(paths, nav.Replace)
	} else {
		paths = h.signUp
		rules = redirect.SignUpRules(paths)
	}
	inst := &instanceCoordinator{
		coord: redirect.NewCoordinator(flow, h.engine, rules, nav, h.debug),
		nav:   nav,
	}
	h.coordinators[key] = inst
	return inst
}
