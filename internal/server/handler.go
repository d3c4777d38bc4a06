package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ggonzalez94/stablepay/internal/dispatch"
	clierr "github.com/ggonzalez94/stablepay/internal/errors"
	"github.com/ggonzalez94/stablepay/internal/model"
	"github.com/ggonzalez94/stablepay/internal/resolver"
)

const maxBodyBytes = 64 << 10

type messageRequest struct {
	Text          string `json:"text" validate:"required"`
	SenderAddress string `json:"sender_address"`
}

type routesRequest struct {
	Token     string `json:"token" validate:"omitempty,alphanum"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount" validate:"omitempty,numeric"`
}

// Handler exposes the dispatcher over JSON.
type Handler struct {
	dispatcher *dispatch.Dispatcher
	resolver   *resolver.Resolver
	validate   *validator.Validate
	log        *zap.Logger
}

func NewHandler(d *dispatch.Dispatcher, r *resolver.Resolver, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{dispatcher: d, resolver: r, validate: validator.New(), log: log}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/commands", h.HandleCommand)
	r.Post("/messages", h.HandleMessage)
	r.Post("/routes", h.HandleRoutes)
	r.Get("/chains", h.HandleChains)
	r.Get("/skills", h.HandleSkills)
}

// HandleCommand handles POST /v1/commands with an already parsed command.
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd dispatch.Command
	if !h.decode(w, r, &cmd) {
		return
	}
	h.writeReply(w, h.dispatcher.Dispatch(r.Context(), cmd))
}

// HandleMessage handles POST /v1/messages carrying raw slash-command text.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !h.decode(w, r, &req) {
		return
	}
	cmd, err := dispatch.Parse(req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	cmd.Sender = req.SenderAddress
	h.writeReply(w, h.dispatcher.Dispatch(r.Context(), cmd))
}

// HandleRoutes handles POST /v1/routes, ranking chains by current fee.
func (h *Handler) HandleRoutes(w http.ResponseWriter, r *http.Request) {
	var req routesRequest
	if !h.decode(w, r, &req) {
		return
	}
	routes, err := h.resolver.Routes(r.Context(), resolver.Request{
		Operation: resolver.OpTransfer,
		Token:     req.Token,
		Recipient: req.Recipient,
		Amount:    req.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.RouteQuotes(routes))
}

func (h *Handler) HandleChains(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.ChainInfos(h.resolver.Registry()))
}

func (h *Handler) HandleSkills(w http.ResponseWriter, _ *http.Request) {
	available := h.dispatcher.Available()
	out := make([]dispatch.Skill, 0, len(available))
	for _, s := range dispatch.Skills() {
		if slices.Contains(available, s.Name) {
			out = append(out, s)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	// Keep numeric params as json.Number so amounts are not rounded
	// through float64.
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.log.Debug("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, clierr.Wrap(clierr.CodeUsage, "invalid JSON body", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, clierr.New(clierr.CodeUsage, validationMessage(err)))
		return false
	}
	return true
}

func (h *Handler) writeReply(w http.ResponseWriter, reply dispatch.Reply) {
	status := http.StatusOK
	if !reply.OK() {
		status = reply.Code
	}
	writeJSON(w, status, reply)
}

func writeError(w http.ResponseWriter, err error) {
	cErr, ok := clierr.As(err)
	if !ok {
		cErr = clierr.Wrap(clierr.CodeInternal, "internal error", err)
	}
	code := clierr.HTTPStatus(cErr.Code)
	writeJSON(w, code, dispatch.Reply{
		Status:  dispatch.StatusError,
		Code:    code,
		Kind:    clierr.Kind(cErr.Code),
		Text:    cErr.Message,
		Options: cErr.Options,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "invalid request: " + strings.Join(parts, "; ")
}
