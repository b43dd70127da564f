package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/franckalain/fitplan/internal/logger"
	"github.com/franckalain/fitplan/internal/metrics"
	"github.com/franckalain/fitplan/internal/ml"
	"github.com/franckalain/fitplan/internal/models"
	"github.com/franckalain/fitplan/internal/session"
	"github.com/franckalain/fitplan/internal/store"
)

// User-visible messages for generation failures. The failure kind goes in
// the reply code.
const (
	msgGenerateFailed = "Failed to generate plan. Please verify your connection and credentials, then try again."
	msgNextWeekFailed = "Failed to generate next week's plan. Please try again."
	msgNotSaved       = "Plan shown but not saved to history."
)

const (
	codeInvalidMessage     = "invalid_message"
	codeUnknownType        = "unknown_type"
	codeInvalidProfile     = "invalid_profile"
	codeBusy               = "busy"
	codeNoPlan             = "no_plan"
	codeInvalidCredentials = "invalid_credentials"
	codeDuplicateEmail     = "duplicate_email"
	codeInvalidInput       = "invalid_input"
	codeAdminDisabled      = "admin_disabled"
	codeUnauthorized       = "unauthorized"
	codeNotLoggedIn        = "not_logged_in"
	codeNotFound           = "not_found"
	codeStorage            = "storage_unavailable"
	codeUnavailable        = "unavailable"
	codeInternal           = "internal"
)

var (
	errUnauthorized = errors.New("admin access required")
	errNotLoggedIn  = errors.New("not logged in")
)

type planReply struct {
	Week    int                 `json:"week"`
	Profile models.UserProfile  `json:"profile"`
	Plan    models.FitnessPlan  `json:"plan"`
	Record  *models.AdminRecord `json:"record,omitempty"`
}

func (s *Server) handleWebSocketMessage(c *client, msg inbound) {
	switch msg.Type {
	case "register":
		s.handleRegister(c, msg.Data)
	case "login":
		s.handleLogin(c, msg.Data)
	case "logout":
		c.setUser(nil)
		c.sendMessage("logged_out", nil)
	case "admin_login":
		s.handleAdminLogin(c, msg.Data)
	case "generate_plan":
		var profile models.UserProfile
		if err := json.Unmarshal(msg.Data, &profile); err != nil {
			c.sendError(codeInvalidProfile, "Invalid profile data")
			return
		}
		s.runGeneration(c, msgGenerateFailed, func(ctx context.Context) (session.Result, error) {
			return c.planner.SubmitProfile(ctx, profile)
		})
	case "next_week":
		s.runGeneration(c, msgNextWeekFailed, c.planner.RequestNextWeek)
	case "open_record":
		s.handleOpenRecord(c, msg.Data)
	case "get_history":
		s.handleGetHistory(c)
	case "get_admin_records":
		s.handleGetAdminRecords(c)
	case "clear_records":
		s.handleClearRecords(c)
	default:
		c.sendError(codeUnknownType, "Unknown message type")
	}
}

func decodeData(c *client, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		c.sendError(codeInvalidMessage, "Invalid message format")
		return false
	}
	return true
}

func (s *Server) handleRegister(c *client, data json.RawMessage) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeData(c, data, &req) {
		return
	}
	user, err := s.accounts.Register(c.ctx, req.Name, req.Email, req.Password)
	if err != nil {
		s.sendFailure(c, err, "")
		return
	}
	c.setUser(&user)
	logger.Info("user registered", "user", user.ID)
	c.sendMessage("auth", user.Public())
}

func (s *Server) handleLogin(c *client, data json.RawMessage) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeData(c, data, &req) {
		return
	}
	user, err := s.accounts.Login(c.ctx, req.Email, req.Password)
	if err != nil {
		s.sendFailure(c, err, "")
		return
	}
	c.setUser(&user)
	c.sendMessage("auth", user.Public())
}

func (s *Server) handleAdminLogin(c *client, data json.RawMessage) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if len(data) > 0 && !decodeData(c, data, &req) {
		return
	}

	if user, ok := c.currentUser(); ok && s.admin.AuthorizeUser(user) == nil {
		c.setAdmin()
		c.sendMessage("admin_ok", nil)
		return
	}
	switch err := s.admin.Authorize(req.Passphrase); {
	case err == nil:
		c.setAdmin()
		logger.Info("admin access granted", "client", c.id)
		c.sendMessage("admin_ok", nil)
	case errors.Is(err, store.ErrInvalidCredentials):
		logger.Warn("admin passphrase rejected", "client", c.id)
		c.sendError(codeInvalidCredentials, "Incorrect password.")
	default:
		s.sendFailure(c, err, "")
	}
}

// runGeneration executes gen off the read loop. Overlapping requests get
// ErrBusy from the planner.
func (s *Server) runGeneration(c *client, failMsg string, gen func(context.Context) (session.Result, error)) {
	if !s.track() {
		c.sendError(codeUnavailable, "Server is shutting down.")
		return
	}
	go func() {
		defer s.wg.Done()
		start := time.Now()
		res, err := gen(c.ctx)
		elapsed := time.Since(start)

		var unsaved *session.UnsavedPlanError
		switch {
		case err == nil:
			s.metrics.ObserveGeneration(metrics.OutcomeSuccess, "", elapsed)
			s.sendPlan(c, res.Plan, &res.Record)
		case errors.As(err, &unsaved):
			s.metrics.ObserveGeneration(metrics.OutcomeUnsaved, "", elapsed)
			s.sendPlan(c, res.Plan, nil)
			c.write(outbound{Type: "warning", Message: msgNotSaved, Code: codeStorage})
		default:
			if kind := ml.KindOf(err); kind != "" {
				s.metrics.ObserveGeneration(metrics.OutcomeFailure, string(kind), elapsed)
			}
			if errors.Is(err, session.ErrReset) {
				// The requester logged out or switched accounts.
				return
			}
			s.sendFailure(c, err, failMsg)
		}
	}()
}

func (s *Server) sendPlan(c *client, plan models.FitnessPlan, record *models.AdminRecord) {
	profile, _, _ := c.planner.Current()
	c.sendMessage("plan", planReply{
		Week:    plan.WeekNumber,
		Profile: profile,
		Plan:    plan,
		Record:  record,
	})
}

func (s *Server) handleOpenRecord(c *client, data json.RawMessage) {
	var req struct {
		ID string `json:"id"`
	}
	if !decodeData(c, data, &req) {
		return
	}
	record, err := s.history.Get(c.ctx, req.ID)
	if err != nil {
		s.sendFailure(c, err, "")
		return
	}
	user, loggedIn := c.currentUser()
	owner := loggedIn && record.UserID != "" && record.UserID == user.ID
	if !owner && !c.isAdmin() {
		// Indistinguishable from a missing id.
		s.sendFailure(c, store.ErrRecordNotFound, "")
		return
	}
	if err := c.planner.ViewRecord(record); err != nil {
		s.sendFailure(c, err, "")
		return
	}
	s.sendPlan(c, record.Plan, &record)
}

func (s *Server) handleGetHistory(c *client) {
	user, ok := c.currentUser()
	if !ok {
		s.sendFailure(c, errNotLoggedIn, "")
		return
	}
	records, err := s.history.ListByUser(c.ctx, user.ID)
	if err != nil {
		s.sendFailure(c, err, "")
		return
	}
	c.sendMessage("history", records)
}

func (s *Server) handleGetAdminRecords(c *client) {
	if !c.isAdmin() {
		s.sendFailure(c, errUnauthorized, "")
		return
	}
	records, err := s.history.ListAll(c.ctx)
	if err != nil {
		s.sendFailure(c, err, "")
		return
	}
	c.sendMessage("admin_records", records)
}

func (s *Server) handleClearRecords(c *client) {
	if !c.isAdmin() {
		s.sendFailure(c, errUnauthorized, "")
		return
	}
	if err := s.history.ClearAll(c.ctx); err != nil {
		s.sendFailure(c, err, "")
		return
	}
	logger.Warn("all plan records cleared", "client", c.id)
	c.sendMessage("records_cleared", nil)
}

// sendFailure translates err into an error reply. generationMsg replaces the
// message for model failures.
func (s *Server) sendFailure(c *client, err error, generationMsg string) {
	code, message := describe(err)
	if kind := ml.KindOf(err); kind != "" && generationMsg != "" {
		message = generationMsg
	}
	if code == codeInternal || code == codeStorage {
		logger.Error("request failed", "client", c.id, "error", err)
	}
	c.sendError(code, message)
}

func describe(err error) (code, message string) {
	var verr *models.ValidationError
	switch {
	case ml.KindOf(err) != "":
		return string(ml.KindOf(err)), msgGenerateFailed
	case errors.As(err, &verr):
		return codeInvalidProfile, verr.Error()
	case errors.Is(err, session.ErrBusy):
		return codeBusy, "A plan is already being generated."
	case errors.Is(err, session.ErrNoPlan):
		return codeNoPlan, "Generate a plan first."
	case errors.Is(err, store.ErrInvalidCredentials):
		return codeInvalidCredentials, "Invalid email or password."
	case errors.Is(err, store.ErrDuplicateEmail):
		return codeDuplicateEmail, "Email already registered."
	case errors.Is(err, store.ErrInvalidInput):
		return codeInvalidInput, "Name, email and password are required."
	case errors.Is(err, store.ErrAdminDisabled):
		return codeAdminDisabled, "Admin access is not configured."
	case errors.Is(err, errUnauthorized):
		return codeUnauthorized, "Admin access required."
	case errors.Is(err, errNotLoggedIn):
		return codeNotLoggedIn, "Please log in first."
	case errors.Is(err, store.ErrRecordNotFound):
		return codeNotFound, "Record not found."
	case errors.Is(err, store.ErrStorageUnavailable):
		return codeStorage, "Storage is unavailable. Please try again later."
	}
	return codeInternal, "Something went wrong."
}
