package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

type ActionKind string

const (
	ActionKindNone          ActionKind = ""
	ActionKindValidation    ActionKind = "validation"
	ActionKindAuthorization ActionKind = "authorization"
	ActionKindConflict      ActionKind = "conflict"
	ActionKindTransient     ActionKind = "transient"
	ActionKindNotFound      ActionKind = "not_found"
	ActionKindUnknown       ActionKind = "unknown"
)

const (
	msgNotAllowed       = "You're not allowed to draft right now. Make sure you're a member and the league is in the drafting phase."
	msgAlreadyDrafted   = "You already drafted this contestant."
	msgMaxOwners        = "This contestant has reached the maximum number of owners."
	msgDraftFailed      = "Draft failed."
	msgInFlight         = "A request for this league is already in progress."
	msgRefreshFailed    = "Could not refresh the draft state. Reload to see the latest picks."
	msgCommissionerOnly = "Only the league owner can do this."
)

// ActionResult is the outcome of a user-initiated draft action. Rejections
// from the store are reported here rather than as an error.
type ActionResult struct {
	Accepted         bool
	Kind             ActionKind
	Message          string
	Cause            error
	State            *DraftState
	Warnings         []string
	PositionsWritten int
}

func (r *ActionResult) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// DraftState is the fresh view a draft page renders after every action.
type DraftState struct {
	League         draft.League
	StatusLabel    string
	Eligibility    draft.Eligibility
	Order          []draft.OrderEntry
	Headline       string
	TotalPicks     int
	IsCommissioner bool
	CanOpenDraft   bool
	CanCloseDraft  bool
	CanResetDraft  bool
}

type RosterView struct {
	League      draft.League
	StatusLabel string
	Rosters     []draft.Roster
	TotalPicked int
}

type SubmitPicksInput struct {
	LeagueID      string
	UserID        string
	ContestantIDs []string
}

type OpenDraftInput struct {
	LeagueID       string
	ActingUserID   string
	OrderedUserIDs []string
}

// LeagueStatusRecorder keeps navigation labels in step with the statuses the
// service observes.
type LeagueStatusRecorder interface {
	RecordStatus(ctx context.Context, leagueID string, status draft.Status)
}

type DraftService struct {
	gateway  draft.Gateway
	statuses LeagueStatusRecorder
	inflight resilience.KeyedGuard
	logger   *logging.Logger
	now      func() time.Time
}

func NewDraftService(gateway draft.Gateway, statuses LeagueStatusRecorder, logger *logging.Logger) *DraftService {
	if logger == nil {
		logger = logging.Default()
	}

	return &DraftService{
		gateway:  gateway,
		statuses: statuses,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *DraftService) GetDraftState(ctx context.Context, leagueID, userID string) (DraftState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.GetDraftState", leagueAttr(leagueID))
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" {
		return DraftState{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	snap, err := s.loadSnapshot(ctx, leagueID)
	if err != nil {
		return DraftState{}, err
	}

	return s.buildState(ctx, snap, userID), nil
}

func (s *DraftService) ListRosters(ctx context.Context, leagueID, userID string) (RosterView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.ListRosters", leagueAttr(leagueID))
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" {
		return RosterView{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	snap, err := s.loadSnapshot(ctx, leagueID)
	if err != nil {
		return RosterView{}, err
	}
	if !snap.IsMember(userID) && !snap.League.IsCommissioner(userID) {
		return RosterView{}, fmt.Errorf("%w: user=%s is not a member of league=%s", ErrForbidden, userID, leagueID)
	}
	s.recordStatus(ctx, snap.League)

	return RosterView{
		League:      snap.League,
		StatusLabel: draft.StatusLabel(snap.League.Status),
		Rosters:     snap.Rosters(),
		TotalPicked: len(snap.Picks),
	}, nil
}

// SubmitPicks validates the selection on a fresh snapshot, inserts all rows
// in one write and refreshes exactly once. Store rejections are never
// retried.
func (s *DraftService) SubmitPicks(ctx context.Context, input SubmitPicksInput) (ActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.SubmitPicks",
		leagueAttr(input.LeagueID),
		attribute.Int("draft.selection_size", len(input.ContestantIDs)),
	)
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.UserID = strings.TrimSpace(input.UserID)
	if input.LeagueID == "" {
		return ActionResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if input.UserID == "" {
		return ActionResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	ids := make([]string, 0, len(input.ContestantIDs))
	for _, id := range input.ContestantIDs {
		ids = append(ids, strings.TrimSpace(id))
	}

	key := "picks:" + input.LeagueID + ":" + input.UserID
	if !s.inflight.TryAcquire(key) {
		return rejected(ActionKindConflict, msgInFlight, ErrConflict), nil
	}
	defer s.inflight.Release(key)

	snap, err := s.loadSnapshot(ctx, input.LeagueID)
	if err != nil {
		if errors.Is(err, draft.ErrMalformedLeague) {
			return ActionResult{}, err
		}
		return rejected(classifyActionError(err), loadFailureMessage(err), err), nil
	}

	eligibility := snap.Eligibility(input.UserID)
	if err := draft.ValidateSelection(eligibility, ids); err != nil {
		state := s.buildState(ctx, snap, input.UserID)
		result := rejected(classifyActionError(err), selectionMessage(err, eligibility), err)
		result.State = &state
		return result, nil
	}

	createdAt := s.now().UTC()
	rows := make([]draft.Pick, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, draft.Pick{
			LeagueID:     input.LeagueID,
			UserID:       input.UserID,
			ContestantID: id,
			CreatedAt:    createdAt,
		})
	}

	if err := s.gateway.InsertPicks(ctx, rows); err != nil {
		s.logger.WarnContext(ctx, "draft picks rejected by store",
			"league_id", input.LeagueID,
			"user_id", input.UserID,
			"picks", len(rows),
			"error", err,
		)
		result := rejected(classifyActionError(err), submitFailureMessage(err), err)
		s.refresh(ctx, input.LeagueID, input.UserID, &result)
		return result, nil
	}

	result := ActionResult{
		Accepted: true,
		Message:  fmt.Sprintf("Drafted %d contestant%s.", len(rows), plural(len(rows))),
	}
	s.refresh(ctx, input.LeagueID, input.UserID, &result)
	return result, nil
}

// OpenDraft stores the draft order one member at a time and then moves the
// league to drafting. A failed position write stops the sequence and leaves
// the league in setup with the positions written so far.
func (s *DraftService) OpenDraft(ctx context.Context, input OpenDraftInput) (ActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.OpenDraft", leagueAttr(input.LeagueID))
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.ActingUserID = strings.TrimSpace(input.ActingUserID)
	if input.LeagueID == "" {
		return ActionResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if input.ActingUserID == "" {
		return ActionResult{}, fmt.Errorf("%w: acting user id is required", ErrInvalidInput)
	}

	key := "admin:" + input.LeagueID
	if !s.inflight.TryAcquire(key) {
		return rejected(ActionKindConflict, msgInFlight, ErrConflict), nil
	}
	defer s.inflight.Release(key)

	league, result, ok := s.commissionerLeague(ctx, input.LeagueID, input.ActingUserID)
	if !ok {
		return result, nil
	}
	if league.Status != draft.StatusSetup {
		return rejected(ActionKindConflict, "The draft can only be opened while the league is in setup.",
			fmt.Errorf("%w: league status is %s", ErrConflict, league.Status)), nil
	}

	members, err := s.gateway.ListMembers(ctx, input.LeagueID)
	if err != nil {
		return rejected(classifyActionError(err), "Could not load league members.", err), nil
	}
	if len(members) == 0 {
		return rejected(ActionKindValidation, "No members found for this league.",
			fmt.Errorf("%w: league has no members", ErrInvalidInput)), nil
	}

	order := make([]string, 0, len(input.OrderedUserIDs))
	for _, id := range input.OrderedUserIDs {
		order = append(order, strings.TrimSpace(id))
	}
	if err := validateOrder(order, members); err != nil {
		return rejected(ActionKindValidation, "The draft order must list every member exactly once.", err), nil
	}

	for i, userID := range order {
		if err := s.gateway.UpdateDraftPosition(ctx, input.LeagueID, userID, i+1); err != nil {
			s.logger.WarnContext(ctx, "draft order write stopped",
				"league_id", input.LeagueID,
				"user_id", userID,
				"positions_written", i,
				"error", err,
			)
			result := rejected(classifyActionError(err), "Failed to save order.", err)
			result.PositionsWritten = i
			s.refresh(ctx, input.LeagueID, input.ActingUserID, &result)
			return result, nil
		}
	}

	if err := s.gateway.UpdateLeagueStatus(ctx, input.LeagueID, input.ActingUserID, draft.StatusDrafting); err != nil {
		result := rejected(classifyActionError(err), "Could not start the draft.", err)
		result.PositionsWritten = len(order)
		s.refresh(ctx, input.LeagueID, input.ActingUserID, &result)
		return result, nil
	}

	result := ActionResult{
		Accepted:         true,
		Message:          "Draft is open.",
		PositionsWritten: len(order),
	}
	s.refresh(ctx, input.LeagueID, input.ActingUserID, &result)
	return result, nil
}

func (s *DraftService) CloseDraft(ctx context.Context, leagueID, actingUserID string) (ActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.CloseDraft", leagueAttr(leagueID))
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	actingUserID = strings.TrimSpace(actingUserID)
	if leagueID == "" {
		return ActionResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if actingUserID == "" {
		return ActionResult{}, fmt.Errorf("%w: acting user id is required", ErrInvalidInput)
	}

	key := "admin:" + leagueID
	if !s.inflight.TryAcquire(key) {
		return rejected(ActionKindConflict, msgInFlight, ErrConflict), nil
	}
	defer s.inflight.Release(key)

	league, result, ok := s.commissionerLeague(ctx, leagueID, actingUserID)
	if !ok {
		return result, nil
	}

	switch league.Status {
	case draft.StatusActive:
		result := ActionResult{Accepted: true, Message: "The draft is already closed."}
		s.refresh(ctx, leagueID, actingUserID, &result)
		return result, nil
	case draft.StatusSetup:
		return rejected(ActionKindConflict, "The draft has not been opened yet.",
			fmt.Errorf("%w: league status is %s", ErrConflict, league.Status)), nil
	}

	if err := s.gateway.UpdateLeagueStatus(ctx, leagueID, actingUserID, draft.StatusActive); err != nil {
		result := rejected(classifyActionError(err), "Could not close the draft.", err)
		s.refresh(ctx, leagueID, actingUserID, &result)
		return result, nil
	}

	result = ActionResult{Accepted: true, Message: "Draft closed. Rosters are final."}
	s.refresh(ctx, leagueID, actingUserID, &result)
	return result, nil
}

// ResetDraft deletes every pick, clears the order and returns the league to
// setup. Picks that survive the delete are reported as a warning.
func (s *DraftService) ResetDraft(ctx context.Context, leagueID, actingUserID string) (ActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.ResetDraft", leagueAttr(leagueID))
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	actingUserID = strings.TrimSpace(actingUserID)
	if leagueID == "" {
		return ActionResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if actingUserID == "" {
		return ActionResult{}, fmt.Errorf("%w: acting user id is required", ErrInvalidInput)
	}

	key := "admin:" + leagueID
	if !s.inflight.TryAcquire(key) {
		return rejected(ActionKindConflict, msgInFlight, ErrConflict), nil
	}
	defer s.inflight.Release(key)

	league, result, ok := s.commissionerLeague(ctx, leagueID, actingUserID)
	if !ok {
		return result, nil
	}

	var warnings []string
	deleted, err := s.gateway.DeletePicks(ctx, leagueID)
	if err != nil {
		result := rejected(classifyActionError(err), "Reset failed.", err)
		s.refresh(ctx, leagueID, actingUserID, &result)
		return result, nil
	}

	remaining, err := s.gateway.CountPicks(ctx, leagueID)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "could not verify remaining picks after reset", "league_id", leagueID, "error", err)
		warnings = append(warnings, "Could not verify remaining picks.")
	case remaining > 0:
		s.logger.WarnContext(ctx, "picks survived reset", "league_id", leagueID, "deleted", deleted, "remaining", remaining)
		warnings = append(warnings, fmt.Sprintf("Warning: %d picks remain. Check the delete policy on draft picks.", remaining))
	}

	if err := s.gateway.ClearDraftPositions(ctx, leagueID); err != nil {
		result := rejected(classifyActionError(err), "Reset failed.", err)
		result.Warnings = warnings
		s.refresh(ctx, leagueID, actingUserID, &result)
		return result, nil
	}

	if league.Status != draft.StatusSetup {
		if err := s.gateway.UpdateLeagueStatus(ctx, leagueID, actingUserID, draft.StatusSetup); err != nil {
			result := rejected(classifyActionError(err), "Reset failed.", err)
			result.Warnings = warnings
			s.refresh(ctx, leagueID, actingUserID, &result)
			return result, nil
		}
	}

	s.logger.InfoContext(ctx, "draft reset", "league_id", leagueID, "deleted_picks", deleted, "previous_status", string(league.Status))

	result = ActionResult{
		Accepted: true,
		Message:  "Draft has been reset. You can now set a new order and start again.",
		Warnings: warnings,
	}
	s.refresh(ctx, leagueID, actingUserID, &result)
	return result, nil
}

// commissionerLeague loads the league and checks the acting user owns it.
// When ok is false the returned result is the rejection to hand back.
func (s *DraftService) commissionerLeague(ctx context.Context, leagueID, actingUserID string) (draft.League, ActionResult, bool) {
	league, exists, err := s.gateway.GetLeague(ctx, leagueID)
	if err != nil {
		return draft.League{}, rejected(classifyActionError(err), loadFailureMessage(err), err), false
	}
	if !exists {
		return draft.League{}, rejected(ActionKindNotFound, "League not found.",
			fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)), false
	}
	league = league.Normalized()
	if !league.IsCommissioner(actingUserID) {
		return draft.League{}, rejected(ActionKindAuthorization, msgCommissionerOnly,
			fmt.Errorf("%w: user=%s is not the commissioner of league=%s", ErrForbidden, actingUserID, leagueID)), false
	}
	return league, ActionResult{}, true
}

// loadSnapshot reads the league first, then members, contestants and picks
// in parallel.
func (s *DraftService) loadSnapshot(ctx context.Context, leagueID string) (draft.Snapshot, error) {
	league, exists, err := s.gateway.GetLeague(ctx, leagueID)
	if err != nil {
		return draft.Snapshot{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return draft.Snapshot{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	var (
		members     []draft.Member
		contestants []draft.Contestant
		picks       []draft.Pick
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		rows, err := s.gateway.ListMembers(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		members = rows
		return nil
	})
	p.Go(func(ctx context.Context) error {
		rows, err := s.gateway.ListContestantsBySeason(ctx, league.SeasonID)
		if err != nil {
			return fmt.Errorf("list contestants: %w", err)
		}
		contestants = rows
		return nil
	})
	p.Go(func(ctx context.Context) error {
		rows, err := s.gateway.ListPicks(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("list picks: %w", err)
		}
		picks = rows
		return nil
	})
	if err := p.Wait(); err != nil {
		return draft.Snapshot{}, err
	}

	snap, err := draft.BuildSnapshot(league, members, contestants, picks)
	if err != nil {
		return draft.Snapshot{}, fmt.Errorf("build snapshot for league=%s: %w", leagueID, err)
	}
	return snap, nil
}

// refresh attaches a fresh state to result. A failed refresh never changes
// the outcome of the action.
func (s *DraftService) refresh(ctx context.Context, leagueID, userID string, result *ActionResult) {
	snap, err := s.loadSnapshot(ctx, leagueID)
	if err != nil {
		s.logger.WarnContext(ctx, "refresh after draft action failed", "league_id", leagueID, "error", err)
		result.warn(msgRefreshFailed)
		return
	}
	state := s.buildState(ctx, snap, userID)
	result.State = &state
}

func (s *DraftService) buildState(ctx context.Context, snap draft.Snapshot, userID string) DraftState {
	s.recordStatus(ctx, snap.League)

	eligibility := snap.Eligibility(userID)
	isCommissioner := snap.League.IsCommissioner(userID)
	status := snap.League.Status

	return DraftState{
		League:         snap.League,
		StatusLabel:    draft.StatusLabel(status),
		Eligibility:    eligibility,
		Order:          snap.Order(userID),
		Headline:       headline(status, eligibility, len(snap.Members)),
		TotalPicks:     len(snap.Picks),
		IsCommissioner: isCommissioner,
		CanOpenDraft:   isCommissioner && status == draft.StatusSetup,
		CanCloseDraft:  isCommissioner && status == draft.StatusDrafting,
		CanResetDraft:  isCommissioner,
	}
}

func (s *DraftService) recordStatus(ctx context.Context, league draft.League) {
	if s.statuses != nil {
		s.statuses.RecordStatus(ctx, league.ID, league.Status)
	}
}

func headline(status draft.Status, e draft.Eligibility, memberCount int) string {
	switch {
	case status == draft.StatusSetup:
		return "Draft has not started yet"
	case status == draft.StatusActive, e.DraftComplete:
		return "Draft complete"
	case memberCount == 0:
		return "Waiting for members"
	case e.IsYourTurn:
		return "Your Turn"
	default:
		return e.CurrentUserID + "'s Turn"
	}
}

func validateOrder(order []string, members []draft.Member) error {
	if len(order) != len(members) {
		return fmt.Errorf("%w: order has %d users, league has %d members", ErrInvalidInput, len(order), len(members))
	}
	known := make(map[string]struct{}, len(members))
	for _, m := range members {
		known[m.UserID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: user=%s is not a league member", ErrInvalidInput, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: user=%s listed twice", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func rejected(kind ActionKind, message string, cause error) ActionResult {
	return ActionResult{
		Accepted: false,
		Kind:     kind,
		Message:  message,
		Cause:    cause,
	}
}

func classifyActionError(err error) ActionKind {
	switch {
	case err == nil:
		return ActionKindNone
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, draft.ErrEmptySelection),
		errors.Is(err, draft.ErrTooManySelections),
		errors.Is(err, draft.ErrDuplicateSelection):
		return ActionKindValidation
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrForbidden),
		errors.Is(err, draft.ErrNotMember),
		errors.Is(err, draft.ErrNotYourTurn),
		errors.Is(err, draft.ErrDraftNotOpen),
		errors.Is(err, draft.ErrRosterFull):
		return ActionKindAuthorization
	case errors.Is(err, ErrConflict),
		errors.Is(err, draft.ErrContestantFull),
		errors.Is(err, draft.ErrContestantUnavailable),
		errors.Is(err, draft.ErrAlreadyOwned):
		return ActionKindConflict
	case errors.Is(err, ErrNotFound):
		return ActionKindNotFound
	case errors.Is(err, ErrDependencyUnavailable),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, context.DeadlineExceeded):
		return ActionKindTransient
	default:
		return ActionKindUnknown
	}
}

func submitFailureMessage(err error) string {
	switch {
	case errors.Is(err, draft.ErrAlreadyOwned):
		return msgAlreadyDrafted
	case errors.Is(err, draft.ErrContestantFull):
		return msgMaxOwners
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized):
		return msgNotAllowed
	default:
		return msgDraftFailed
	}
}

func selectionMessage(err error, e draft.Eligibility) string {
	switch {
	case errors.Is(err, draft.ErrDraftNotOpen):
		return "The draft is not open."
	case errors.Is(err, draft.ErrEmptySelection):
		return "Select at least one contestant."
	case errors.Is(err, draft.ErrDuplicateSelection):
		return "Each contestant can only be selected once."
	case errors.Is(err, draft.ErrNotMember):
		return msgNotAllowed
	case errors.Is(err, draft.ErrNotYourTurn):
		return "It's not your turn yet."
	case errors.Is(err, draft.ErrRosterFull):
		return "Your roster is full."
	case errors.Is(err, draft.ErrTooManySelections):
		if e.SelectionMode == draft.SelectionSingle {
			return "Select exactly one contestant."
		}
		return fmt.Sprintf("You can draft up to %d more contestant%s.", e.MaxSelections, plural(e.MaxSelections))
	case errors.Is(err, draft.ErrAlreadyOwned):
		return msgAlreadyDrafted
	case errors.Is(err, draft.ErrContestantFull):
		return msgMaxOwners
	case errors.Is(err, draft.ErrContestantUnavailable):
		return "That contestant is not available."
	default:
		return msgDraftFailed
	}
}

func loadFailureMessage(err error) string {
	switch classifyActionError(err) {
	case ActionKindNotFound:
		return "League not found."
	case ActionKindAuthorization:
		return "You don't have access to this league."
	case ActionKindTransient:
		return "The league service is unavailable. Try again shortly."
	default:
		return "Could not load the draft."
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
